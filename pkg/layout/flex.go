package layout

import (
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
)

// flexItem tracks the per-item state resolveFlexibleLengths iterates
// over, grounded on the teacher's FlexItem/flexState pair.
type flexItem struct {
	id           ElementId
	input        styleconv.LayoutInput
	hypothetical float64 // content-based main size before flexing
	target       float64 // resolved main size
	frozen       bool
	crossSize    float64
	margin       Edges
}

// layoutFlexContainer lays out children along a single flex line (no
// wrapping — wrap-onto-multiple-lines is left for a future iteration,
// noted as a known gap rather than silently mishandled: multi-line
// items just overflow the container's cross size).
func (e *Engine) layoutFlexContainer(tree *LayoutTree, el *LayoutElementNode, rn *rendertree.RenderNode, input styleconv.LayoutInput, cb Rect) {
	margin := edgeToPixels(input.Margin, cb.Width)
	border := edgeToPixels(input.BorderWidth, cb.Width)
	padding := edgeToPixels(input.Padding, cb.Width)

	borderBoxWidth := resolveWidth(input, cb, margin, border, padding)
	contentWidth := borderBoxWidth - border.Horizontal() - padding.Horizontal()
	if contentWidth < 0 {
		contentWidth = 0
	}
	contentX := cb.X + border.Left + padding.Left
	contentY := cb.Y + border.Top + padding.Top

	isRow := input.FlexDirection == styleconv.FlexRow || input.FlexDirection == styleconv.FlexRowReverse
	reverse := input.FlexDirection == styleconv.FlexRowReverse || input.FlexDirection == styleconv.FlexColumnReverse

	mainAvailable := contentWidth
	if !isRow {
		mainAvailable = maxContentWidth // column containers size to content by default, no viewport-height constraint here
	}

	items := make([]*flexItem, 0, len(rn.Children))
	childIds := make([]rendertree.RenderNodeId, 0, len(rn.Children))
	for _, cid := range rn.Children {
		childRn := tree.Render.MustNode(cid)
		childNode := tree.Doc.MustNode(childRn.NodeId)
		childInput := styleconv.Convert(childNode.EffectiveStyle())
		childMargin := edgeToPixels(childInput.Margin, contentWidth)

		probeWidth := contentWidth
		if isRow {
			probeWidth = maxContentWidth
		}
		id, _ := e.layoutNode(tree, cid, Rect{X: contentX, Y: contentY, Width: probeWidth}, AvailableSpace{Kind: MaxContent})
		box := tree.MustNode(id).Box

		hyp := box.BorderBox.Width
		cross := box.BorderBox.Height
		if !isRow {
			hyp = box.BorderBox.Height
			cross = box.BorderBox.Width
		}
		if childInput.FlexBasis.Kind == styleconv.EdgePixels {
			hyp = childInput.FlexBasis.Value
		}

		items = append(items, &flexItem{id: id, input: childInput, hypothetical: hyp, target: hyp, crossSize: cross, margin: childMargin})
		childIds = append(childIds, cid)
	}

	resolveFlexibleLengths(items, mainAvailable, input.Gap)

	// Re-layout each item at its resolved main size so its own children
	// reflow (text wrap, nested blocks) against the final box.
	maxCross := 0.0
	for i, it := range items {
		rectW := it.target
		if !isRow {
			rectW = contentWidth
		}
		id, _ := e.layoutNode(tree, childIds[i], Rect{X: contentX, Y: contentY, Width: rectW}, AvailableSpace{Kind: Definite, Value: rectW})
		box := tree.MustNode(id).Box
		if isRow {
			it.crossSize = box.BorderBox.Height
		} else {
			it.crossSize = box.BorderBox.Width
		}
		if it.crossSize > maxCross {
			maxCross = it.crossSize
		}
		it.id = id
	}

	mainUsed, gapTotal := 0.0, input.Gap*float64(max(0, len(items)-1))
	for _, it := range items {
		mainUsed += it.target
	}
	freeSpace := mainAvailable - mainUsed - gapTotal
	if freeSpace < 0 {
		freeSpace = 0
	}
	mainCursor, step := justifyOffsets(input.JustifyContent, freeSpace, len(items), input.Gap)

	order := items
	if reverse {
		order = reverseItems(items)
	}

	for _, it := range order {
		node := tree.MustNode(it.id)
		box := node.Box
		if isRow {
			box.BorderBox.X = contentX + mainCursor
			box.BorderBox.Y = contentY + crossOffset(input.AlignItems, maxCross, it.crossSize)
		} else {
			box.BorderBox.Y = contentY + mainCursor
			box.BorderBox.X = contentX + crossOffset(input.AlignItems, maxCross, it.crossSize)
		}
		node.Box = box
		el.Children = append(el.Children, it.id)
		mainCursor += it.target + step
	}

	mainExtent := 0.0
	for _, it := range items {
		mainExtent += it.target
	}
	mainExtent += gapTotal

	contentHeight := maxCross
	contentWidthUsed := contentWidth
	if isRow {
		contentWidthUsed = contentWidth
	} else {
		contentHeight = mainExtent
	}
	if h, ok := resolveHeightIfSet(input, cb, border, padding); ok {
		contentHeight = h - border.Vertical() - padding.Vertical()
	}

	el.Box = BoxModel{
		BorderBox: Rect{
			X:      cb.X,
			Y:      cb.Y,
			Width:  border.Horizontal() + padding.Horizontal() + contentWidthUsed,
			Height: border.Vertical() + padding.Vertical() + contentHeight,
		},
		Margin:  margin,
		Border:  border,
		Padding: padding,
	}
}

// resolveFlexibleLengths implements the freeze/grow/shrink loop from
// CSS Flexbox §9.7, adapted to operate on flexItem directly rather than
// a FlexLine (this engine doesn't wrap onto multiple lines).
func resolveFlexibleLengths(items []*flexItem, available, gap float64) {
	if len(items) == 0 {
		return
	}
	totalGaps := gap * float64(len(items)-1)
	effectiveAvailable := available - totalGaps

	sumHypothetical := 0.0
	for _, it := range items {
		sumHypothetical += it.hypothetical
	}
	growing := sumHypothetical < effectiveAvailable

	for _, it := range items {
		if growing && it.input.FlexGrow == 0 {
			it.frozen = true
			it.target = it.hypothetical
		} else if !growing && it.input.FlexShrink == 0 {
			it.frozen = true
			it.target = it.hypothetical
		} else {
			it.target = it.hypothetical
		}
	}

	for iter := 0; iter < 10; iter++ {
		allFrozen := true
		for _, it := range items {
			if !it.frozen {
				allFrozen = false
				break
			}
		}
		if allFrozen {
			break
		}

		used := 0.0
		for _, it := range items {
			if it.frozen {
				used += it.target
			} else {
				used += it.hypothetical
			}
		}
		freeSpace := effectiveAvailable - used

		if growing {
			totalGrow := 0.0
			for _, it := range items {
				if !it.frozen {
					totalGrow += it.input.FlexGrow
				}
			}
			if totalGrow > 0 {
				for _, it := range items {
					if !it.frozen {
						it.target = it.hypothetical + freeSpace*(it.input.FlexGrow/totalGrow)
					}
				}
			}
		} else {
			totalScaled := 0.0
			for _, it := range items {
				if !it.frozen {
					totalScaled += it.input.FlexShrink * it.hypothetical
				}
			}
			if totalScaled > 0 {
				for _, it := range items {
					if !it.frozen {
						factor := it.input.FlexShrink * it.hypothetical / totalScaled
						it.target = it.hypothetical + freeSpace*factor
					}
				}
			}
		}

		violation := 0.0
		for _, it := range items {
			if it.frozen {
				continue
			}
			clamped := it.target
			if clamped < 0 {
				clamped = 0
			}
			violation += clamped - it.target
			it.target = clamped
		}

		if violation == 0 {
			for _, it := range items {
				it.frozen = true
			}
		} else {
			for _, it := range items {
				if !it.frozen && it.target <= 0 {
					it.frozen = true
				}
			}
		}
	}
}

func justifyOffsets(justify styleconv.Justify, freeSpace float64, n int, gap float64) (start, step float64) {
	if n == 0 {
		return 0, gap
	}
	switch justify {
	case styleconv.JustifyEnd:
		return freeSpace, gap
	case styleconv.JustifyCenter:
		return freeSpace / 2, gap
	case styleconv.JustifySpaceBetween:
		if n == 1 {
			return 0, gap
		}
		return 0, gap + freeSpace/float64(n-1)
	case styleconv.JustifySpaceAround:
		each := freeSpace / float64(n)
		return each / 2, gap + each
	default:
		return 0, gap
	}
}

func crossOffset(align styleconv.AlignItems, lineCross, itemCross float64) float64 {
	switch align {
	case styleconv.AlignEnd:
		return lineCross - itemCross
	case styleconv.AlignCenter:
		return (lineCross - itemCross) / 2
	default:
		return 0
	}
}

func reverseItems(items []*flexItem) []*flexItem {
	out := make([]*flexItem, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
