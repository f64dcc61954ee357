package layout

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
)

// shouldCollapseMargins reports whether a box participates in adjacent
// sibling margin collapsing, grounded on the teacher's
// shouldCollapseMargins: body, floats, absolute/fixed position, and
// inline-level or flex boxes are excluded.
func shouldCollapseMargins(node *domdoc.Node, input styleconv.LayoutInput) bool {
	if node.Type == domdoc.ElementNode && node.TagName == "body" {
		return false
	}
	if input.Position == styleconv.PositionAbsolute || input.Position == styleconv.PositionFixed {
		return false
	}
	switch input.Display {
	case domdoc.DisplayInline, domdoc.DisplayInlineBlock, domdoc.DisplayFlex:
		return false
	}
	if input.OverflowY != styleconv.OverflowVisible {
		return false
	}
	return true
}

// collapseMargins combines two adjoining margins per CSS §8.3.1: the
// max of two positives, the min of two negatives, or the sum when mixed.
func collapseMargins(a, b float64) float64 {
	if a >= 0 && b >= 0 {
		if a > b {
			return a
		}
		return b
	}
	if a < 0 && b < 0 {
		if a < b {
			return a
		}
		return b
	}
	return a + b
}

// layoutBlockContainer lays out an element's children in a block
// formatting context: each child stacks below the previous one, with
// adjoining vertical margins collapsed (§4.3 steps 1, 4). Maximal runs
// of inline-level children are grouped into one synthesized anonymous
// inline box per run (§4.3 step 1).
func (e *Engine) layoutBlockContainer(tree *LayoutTree, el *LayoutElementNode, rn *rendertree.RenderNode, input styleconv.LayoutInput, cb Rect) {
	margin := edgeToPixels(input.Margin, cb.Width)
	border := edgeToPixels(input.BorderWidth, cb.Width)
	padding := edgeToPixels(input.Padding, cb.Width)

	borderBoxWidth := resolveWidth(input, cb, margin, border, padding)
	contentWidth := borderBoxWidth - border.Horizontal() - padding.Horizontal()
	if contentWidth < 0 {
		contentWidth = 0
	}

	contentX := cb.X + margin.Left + border.Left + padding.Left
	contentY := cb.Y + border.Top + padding.Top
	childCB := Rect{X: contentX, Y: contentY, Width: contentWidth}

	// borderBottom tracks the previous child's border-box bottom edge;
	// prevMarginBottom its margin, kept separate so an adjoining pair of
	// margins can be collapsed rather than summed.
	borderBottom := contentY
	var prevMarginBottom float64
	havePrev := false

	runs := groupInlineRuns(tree.Render, rn.Children)
	for _, run := range runs {
		if run.anonymous {
			h := e.layoutInlineRun(tree, el, run.ids, Rect{X: childCB.X, Y: borderBottom, Width: contentWidth}, AvailableSpace{Kind: Definite, Value: contentWidth})
			borderBottom += h
			prevMarginBottom = 0
			havePrev = false
			continue
		}

		childId := run.ids[0]
		childRn := tree.Render.MustNode(childId)
		childNode := tree.Doc.MustNode(childRn.NodeId)
		childInput := styleconv.Convert(childNode.EffectiveStyle())
		childMargin := edgeToPixels(childInput.Margin, childCB.Width)

		gap := prevMarginBottom + childMargin.Top
		if havePrev && shouldCollapseMargins(childNode, childInput) {
			gap = collapseMargins(prevMarginBottom, childMargin.Top)
		}
		childTop := borderBottom + gap

		id, _ := e.layoutNode(tree, childId, Rect{X: childCB.X, Y: childTop, Width: childCB.Width}, AvailableSpace{Kind: Definite, Value: childCB.Width})
		el.Children = append(el.Children, id)

		childBox := tree.MustNode(id).Box
		borderBottom = childBox.BorderBox.Bottom()
		prevMarginBottom = childMargin.Bottom
		havePrev = shouldCollapseMargins(childNode, childInput)
	}

	contentHeight := borderBottom - contentY
	if h, ok := resolveHeightIfSet(input, cb, border, padding); ok {
		contentHeight = h - border.Vertical() - padding.Vertical()
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	el.Box = BoxModel{
		BorderBox: Rect{
			X:      cb.X + margin.Left,
			Y:      cb.Y,
			Width:  border.Horizontal() + padding.Horizontal() + contentWidth,
			Height: border.Vertical() + padding.Vertical() + contentHeight,
		},
		Margin:  margin,
		Border:  border,
		Padding: padding,
	}
}

type inlineRun struct {
	ids       []rendertree.RenderNodeId
	anonymous bool // true when the run has 2+ elements and was grouped
}

// groupInlineRuns partitions a block container's children into runs:
// consecutive inline-level nodes become one anonymous run (marked
// anonymous only when the run has more than one member — a lone inline
// child lays out directly, matching the spec's "2+ consecutive inline
// children" trigger for synthesis), block-level nodes stay singletons.
func groupInlineRuns(rt *rendertree.RenderTree, children []rendertree.RenderNodeId) []inlineRun {
	var runs []inlineRun
	i := 0
	for i < len(children) {
		rn := rt.MustNode(children[i])
		if !rn.IsInline {
			runs = append(runs, inlineRun{ids: []rendertree.RenderNodeId{children[i]}})
			i++
			continue
		}
		j := i
		var run []rendertree.RenderNodeId
		for j < len(children) && rt.MustNode(children[j]).IsInline {
			run = append(run, children[j])
			j++
		}
		runs = append(runs, inlineRun{ids: run, anonymous: len(run) > 1})
		i = j
	}
	return runs
}
