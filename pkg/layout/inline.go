package layout

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

// layoutInlineRun lays out a maximal run of inline-level siblings as a
// single anonymous box: content flows left to right, wrapping to a new
// line whenever the next box would overflow the available width (§4.3
// step 1 — the layouter itself never breaks a single text node's
// lines, that's the text backend's job via Measure's maxWidth, but it
// does decide where one inline box ends and the next begins).
func (e *Engine) layoutInlineRun(tree *LayoutTree, parent *LayoutElementNode, ids []rendertree.RenderNodeId, cb Rect, avail AvailableSpace) float64 {
	anonId := tree.alloc_()
	anon := &LayoutElementNode{Id: anonId, Anonymous: true, Box: BoxModel{BorderBox: Rect{X: cb.X, Y: cb.Y, Width: cb.Width}}}
	tree.nodes[anonId] = anon
	parent.Children = append(parent.Children, anonId)

	cursorX := cb.X
	cursorY := cb.Y
	lineHeight := 0.0
	maxLineWidth := 0.0

	advanceLine := func() {
		cursorY += lineHeight
		cursorX = cb.X
		lineHeight = 0
	}

	for _, rnId := range ids {
		rn := tree.Render.MustNode(rnId)
		node := tree.Doc.MustNode(rn.NodeId)
		input := styleconv.Convert(node.EffectiveStyle())

		remaining := cb.X + cb.Width - cursorX

		id := tree.alloc_()
		el := &LayoutElementNode{Id: id, NodeId: rn.NodeId, RenderNodeId: rnId, Input: input}
		tree.nodes[id] = el

		switch {
		case node.Type == domdoc.TextNode:
			e.layoutText(tree, el, node.Text, input, Rect{X: cursorX, Y: cursorY, Width: remaining}, AvailableSpace{Kind: Definite, Value: remaining})
		case node.Type == domdoc.ElementNode && node.TagName == "img":
			e.layoutImage(tree, el, node, input, Rect{X: cursorX, Y: cursorY, Width: remaining})
		default:
			// Other inline elements (span, a, ...) lay out their own
			// children as a nested inline run sharing the same line box.
			e.layoutBlockContainer(tree, el, rn, input, Rect{X: cursorX, Y: cursorY, Width: remaining})
		}

		box := el.Box.MarginBox()
		if box.Width > remaining && cursorX > cb.X {
			advanceLine()
			// Re-lay the box out at the fresh line's full width.
			remaining = cb.Width
			switch {
			case node.Type == domdoc.TextNode:
				e.layoutText(tree, el, node.Text, input, Rect{X: cursorX, Y: cursorY, Width: remaining}, AvailableSpace{Kind: Definite, Value: remaining})
			case node.Type == domdoc.ElementNode && node.TagName == "img":
				e.layoutImage(tree, el, node, input, Rect{X: cursorX, Y: cursorY, Width: remaining})
			default:
				el.Children = nil // discard the first pass's children before relaying this box out
				e.layoutBlockContainer(tree, el, rn, input, Rect{X: cursorX, Y: cursorY, Width: remaining})
			}
			box = el.Box.MarginBox()
		}

		anon.Children = append(anon.Children, id)

		cursorX += box.Width
		if box.Height > lineHeight {
			lineHeight = box.Height
		}
		if cursorX-cb.X > maxLineWidth {
			maxLineWidth = cursorX - cb.X
		}
	}
	cursorY += lineHeight // account for the last, not-yet-advanced line

	anon.Box.BorderBox.Height = cursorY - cb.Y
	return anon.Box.BorderBox.Height
}

// layoutText measures text against the text backend and fills in el's
// box model and ContextText (§4.3 step 2/3).
func (e *Engine) layoutText(tree *LayoutTree, el *LayoutElementNode, text string, input styleconv.LayoutInput, cb Rect, avail AvailableSpace) {
	font := textbackend.FontInfo{
		Family:     input.FontFamily,
		Size:       input.FontSize,
		Weight:     input.FontWeight,
		LineHeight: input.LineHeight,
	}

	maxWidth := avail.ResolvedWidth()
	if cb.Width > 0 && (avail.Kind != Definite || cb.Width < maxWidth) {
		maxWidth = cb.Width
	}

	w, h := 0.0, 0.0
	if e.Text != nil {
		mw, mh, err := e.Text.Measure(text, font, maxWidth, input.TextAlign)
		if err == nil {
			w, h = mw, mh
		}
	}

	lineHeight := font.LineHeight
	if lineHeight <= 0 {
		lineHeight = font.Size
	}
	el.Context = ElementContext{Kind: ContextText, Font: font, Text: text, TextOffset: (lineHeight - font.Size) / 2}
	el.Box = BoxModel{BorderBox: Rect{X: cb.X, Y: cb.Y, Width: w, Height: h}}
}

// layoutImage resolves an <img>'s rendered size — explicit width/height
// win, otherwise the media store's intrinsic size is used (§4.3 step
// on Image context; §4.8 for the store itself).
func (e *Engine) layoutImage(tree *LayoutTree, el *LayoutElementNode, node *domdoc.Node, input styleconv.LayoutInput, cb Rect) {
	src, _ := node.GetAttribute("src")

	var intrinsicW, intrinsicH float64
	var mediaId media.Id
	if e.Media != nil && src != "" {
		id, err := e.Media.Load(src)
		if err == nil {
			mediaId = id
			m := e.Media.Get(id, media.KindImage)
			iw, ih := m.IntrinsicSize()
			intrinsicW, intrinsicH = float64(iw), float64(ih)
		}
	}

	w := intrinsicW
	h := intrinsicH
	if input.Width.Kind == styleconv.SizePixels {
		w = input.Width.Value
	}
	if input.Height.Kind == styleconv.SizePixels {
		h = input.Height.Value
	}
	if input.Width.Kind == styleconv.SizePixels && input.Height.Kind != styleconv.SizePixels && intrinsicW > 0 {
		h = w * intrinsicH / intrinsicW
	}
	if input.Height.Kind == styleconv.SizePixels && input.Width.Kind != styleconv.SizePixels && intrinsicH > 0 {
		w = h * intrinsicW / intrinsicH
	}

	el.Context = ElementContext{
		Kind:       ContextImage,
		Src:        src,
		MediaId:    mediaId,
		IntrinsicW: intrinsicW,
		IntrinsicH: intrinsicH,
	}
	el.Box = BoxModel{BorderBox: Rect{X: cb.X, Y: cb.Y, Width: w, Height: h}}
}
