package layout

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

// Engine turns a render tree into a LayoutTree (spec §4.3). It is the
// one place in the pipeline that calls out to both the text backend and
// the media store, since both are needed to size leaf content.
type Engine struct {
	Text  textbackend.Backend
	Media *media.Store
}

// New builds a layout engine over the given text and media collaborators.
func New(text textbackend.Backend, mediaStore *media.Store) *Engine {
	return &Engine{Text: text, Media: mediaStore}
}

// Layout computes box models for every visible node in rt, assuming a
// viewport of viewportWidth CSS pixels (§4.3 step 5: the root element is
// laid out against the viewport as its containing block).
func (e *Engine) Layout(rt *rendertree.RenderTree, viewportWidth float64) *LayoutTree {
	tree := newTree(rt, rt.Doc)
	rootId, ok := rt.Root()
	if !ok {
		return tree
	}

	cb := Rect{Width: viewportWidth}
	id, _ := e.layoutNode(tree, rootId, cb, AvailableSpace{Kind: Definite, Value: viewportWidth})
	tree.root = id
	tree.has = true
	tree.RootDimension = tree.MustNode(id).Box.MarginBox()
	return tree
}

// layoutNode lays out one render node (and its subtree) against a
// containing block cb, returning the element id and its outer (margin
// box) height so the caller can stack siblings.
func (e *Engine) layoutNode(tree *LayoutTree, rnId rendertree.RenderNodeId, cb Rect, avail AvailableSpace) (ElementId, float64) {
	rn := tree.Render.MustNode(rnId)
	node := tree.Doc.MustNode(rn.NodeId)
	input := styleconv.Convert(node.EffectiveStyle())

	id := tree.alloc_()
	el := &LayoutElementNode{Id: id, NodeId: rn.NodeId, RenderNodeId: rnId, Input: input}
	tree.nodes[id] = el

	switch node.Type {
	case domdoc.TextNode:
		e.layoutText(tree, el, node.Text, input, cb, avail)
		return id, el.Box.MarginBox().Height
	case domdoc.ElementNode:
		if node.TagName == "img" {
			e.layoutImage(tree, el, node, input, cb)
			return id, el.Box.MarginBox().Height
		}
	}

	if input.Display == domdoc.DisplayFlex {
		e.layoutFlexContainer(tree, el, rn, input, cb)
	} else {
		e.layoutBlockContainer(tree, el, rn, input, cb)
	}
	return id, el.Box.MarginBox().Height
}

// resolveWidth picks the border-box width for an element given its
// containing block, honoring an explicit width/percentage or falling
// back to filling the containing block (the common block default).
func resolveWidth(input styleconv.LayoutInput, cb Rect, margin, border, padding Edges) float64 {
	switch input.Width.Kind {
	case styleconv.SizePixels:
		return contentToBorderWidth(input, input.Width.Value, border, padding)
	case styleconv.SizePercent:
		return contentToBorderWidth(input, cb.Width*input.Width.Value/100, border, padding)
	default:
		return cb.Width - margin.Horizontal()
	}
}

func contentToBorderWidth(input styleconv.LayoutInput, w float64, border, padding Edges) float64 {
	if input.BoxSizing == styleconv.BoxSizingBorderBox {
		return w
	}
	return w + border.Horizontal() + padding.Horizontal()
}

func resolveHeightIfSet(input styleconv.LayoutInput, cb Rect, border, padding Edges) (float64, bool) {
	switch input.Height.Kind {
	case styleconv.SizePixels:
		h := input.Height.Value
		if input.BoxSizing != styleconv.BoxSizingBorderBox {
			h += border.Vertical() + padding.Vertical()
		}
		return h, true
	case styleconv.SizePercent:
		if cb.Height <= 0 {
			return 0, false
		}
		h := cb.Height * input.Height.Value / 100
		if input.BoxSizing != styleconv.BoxSizingBorderBox {
			h += border.Vertical() + padding.Vertical()
		}
		return h, true
	default:
		return 0, false
	}
}

func edgeToPixels(e styleconv.Edge, basis float64) Edges {
	return Edges{
		Top:    edgeValuePixels(e.Top, basis),
		Right:  edgeValuePixels(e.Right, basis),
		Bottom: edgeValuePixels(e.Bottom, basis),
		Left:   edgeValuePixels(e.Left, basis),
	}
}

func edgeValuePixels(v styleconv.EdgeValue, basis float64) float64 {
	switch v.Kind {
	case styleconv.EdgePixels:
		return v.Value
	case styleconv.EdgePercent:
		return basis * v.Value / 100
	default:
		return 0
	}
}
