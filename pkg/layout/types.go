// Package layout is the layouter (spec §4.3): it walks a render tree,
// converts each node's style into a LayoutInput (pkg/styleconv), and
// produces a LayoutTree whose every visible node has a computed
// BoxModel and whatever per-node context (measured text, resolved
// image dimensions) the paint/raster stages need downstream.
package layout

import (
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

// Rect is an axis-aligned rectangle in CSS pixels.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether (x, y) lies within r (inclusive of the
// top/left edge, exclusive of the bottom/right edge — so adjacent
// elements never both claim a shared boundary pixel).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Edges is a four-sided thickness quadruple (margin, border, or padding).
type Edges struct {
	Top, Right, Bottom, Left float64
}

func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// BoxModel is the four nested rectangles from spec §3: content-box ⊆
// padding-box ⊆ border-box ⊆ margin-box, derived from one border-box
// rect and three edge quadruples.
type BoxModel struct {
	BorderBox Rect
	Margin    Edges
	Border    Edges
	Padding   Edges
}

// PaddingBox is border-box shrunk by the border edges.
func (b BoxModel) PaddingBox() Rect {
	return Rect{
		X:      b.BorderBox.X + b.Border.Left,
		Y:      b.BorderBox.Y + b.Border.Top,
		Width:  b.BorderBox.Width - b.Border.Horizontal(),
		Height: b.BorderBox.Height - b.Border.Vertical(),
	}
}

// ContentBox is padding-box shrunk by the padding edges.
func (b BoxModel) ContentBox() Rect {
	p := b.PaddingBox()
	return Rect{
		X:      p.X + b.Padding.Left,
		Y:      p.Y + b.Padding.Top,
		Width:  p.Width - b.Padding.Horizontal(),
		Height: p.Height - b.Padding.Vertical(),
	}
}

// MarginBox is border-box expanded by the margin edges.
func (b BoxModel) MarginBox() Rect {
	return Rect{
		X:      b.BorderBox.X - b.Margin.Left,
		Y:      b.BorderBox.Y - b.Margin.Top,
		Width:  b.BorderBox.Width + b.Margin.Horizontal(),
		Height: b.BorderBox.Height + b.Margin.Vertical(),
	}
}

// ContextKind tags which variant of ElementContext is populated.
type ContextKind int

const (
	ContextNone ContextKind = iota
	ContextText
	ContextImage
	ContextSvg
)

// ElementContext is the tagged variant from spec §3 carrying per-node
// data that paint/raster need beyond the box model.
type ElementContext struct {
	Kind ContextKind

	// ContextText
	Font       textbackend.FontInfo
	Text       string
	TextOffset float64 // vertical offset for baseline centering, §4.3 step 2

	// ContextImage / ContextSvg
	Src               string
	MediaId           media.Id
	IntrinsicW        float64
	IntrinsicH        float64 // zero for SVG until layout constraints drive it
}

// LayoutElementNode is one node of the LayoutTree (spec §3).
type LayoutElementNode struct {
	Id           ElementId
	NodeId       domdoc.NodeId
	RenderNodeId rendertree.RenderNodeId
	Children     []ElementId
	Box          BoxModel
	Context      ElementContext
	Input        styleconv.LayoutInput

	// Anonymous is true for inline-container boxes synthesized by the
	// layouter itself (§4.3 step 1) — they have no backing DOM node.
	Anonymous bool
}

// AvailableSpace models how much room a node has to lay out in, along
// one axis (spec §4.3 step 3).
type AvailableSpaceKind int

const (
	Definite AvailableSpaceKind = iota
	MaxContent
	MinContent
)

type AvailableSpace struct {
	Kind  AvailableSpaceKind
	Value float64 // meaningful only when Kind == Definite
}

// maxContentWidth is the finite stand-in for "unbounded" the spec's
// open question asks implementers to pick (§9): large enough that no
// realistic document width approaches it, small enough gg's rasterizer
// and float64 arithmetic don't misbehave near it.
const maxContentWidth = 1_000_000.0

// ResolvedWidth returns the concrete max-width a text measurement call
// should use for this AvailableSpace (spec §4.3 step 3).
func (a AvailableSpace) ResolvedWidth() float64 {
	switch a.Kind {
	case Definite:
		return a.Value
	case MaxContent:
		return maxContentWidth
	case MinContent:
		return 0
	default:
		return maxContentWidth
	}
}

// LayoutTree wraps a RenderTree and the ElementId arena built over it.
type LayoutTree struct {
	Render *rendertree.RenderTree
	Doc    *domdoc.Document

	nodes map[ElementId]*LayoutElementNode
	root  ElementId
	has   bool
	alloc idAllocator

	// RootDimension is the root element's margin-box size (§4.3 step 5).
	RootDimension Rect
}

func newTree(rt *rendertree.RenderTree, doc *domdoc.Document) *LayoutTree {
	return &LayoutTree{Render: rt, Doc: doc, nodes: make(map[ElementId]*LayoutElementNode)}
}

func (t *LayoutTree) alloc_() ElementId { return t.alloc.nextId() }

// Node looks up an element by id.
func (t *LayoutTree) Node(id ElementId) (*LayoutElementNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// MustNode looks up an element by id and panics if missing — the id is
// expected to have been validated by a prior stage.
func (t *LayoutTree) MustNode(id ElementId) *LayoutElementNode {
	n, ok := t.nodes[id]
	if !ok {
		panic("layout: element not found in layout tree")
	}
	return n
}

// Root returns the layout tree root, if any.
func (t *LayoutTree) Root() (ElementId, bool) { return t.root, t.has }

// Walk visits every element in the tree in document order, parent
// before children.
func (t *LayoutTree) Walk(fn func(*LayoutElementNode)) {
	if !t.has {
		return
	}
	var visit func(ElementId)
	visit = func(id ElementId) {
		n := t.MustNode(id)
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(t.root)
}
