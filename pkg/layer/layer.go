// Package layer groups a LayoutTree's elements into paint layers (spec
// §4.4): a default layer holding every element that is not promoted, plus one extra layer per
// element a PromotionPolicy decides should be promoted (images, by
// default — grounded on the teacher's stacking-context promotion,
// simplified down to the spec's narrower default policy).
package layer

import (
	"sort"

	"github.com/gosub-io/poc-pipeline/pkg/layout"
)

// LayerId is an opaque handle into a LayerList.
type LayerId uint64

// DefaultLayerId is always the bottom (order 0) layer.
const DefaultLayerId LayerId = 1

// Layer is an ordered collection of elements painted together, back to
// front relative to other layers.
type Layer struct {
	Id       LayerId
	Order    int
	Elements []layout.ElementId
}

// PromotionPolicy decides whether an element gets its own layer instead
// of joining the default one. The default policy promotes <img>
// elements; callers may substitute a richer stacking-context-aware
// policy without touching LayerList itself.
type PromotionPolicy func(tree *layout.LayoutTree, id layout.ElementId) bool

// DefaultPromotionPolicy promotes image elements (§4.4's stated default
// layer policy).
func DefaultPromotionPolicy(tree *layout.LayoutTree, id layout.ElementId) bool {
	node, ok := tree.Node(id)
	if !ok {
		return false
	}
	return node.Context.Kind == layout.ContextImage
}

// LayerList is the ordered set of layers built over a LayoutTree.
type LayerList struct {
	Tree   *layout.LayoutTree
	layers map[LayerId]*Layer
	order  []LayerId
	next   uint64
}

// Build walks tree in document order and assigns every element to a
// layer: the default layer, or a freshly promoted one per policy(id).
func Build(tree *layout.LayoutTree, policy PromotionPolicy) *LayerList {
	if policy == nil {
		policy = DefaultPromotionPolicy
	}
	ll := &LayerList{Tree: tree, layers: make(map[LayerId]*Layer), next: uint64(DefaultLayerId)}
	ll.layers[DefaultLayerId] = &Layer{Id: DefaultLayerId, Order: 0}
	ll.order = append(ll.order, DefaultLayerId)

	tree.Walk(func(n *layout.LayoutElementNode) {
		if policy(tree, n.Id) {
			ll.next++
			id := LayerId(ll.next)
			lyr := &Layer{Id: id, Order: 1, Elements: []layout.ElementId{n.Id}}
			ll.layers[id] = lyr
			ll.order = append(ll.order, id)
			return
		}
		def := ll.layers[DefaultLayerId]
		def.Elements = append(def.Elements, n.Id)
	})

	return ll
}

// Layers returns every layer, back to front.
func (ll *LayerList) Layers() []*Layer {
	out := make([]*Layer, len(ll.order))
	for i, id := range ll.order {
		out[i] = ll.layers[id]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Layer looks up a layer by id.
func (ll *LayerList) Layer(id LayerId) (*Layer, bool) {
	l, ok := ll.layers[id]
	return l, ok
}

// FindElementAt returns the topmost element whose margin box contains
// (x, y), searching layers front to back so a later (higher) layer
// wins over anything beneath it (§4.4 hit-testing).
func (ll *LayerList) FindElementAt(x, y float64) (layout.ElementId, bool) {
	layers := ll.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		for j := len(l.Elements) - 1; j >= 0; j-- {
			id := l.Elements[j]
			node, ok := ll.Tree.Node(id)
			if !ok {
				continue
			}
			if node.Box.MarginBox().Contains(x, y) {
				return id, true
			}
		}
	}
	return 0, false
}
