package layout

import "sync/atomic"

// ElementId is an opaque identifier for a LayoutElementNode, stable for
// the lifetime of the owning LayoutTree.
type ElementId uint64

type idAllocator struct{ next uint64 }

func (a *idAllocator) nextId() ElementId {
	return ElementId(atomic.AddUint64(&a.next, 1))
}
