// Package browserstate is the process-wide, readers/writer-guarded
// interaction state (spec §4.10): visible layers, wireframe mode, hover,
// viewport, and the tile-grid diagnostic overlay flag. It is the one
// object the input handlers mutate directly and the draw callback reads
// through a single atomic Snapshot.
package browserstate

import (
	"sync"

	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/paint"
)

// Snapshot is a point-in-time, lock-free copy of State, handed to the
// draw callback per spec §5: "takes a read lock, snapshots what it
// needs... releases the lock before calling into paint/raster/composite."
type Snapshot struct {
	VisibleLayers map[layer.LayerId]bool
	Wireframe     paint.Wireframe
	HoverOnly     bool
	HoverElement  layout.ElementId
	HasHover      bool
	Viewport      layout.Rect
	ShowTileGrid  bool
}

// State is the process-wide singleton's backing store, grounded on the
// ad hoc viewport/hover/status fields the teacher kept directly on its
// window struct, lifted here into a reusable, lockable type so the
// pipeline and its tests can each construct their own instance.
type State struct {
	mu sync.RWMutex

	visibleLayers map[layer.LayerId]bool
	wireframe     paint.Wireframe
	hoverOnly     bool
	hoverElement  layout.ElementId
	hasHover      bool
	viewport      layout.Rect
	showTileGrid  bool
}

// New builds a state with the default layer visible and no hover. A
// layer id absent from the visibility map counts as hidden; the pipeline
// adds each newly built layer as visible.
func New(viewport layout.Rect) *State {
	return &State{
		visibleLayers: map[layer.LayerId]bool{layer.DefaultLayerId: true},
		viewport:      viewport,
	}
}

// Snapshot copies out everything the draw callback needs and releases
// its lock before returning, so painting never runs while holding this
// lock (spec §5 lock-ordering rule).
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layers := make(map[layer.LayerId]bool, len(s.visibleLayers))
	for k, v := range s.visibleLayers {
		layers[k] = v
	}
	return Snapshot{
		VisibleLayers: layers,
		Wireframe:     s.wireframe,
		HoverOnly:     s.hoverOnly,
		HoverElement:  s.hoverElement,
		HasHover:      s.hasHover,
		Viewport:      s.viewport,
		ShowTileGrid:  s.showTileGrid,
	}
}

// ToggleLayer flips whether layer id is included in composition (the
// illustrative "digit keys 0-9 toggle visible layer i" input surface).
func (s *State) ToggleLayer(id layer.LayerId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibleLayers[id] = !s.visibleLayers[id]
}

// SetViewport updates the viewport rect. Per §4.10 this alone never
// invalidates tiles — only tile selection re-runs on the next frame.
func (s *State) SetViewport(r layout.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = r
}

// CycleWireframe advances None -> Both -> Only -> None (the "w" key).
func (s *State) CycleWireframe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.wireframe {
	case paint.WireframeNone:
		s.wireframe = paint.WireframeBoth
	case paint.WireframeBoth:
		s.wireframe = paint.WireframeOnly
	default:
		s.wireframe = paint.WireframeNone
	}
}

// ToggleHoverOnly flips the hover-only flag carried in Snapshot (the "d"
// key). Composition does not read the flag: every visible layer is
// composited whatever its value.
func (s *State) ToggleHoverOnly() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hoverOnly = !s.hoverOnly
}

// ToggleTileGrid flips the show-tile-grid flag carried in Snapshot (the
// "t" key). No tile-grid overlay is drawn from it.
func (s *State) ToggleTileGrid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showTileGrid = !s.showTileGrid
}

// SetHover records the currently hovered element, or clears it.
func (s *State) SetHover(id layout.ElementId, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hoverElement = id
	s.hasHover = ok
}

// VisibleLayerIds returns the currently visible layer ids in arbitrary
// order, a convenience over Snapshot for callers that only need this.
func (s Snapshot) VisibleLayerIds() []layer.LayerId {
	ids := make([]layer.LayerId, 0, len(s.VisibleLayers))
	for id, visible := range s.VisibleLayers {
		if visible {
			ids = append(ids, id)
		}
	}
	return ids
}
