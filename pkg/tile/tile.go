// Package tile partitions each layer into a fixed grid of tiles (spec
// §4.5): the unit of caching, invalidation, and rasterization.
package tile

import (
	"math"
	"sync"

	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
)

// TileId is an opaque handle, stable within one TileList.
type TileId uint64

// State is a tile's position in the Dirty→Clean→Unrenderable machine.
type State int

const (
	Dirty State = iota
	Clean
	Unrenderable
)

// TiledElement records one layout element's fragment within a tile,
// per §4.5's position/clipped_rect formulas.
type TiledElement struct {
	ElementId   layout.ElementId
	ClippedRect layout.Rect // element-local: offset from the element's margin-box origin
	Position    layout.Rect // tile-local: where the fragment begins within the tile (only X/Y are set; Width/Height stay zero)
}

// Tile is one fixed-size cell of a layer's grid.
type Tile struct {
	Id       TileId
	LayerId  layer.LayerId
	Col, Row int
	Rect     layout.Rect

	mu       sync.Mutex
	state    State
	Elements []TiledElement
}

func (t *Tile) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tile) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// TileList partitions every layer of a LayerList into a tw×th grid and
// indexes which elements intersect which tiles.
type TileList struct {
	Width, Height float64 // tile dimensions in CSS pixels

	tiles     map[TileId]*Tile
	byLayer   map[layer.LayerId][]TileId
	byElement map[layout.ElementId][]TileId
	next      uint64
}

// Build partitions ll's layers against tree's root dimension into a
// tw×th grid and assigns every visible element to the tiles its
// margin-box intersects.
func Build(tree *layout.LayoutTree, ll *layer.LayerList, tw, th float64) *TileList {
	list := &TileList{
		Width: tw, Height: th,
		tiles:     make(map[TileId]*Tile),
		byLayer:   make(map[layer.LayerId][]TileId),
		byElement: make(map[layout.ElementId][]TileId),
	}

	root := tree.RootDimension
	// A zero-dimension root must not produce a phantom tw×th tile: an
	// empty grid, not a single tile sized to the configured tile
	// dimension instead of the root's actual (zero) size.
	if root.Width <= 0 || root.Height <= 0 {
		return list
	}
	cols := int(math.Ceil(root.Width / tw))
	rows := int(math.Ceil(root.Height / th))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	for _, l := range ll.Layers() {
		grid := make([]*Tile, 0, cols*rows)
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				list.next++
				id := TileId(list.next)
				tl := &Tile{
					Id: id, LayerId: l.Id, Col: col, Row: row,
					Rect: layout.Rect{X: float64(col) * tw, Y: float64(row) * th, Width: tw, Height: th},
				}
				list.tiles[id] = tl
				grid = append(grid, tl)
				list.byLayer[l.Id] = append(list.byLayer[l.Id], id)
			}
		}

		for _, elId := range l.Elements {
			node, ok := tree.Node(elId)
			if !ok {
				continue
			}
			m := node.Box.MarginBox()
			for _, tl := range grid {
				te, intersects := intersect(tl.Rect, m)
				if !intersects {
					continue
				}
				te.ElementId = elId
				tl.Elements = append(tl.Elements, te)
				list.byElement[elId] = append(list.byElement[elId], tl.Id)
			}
		}
	}

	return list
}

// intersect computes the TiledElement fragment of margin-box m that
// falls inside tile rect t, per §4.5's position/clipped_rect formulas.
func intersect(t, m layout.Rect) (TiledElement, bool) {
	ix0 := math.Max(t.X, m.X)
	iy0 := math.Max(t.Y, m.Y)
	ix1 := math.Min(t.X+t.Width, m.X+m.Width)
	iy1 := math.Min(t.Y+t.Height, m.Y+m.Height)
	if ix1 <= ix0 || iy1 <= iy0 {
		return TiledElement{}, false
	}
	return TiledElement{
		Position:    layout.Rect{X: ix0 - t.X, Y: iy0 - t.Y},
		ClippedRect: layout.Rect{X: ix0 - m.X, Y: iy0 - m.Y, Width: ix1 - ix0, Height: iy1 - iy0},
	}, true
}

// Tile looks up a tile by id.
func (l *TileList) Tile(id TileId) (*Tile, bool) {
	t, ok := l.tiles[id]
	return t, ok
}

// GetIntersectingTiles returns every tile on layerId whose rect
// intersects viewport.
func (l *TileList) GetIntersectingTiles(layerId layer.LayerId, viewport layout.Rect) []TileId {
	var out []TileId
	for _, id := range l.byLayer[layerId] {
		t := l.tiles[id]
		if rectsIntersect(t.Rect, viewport) {
			out = append(out, id)
		}
	}
	return out
}

func rectsIntersect(a, b layout.Rect) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X && a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// InvalidateTile marks one tile Dirty.
func (l *TileList) InvalidateTile(id TileId) {
	if t, ok := l.tiles[id]; ok {
		t.setState(Dirty)
	}
}

// InvalidateAll marks every tile Dirty (e.g. after a layout pass).
func (l *TileList) InvalidateAll() {
	for _, t := range l.tiles {
		t.setState(Dirty)
	}
}

// GetTilesForElement is the inverse index: which tiles would need
// re-rasterizing if elId's content changed.
func (l *TileList) GetTilesForElement(elId layout.ElementId) []TileId {
	return l.byElement[elId]
}

// MarkRasterized records the outcome of rasterizing a tile: Clean on
// success, Unrenderable on a backend refusal that invalidation alone
// won't fix until retried.
func (l *TileList) MarkRasterized(id TileId, ok bool) {
	t, found := l.tiles[id]
	if !found {
		return
	}
	if ok {
		t.setState(Clean)
	} else {
		t.setState(Unrenderable)
	}
}
