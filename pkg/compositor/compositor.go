// Package compositor blits cached tile textures onto an output surface
// in ascending layer order (spec §4.9). It never rasterizes — a missing
// texture is logged and skipped, not an error.
package compositor

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/texture"
	"github.com/gosub-io/poc-pipeline/pkg/tile"
)

// Compositor draws a frame by walking visible layers bottom to top and
// blitting each layer's intersecting tile textures into place, grounded
// on the teacher's top-level Render loop generalized from "paint boxes
// directly" to "blit cached tile textures."
type Compositor struct {
	Tiles    *tile.TileList
	Layers   *layer.LayerList
	Textures *texture.Store
	Log      *pipelog.Logger
}

func New(tiles *tile.TileList, layers *layer.LayerList, textures *texture.Store, log *pipelog.Logger) *Compositor {
	return &Compositor{Tiles: tiles, Layers: layers, Textures: textures, Log: log}
}

// Compose draws every tile intersecting viewport, across the given
// visible layers (ascending Order), onto a freshly allocated RGBA
// surface sized to viewport. tileTextures maps a rasterized tile to its
// current TextureId; it is supplied by the pipeline rather than stored
// on TileList itself, keeping the tile/texture binding pipeline-owned.
func (c *Compositor) Compose(visible []layer.LayerId, viewport layout.Rect, tileTextures map[tile.TileId]texture.Id) *image.RGBA {
	surface := image.NewRGBA(image.Rect(0, 0, int(viewport.Width), int(viewport.Height)))

	visibleSet := make(map[layer.LayerId]bool, len(visible))
	for _, id := range visible {
		visibleSet[id] = true
	}

	for _, l := range c.Layers.Layers() {
		if !visibleSet[l.Id] {
			continue
		}
		for _, tid := range c.Tiles.GetIntersectingTiles(l.Id, viewport) {
			c.blitTile(surface, viewport, tid, tileTextures)
		}
	}
	return surface
}

func (c *Compositor) blitTile(surface *image.RGBA, viewport layout.Rect, tid tile.TileId, tileTextures map[tile.TileId]texture.Id) {
	t, ok := c.Tiles.Tile(tid)
	if !ok {
		return
	}
	texId, ok := tileTextures[tid]
	if !ok {
		c.Log.Warn("compositor: no texture for tile, skipping", "tile", tid)
		return
	}
	tex, ok := c.Textures.Get(texId)
	if !ok {
		c.Log.Warn("compositor: texture evicted, skipping", "tile", tid, "texture", texId)
		return
	}

	src := &image.RGBA{Pix: tex.Pix, Stride: tex.Width * 4, Rect: image.Rect(0, 0, tex.Width, tex.Height)}
	dstX := int(t.Rect.X - viewport.X)
	dstY := int(t.Rect.Y - viewport.Y)
	draw.Draw(surface, image.Rect(dstX, dstY, dstX+tex.Width, dstY+tex.Height), src, image.Point{}, draw.Over)
}
