// Package raster executes a tile's paint commands against a pixel
// surface and registers the result in the texture store (spec §4.7).
package raster

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"runtime"
	"sync"

	"github.com/fogleman/gg"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/paint"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/styleconv"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
	"github.com/gosub-io/poc-pipeline/pkg/texture"
	"github.com/gosub-io/poc-pipeline/pkg/tile"
)

// dashedPattern and dottedPattern are the stroke patterns spec §4.7
// names explicitly.
var (
	dashedPattern = []float64{50, 10, 10, 10}
	dottedPattern = []float64{10, 10}
)

// Rasterizer executes paint commands onto a gg surface, grounded on the
// teacher's render.go draw dispatch but targeting an intermediate
// command list instead of drawing DOM nodes directly.
type Rasterizer struct {
	Text    textbackend.Backend
	Media   *media.Store
	Texture *texture.Store
	Log     *pipelog.Logger
}

func New(text textbackend.Backend, mediaStore *media.Store, textureStore *texture.Store, log *pipelog.Logger) *Rasterizer {
	return &Rasterizer{Text: text, Media: mediaStore, Texture: textureStore, Log: log}
}

// Rasterize executes t's commands and registers the resulting pixels in
// the texture store, updating t's state to Clean or Unrenderable.
func (r *Rasterizer) Rasterize(t *tile.Tile, tl *tile.TileList, ll *layer.LayerList, tree *layout.LayoutTree, mode paint.Wireframe, existing texture.Id, hasExisting bool) (texture.Id, error) {
	cmds := paint.Paint(t, tree, ll, mode)

	w, h := int(t.Rect.Width), int(t.Rect.Height)
	if w <= 0 || h <= 0 {
		tl.MarkRasterized(t.Id, false)
		return 0, fmt.Errorf("raster: tile %d has non-positive size %dx%d", t.Id, w, h)
	}

	dc := gg.NewContext(w, h)
	dc.Push()
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Clip()

	var errs error
	for _, cmd := range cmds {
		if err := r.execute(dc, cmd, t.Rect); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	dc.Pop()

	if errs != nil {
		tl.MarkRasterized(t.Id, false)
		r.Log.Warn("tile rasterization failed", "tile", t.Id, "err", errs)
		return 0, errs
	}

	tex := &texture.Texture{Width: w, Height: h, Pix: imageToRGBA(dc.Image())}
	id := existing
	if hasExisting {
		r.Texture.Replace(existing, tex)
	} else {
		id = r.Texture.Add(tex)
	}
	tl.MarkRasterized(t.Id, true)
	return id, nil
}

// RasterizeDirty dispatches every dirty tile on the given layers to a
// worker pool (spec §5: "the rasterizer stage is the one component
// designed to be safely parallelizable per-tile"), grounded on the
// errgroup-based fan-out pattern and aggregating per-tile failures with
// multierr rather than aborting the whole batch on the first one.
func (r *Rasterizer) RasterizeDirty(ctx context.Context, tl *tile.TileList, ll *layer.LayerList, tree *layout.LayoutTree, mode paint.Wireframe, tileToTexture map[tile.TileId]texture.Id) error {
	var dirty []tile.TileId
	for _, l := range ll.Layers() {
		for _, id := range tl.GetIntersectingTiles(l.Id, tree.RootDimension) {
			t, ok := tl.Tile(id)
			if ok && t.State() == tile.Dirty {
				dirty = append(dirty, id)
			}
		}
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex // guards tileToTexture and errs
		errs error
	)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, id := range dirty {
		id := id
		g.Go(func() error {
			t, ok := tl.Tile(id)
			if !ok || ctx.Err() != nil {
				return nil
			}
			mu.Lock()
			existing, has := tileToTexture[id]
			mu.Unlock()
			texId, err := r.Rasterize(t, tl, ll, tree, mode, existing, has)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			tileToTexture[id] = texId
			return nil
		})
	}
	_ = g.Wait()
	return multierr.Append(errs, ctx.Err())
}

func (r *Rasterizer) execute(dc *gg.Context, cmd paint.Command, tileRect layout.Rect) error {
	x := cmd.Rect.X - tileRect.X
	y := cmd.Rect.Y - tileRect.Y

	switch cmd.Kind {
	case paint.CommandRectangle:
		return r.drawRectangle(dc, cmd, x, y)
	case paint.CommandText:
		return r.drawText(dc, cmd, x, y)
	case paint.CommandImage:
		return r.drawImage(dc, cmd, x, y)
	case paint.CommandSvg:
		return r.drawSvg(dc, cmd, x, y)
	default:
		return nil
	}
}

func (r *Rasterizer) drawRectangle(dc *gg.Context, cmd paint.Command, x, y float64) error {
	w, h := cmd.Rect.Width, cmd.Rect.Height
	if cmd.Background != nil {
		setBrush(dc, *cmd.Background)
		drawRoundedRect(dc, x, y, w, h, cmd.CornerRadius)
		dc.Fill()
	}
	strokeBorder(dc, cmd.BorderTop, x, y, x+w, y, 0, 1)
	strokeBorder(dc, cmd.BorderRight, x+w, y, x+w, y+h, -1, 0)
	strokeBorder(dc, cmd.BorderBottom, x, y+h, x+w, y+h, 0, -1)
	strokeBorder(dc, cmd.BorderLeft, x, y, x, y+h, 1, 0)
	return nil
}

// strokeBorder draws one edge. nx/ny is the unit normal pointing inward
// (toward the rect's interior), used to offset the second stroke of a
// double border without the caller having to know the rect's center.
func strokeBorder(dc *gg.Context, b paint.Border, x0, y0, x1, y1, nx, ny float64) {
	if b.Width <= 0 || b.Style == styleconv.BorderNone || b.Style == styleconv.BorderHidden {
		return
	}
	setBrush(dc, b.Brush)
	dc.SetLineWidth(b.Width)

	switch b.Style {
	case styleconv.BorderDashed:
		dc.SetDash(dashedPattern...)
	case styleconv.BorderDotted:
		dc.SetDash(dottedPattern...)
	case styleconv.BorderDouble:
		if b.Width >= 3 {
			outer := math.Floor(b.Width / 2)
			dc.SetDash()
			dc.SetLineWidth(outer)
			dc.DrawLine(x0, y0, x1, y1)
			dc.Stroke()
			inset := outer + 1
			dc.DrawLine(x0+nx*inset, y0+ny*inset, x1+nx*inset, y1+ny*inset)
			dc.Stroke()
			return
		}
		dc.SetDash()
	default:
		dc.SetDash()
	}
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
	dc.SetDash()
}

func drawRoundedRect(dc *gg.Context, x, y, w, h float64, r paint.Radius) {
	if r.TopLeft == 0 && r.TopRight == 0 && r.BottomRight == 0 && r.BottomLeft == 0 {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	// gg only supports a single uniform radius natively; average the
	// four corner radii rather than drawing four distinct arcs, a
	// pragmatic approximation the teacher's renderer accepts too for
	// small radius deltas.
	avg := (r.TopLeft + r.TopRight + r.BottomRight + r.BottomLeft) / 4
	dc.DrawRoundedRectangle(x, y, w, h, avg)
}

func setBrush(dc *gg.Context, b paint.Brush) {
	if b.Kind == paint.BrushSolid {
		dc.SetRGBA255(int(b.Color.R), int(b.Color.G), int(b.Color.B), int(b.Color.A))
	}
}

func (r *Rasterizer) drawText(dc *gg.Context, cmd paint.Command, x, y float64) error {
	if r.Text == nil {
		return nil
	}
	font := textbackend.FontInfo{
		Family: cmd.FontFamily, Size: cmd.FontSize, Weight: cmd.FontWeight, LineHeight: cmd.LineHeight,
	}
	brush := textbackend.Brush{R: cmd.Brush.Color.R, G: cmd.Brush.Color.G, B: cmd.Brush.Color.B, A: cmd.Brush.Color.A}
	return r.Text.Paint(dc, cmd.Text, font, cmd.Rect.Width, cmd.Align, brush, textbackend.Point{X: x, Y: y})
}

func (r *Rasterizer) drawImage(dc *gg.Context, cmd paint.Command, x, y float64) error {
	if r.Media == nil {
		return nil
	}
	m := r.Media.Get(cmd.MediaId, media.KindImage)
	if m.Image == nil {
		return nil
	}
	img := m.Image
	iw, ih := m.IntrinsicSize()
	if iw != int(cmd.Rect.Width) || ih != int(cmd.Rect.Height) {
		img = media.Resized(img, int(cmd.Rect.Width), int(cmd.Rect.Height))
	}
	dc.DrawImage(img, int(x), int(y))
	return nil
}

func (r *Rasterizer) drawSvg(dc *gg.Context, cmd paint.Command, x, y float64) error {
	if r.Media == nil {
		return nil
	}
	m := r.Media.Get(cmd.MediaId, media.KindSvg)
	img, err := m.RasterizedSvg(int(cmd.Rect.Width), int(cmd.Rect.Height))
	if err != nil {
		return fmt.Errorf("raster: svg %d: %w", cmd.MediaId, err)
	}
	dc.DrawImage(img, int(x), int(y))
	return nil
}

func imageToRGBA(img image.Image) []byte {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba.Pix
}
