// Package pipeline wires the twelve components into the rebuild/draw
// control flow described in the overview: document -> render-tree ->
// layout -> layer list -> tile list, then on each draw: select
// intersecting tiles, paint, rasterize dirty tiles, composite.
//
// Grounded on cmd/louis14/main.go and cmd/l14open/main.go's top-level
// "parse -> layout -> render -> save" sequencing, generalized from a
// one-shot CLI pipeline into a stage-by-stage, rebuildable one.
package pipeline

import (
	"context"
	"image"

	"github.com/gosub-io/poc-pipeline/pkg/browserstate"
	"github.com/gosub-io/poc-pipeline/pkg/compositor"
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/paint"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/raster"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
	"github.com/gosub-io/poc-pipeline/pkg/texture"
	"github.com/gosub-io/poc-pipeline/pkg/tile"
)

// Antialiasing mirrors the backend-dependent quality knob named in §6's
// recognized configuration. The gg/rasterx backend this pipeline ships
// with does not distinguish between the three, but the knob is kept so
// alternate text/raster backends can read it.
type Antialiasing int

const (
	AntialiasingArea Antialiasing = iota
	AntialiasingMsaa8
	AntialiasingMsaa16
)

// Config is the configuration recognized by the pipeline (§6).
type Config struct {
	TileDimension     float64
	DefaultFontFamily string
	DefaultFontSize   float64
	Antialiasing      Antialiasing
	Wireframe         paint.Wireframe
	ShowTileGrid      bool
}

// DefaultConfig matches §6's stated defaults.
func DefaultConfig() Config {
	return Config{
		TileDimension:     256,
		DefaultFontFamily: "Sans",
		DefaultFontSize:   16,
		Antialiasing:      AntialiasingArea,
		Wireframe:         paint.WireframeNone,
	}
}

// Pipeline owns every shared object and stage collaborator, and drives
// the rebuild -> draw cycle. Fields are exported so callers (cmd/l14view's
// input handlers, tests) can reach into individual stages when needed.
type Pipeline struct {
	Config Config
	Log    *pipelog.Logger

	Text    textbackend.Backend
	Media   *media.Store
	Texture *texture.Store
	State   *browserstate.State

	Doc    *domdoc.Document
	Render *rendertree.RenderTree
	Layout *layout.LayoutTree
	Layers *layer.LayerList
	Tiles  *tile.TileList

	rasterizer   *raster.Rasterizer
	compositor   *compositor.Compositor
	tileTextures map[tile.TileId]texture.Id
}

// New builds a pipeline around an already-constructed text backend and
// shared caches (texture/media persist across rebuilds per the
// lifecycle note in §3: "TextureStore and MediaStore persist across
// pipeline rebuilds").
func New(cfg Config, text textbackend.Backend, mediaStore *media.Store, log *pipelog.Logger, viewport layout.Rect) *Pipeline {
	texStore := texture.NewStore()
	p := &Pipeline{
		Config:       cfg,
		Log:          log,
		Text:         text,
		Media:        mediaStore,
		Texture:      texStore,
		State:        browserstate.New(viewport),
		tileTextures: make(map[tile.TileId]texture.Id),
	}
	p.rasterizer = raster.New(text, mediaStore, texStore, log)
	return p
}

// LoadDocument parses doc and rebuilds render-tree, layout, layer list
// and tile list from scratch — the "Document changed" rebuild path from
// the lifecycle note. Viewport width drives the initial layout pass.
func (p *Pipeline) LoadDocument(docJSON []byte, viewportWidth float64) error {
	doc, err := domdoc.ParseDocument(docJSON)
	if err != nil {
		return err
	}
	p.Doc = doc
	return p.rebuild(viewportWidth)
}

// Relayout re-runs layout/layer/tile construction against a new
// viewport width without reparsing the document (the "viewport changed
// materially" rebuild path).
func (p *Pipeline) Relayout(viewportWidth float64) error {
	if p.Doc == nil {
		return nil
	}
	return p.rebuild(viewportWidth)
}

func (p *Pipeline) rebuild(viewportWidth float64) error {
	p.Render = rendertree.Build(p.Doc)
	eng := layout.New(p.Text, p.Media)
	p.Layout = eng.Layout(p.Render, viewportWidth)
	p.Layers = layer.Build(p.Layout, nil)
	// Layers the state has not seen before start out visible.
	known := p.State.Snapshot().VisibleLayers
	for _, l := range p.Layers.Layers() {
		if _, ok := known[l.Id]; !ok {
			p.State.ToggleLayer(l.Id)
		}
	}
	p.Tiles = tile.Build(p.Layout, p.Layers, p.Config.TileDimension, p.Config.TileDimension)
	p.compositor = compositor.New(p.Tiles, p.Layers, p.Texture, p.Log)
	// A fresh tile grid has no prior textures to carry forward.
	p.tileTextures = make(map[tile.TileId]texture.Id)
	return nil
}

// DrawFrame executes one full draw cycle: snapshot state, rasterize every
// dirty tile of every layer (hidden layers included), then composite the
// visible layers. Grounded on the
// draw-callback contract in §5: the BrowserState read lock is held only
// long enough to take the Snapshot, and released before paint/raster/
// composite run.
func (p *Pipeline) DrawFrame(ctx context.Context) (*Frame, error) {
	snap := p.State.Snapshot()

	if err := p.rasterizer.RasterizeDirty(ctx, p.Tiles, p.Layers, p.Layout, snap.Wireframe, p.tileTextures); err != nil {
		p.Log.Warn("pipeline: rasterization had failures", "err", err)
	}

	visible := snap.VisibleLayerIds()
	surface := p.compositor.Compose(visible, snap.Viewport, p.tileTextures)
	return &Frame{Surface: surface, Snapshot: snap}, nil
}

// Frame is the result of one DrawFrame call.
type Frame struct {
	Surface  *image.RGBA
	Snapshot browserstate.Snapshot
}
