package compositor_test

import (
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/compositor"
	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
	"github.com/gosub-io/poc-pipeline/pkg/texture"
	"github.com/gosub-io/poc-pipeline/pkg/tile"
)

type stubBackend struct{}

func (stubBackend) Measure(text string, font textbackend.FontInfo, maxWidth float64, align domdoc.TextAlign) (float64, float64, error) {
	return float64(len(text)) * 6, 12, nil
}

func (stubBackend) Paint(canvas *gg.Context, text string, font textbackend.FontInfo, maxWidth float64, align domdoc.TextAlign, brush textbackend.Brush, at textbackend.Point) error {
	return nil
}

func buildAll(t *testing.T, src string) (*layout.LayoutTree, *layer.LayerList, *tile.TileList) {
	t.Helper()
	doc, err := domdoc.ParseDocument([]byte(src))
	require.NoError(t, err)
	rt := rendertree.Build(doc)
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	eng := layout.New(stubBackend{}, store)
	lt := eng.Layout(rt, 300)
	ll := layer.Build(lt, nil)
	tl := tile.Build(lt, ll, 256, 256)
	return lt, ll, tl
}

func TestCompose_MissingTextureIsSkippedNotFatal(t *testing.T) {
	lt, ll, tl := buildAll(t, `{"tag": "div", "styles": {"display":"block","width":"50px","height":"50px"}, "children": []}`)
	texStore := texture.NewStore()
	comp := compositor.New(tl, ll, texStore, pipelog.Nop())

	surface := comp.Compose([]layer.LayerId{layer.DefaultLayerId}, lt.RootDimension, map[tile.TileId]texture.Id{})
	require.NotNil(t, surface)
	require.Equal(t, int(lt.RootDimension.Width), surface.Bounds().Dx())
}

func TestCompose_BlitsKnownTileTexture(t *testing.T) {
	lt, ll, tl := buildAll(t, `{"tag": "div", "styles": {"display":"block","width":"50px","height":"50px"}, "children": []}`)
	texStore := texture.NewStore()
	comp := compositor.New(tl, ll, texStore, pipelog.Nop())

	tiles := tl.GetIntersectingTiles(layer.DefaultLayerId, lt.RootDimension)
	require.NotEmpty(t, tiles)
	tileObj, _ := tl.Tile(tiles[0])

	w, h := int(tileObj.Rect.Width), int(tileObj.Rect.Height)
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 10, 20, 30, 255
	}
	texId := texStore.Add(&texture.Texture{Width: w, Height: h, Pix: pix})

	surface := comp.Compose([]layer.LayerId{layer.DefaultLayerId}, lt.RootDimension, map[tile.TileId]texture.Id{tiles[0]: texId})
	got := surface.RGBAAt(int(tileObj.Rect.X)+1, int(tileObj.Rect.Y)+1)
	require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, got)
}
