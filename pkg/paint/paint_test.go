package paint_test

import (
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/paint"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
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

func TestPaint_TextNodeEmitsTextCommand(t *testing.T) {
	lt, ll, tl := buildAll(t, `{"tag": "p", "styles": {"display":"block"}, "children": [{"text": "hi"}]}`)

	tiles := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 300, Height: 300})
	require.NotEmpty(t, tiles)
	tileObj, _ := tl.Tile(tiles[0])

	cmds := paint.Paint(tileObj, lt, ll, paint.WireframeNone)
	var sawText bool
	for _, c := range cmds {
		if c.Kind == paint.CommandText {
			sawText = true
			require.Equal(t, "hi", c.Text)
		}
	}
	require.True(t, sawText)
}

func TestPaint_RectSpansFullMarginBoxAcrossTiles(t *testing.T) {
	// A 400px-wide element over a 256px tile grid spans two tiles in x.
	// Each tile's command for that element must carry the full margin
	// box, not a fragment shrunk to the tile's clipped sub-rect, so the
	// rasterizer's own clip is what does the cropping.
	lt, ll, tl := buildAll(t, `{"tag": "div", "styles": {"display":"block", "width":"400px", "height":"40px"}, "children": []}`)

	rootId, _ := lt.Root()
	marginBox := lt.MustNode(rootId).Box.MarginBox()

	tileIds := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	require.GreaterOrEqual(t, len(tileIds), 2)

	var rects []layout.Rect
	for _, id := range tileIds {
		tileObj, ok := tl.Tile(id)
		require.True(t, ok)
		for _, c := range paint.Paint(tileObj, lt, ll, paint.WireframeNone) {
			if c.Kind == paint.CommandRectangle {
				rects = append(rects, c.Rect)
			}
		}
	}
	require.Len(t, rects, 2, "the element appears in both tiles it spans")
	for _, r := range rects {
		require.Equal(t, marginBox, r, "rect must be the full margin box, not a per-tile fragment")
	}
}

func TestPaint_WireframeOnlyEmitsOnlyBorders(t *testing.T) {
	lt, ll, tl := buildAll(t, `{"tag": "div", "styles": {"display":"block", "width":"50px", "height":"50px"}, "children": []}`)

	tiles := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 300, Height: 300})
	require.NotEmpty(t, tiles)
	tileObj, _ := tl.Tile(tiles[0])

	cmds := paint.Paint(tileObj, lt, ll, paint.WireframeOnly)
	for _, c := range cmds {
		require.Equal(t, paint.CommandRectangle, c.Kind)
		require.Nil(t, c.Background)
	}
}
