package tile_test

import (
	"sort"
	"testing"

	"github.com/fogleman/gg"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
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

func buildTree() *layout.LayoutTree {
	doc, err := domdoc.ParseDocument([]byte(`{"tag": "div", "styles": {"display":"block", "width":"500px", "height":"500px"}, "children": [
		{"tag": "div", "styles": {"display":"block", "width": "300px", "height": "300px"}, "children": []}
	]}`))
	if err != nil {
		panic(err)
	}
	rt := rendertree.Build(doc)
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	eng := layout.New(stubBackend{}, store)
	return eng.Layout(rt, 500)
}

func TestBuild_PartitionsIntoGridCoveringRoot(t *testing.T) {
	tree := buildTree()
	ll := layer.Build(tree, nil)
	tl := tile.Build(tree, ll, 256, 256)

	tiles := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	require.Len(t, tiles, 4, "ceil(500/256)=2 in each dimension")
}

func TestBuild_ElementIntersectingMultipleTilesAppearsInEach(t *testing.T) {
	tree := buildTree()
	ll := layer.Build(tree, nil)
	tl := tile.Build(tree, ll, 256, 256)

	rootId, _ := tree.Root()
	tiles := tl.GetTilesForElement(rootId)
	require.Len(t, tiles, 4, "the 500x500 root spans all four tiles")
}

func TestInvalidateTile_SetsStateDirty(t *testing.T) {
	tree := buildTree()
	ll := layer.Build(tree, nil)
	tl := tile.Build(tree, ll, 256, 256)

	ids := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	require.NotEmpty(t, ids)
	tl.MarkRasterized(ids[0], true)
	require.Equal(t, tile.Clean, mustTile(t, tl, ids[0]).State())

	tl.InvalidateTile(ids[0])
	require.Equal(t, tile.Dirty, mustTile(t, tl, ids[0]).State())
}

func TestBuild_GridRectsMatchExpectedLayout(t *testing.T) {
	tree := buildTree()
	ll := layer.Build(tree, nil)
	tl := tile.Build(tree, ll, 256, 256)

	ids := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	var got []layout.Rect
	for _, id := range ids {
		tileObj, ok := tl.Tile(id)
		require.True(t, ok)
		got = append(got, tileObj.Rect)
	}
	sort.Slice(got, func(i, j int) bool {
		if got[i].Y != got[j].Y {
			return got[i].Y < got[j].Y
		}
		return got[i].X < got[j].X
	})

	want := []layout.Rect{
		{X: 0, Y: 0, Width: 256, Height: 256},
		{X: 256, Y: 0, Width: 256, Height: 256},
		{X: 0, Y: 256, Width: 256, Height: 256},
		{X: 256, Y: 256, Width: 256, Height: 256},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tile grid geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ZeroDimensionRootProducesNoTiles(t *testing.T) {
	doc, err := domdoc.ParseDocument([]byte(`{"tag": "div", "styles": {"display":"block", "width":"0px", "height":"0px"}, "children": []}`))
	require.NoError(t, err)
	rt := rendertree.Build(doc)
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	eng := layout.New(stubBackend{}, store)
	tree := eng.Layout(rt, 500)

	ll := layer.Build(tree, nil)
	tl := tile.Build(tree, ll, 1, 1)

	tiles := tl.GetIntersectingTiles(layer.DefaultLayerId, layout.Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	require.Empty(t, tiles, "a zero-dimension root must not produce a phantom tile")
}

func mustTile(t *testing.T, tl *tile.TileList, id tile.TileId) *tile.Tile {
	t.Helper()
	got, ok := tl.Tile(id)
	require.True(t, ok)
	return got
}
