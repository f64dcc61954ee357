package pipeline_test

import (
	"context"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/pipeline"
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

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	return pipeline.New(pipeline.DefaultConfig(), stubBackend{}, store, pipelog.Nop(), layout.Rect{Width: 300, Height: 300})
}

func TestLoadDocument_BuildsLayoutLayersAndTiles(t *testing.T) {
	p := newPipeline(t)
	err := p.LoadDocument([]byte(`{"tag": "p", "styles": {"display":"block"}, "children": [{"text": "hi"}]}`), 300)
	require.NoError(t, err)
	require.NotNil(t, p.Layout)
	require.NotEmpty(t, p.Layers.Layers())
	require.NotNil(t, p.Tiles)
}

func TestDrawFrame_ProducesNonNilSurface(t *testing.T) {
	p := newPipeline(t)
	require.NoError(t, p.LoadDocument([]byte(`{"tag": "div", "styles": {"display":"block","width":"40px","height":"40px"}, "children": []}`), 300))

	frame, err := p.DrawFrame(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame.Surface)
	require.Equal(t, 300, frame.Surface.Bounds().Dx())
}

func TestDrawFrame_LeavesDefaultLayerTilesClean(t *testing.T) {
	p := newPipeline(t)
	require.NoError(t, p.LoadDocument([]byte(`{"tag": "div", "styles": {"display":"block","width":"40px","height":"40px"}, "children": []}`), 300))

	_, err := p.DrawFrame(context.Background())
	require.NoError(t, err)

	for _, id := range p.Tiles.GetIntersectingTiles(p.Layers.Layers()[0].Id, p.Layout.RootDimension) {
		tileObj, ok := p.Tiles.Tile(id)
		require.True(t, ok)
		require.Equal(t, tile.Clean, tileObj.State())
	}
}
