package layer_test

import (
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layer"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

type stubBackend struct{}

func (stubBackend) Measure(text string, font textbackend.FontInfo, maxWidth float64, align domdoc.TextAlign) (float64, float64, error) {
	return float64(len(text)), 10, nil
}

func (stubBackend) Paint(canvas *gg.Context, text string, font textbackend.FontInfo, maxWidth float64, align domdoc.TextAlign, brush textbackend.Brush, at textbackend.Point) error {
	return nil
}

func fakeTreeWithOneImage() *layout.LayoutTree {
	doc, err := domdoc.ParseDocument([]byte(`{"tag": "div", "styles": {"display":"block"}, "children": [
		{"tag": "p", "styles": {"display":"block"}, "children": [{"text": "hi"}]},
		{"tag": "img", "attributes": {"src": "a.png"}, "styles": {"width":"10px","height":"10px"}, "children": []}
	]}`))
	if err != nil {
		panic(err)
	}
	rt := rendertree.Build(doc)
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	eng := layout.New(stubBackend{}, store)
	return eng.Layout(rt, 300)
}

func TestBuild_PromotesImagesToOwnLayer(t *testing.T) {
	tree := fakeTreeWithOneImage()
	ll := layer.Build(tree, nil)

	layers := ll.Layers()
	require.Len(t, layers, 2, "default layer plus one promoted image layer")
	require.Equal(t, layer.DefaultLayerId, layers[0].Id)
}

func TestFindElementAt_PrefersTopmostLayer(t *testing.T) {
	tree := fakeTreeWithOneImage()
	ll := layer.Build(tree, nil)

	layers := ll.Layers()
	imgLayer := layers[len(layers)-1]
	require.Len(t, imgLayer.Elements, 1)
	imgId := imgLayer.Elements[0]
	imgBox := tree.MustNode(imgId).Box.BorderBox

	id, ok := ll.FindElementAt(imgBox.X+1, imgBox.Y+1)
	require.True(t, ok)
	require.Equal(t, imgId, id)
}

func TestFindElementAt_MissOutsideAnyBox(t *testing.T) {
	tree := fakeTreeWithOneImage()
	ll := layer.Build(tree, nil)

	_, ok := ll.FindElementAt(999, 999)
	require.False(t, ok)
}

func TestFindElementAt_HitsWithinMarginOutsideBorderBox(t *testing.T) {
	doc, err := domdoc.ParseDocument([]byte(`{"tag": "div", "styles": {"display":"block"}, "children": [
		{"tag": "div", "styles": {"display":"block", "width":"40px", "height":"40px", "margin-top":"20px", "margin-left":"20px"}, "children": []}
	]}`))
	require.NoError(t, err)
	rt := rendertree.Build(doc)
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	eng := layout.New(stubBackend{}, store)
	tree := eng.Layout(rt, 300)

	rootId, _ := tree.Root()
	divId := tree.MustNode(rootId).Children[0]
	div := tree.MustNode(divId)
	require.Greater(t, div.Box.BorderBox.X, 0.0, "margin-left should have pushed the border box right")
	require.Greater(t, div.Box.BorderBox.Y, 0.0, "margin-top should have pushed the border box down")

	ll := layer.Build(tree, nil)

	// A point inside the margin but outside the border box must still hit.
	id, ok := ll.FindElementAt(div.Box.BorderBox.X-5, div.Box.BorderBox.Y-5)
	require.True(t, ok)
	require.Equal(t, divId, id)
}
