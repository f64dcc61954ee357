package layout_test

import (
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/rendertree"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

// stubBackend is a deterministic text backend standing in for a real
// font so layout geometry is easy to assert on: every character is
// exactly one pixel wide, every line ten pixels tall.
type stubBackend struct{}

func (stubBackend) Measure(text string, font textbackend.FontInfo, maxWidth float64, align domdoc.TextAlign) (float64, float64, error) {
	return float64(len(text)), 10, nil
}

func (stubBackend) Paint(canvas *gg.Context, text string, font textbackend.FontInfo, maxWidth float64, align domdoc.TextAlign, brush textbackend.Brush, at textbackend.Point) error {
	return nil
}

func buildTree(t *testing.T, src string) *rendertree.RenderTree {
	t.Helper()
	doc, err := domdoc.ParseDocument([]byte(src))
	require.NoError(t, err)
	return rendertree.Build(doc)
}

func newEngine() *layout.Engine {
	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	return layout.New(stubBackend{}, store)
}

func TestLayout_BlockChildrenStackVertically(t *testing.T) {
	tree := buildTree(t, `{"tag": "div", "styles": {"display":"block"}, "children": [
		{"tag": "div", "styles": {"display":"block", "height": "10px"}, "children": []},
		{"tag": "div", "styles": {"display":"block", "height": "20px"}, "children": []}
	]}`)

	eng := newEngine()
	lt := eng.Layout(tree, 300)

	rootId, ok := lt.Root()
	require.True(t, ok)
	root := lt.MustNode(rootId)
	require.Len(t, root.Children, 2)

	first := lt.MustNode(root.Children[0])
	second := lt.MustNode(root.Children[1])
	require.Equal(t, 0.0, first.Box.BorderBox.Y)
	require.Equal(t, 10.0, first.Box.BorderBox.Height)
	require.Equal(t, first.Box.BorderBox.Bottom(), second.Box.BorderBox.Y)
}

func TestLayout_AdjoiningMarginsCollapse(t *testing.T) {
	tree := buildTree(t, `{"tag": "div", "styles": {"display":"block"}, "children": [
		{"tag": "div", "styles": {"display":"block", "height": "10px", "margin-bottom": "20px"}, "children": []},
		{"tag": "div", "styles": {"display":"block", "height": "5px", "margin-top": "30px"}, "children": []}
	]}`)

	eng := newEngine()
	lt := eng.Layout(tree, 300)
	root := lt.MustNode(mustRoot(t, lt))

	first := lt.MustNode(root.Children[0])
	second := lt.MustNode(root.Children[1])

	require.Equal(t, first.Box.BorderBox.Bottom()+30.0, second.Box.BorderBox.Y, "the larger of the two margins wins, they don't sum")
}

func TestLayout_ImgUsesIntrinsicSizeWhenUnstyled(t *testing.T) {
	tree := buildTree(t, `{"tag": "img", "attributes": {"src": "a.png"}, "styles": {}, "children": []}`)

	fetcher := media.FetcherFunc(func(src string) ([]byte, error) { return nil, nil })
	store := media.NewStore(fetcher, pipelog.Nop())
	eng := layout.New(stubBackend{}, store)

	lt := eng.Layout(tree, 300)
	root := lt.MustNode(mustRoot(t, lt))
	require.Equal(t, layout.ContextImage, root.Context.Kind)
}

func TestLayout_FlexRowPositionsChildrenLeftToRight(t *testing.T) {
	tree := buildTree(t, `{"tag": "div", "styles": {"display":"flex"}, "children": [
		{"tag": "div", "styles": {"display":"block", "width": "10px", "height": "10px"}, "children": []},
		{"tag": "div", "styles": {"display":"block", "width": "20px", "height": "10px"}, "children": []}
	]}`)

	eng := newEngine()
	lt := eng.Layout(tree, 300)
	root := lt.MustNode(mustRoot(t, lt))
	require.Len(t, root.Children, 2)

	a := lt.MustNode(root.Children[0])
	b := lt.MustNode(root.Children[1])
	require.Equal(t, 0.0, a.Box.BorderBox.X)
	require.InDelta(t, a.Box.BorderBox.Width, b.Box.BorderBox.X, 0.01)
}

func mustRoot(t *testing.T, lt *layout.LayoutTree) layout.ElementId {
	t.Helper()
	id, ok := lt.Root()
	require.True(t, ok)
	return id
}
