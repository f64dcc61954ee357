package textbackend_test

import (
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

func backend() *textbackend.GGBackend {
	// No bundled font file in this environment — Measure/Paint exercise
	// the estimate fallback path, which is deterministic given the same
	// inputs regardless of whether a real face loads.
	return textbackend.NewGGBackend(textbackend.FontPaths{
		Regular: "/nonexistent/regular.ttf",
		Bold:    "/nonexistent/bold.ttf",
	})
}

func TestGGBackend_MeasureIsDeterministic(t *testing.T) {
	b := backend()
	font := textbackend.FontInfo{Family: "Sans", Size: 16}

	w1, h1, err := b.Measure("Hello World", font, 1_000_000, domdoc.TextAlignLeft)
	require.NoError(t, err)
	w2, h2, err := b.Measure("Hello World", font, 1_000_000, domdoc.TextAlignLeft)
	require.NoError(t, err)

	require.Equal(t, w1, w2)
	require.Equal(t, h1, h2)
	require.Greater(t, w1, 0.0)
	require.Greater(t, h1, 0.0)
}

func TestGGBackend_MeasureMinContentIsZeroWidth(t *testing.T) {
	b := backend()
	font := textbackend.FontInfo{Family: "Sans", Size: 16}

	w, _, err := b.Measure("Hello World", font, 0, domdoc.TextAlignLeft)
	require.NoError(t, err)
	require.Equal(t, 0.0, w)
}

func TestGGBackend_MeasureLongerTextIsWider(t *testing.T) {
	b := backend()
	font := textbackend.FontInfo{Family: "Sans", Size: 16}

	wShort, _, err := b.Measure("Hi", font, 1_000_000, domdoc.TextAlignLeft)
	require.NoError(t, err)
	wLong, _, err := b.Measure("Hi there, this is a much longer string", font, 1_000_000, domdoc.TextAlignLeft)
	require.NoError(t, err)

	require.Greater(t, wLong, wShort)
}

func TestGGBackend_PaintReturnsFontLoadError(t *testing.T) {
	b := backend()
	font := textbackend.FontInfo{Family: "Sans", Size: 16}

	canvas := gg.NewContext(100, 100)
	err := b.Paint(canvas, "hello", font, 100, domdoc.TextAlignLeft, textbackend.Brush{A: 255}, textbackend.Point{})
	require.Error(t, err)
}
