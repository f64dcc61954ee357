// Package textbackend is the text-shaping collaborator the spec leaves
// external (§1): a contract of measure+paint that the layouter and
// rasterizer call through, plus one concrete implementation built on
// github.com/fogleman/gg (the font/drawing library the teacher repo
// already depends on for exactly this purpose).
package textbackend

import (
	"github.com/fogleman/gg"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
)

// FontInfo is the font identity a measure/paint call is keyed on.
type FontInfo struct {
	Family     string
	Size       float64
	Weight     domdoc.FontWeight
	LineHeight float64 // 0 means "default to Size" (resolved by the caller)
}

// Brush mirrors paint.Brush's Solid variant for the narrow purpose of
// painting text — the text backend never needs an image brush.
type Brush struct {
	R, G, B, A uint8
}

// Point is a simple x/y pair in canvas coordinates.
type Point struct {
	X, Y float64
}

// Backend is the text-shaping contract from spec §1/§6. Word-wrapping
// for a given max-width happens inside the implementation — the
// layouter never breaks lines itself, it only asks for the box a given
// string occupies at a given width.
type Backend interface {
	// Measure returns the width/height a word-wrapped block of text
	// occupies when constrained to maxWidth. MaxContent/MinContent
	// availability is expressed by the caller choosing maxWidth
	// (§4.3: MaxContent passes a large finite width, MinContent zero).
	Measure(text string, font FontInfo, maxWidth float64, align domdoc.TextAlign) (width, height float64, err error)

	// Paint draws text word-wrapped to maxWidth, anchored at at.
	Paint(canvas *gg.Context, text string, font FontInfo, maxWidth float64, align domdoc.TextAlign, brush Brush, at Point) error
}

// FontPaths resolves a font weight to a font file on disk. The family is
// not consulted: every family uses these two faces — there is no system
// font enumeration here, matching the teacher's fixed two-face setup.
type FontPaths struct {
	Regular string
	Bold    string
}

// DefaultFontPaths mirrors the teacher's single bundled typeface.
var DefaultFontPaths = FontPaths{
	Regular: "assets/fonts/AtkinsonHyperlegible-Regular.ttf",
	Bold:    "assets/fonts/AtkinsonHyperlegible-Bold.ttf",
}

func (p FontPaths) pathFor(weight domdoc.FontWeight) string {
	if weight == domdoc.FontWeightBold {
		return p.Bold
	}
	return p.Regular
}
