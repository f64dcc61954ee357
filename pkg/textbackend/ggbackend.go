package textbackend

import (
	"strings"
	"sync"

	"github.com/fogleman/gg"

	"github.com/gosub-io/poc-pipeline/pkg/domdoc"
)

// GGBackend implements Backend on top of github.com/fogleman/gg. A
// single scratch context is reused for measurement; the font face is
// loaded into it again on every Measure call.
//
// When the configured font face can't be loaded (missing file, bad
// format), measurement falls back to a rough per-character estimate
// rather than failing the whole layout — grounded on pkg/text/measure.go's
// MeasureText, which does the same on LoadFontFace error.
type GGBackend struct {
	Paths FontPaths

	mu   sync.Mutex
	meas *gg.Context // scratch context reused for measurement
}

// NewGGBackend builds a backend using the given font paths.
func NewGGBackend(paths FontPaths) *GGBackend {
	return &GGBackend{
		Paths: paths,
		meas:  gg.NewContext(1, 1),
	}
}

func estimateSize(text string, fontSize float64) (width, height float64) {
	return float64(len([]rune(text))) * fontSize * 0.6, fontSize * 1.2
}

// Measure word-wraps text to maxWidth and returns the occupied box.
// Grounded on pkg/text/measure.go's BreakTextIntoLines/MeasureText,
// generalized so line-breaking lives here instead of in the layouter.
func (b *GGBackend) Measure(text string, font FontInfo, maxWidth float64, align domdoc.TextAlign) (float64, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lineHeight := font.LineHeight
	if lineHeight <= 0 {
		lineHeight = font.Size
	}

	path := b.Paths.pathFor(font.Weight)
	if err := b.meas.LoadFontFace(path, font.Size); err != nil {
		w, _ := estimateSize(text, font.Size)
		lines := 1.0
		if maxWidth > 0 && w > maxWidth {
			lines = float64(int(w/maxWidth) + 1)
			w = maxWidth
		}
		return w, lines * lineHeight, nil
	}

	lines := wrapLines(b.meas, text, maxWidth)
	maxLineWidth := 0.0
	for _, line := range lines {
		w, _ := b.meas.MeasureString(line)
		if w > maxLineWidth {
			maxLineWidth = w
		}
	}
	height := float64(len(lines)) * lineHeight
	if len(lines) == 0 {
		height = 0
	}
	return maxLineWidth, height, nil
}

// Paint draws text word-wrapped to maxWidth at the given anchor point,
// aligning each line within maxWidth per align. If the font face can't
// be loaded, Paint draws nothing and returns the load error — unlike
// Measure, there's no sensible pixel output to estimate.
func (b *GGBackend) Paint(canvas *gg.Context, text string, font FontInfo, maxWidth float64, align domdoc.TextAlign, brush Brush, at Point) error {
	path := b.Paths.pathFor(font.Weight)
	if err := canvas.LoadFontFace(path, font.Size); err != nil {
		return err
	}
	canvas.SetRGBA255(int(brush.R), int(brush.G), int(brush.B), int(brush.A))

	lines := wrapLines(canvas, text, maxWidth)
	lineHeight := font.LineHeight
	if lineHeight <= 0 {
		lineHeight = font.Size
	}
	ascent := canvas.FontAscent()

	for i, line := range lines {
		lineWidth, _ := canvas.MeasureString(line)
		x := at.X
		switch align {
		case domdoc.TextAlignCenter:
			x = at.X + (maxWidth-lineWidth)/2
		case domdoc.TextAlignRight:
			x = at.X + (maxWidth - lineWidth)
		}
		y := at.Y + float64(i)*lineHeight + ascent
		canvas.DrawString(line, x, y)
	}
	return nil
}

// wrapLines breaks text into lines no wider than maxWidth, following
// the teacher's greedy word-wrap: a single overlong word still gets its
// own line rather than being split mid-word.
func wrapLines(dc *gg.Context, text string, maxWidth float64) []string {
	if maxWidth <= 0 {
		return []string{text}
	}
	if w, _ := dc.MeasureString(text); w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, _ := dc.MeasureString(candidate); w <= maxWidth || current == "" {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
