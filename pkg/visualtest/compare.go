// Package visualtest is a golden-image harness for the pipeline: render
// a fixture document to an RGBA surface, compare it against (or save
// it as) a reference PNG. Grounded on the teacher's own
// pkg/visualtest/compare.go pixel-difference algorithm, adapted to
// compare an in-memory *image.RGBA against a PNG on disk instead of two
// PNG files.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// CompareResult mirrors the teacher's result shape.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int
}

// CompareOptions configures tolerance, matching the teacher's knobs
// minus FuzzyRadius, which this pipeline's deterministic rasterizer
// doesn't need (no font-hinting jitter between runs).
type CompareOptions struct {
	Tolerance           int
	MaxDifferentPercent float64
	SaveDiffImage       bool
	DiffImagePath       string
}

func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// CompareToReference compares actual against the PNG at referencePath.
func CompareToReference(actual *image.RGBA, referencePath string, opts CompareOptions) (*CompareResult, error) {
	f, err := os.Open(referencePath)
	if err != nil {
		return nil, fmt.Errorf("opening reference image: %w", err)
	}
	defer f.Close()

	expected, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding reference image: %w", err)
	}

	actualBounds, expectedBounds := actual.Bounds(), expected.Bounds()
	if actualBounds != expectedBounds {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, reference=%v", actualBounds, expectedBounds)
	}

	result := &CompareResult{Match: true, TotalPixels: actualBounds.Dx() * actualBounds.Dy()}

	var diffImg *image.RGBA
	if opts.SaveDiffImage {
		diffImg = image.NewRGBA(actualBounds)
	}

	for y := actualBounds.Min.Y; y < actualBounds.Max.Y; y++ {
		for x := actualBounds.Min.X; x < actualBounds.Max.X; x++ {
			ar, ag, ab, aa := actual.At(x, y).RGBA()
			er, eg, eb, ea := expected.At(x, y).RGBA()
			ar, ag, ab, aa = ar>>8, ag>>8, ab>>8, aa>>8
			er, eg, eb, ea = er>>8, eg>>8, eb>>8, ea>>8

			diff := maxInt(absInt(int(ar)-int(er)), absInt(int(ag)-int(eg)), absInt(int(ab)-int(eb)), absInt(int(aa)-int(ea)))
			if diff > result.MaxDifference {
				result.MaxDifference = diff
			}

			if diff > opts.Tolerance {
				result.Match = false
				result.DifferentPixels++
				if diffImg != nil {
					diffImg.Set(x, y, color.RGBA{R: 255, A: 255})
				}
			} else if diffImg != nil {
				gray := uint8(ar)
				diffImg.Set(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}

	if opts.SaveDiffImage && !result.Match && opts.DiffImagePath != "" {
		if err := savePNG(diffImg, opts.DiffImagePath); err != nil {
			return result, fmt.Errorf("saving diff image: %w", err)
		}
	}

	return result, nil
}

// UpdateReference writes actual as the new reference PNG at path,
// creating parent directories as needed.
func UpdateReference(actual *image.RGBA, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating reference directory: %w", err)
	}
	return savePNG(actual, path)
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
