package media

import (
	"bytes"
	"image"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// defaultSvgRasterSize is used when an SVG's viewBox carries no usable
// dimension at all — grounded on rupor-github-fb2cng/utils/images/svg.go's
// defaultSVGSize fallback, scaled down since this pipeline targets
// on-screen tiles rather than e-reader page images.
const defaultSvgRasterSize = 512

// RasterizeSvg renders svgData to an RGBA pixmap sized w×h. If w and h
// are both zero, the SVG's own viewBox size is used. Grounded directly
// on RasterizeSVGToImage's oksvg+rasterx pipeline.
func RasterizeSvg(svgData []byte, w, h int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSvgRasterSize
	}
	if intrH <= 0 {
		intrH = defaultSvgRasterSize
	}

	targetW, targetH := w, h
	if targetW <= 0 && targetH <= 0 {
		targetW, targetH = intrW, intrH
	} else if targetW > 0 && targetH <= 0 {
		targetH = int(math.Round(float64(targetW) * float64(intrH) / float64(intrW)))
	} else if targetH > 0 && targetW <= 0 {
		targetW = int(math.Round(float64(targetH) * float64(intrW) / float64(intrH)))
	}
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	icon.SetTarget(0, 0, float64(targetW), float64(targetH))

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: transparent}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(targetW, targetH, dst, dst.Bounds())
	dasher := rasterx.NewDasher(targetW, targetH, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

var transparent = rgbaTransparent{}

// rgbaTransparent satisfies color.Color as fully transparent black —
// SVGs are composited over whatever the rasterizer already drew.
type rgbaTransparent struct{}

func (rgbaTransparent) RGBA() (r, g, b, a uint32) { return 0, 0, 0, 0 }
