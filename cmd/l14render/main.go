// l14render is a headless document.json -> PNG renderer, grounded on
// cmd/louis14/main.go and cmd/l14open/main.go's argument handling and
// sequencing, driving pkg/pipeline instead of calling pkg/layout/
// pkg/render directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/paint"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/pipeline"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

func main() {
	width := flag.Int("w", 800, "viewport width in pixels")
	height := flag.Int("h", 600, "viewport height in pixels")
	wireframe := flag.String("wireframe", "none", "wireframe mode: none, both, only")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: l14render [flags] <input.json> <output.png>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputFile, outputFile := flag.Arg(0), flag.Arg(1)

	docJSON, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg := pipeline.DefaultConfig()
	cfg.Wireframe = parseWireframe(*wireframe)

	log := pipelog.New()
	defer log.Sync()

	store := media.NewStore(media.HTTPFetcher, log)
	text := textbackend.NewGGBackend(textbackend.DefaultFontPaths)
	viewport := layout.Rect{Width: float64(*width), Height: float64(*height)}

	p := pipeline.New(cfg, text, store, log, viewport)
	if err := p.LoadDocument(docJSON, float64(*width)); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading document: %v\n", err)
		os.Exit(1)
	}

	frame, err := p.DrawFrame(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, frame.Surface); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully rendered %s to %s\n", inputFile, outputFile)
	fmt.Printf("Viewport: %dx%d, layers: %d\n", *width, *height, len(p.Layers.Layers()))
}

func parseWireframe(s string) paint.Wireframe {
	switch s {
	case "both":
		return paint.WireframeBoth
	case "only":
		return paint.WireframeOnly
	default:
		return paint.WireframeNone
	}
}
