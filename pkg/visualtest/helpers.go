package visualtest

import (
	"context"
	"fmt"
	"image"

	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/pipeline"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

func rectOf(width, height int) layout.Rect {
	return layout.Rect{Width: float64(width), Height: float64(height)}
}

// RenderDocument parses docJSON and draws one frame at width×height,
// grounded on the teacher's RenderHTMLToFile but driving pkg/pipeline
// end to end instead of calling layout/render directly.
func RenderDocument(docJSON []byte, width, height int) (*image.RGBA, error) {
	fetcher := media.HTTPFetcher
	store := media.NewStore(fetcher, pipelog.Nop())
	text := textbackend.NewGGBackend(textbackend.DefaultFontPaths)

	viewport := rectOf(width, height)
	p := pipeline.New(pipeline.DefaultConfig(), text, store, pipelog.Nop(), viewport)
	if err := p.LoadDocument(docJSON, float64(width)); err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	frame, err := p.DrawFrame(context.Background())
	if err != nil {
		return nil, fmt.Errorf("drawing frame: %w", err)
	}
	return frame.Surface, nil
}

// UpdateReferenceFromDocument renders docJSON and writes it as the
// reference PNG at path, the equivalent of the teacher's
// UpdateReferenceImage for this pipeline's document input.
func UpdateReferenceFromDocument(docJSON []byte, path string, width, height int) error {
	img, err := RenderDocument(docJSON, width, height)
	if err != nil {
		return err
	}
	return UpdateReference(img, path)
}
