// l14view is an interactive fyne window wrapping the compositor's
// output surface and pkg/browserstate, grounded on cmd/l14/main.go.
// fyne stays confined to cmd/, never imported by pkg/.
package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/gosub-io/poc-pipeline/pkg/layout"
	"github.com/gosub-io/poc-pipeline/pkg/media"
	"github.com/gosub-io/poc-pipeline/pkg/pipelog"
	"github.com/gosub-io/poc-pipeline/pkg/pipeline"
	"github.com/gosub-io/poc-pipeline/pkg/textbackend"
)

const (
	windowWidth  = 1024
	windowHeight = 768
	viewportW    = 1024
	viewportH    = 700
)

func main() {
	log := pipelog.New()
	defer log.Sync()

	store := media.NewStore(media.HTTPFetcher, log)
	text := textbackend.NewGGBackend(textbackend.DefaultFontPaths)
	viewport := layout.Rect{Width: viewportW, Height: viewportH}
	p := pipeline.New(pipeline.DefaultConfig(), text, store, log, viewport)

	a := app.New()
	w := a.NewWindow("l14view")
	w.Resize(fyne.NewSize(windowWidth, windowHeight))

	target := image.NewRGBA(image.Rect(0, 0, viewportW, viewportH))
	canvasImg := canvas.NewImageFromImage(target)
	canvasImg.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter a document path and press Enter")

	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("testdata/page.json")

	redraw := func() {
		frame, err := p.DrawFrame(context.Background())
		if err != nil {
			status.SetText("Draw error: " + err.Error())
			return
		}
		canvasImg.Image = frame.Surface
		canvasImg.Refresh()
	}

	pathEntry.OnSubmitted = func(path string) {
		status.SetText("Loading " + path + "...")
		go func() {
			docJSON, err := os.ReadFile(path)
			if err != nil {
				status.SetText("Error: " + err.Error())
				return
			}
			if err := p.LoadDocument(docJSON, viewportW); err != nil {
				status.SetText("Load error: " + err.Error())
				return
			}
			redraw()
			status.SetText(path)
			w.SetTitle(fmt.Sprintf("l14view — %s", path))
		}()
	}

	// Key bindings: w cycles wireframe, d flips the hover-only flag, t
	// flips the tile-grid flag. Digit keys are not bound, so layer
	// visibility is not toggled from the keyboard.
	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case fyne.KeyW:
				p.State.CycleWireframe()
			case fyne.KeyD:
				p.State.ToggleHoverOnly()
			case fyne.KeyT:
				p.State.ToggleTileGrid()
			}
			redraw()
		})
	}

	topBar := container.NewBorder(nil, nil, nil, nil, pathEntry)
	content := container.NewBorder(topBar, status, nil, nil, canvasImg)
	w.SetContent(content)
	w.Canvas().Focus(pathEntry)

	w.ShowAndRun()
}
