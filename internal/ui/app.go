// Package ui is the fyne desktop window around one drawing surface.
package ui

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"sketchive/internal/event"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

type Options struct {
	Title     string
	Width     int
	Height    int
	Color     string
	LineWidth float64

	// Export writes the open board to w. ext is the chosen file extension
	// including the dot. A nil Export hides the action.
	Export func(w io.Writer, ext string) error
	Logger *slog.Logger
}

type App struct {
	app     fyne.App
	window  fyne.Window
	surface *SurfaceWidget
	toolbar *Toolbar
	status  *widget.Label
	export  func(w io.Writer, ext string) error
	log     *slog.Logger
}

// New builds the window. Input from the surface and toolbar is published on
// bus; nothing is drawn until ShowFrame is called.
func New(bus *event.Bus, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Sketchive"
	}

	a := &App{
		app:     app.New(),
		surface: NewSurfaceWidget(bus),
		status:  widget.NewLabel("Loading..."),
		export:  opts.Export,
		log:     logger.With("component", "ui"),
	}
	a.window = a.app.NewWindow(opts.Title)
	a.window.Resize(fyne.NewSize(float32(opts.Width), float32(opts.Height)))

	var onExport func()
	if a.export != nil {
		onExport = a.showExport
	}
	a.toolbar = NewToolbar(bus, opts.Color, opts.LineWidth, onExport)

	a.window.SetContent(container.NewBorder(a.toolbar, a.status, nil, nil, a.surface))
	return a
}

// ShowFrame is suitable as the surface controller's frame hook.
func (a *App) ShowFrame(frame *image.RGBA) {
	a.surface.ShowFrame(frame)
}

// SetStatus may be called from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func (a *App) showExport() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		defer func() {
			if err := writer.Close(); err != nil {
				a.log.Warn("failed to close export file", "error", err)
			}
		}()

		ext := writer.URI().Extension()
		if err := a.export(writer, ext); err != nil {
			a.log.Error("export failed", "uri", writer.URI().String(), "error", err)
			dialog.ShowError(err, a.window)
			return
		}
		a.log.Info("board exported", "uri", writer.URI().String())
		a.status.SetText(fmt.Sprintf("Exported %s", writer.URI().Name()))
	}, a.window)
	save.SetFileName("board.pdf")
	save.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".png", ".txt"}))
	save.Show()
}

// ShowAndRun blocks until the window is closed.
func (a *App) ShowAndRun() {
	a.window.ShowAndRun()
}
