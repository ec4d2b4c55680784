package ui

import (
	"image"
	"image/color"
	"sync"

	"sketchive/internal/event"
	"sketchive/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// SurfaceWidget shows the frames produced by the surface controller and
// publishes the pointer and size changes it sees on the bus. It keeps no
// strokes of its own.
type SurfaceWidget struct {
	widget.BaseWidget
	bus *event.Bus

	mu      sync.Mutex
	drawing bool
	width   int
	height  int

	image *canvas.Image
}

var _ fyne.Widget = (*SurfaceWidget)(nil)
var _ fyne.Draggable = (*SurfaceWidget)(nil)
var _ desktop.Mouseable = (*SurfaceWidget)(nil)
var _ desktop.Hoverable = (*SurfaceWidget)(nil)

func NewSurfaceWidget(bus *event.Bus) *SurfaceWidget {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest

	s := &SurfaceWidget{bus: bus, image: img}
	s.ExtendBaseWidget(s)
	return s
}

// ShowFrame replaces the displayed pixels. It may be called from any
// goroutine; the frame must not be modified afterwards.
func (s *SurfaceWidget) ShowFrame(frame *image.RGBA) {
	fyne.Do(func() {
		s.image.Image = frame
		s.image.Refresh()
	})
}

func position(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (s *SurfaceWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	s.mu.Lock()
	s.drawing = true
	s.mu.Unlock()
	s.bus.Publish(event.Event{Kind: event.PointerDown, Point: position(e.Position)})
}

func (s *SurfaceWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !s.stopDrawing() {
		return
	}
	s.bus.Publish(event.Event{Kind: event.PointerUp, Point: position(e.Position)})
}

func (s *SurfaceWidget) Dragged(e *fyne.DragEvent) {
	s.mu.Lock()
	drawing := s.drawing
	s.mu.Unlock()
	if drawing {
		s.bus.Publish(event.Event{Kind: event.PointerMove, Point: position(e.Position)})
	}
}

func (s *SurfaceWidget) DragEnd() {}

// MouseOut ends a gesture that leaves the surface.
func (s *SurfaceWidget) MouseOut() {
	if s.stopDrawing() {
		s.bus.Publish(event.Event{Kind: event.PointerLeave})
	}
}

func (s *SurfaceWidget) MouseIn(*desktop.MouseEvent)    {}
func (s *SurfaceWidget) MouseMoved(*desktop.MouseEvent) {}

func (s *SurfaceWidget) stopDrawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.drawing
	s.drawing = false
	return was
}

// resized publishes a Resize when the whole-unit size changes.
func (s *SurfaceWidget) resized(size fyne.Size) {
	w, h := int(size.Width), int(size.Height)
	s.mu.Lock()
	changed := w != s.width || h != s.height
	s.width, s.height = w, h
	s.mu.Unlock()
	if changed && w > 0 && h > 0 {
		s.bus.Publish(event.Event{Kind: event.Resize, Width: w, Height: h})
	}
}

func (s *SurfaceWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	return &surfaceRenderer{surface: s, background: bg, objects: []fyne.CanvasObject{bg, s.image}}
}

type surfaceRenderer struct {
	surface    *SurfaceWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.surface.image.Resize(size)
	r.surface.resized(size)
}

func (r *surfaceRenderer) MinSize() fyne.Size           { return fyne.NewSize(300, 300) }
func (r *surfaceRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *surfaceRenderer) Refresh()                     { canvas.Refresh(r.surface) }
func (r *surfaceRenderer) Destroy()                     {}
