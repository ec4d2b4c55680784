package ui

import (
	"image/color"
	"sync"

	"sketchive/internal/event"
	"sketchive/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type swatch struct {
	hex   string
	color color.Color
}

var palette = []swatch{
	{"#000000", color.Black},
	{"#ff0000", color.NRGBA{R: 255, A: 255}},
	{"#00ff00", color.NRGBA{G: 255, A: 255}},
	{"#0000ff", color.NRGBA{B: 255, A: 255}},
	{"#ffff00", color.NRGBA{R: 255, G: 255, A: 255}},
}

const (
	minLineWidth = 1.0
	maxLineWidth = 50.0
)

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func()
}

func newColorSwatch(c color.Color, tapped func()) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped()
	}
}

// toolState is the toolbar's selection. Every change publishes the whole of
// it, so subscribers never see a tool without its color and width.
type toolState struct {
	mu    sync.Mutex
	bus   *event.Bus
	tool  state.Tool
	color string
	width float64
}

func (t *toolState) update(fn func(*toolState)) {
	t.mu.Lock()
	fn(t)
	ev := event.Event{Kind: event.ToolChange, Tool: t.tool, Color: t.color, LineWidth: t.width}
	t.mu.Unlock()
	t.bus.Publish(ev)
}

type Toolbar struct {
	fyne.CanvasObject
	tools  *toolState
	slider *widget.Slider
	swatch []*colorSwatch
}

// NewToolbar builds the tool, color, size and board actions. onExport is
// called for the export action and may be nil.
func NewToolbar(bus *event.Bus, colorHex string, lineWidth float64, onExport func()) *Toolbar {
	tools := &toolState{bus: bus, tool: state.ToolPen, color: colorHex, width: lineWidth}

	actions := []widget.ToolbarItem{
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			tools.update(func(t *toolState) { t.tool = state.ToolPen })
		}),
		widget.NewToolbarAction(theme.ContentRemoveIcon(), func() {
			tools.update(func(t *toolState) { t.tool = state.ToolEraser })
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			bus.Publish(event.Event{Kind: event.ClearRequest})
		}),
	}
	if onExport != nil {
		actions = append(actions, widget.NewToolbarAction(theme.DocumentSaveIcon(), onExport))
	}
	tb := widget.NewToolbar(actions...)

	swatches := make([]*colorSwatch, 0, len(palette))
	colorBox := container.NewHBox()
	for _, p := range palette {
		hex := p.hex
		s := newColorSwatch(p.color, func() {
			tools.update(func(t *toolState) {
				t.tool = state.ToolPen
				t.color = hex
			})
		})
		swatches = append(swatches, s)
		colorBox.Add(s)
	}

	slider := widget.NewSlider(minLineWidth, maxLineWidth)
	slider.SetValue(clampWidth(lineWidth))
	slider.OnChanged = func(val float64) {
		tools.update(func(t *toolState) { t.width = val })
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), slider)

	return &Toolbar{
		CanvasObject: container.NewHBox(
			widget.NewLabel("Tool:"),
			tb,
			widget.NewSeparator(),
			widget.NewLabel("Color:"),
			colorBox,
			widget.NewSeparator(),
			widget.NewLabel("Size:"),
			sliderContainer,
			layout.NewSpacer(),
		),
		tools:  tools,
		slider: slider,
		swatch: swatches,
	}
}

func clampWidth(w float64) float64 {
	switch {
	case w < minLineWidth:
		return minLineWidth
	case w > maxLineWidth:
		return maxLineWidth
	}
	return w
}
