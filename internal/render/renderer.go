// Package render replays strokes onto a raster surface.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"sketchive/internal/state"

	"github.com/gogpu/gg"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrInvalidSize = Error("surface dimensions must be positive")

// Renderer owns the pixel buffer of one surface. Every full render starts
// from a cleared buffer, so output depends only on the size and the strokes.
type Renderer struct {
	dc         *gg.Context
	background gg.RGBA
	log        *slog.Logger
}

func New(width, height int, logger *slog.Logger) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		dc:         gg.NewContext(width, height),
		background: gg.White,
		log:        logger.With("component", "render"),
	}, nil
}

func (r *Renderer) Width() int  { return r.dc.Width() }
func (r *Renderer) Height() int { return r.dc.Height() }

// Render clears the surface and replays strokes in the order given.
func (r *Renderer) Render(s *state.SurfaceState, strokes []state.Stroke) error {
	if err := r.Clear(s); err != nil {
		return err
	}
	for _, st := range strokes {
		if err := r.drawStroke(st); err != nil {
			return fmt.Errorf("draw stroke %d: %w", st.ID, err)
		}
	}
	r.log.Debug("surface rendered", "strokes", len(strokes), "width", s.Width, "height", s.Height)
	return nil
}

// Clear resizes the buffer to the surface dimensions if needed and fills it
// with the background.
func (r *Renderer) Clear(s *state.SurfaceState) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	if err := r.dc.Resize(s.Width, s.Height); err != nil {
		return err
	}
	r.dc.ClearPath()
	r.dc.ClearWithColor(r.background)
	return nil
}

// DrawSegment draws one piece of a stroke still being captured.
func (r *Renderer) DrawSegment(a, b state.Point, color string, width float64) error {
	r.applyStyle(color, width)
	r.dc.MoveTo(a.X, a.Y)
	r.dc.LineTo(b.X, b.Y)
	return r.dc.Stroke()
}

// DrawDot marks a single point, as for a tap.
func (r *Renderer) DrawDot(p state.Point, color string, width float64) error {
	r.applyStyle(color, width)
	r.dc.DrawCircle(p.X, p.Y, width/2)
	return r.dc.Fill()
}

// Frame returns a copy of the current pixels.
func (r *Renderer) Frame() *image.RGBA {
	src := r.dc.Image()
	if img, ok := src.(*image.RGBA); ok {
		return img
	}
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func (r *Renderer) drawStroke(st state.Stroke) error {
	switch len(st.Path) {
	case 0:
		return nil
	case 1:
		return r.DrawDot(st.Path[0], st.Color, st.Width)
	}
	r.applyStyle(st.Color, st.Width)
	r.dc.MoveTo(st.Path[0].X, st.Path[0].Y)
	for _, p := range st.Path[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	return r.dc.Stroke()
}

func (r *Renderer) applyStyle(color string, width float64) {
	c, ok := ParseColor(color)
	if !ok {
		r.log.Debug("unknown color token, using black", "color", color)
	}
	r.dc.SetColor(c.Color())
	r.dc.SetLineWidth(width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
}
