package export

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"

	"sketchive/internal/render"
	"sketchive/internal/state"
)

// PNG replays strokes through the renderer and encodes the result, so the
// image matches what the surface shows.
func PNG(w io.Writer, strokes []state.Stroke, size Size) error {
	r, err := render.New(size.Width, size.Height, slog.Default())
	if err != nil {
		return err
	}
	s := &state.SurfaceState{Width: size.Width, Height: size.Height}
	if err := r.Render(s, strokes); err != nil {
		return err
	}
	if err := png.Encode(w, r.Frame()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
