package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"sketchive/internal/state"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Write picks the format from a file extension: .pdf, .png or .txt.
func Write(w io.Writer, ext string, wb *state.Whiteboard, strokes []state.Stroke, size Size) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return PDF(w, strokes, size)
	case "png":
		return PNG(w, strokes, size)
	case "txt":
		return Summary(w, wb, strokes)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}
