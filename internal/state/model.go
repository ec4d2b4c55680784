package state

import "time"

// Point is a surface-local coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one pen gesture as stored by the whiteboard service.
// ID and CreatedAt are assigned by the store.
type Stroke struct {
	ID           int64     `json:"id"`
	WhiteboardID int64     `json:"whiteboardID"`
	OwnerID      int64     `json:"ownerID"`
	Path         []Point   `json:"path"`
	Color        string    `json:"color"`
	Width        float64   `json:"width"`
	CreatedAt    time.Time `json:"created_at"`
}

// Whiteboard is the aggregate root for a set of strokes.
type Whiteboard struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated_at"`
	Data      string    `json:"data"`
}

type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolEraser:
		return "eraser"
	}
	return "unknown"
}

// SurfaceState is the mutable view state of one drawing surface. It is owned
// by the surface controller and handed by pointer to capture and rendering.
type SurfaceState struct {
	Width  int
	Height int

	Tool      Tool
	Color     string
	LineWidth float64

	// WhiteboardID is zero until a board has been loaded.
	WhiteboardID int64
	OwnerID      int64
}

const (
	DefaultColor     = "#000000"
	DefaultLineWidth = 3.0
)

// NewSurfaceState returns a pen-selected state of the given size with no
// active whiteboard.
func NewSurfaceState(width, height int) *SurfaceState {
	return &SurfaceState{
		Width:     width,
		Height:    height,
		Tool:      ToolPen,
		Color:     DefaultColor,
		LineWidth: DefaultLineWidth,
	}
}

// Ready reports whether a whiteboard is active.
func (s SurfaceState) Ready() bool {
	return s.WhiteboardID != 0
}
