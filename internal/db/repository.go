// Package db persists whiteboards and strokes for the reference store service.
package db

import (
	"context"

	"sketchive/internal/state"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNotFound  = Error("not found")
	ErrEmptyPath = Error("stroke path is empty")
)

// DefaultWhiteboardName is used when a board is created without a name.
const DefaultWhiteboardName = "Untitled"

// Repository stores boards and their strokes. GetStrokes returns live strokes
// in creation order; deleted strokes are kept but never returned.
type Repository interface {
	CreateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error)
	GetWhiteboard(ctx context.Context, id int64) (*state.Whiteboard, error)
	UpdateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error)
	DeleteWhiteboard(ctx context.Context, id int64) error
	// ClearWhiteboard deletes every stroke of the board and reports how many.
	ClearWhiteboard(ctx context.Context, id int64) (int64, error)

	CreateStroke(ctx context.Context, s state.Stroke) (*state.Stroke, error)
	GetStrokes(ctx context.Context, whiteboardID int64) ([]state.Stroke, error)
	// DeleteStrokesInBox deletes every stroke with at least one path point
	// inside box, edges included.
	DeleteStrokesInBox(ctx context.Context, whiteboardID int64, box state.BoundingBox) (int64, error)

	Close() error
}
