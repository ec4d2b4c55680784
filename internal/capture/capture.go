// Package capture turns pointer samples into strokes and erase regions.
package capture

import (
	"sketchive/internal/state"
)

type Phase int

const (
	Idle Phase = iota
	Capturing
)

type ResultKind int

const (
	ResultStroke ResultKind = iota
	ResultErase
)

// Result is what a finished gesture produced: a stroke to create, or a box
// whose strokes should be deleted.
type Result struct {
	Kind   ResultKind
	Stroke state.Stroke
	Box    state.BoundingBox
}

// Gesture is the per-surface capture state machine.
// It is not safe for concurrent use; the surface loop owns it.
type Gesture struct {
	phase        Phase
	tool         state.Tool
	color        string
	width        float64
	whiteboardID int64
	ownerID      int64
	path         []state.Point
}

func New() *Gesture {
	return &Gesture{}
}

func (g *Gesture) Phase() Phase { return g.phase }

func (g *Gesture) Tool() state.Tool { return g.tool }

// Path returns a copy of the points recorded so far.
func (g *Gesture) Path() []state.Point {
	return append([]state.Point(nil), g.path...)
}

// PointerDown starts a gesture. Tool and style are sampled here and held
// until the gesture ends.
func (g *Gesture) PointerDown(s *state.SurfaceState, p state.Point) error {
	if !s.Ready() {
		g.reset()
		return state.ErrNotReady
	}
	g.phase = Capturing
	g.tool = s.Tool
	g.color = s.Color
	g.width = s.LineWidth
	g.whiteboardID = s.WhiteboardID
	g.ownerID = s.OwnerID
	g.path = []state.Point{p}
	return nil
}

// PointerMove appends p verbatim. It returns the segment start so the caller
// can draw incrementally; ok is false when no gesture is active.
func (g *Gesture) PointerMove(p state.Point) (prev state.Point, ok bool) {
	if g.phase != Capturing {
		return state.Point{}, false
	}
	prev = g.path[len(g.path)-1]
	g.path = append(g.path, p)
	return prev, true
}

// PointerUp finishes the gesture. Pointer-leave is handled the same way.
// ok is false when there was no active gesture.
func (g *Gesture) PointerUp() (Result, bool) {
	if g.phase != Capturing {
		return Result{}, false
	}
	defer g.reset()

	path := g.Path()
	if g.tool == state.ToolEraser {
		box, err := state.BoundingBoxOf(path)
		if err != nil {
			// path always holds the down point
			return Result{}, false
		}
		return Result{Kind: ResultErase, Box: box}, true
	}

	return Result{
		Kind: ResultStroke,
		Stroke: state.Stroke{
			WhiteboardID: g.whiteboardID,
			OwnerID:      g.ownerID,
			Path:         path,
			Color:        g.color,
			Width:        g.width,
		},
	}, true
}

// Style returns the color and width of the active gesture.
func (g *Gesture) Style() (string, float64) {
	return g.color, g.width
}

func (g *Gesture) reset() {
	g.phase = Idle
	g.path = nil
}
