// Package surface coordinates one drawing surface: pointer capture, local
// rendering and the whiteboard store.
package surface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"sketchive/internal/capture"
	"sketchive/internal/event"
	"sketchive/internal/render"
	"sketchive/internal/state"
	"sketchive/internal/store"
)

// Store is the part of the whiteboard service the surface talks to.
// *store.Client satisfies it.
type Store interface {
	CreateWhiteboard(ctx context.Context) (*state.Whiteboard, error)
	GetWhiteboard(ctx context.Context, id int64) (*state.Whiteboard, error)
	ClearWhiteboard(ctx context.Context, id int64) (*store.Result, error)
	CreateStroke(ctx context.Context, s state.Stroke) (*state.Stroke, error)
	GetStrokes(ctx context.Context, whiteboardID int64) ([]state.Stroke, error)
	DeleteStrokesByBox(ctx context.Context, whiteboardID int64, box state.BoundingBox) (*store.Result, error)
}

type Options struct {
	Width  int
	Height int

	// WhiteboardID selects the board to open. Zero creates a new one.
	WhiteboardID int64
	OwnerID      int64
	// CreateIfMissing creates a new board when WhiteboardID is not found.
	CreateIfMissing bool

	Logger *slog.Logger
	// OnFrame receives the pixels after every visible change. It runs on
	// the loop and must not block.
	OnFrame func(*image.RGBA)
}

// Controller owns the surface state. All of its fields are touched only from
// the loop goroutine; exported methods post work onto the loop and return.
type Controller struct {
	loop     *Loop
	store    Store
	renderer *render.Renderer
	gesture  *capture.Gesture
	cache    *state.StrokeCache
	fetches  state.Generation
	state    *state.SurfaceState

	opts    Options
	onFrame func(*image.RGBA)
	log     *slog.Logger
}

func New(st Store, opts Options) (*Controller, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r, err := render.New(opts.Width, opts.Height, logger)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	s := state.NewSurfaceState(opts.Width, opts.Height)
	s.OwnerID = opts.OwnerID

	return &Controller{
		loop:     NewLoop(),
		store:    st,
		renderer: r,
		gesture:  capture.New(),
		cache:    state.NewStrokeCache(),
		state:    s,
		opts:     opts,
		onFrame:  opts.OnFrame,
		log:      logger.With("component", "surface"),
	}, nil
}

// Run processes surface events until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	c.loop.Post(c.redraw)
	return c.loop.Run(ctx)
}

// Wait blocks until every queued event and store call has completed.
func (c *Controller) Wait() {
	c.loop.Wait()
}

// Load opens the configured whiteboard, creating it when needed, and draws
// its strokes. Failures leave the surface blank.
func (c *Controller) Load(ctx context.Context) {
	c.loop.Post(func() {
		id := c.opts.WhiteboardID
		createIfMissing := c.opts.CreateIfMissing
		gen := c.fetches.Next()

		c.loop.Go(func() func() {
			wb, err := c.resolveWhiteboard(ctx, id, createIfMissing)
			if err != nil {
				return func() {
					c.log.Error("failed to open whiteboard", "whiteboard", id, "error", err)
					c.redraw()
				}
			}
			strokes, err := c.store.GetStrokes(ctx, wb.ID)
			return func() {
				c.activate(wb)
				if err != nil {
					c.log.Error("failed to fetch strokes", "whiteboard", wb.ID, "error", err)
					c.redraw()
					return
				}
				c.applyFetch(gen, "load", strokes)
			}
		})
	})
}

func (c *Controller) resolveWhiteboard(ctx context.Context, id int64, createIfMissing bool) (*state.Whiteboard, error) {
	if id == 0 {
		return c.store.CreateWhiteboard(ctx)
	}
	wb, err := c.store.GetWhiteboard(ctx, id)
	if err == nil {
		return wb, nil
	}
	if errors.Is(err, store.ErrNotFound) && createIfMissing {
		return c.store.CreateWhiteboard(ctx)
	}
	return nil, err
}

func (c *Controller) activate(wb *state.Whiteboard) {
	c.state.WhiteboardID = wb.ID
	if c.state.OwnerID == 0 {
		c.state.OwnerID = wb.OwnerID
	}
	c.log.Info("whiteboard opened", "whiteboard", wb.ID, "name", wb.Name)
}

// Resize changes the surface dimensions and redraws from a fresh copy of the
// board's history.
func (c *Controller) Resize(width, height int) {
	c.loop.Post(func() {
		if width <= 0 || height <= 0 {
			c.log.Warn("ignoring resize", "width", width, "height", height, "error", render.ErrInvalidSize)
			return
		}
		c.state.Width = width
		c.state.Height = height
		if !c.state.Ready() {
			c.redraw()
			return
		}
		c.refetch("resize")
	})
}

// Clear removes every stroke of the board. The local surface is wiped once
// the store confirms.
func (c *Controller) Clear() {
	c.loop.Post(func() {
		if !c.state.Ready() {
			c.log.Warn("clear ignored", "error", state.ErrNotReady)
			return
		}
		id := c.state.WhiteboardID
		c.loop.Go(func() func() {
			_, err := c.store.ClearWhiteboard(context.Background(), id)
			return func() {
				if err != nil {
					c.log.Error("failed to clear whiteboard", "whiteboard", id, "error", err)
					return
				}
				// fetches issued before the clear would repaint the old strokes
				c.fetches.Next()
				c.cache.Clear()
				if err := c.renderer.Clear(c.state); err != nil {
					c.log.Error("failed to clear surface", "error", err)
					return
				}
				c.emit()
			}
		})
	})
}

func (c *Controller) SetTool(t state.Tool) {
	c.loop.Post(func() { c.state.Tool = t })
}

func (c *Controller) SetColor(color string) {
	c.loop.Post(func() { c.state.Color = color })
}

func (c *Controller) SetLineWidth(width float64) {
	c.loop.Post(func() {
		if width > 0 {
			c.state.LineWidth = width
		}
	})
}

func (c *Controller) PointerDown(p state.Point) {
	c.loop.Post(func() {
		if err := c.gesture.PointerDown(c.state, p); err != nil {
			c.log.Warn("pointer input ignored", "error", err)
			return
		}
		if c.gesture.Tool() != state.ToolPen {
			return
		}
		color, width := c.gesture.Style()
		if err := c.renderer.DrawDot(p, color, width); err != nil {
			c.log.Debug("failed to draw point", "error", err)
			return
		}
		c.emit()
	})
}

func (c *Controller) PointerMove(p state.Point) {
	c.loop.Post(func() {
		prev, ok := c.gesture.PointerMove(p)
		if !ok || c.gesture.Tool() != state.ToolPen {
			return
		}
		color, width := c.gesture.Style()
		if err := c.renderer.DrawSegment(prev, p, color, width); err != nil {
			c.log.Debug("failed to draw segment", "error", err)
			return
		}
		c.emit()
	})
}

// PointerUp ends the current gesture. Pointer-leave uses it too.
func (c *Controller) PointerUp() {
	c.loop.Post(func() {
		res, ok := c.gesture.PointerUp()
		if !ok {
			return
		}
		switch res.Kind {
		case capture.ResultStroke:
			c.submitStroke(res.Stroke)
		case capture.ResultErase:
			c.erase(res.Box)
		}
	})
}

func (c *Controller) submitStroke(st state.Stroke) {
	c.loop.Go(func() func() {
		created, err := c.store.CreateStroke(context.Background(), st)
		return func() {
			if err != nil {
				// the stroke stays on screen until the next full redraw
				c.log.Error("failed to save stroke", "whiteboard", st.WhiteboardID, "points", len(st.Path), "error", err)
				return
			}
			if !c.cache.Append(*created) {
				c.log.Debug("stroke already fetched", "stroke", created.ID)
				return
			}
			c.log.Debug("stroke saved", "stroke", created.ID)
		}
	})
}

func (c *Controller) erase(box state.BoundingBox) {
	id := c.state.WhiteboardID
	c.loop.Go(func() func() {
		_, err := c.store.DeleteStrokesByBox(context.Background(), id, box)
		return func() {
			if err != nil {
				c.log.Error("failed to erase strokes", "whiteboard", id, "box", box, "error", err)
				return
			}
			c.refetch("erase")
		}
	})
}

// refetch loads the full history and redraws. Only the newest fetch is
// applied; older ones still in flight are dropped on arrival.
func (c *Controller) refetch(reason string) {
	id := c.state.WhiteboardID
	gen := c.fetches.Next()
	c.loop.Go(func() func() {
		strokes, err := c.store.GetStrokes(context.Background(), id)
		return func() {
			if err != nil {
				c.log.Error("failed to fetch strokes", "whiteboard", id, "reason", reason, "error", err)
				if c.fetches.IsLatest(gen) {
					c.redraw()
				}
				return
			}
			c.applyFetch(gen, reason, strokes)
		}
	})
}

func (c *Controller) applyFetch(gen uint64, reason string, strokes []state.Stroke) {
	if !c.fetches.IsLatest(gen) {
		c.log.Debug("dropping stale fetch", "reason", reason, "generation", gen, "latest", c.fetches.Current())
		return
	}
	c.cache.Replace(strokes)
	c.redraw()
}

func (c *Controller) redraw() {
	if err := c.renderer.Render(c.state, c.cache.Strokes()); err != nil {
		c.log.Error("failed to render surface", "error", err)
		return
	}
	c.emit()
}

func (c *Controller) emit() {
	if c.onFrame != nil {
		c.onFrame(c.renderer.Frame())
	}
}

// Mount routes bus events to the controller. Closing the returned value
// removes every subscription.
func (c *Controller) Mount(bus *event.Bus) io.Closer {
	g := &event.Group{}
	g.Add(bus.Subscribe(event.PointerDown, func(ev event.Event) { c.PointerDown(ev.Point) }))
	g.Add(bus.Subscribe(event.PointerMove, func(ev event.Event) { c.PointerMove(ev.Point) }))
	g.Add(bus.Subscribe(event.PointerUp, func(event.Event) { c.PointerUp() }))
	g.Add(bus.Subscribe(event.PointerLeave, func(event.Event) { c.PointerUp() }))
	g.Add(bus.Subscribe(event.Resize, func(ev event.Event) { c.Resize(ev.Width, ev.Height) }))
	g.Add(bus.Subscribe(event.ToolChange, func(ev event.Event) {
		c.SetTool(ev.Tool)
		if ev.Color != "" {
			c.SetColor(ev.Color)
		}
		if ev.LineWidth > 0 {
			c.SetLineWidth(ev.LineWidth)
		}
	}))
	g.Add(bus.Subscribe(event.ClearRequest, func(event.Event) { c.Clear() }))
	return g
}

// State returns a copy of the surface state. Call it from OnFrame or after
// Wait.
func (c *Controller) State() state.SurfaceState {
	return *c.state
}

// Strokes returns the locally known stroke list in draw order.
func (c *Controller) Strokes() []state.Stroke {
	return c.cache.Strokes()
}

// Frame returns the current pixels. Call it after Wait.
func (c *Controller) Frame() *image.RGBA {
	return c.renderer.Frame()
}
