package db

import (
	"context"
	"sync"
	"time"

	"sketchive/internal/state"
)

type memStroke struct {
	stroke  state.Stroke
	deleted bool
}

// Memory is a Repository held in process memory. It is used by the serve
// command when no database is configured, and by tests.
type Memory struct {
	mu         sync.RWMutex
	boards     map[int64]*state.Whiteboard
	strokes    []*memStroke
	nextBoard  int64
	nextStroke int64
	now        func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		boards: make(map[int64]*state.Whiteboard),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) CreateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBoard++
	created := *wb
	created.ID = m.nextBoard
	if created.Name == "" {
		created.Name = DefaultWhiteboardName
	}
	created.CreatedAt = m.now()
	created.UpdatedAt = created.CreatedAt
	m.boards[created.ID] = &created

	out := created
	return &out, nil
}

func (m *Memory) GetWhiteboard(ctx context.Context, id int64) (*state.Whiteboard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wb, ok := m.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *wb
	return &out, nil
}

func (m *Memory) UpdateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.boards[wb.ID]
	if !ok {
		return nil, ErrNotFound
	}
	existing.Name = wb.Name
	existing.Data = wb.Data
	existing.UpdatedAt = m.now()
	out := *existing
	return &out, nil
}

func (m *Memory) DeleteWhiteboard(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return ErrNotFound
	}
	delete(m.boards, id)
	kept := m.strokes[:0]
	for _, s := range m.strokes {
		if s.stroke.WhiteboardID != id {
			kept = append(kept, s)
		}
	}
	m.strokes = kept
	return nil
}

func (m *Memory) ClearWhiteboard(ctx context.Context, id int64) (int64, error) {
	return m.markDeleted(id, func(state.Stroke) bool { return true })
}

func (m *Memory) CreateStroke(ctx context.Context, s state.Stroke) (*state.Stroke, error) {
	if len(s.Path) == 0 {
		return nil, ErrEmptyPath
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[s.WhiteboardID]; !ok {
		return nil, ErrNotFound
	}
	m.nextStroke++
	s.ID = m.nextStroke
	s.CreatedAt = m.now()
	s.Path = append([]state.Point(nil), s.Path...)
	m.strokes = append(m.strokes, &memStroke{stroke: s})
	return &s, nil
}

func (m *Memory) GetStrokes(ctx context.Context, whiteboardID int64) ([]state.Stroke, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.boards[whiteboardID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]state.Stroke, 0)
	for _, s := range m.strokes {
		if s.stroke.WhiteboardID == whiteboardID && !s.deleted {
			out = append(out, s.stroke)
		}
	}
	return out, nil
}

func (m *Memory) DeleteStrokesInBox(ctx context.Context, whiteboardID int64, box state.BoundingBox) (int64, error) {
	return m.markDeleted(whiteboardID, func(s state.Stroke) bool { return box.Touches(s.Path) })
}

func (m *Memory) markDeleted(whiteboardID int64, match func(state.Stroke) bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[whiteboardID]; !ok {
		return 0, ErrNotFound
	}
	var n int64
	for _, s := range m.strokes {
		if s.stroke.WhiteboardID == whiteboardID && !s.deleted && match(s.stroke) {
			s.deleted = true
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
