package surface

import (
	"context"
	"fmt"
	"sync"

	"sketchive/internal/state"
	"sketchive/internal/store"
)

type deleteCall struct {
	WhiteboardID int64
	Box          state.BoundingBox
}

// fakeStore is an in-process Store that records every call.
type fakeStore struct {
	mu      sync.Mutex
	boards  map[int64]*state.Whiteboard
	strokes []state.Stroke
	nextID  int64

	creates      []state.Stroke
	deletes      []deleteCall
	clears       []int64
	fetches      int
	boardCreates int
	lookups      int

	failCreate error
	failDelete error
	failFetch  error
	failClear  error

	// onFetch, when set, runs outside the lock for fetch number n (1-based)
	// and may replace the returned strokes.
	onFetch func(n int) []state.Stroke
	// onCreate, when set, runs outside the lock after a stroke is stored and
	// before CreateStroke returns.
	onCreate func()
}

func newFakeStore(boards ...int64) *fakeStore {
	f := &fakeStore{boards: make(map[int64]*state.Whiteboard), nextID: 100}
	for _, id := range boards {
		f.boards[id] = &state.Whiteboard{ID: id, Name: "Untitled", OwnerID: 1}
	}
	return f
}

func (f *fakeStore) CreateWhiteboard(ctx context.Context) (*state.Whiteboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boardCreates++
	f.nextID++
	wb := &state.Whiteboard{ID: f.nextID, Name: "Untitled", OwnerID: 7}
	f.boards[wb.ID] = wb
	return wb, nil
}

func (f *fakeStore) GetWhiteboard(ctx context.Context, id int64) (*state.Whiteboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	wb, ok := f.boards[id]
	if !ok {
		return nil, fmt.Errorf("get whiteboard %d: %w", id, store.ErrNotFound)
	}
	return wb, nil
}

func (f *fakeStore) ClearWhiteboard(ctx context.Context, id int64) (*store.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears = append(f.clears, id)
	if f.failClear != nil {
		return nil, f.failClear
	}
	kept := f.strokes[:0]
	for _, s := range f.strokes {
		if s.WhiteboardID != id {
			kept = append(kept, s)
		}
	}
	f.strokes = kept
	return &store.Result{Message: "cleared"}, nil
}

func (f *fakeStore) CreateStroke(ctx context.Context, s state.Stroke) (*state.Stroke, error) {
	f.mu.Lock()
	f.creates = append(f.creates, s)
	if f.failCreate != nil {
		f.mu.Unlock()
		return nil, f.failCreate
	}
	f.nextID++
	s.ID = f.nextID
	f.strokes = append(f.strokes, s)
	hook := f.onCreate
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return &s, nil
}

func (f *fakeStore) GetStrokes(ctx context.Context, whiteboardID int64) ([]state.Stroke, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	hook := f.onFetch
	failure := f.failFetch
	var out []state.Stroke
	for _, s := range f.strokes {
		if s.WhiteboardID == whiteboardID {
			out = append(out, s)
		}
	}
	f.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	if hook != nil {
		if replaced := hook(n); replaced != nil {
			return replaced, nil
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteStrokesByBox(ctx context.Context, whiteboardID int64, box state.BoundingBox) (*store.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, deleteCall{WhiteboardID: whiteboardID, Box: box})
	if f.failDelete != nil {
		return nil, f.failDelete
	}
	kept := f.strokes[:0]
	for _, s := range f.strokes {
		if s.WhiteboardID != whiteboardID || !box.Touches(s.Path) {
			kept = append(kept, s)
		}
	}
	f.strokes = kept
	return &store.Result{Message: "deleted"}, nil
}

func (f *fakeStore) seed(strokes ...state.Stroke) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strokes = append(f.strokes, strokes...)
}

func (f *fakeStore) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.deletes) + len(f.clears) + f.fetches + f.boardCreates + f.lookups
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeStore) set(fn func(f *fakeStore)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}
