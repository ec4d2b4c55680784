package state

import "sync"

// StrokeCache is the locally known, store-ordered stroke list used for redraw.
// It is rebuilt from the store and is never authoritative.
type StrokeCache struct {
	strokes []Stroke
	mu      sync.RWMutex
}

func NewStrokeCache() *StrokeCache {
	return &StrokeCache{strokes: make([]Stroke, 0)}
}

// Replace swaps the whole list, keeping the given order.
func (c *StrokeCache) Replace(strokes []Stroke) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = append(make([]Stroke, 0, len(strokes)), strokes...)
}

// Append adds a stroke the store has just acknowledged. It reports false and
// changes nothing when a fetch already delivered a stroke with that id.
func (c *StrokeCache) Append(s Stroke) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.ID != 0 {
		for _, known := range c.strokes {
			if known.ID == s.ID {
				return false
			}
		}
	}
	c.strokes = append(c.strokes, s)
	return true
}

func (c *StrokeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = make([]Stroke, 0)
}

// Strokes returns a copy in draw order.
func (c *StrokeCache) Strokes() []Stroke {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Stroke, len(c.strokes))
	copy(out, c.strokes)
	return out
}

func (c *StrokeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.strokes)
}
