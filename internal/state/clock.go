package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// sessionID identifies this process to the store for request correlation.
var sessionID = uuid.NewString()

func SessionID() string { return sessionID }

// Generation is a monotonically increasing counter used to tag requests whose
// results may arrive out of order. Only the result carrying the latest tag is
// applied.
type Generation struct {
	n atomic.Uint64
}

// Next issues a new tag; it becomes the latest.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the latest issued tag.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsLatest reports whether tag is still the latest issued.
func (g *Generation) IsLatest(tag uint64) bool {
	return g.n.Load() == tag
}
