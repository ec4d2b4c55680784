// Package event carries surface input (pointer, resize, toolbar) from the UI
// to whoever is mounted on the surface.
package event

import (
	"sync"

	"sketchive/internal/state"
)

type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerLeave
	Resize
	ToolChange
	ClearRequest
)

// Event is one input notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind  Kind
	Point state.Point

	Width  int
	Height int

	Tool      state.Tool
	Color     string
	LineWidth float64
}

type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Kind][]subscriber)}
}

// Subscription is the handle returned by Subscribe. Close removes the handler;
// it is safe to call more than once.
type Subscription struct {
	bus  *Bus
	kind Kind
	id   uint64
	once sync.Once
}

func (b *Bus) Subscribe(kind Kind, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[kind] = append(b.subs[kind], subscriber{id: b.nextID, handler: h})
	return &Subscription{bus: b, kind: kind, id: b.nextID}
}

func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.bus.remove(s.kind, s.id)
	})
	return nil
}

func (b *Bus) remove(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[kind]
	for i, sub := range list {
		if sub.id == id {
			b.subs[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish calls every handler subscribed to ev.Kind. Handlers run on the
// caller's goroutine.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	list := append([]subscriber(nil), b.subs[ev.Kind]...)
	b.mu.RUnlock()
	for _, sub := range list {
		sub.handler(ev)
	}
}

// Subscribers returns how many handlers are registered for kind.
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

// Group collects subscriptions so they can be released together.
type Group struct {
	subs []*Subscription
}

func (g *Group) Add(s *Subscription) {
	g.subs = append(g.subs, s)
}

func (g *Group) Close() error {
	for _, s := range g.subs {
		s.Close()
	}
	g.subs = nil
	return nil
}
