package surface

import (
	"context"
	"sync"
)

// Loop runs posted functions one at a time on the goroutine that called Run.
// Background work started with Go hands its result back through Post, so
// everything that touches surface state happens on the loop.
type Loop struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	pending int
	stopped bool
	wake    chan struct{}
}

func NewLoop() *Loop {
	l := &Loop{wake: make(chan struct{}, 1)}
	l.idle = sync.NewCond(&l.mu)
	return l
}

// Post queues fn. It never blocks and may be called from any goroutine,
// including the loop itself. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.pending++
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Go runs work on a new goroutine and posts the function it returns, if any.
// work must not touch loop-owned state.
func (l *Loop) Go(work func() func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending++
	l.mu.Unlock()

	go func() {
		defer l.done()
		if next := work(); next != nil {
			l.Post(next)
		}
	}()
}

// Run processes posted functions until ctx is done. Functions still queued
// at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			l.stop()
			return err
		}
		if fn, ok := l.next(); ok {
			fn()
			l.done()
			continue
		}
		select {
		case <-ctx.Done():
			l.stop()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Wait blocks until no posted function or background work is outstanding.
func (l *Loop) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.pending > 0 {
		l.idle.Wait()
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) done() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
	if l.pending == 0 {
		l.idle.Broadcast()
	}
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.pending -= len(l.queue)
	l.queue = nil
	if l.pending == 0 {
		l.idle.Broadcast()
	}
}
