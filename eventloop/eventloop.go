// Package eventloop provides the single logical thread every session callback runs on,
// together with coalescing timers and cancellable stream subscriptions.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Run when the loop was closed.
var ErrClosed = errors.New("event loop closed")

// Scheduler runs functions on one logical thread.
type Scheduler interface {
	// Post queues fn to run on the loop. It never blocks the caller on fn.
	Post(fn func())
	// After runs fn on the loop once d has elapsed, unless the returned cancel is called first.
	After(d time.Duration, fn func()) (cancel func())
	// Go runs blocking work off the loop.
	Go(fn func())
	// Now returns the loop's clock.
	Now() time.Time
}

// Loop is a goroutine-backed Scheduler.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop whose queue holds up to buffer pending tasks before Post blocks.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes posted tasks until ctx is done or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrClosed
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Close stops the loop. Tasks posted afterwards are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// Post implements Scheduler.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.tasks <- fn:
	}
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})

	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

// Go implements Scheduler.
func (l *Loop) Go(fn func()) {
	go fn()
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Call runs fn on the loop and waits for it. It must not be called from the loop itself.
func Call[T any](s Scheduler, fn func() T) T {
	result := make(chan T, 1)
	s.Post(func() { result <- fn() })
	return <-result
}
