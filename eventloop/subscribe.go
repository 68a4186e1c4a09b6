package eventloop

import (
	"context"
	"sync/atomic"
)

// Stream produces items until it returns. Returning nil completes the stream.
// Producers must stop early when ctx is done.
type Stream[T any] func(ctx context.Context, emit func(T)) error

// Handlers receive stream events on the loop. Nil handlers are skipped.
type Handlers[T any] struct {
	Item  func(T)
	Error func(error)
	Done  func()
}

// Subscription is a live stream. Events stop reaching handlers once it is cancelled.
type Subscription struct {
	cancel context.CancelFunc
	live   atomic.Bool
}

// Subscribe runs stream off the loop and delivers its events on the loop.
func Subscribe[T any](s Scheduler, stream Stream[T], h Handlers[T]) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{cancel: cancel}
	sub.live.Store(true)

	deliver := func(fn func()) {
		s.Post(func() {
			if sub.live.Load() {
				fn()
			}
		})
	}

	s.Go(func() {
		err := stream(ctx, func(item T) {
			if h.Item != nil {
				deliver(func() { h.Item(item) })
			}
		})

		deliver(func() {
			sub.live.Store(false)
			cancel()

			switch {
			case err != nil && ctx.Err() == nil:
				if h.Error != nil {
					h.Error(err)
				}
			case err == nil && h.Done != nil:
				h.Done()
			}
		})
	})

	return sub
}

// Cancel stops delivery. It is safe to call on a nil or already cancelled subscription.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}

	s.live.Store(false)
	s.cancel()
}

// Live reports whether events are still delivered.
func (s *Subscription) Live() bool {
	return s != nil && s.live.Load()
}
