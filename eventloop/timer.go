package eventloop

import "time"

// Timer holds at most one pending deadline. Resetting replaces the previous deadline.
// It must be used from the loop only.
type Timer struct {
	scheduler Scheduler
	cancel    func()
	gen       uint64
}

// NewTimer creates an idle timer on s.
func NewTimer(s Scheduler) *Timer {
	return &Timer{scheduler: s}
}

// Reset schedules fn after d, dropping any pending invocation.
func (t *Timer) Reset(d time.Duration, fn func()) {
	t.Stop()

	t.gen++
	gen := t.gen
	t.cancel = t.scheduler.After(d, func() {
		if gen != t.gen || t.cancel == nil {
			return
		}
		t.cancel = nil
		fn()
	})
}

// Stop drops the pending invocation. It reports whether one was pending.
func (t *Timer) Stop() bool {
	if t.cancel == nil {
		return false
	}

	t.cancel()
	t.cancel = nil
	return true
}

// Pending reports whether an invocation is scheduled.
func (t *Timer) Pending() bool {
	return t.cancel != nil
}
