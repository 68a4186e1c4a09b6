package eventloop

import (
	"sort"
	"sync"
	"time"
)

type delayed struct {
	at        time.Time
	seq       int
	fn        func()
	cancelled bool
}

// Manual is a Scheduler driven by a virtual clock. Nothing runs until Drain or Advance is called.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	ready   []func()
	pending []*delayed
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Post implements Scheduler.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = append(m.ready, fn)
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	task := &delayed{at: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, task)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		task.cancelled = true
	}
}

// Go runs fn inline so background work stays deterministic.
func (m *Manual) Go(fn func()) {
	fn()
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Drain runs posted tasks, including ones they post, until none are left.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.ready) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.ready[0]
		m.ready = m.ready[1:]
		m.mu.Unlock()

		fn()
	}
}

// Advance moves the clock forward by d, running due timers in deadline order.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()

	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		task := m.nextDue(target)
		if task == nil {
			break
		}

		task.fn()
		m.Drain()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of live delayed tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, task := range m.pending {
		if !task.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Time) *delayed {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.pending[:0]
	for _, task := range m.pending {
		if !task.cancelled {
			live = append(live, task)
		}
	}
	m.pending = live

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at.Equal(m.pending[j].at) {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at.Before(m.pending[j].at)
	})

	if len(m.pending) == 0 || m.pending[0].at.After(target) {
		return nil
	}

	task := m.pending[0]
	m.pending = m.pending[1:]
	m.now = task.at
	return task
}
