package display

import (
	"sync"
	"time"
)

// Simulated is an in-process Helper that pretends to switch modes after a latency.
// It backs the player on hosts without a switchable display.
type Simulated struct {
	Latency time.Duration
	// Fail makes every request report an error after the latency.
	Fail error

	mu       sync.Mutex
	current  Mode
	original Mode
	modes    []Mode
	requests []Mode
}

// NewSimulated creates a simulated display showing current and offering modes.
func NewSimulated(current Mode, modes ...Mode) *Simulated {
	return &Simulated{current: current, original: current, modes: modes}
}

// CurrentMode implements Helper.
func (s *Simulated) CurrentMode() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// SupportedModes implements Helper.
func (s *Simulated) SupportedModes() ([]Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Mode(nil), s.modes...), nil
}

// RequestMode implements Helper.
func (s *Simulated) RequestMode(target Mode, l Listener) error {
	s.mu.Lock()
	s.requests = append(s.requests, target)
	s.mu.Unlock()

	l.OnModeStart(target)
	time.AfterFunc(s.Latency, func() {
		if s.Fail != nil {
			l.OnModeError(target, s.Fail)
			return
		}

		s.mu.Lock()
		s.current = target
		s.mu.Unlock()
		l.OnModeSuccess(target)
	})

	return nil
}

// RestoreOriginal implements Helper.
func (s *Simulated) RestoreOriginal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.original
	return nil
}

// Requests returns every requested mode in order.
func (s *Simulated) Requests() []Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Mode(nil), s.requests...)
}
