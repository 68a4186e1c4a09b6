package controller

import (
	"sync"
	"time"

	"github.com/tvloop/tvloop/display"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/history"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
	"github.com/tvloop/tvloop/session"
	"github.com/tvloop/tvloop/store"
)

func init() {
	filesystem.SetMemMapFs()
}

type harness struct {
	loop   *eventloop.Manual
	ctx    *session.Context
	mem    *store.Memory
	engine *player.Virtual
	d      *session.Dispatcher
}

func newHarness(setup func(ctx *session.Context), controllers ...session.Controller) *harness {
	loop := eventloop.NewManual(time.Unix(0, 0))
	mem := store.NewMemory("default")
	ctx := session.NewContext(loop, mem, history.Options{Capacity: 50, PersistDelay: 10 * time.Second})
	if setup != nil {
		setup(ctx)
	}

	engine := player.NewVirtual(loop, time.Second, &media.Format{Width: 1920, Height: 1080, FrameRate: 24})
	d := session.New(ctx, controllers...)
	d.SetEngine(engine)
	d.Init()

	return &harness{loop: loop, ctx: ctx, mem: mem, engine: engine, d: d}
}

func (h *harness) open(e *media.Entry) {
	h.d.OpenVideo(e)
	h.loop.Drain()
}

func (h *harness) done() bool {
	select {
	case <-h.d.Done():
		return true
	default:
		return false
	}
}

func (h *harness) count(op string) int {
	n := 0
	for _, o := range h.engine.Ops() {
		if o == op {
			n++
		}
	}
	return n
}

func video(id string, durationMs int64) *media.Entry {
	e := media.New(id, "Video "+id)
	e.DurationMs = durationMs
	return e
}

// scriptedDisplay records requests and lets the test drive the callbacks.
type scriptedDisplay struct {
	mu       sync.Mutex
	current  display.Mode
	modes    []display.Mode
	requests []display.Mode
	listener display.Listener
	restores int
	fail     error
}

func (s *scriptedDisplay) CurrentMode() (display.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *scriptedDisplay) SupportedModes() ([]display.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]display.Mode(nil), s.modes...), nil
}

func (s *scriptedDisplay) RequestMode(target display.Mode, l display.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, target)
	s.listener = l
	return s.fail
}

func (s *scriptedDisplay) RestoreOriginal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restores++
	return nil
}

func (s *scriptedDisplay) last() (display.Listener, display.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener, s.requests[len(s.requests)-1]
}

func (s *scriptedDisplay) start() {
	l, m := s.last()
	l.OnModeStart(m)
}

func (s *scriptedDisplay) success() {
	l, m := s.last()
	s.mu.Lock()
	s.current = m
	s.mu.Unlock()
	l.OnModeSuccess(m)
}
