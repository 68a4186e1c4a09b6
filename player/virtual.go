package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/media"
)

// ErrReleased is returned by a Virtual engine after Close.
var ErrReleased = errors.New("engine released")

// Virtual is an in-process engine that advances a simulated position on a scheduler.
// It renders nothing and is used for headless sessions.
type Virtual struct {
	mu        sync.Mutex
	scheduler eventloop.Scheduler
	tick      time.Duration
	listener  Listener
	format    *media.Format

	initialized bool
	released    bool
	loaded      bool
	playing     bool
	positionMs  int64
	durationMs  int64
	cancelTick  func()
	ops         []string

	// FailLoad, when set, is reported as a source error by the next Load.
	FailLoad error
}

// NewVirtual creates a virtual engine ticking every tick on s.
// format is reported as the decoded format of every loaded entry.
func NewVirtual(s eventloop.Scheduler, tick time.Duration, format *media.Format) *Virtual {
	if tick <= 0 {
		tick = time.Second
	}
	return &Virtual{
		scheduler:  s,
		tick:       tick,
		listener:   NopListener{},
		format:     format,
		durationMs: -1,
	}
}

// SetListener implements Engine.
func (v *Virtual) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	v.mu.Lock()
	v.listener = l
	v.mu.Unlock()
}

// Load implements Engine.
func (v *Virtual) Load(entry *media.Entry, startMs int64) error {
	if media.IsEmpty(entry) {
		return fmt.Errorf("load: empty entry")
	}

	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return ErrReleased
	}

	first := !v.initialized
	v.initialized = true
	v.ops = append(v.ops, fmt.Sprintf("load:%s@%d", entry.VideoID, startMs))

	if fail := v.FailLoad; fail != nil {
		v.FailLoad = nil
		v.loaded = false
		l := v.listener
		v.mu.Unlock()
		if first {
			l.OnInitialized()
		}
		l.OnError(ErrorSource, fail)
		return nil
	}

	v.loaded = true
	v.positionMs = max(startMs, 0)
	v.durationMs = entry.DurationMs
	if v.durationMs > 0 && v.positionMs > v.durationMs {
		v.positionMs = v.durationMs
	}
	l := v.listener
	v.mu.Unlock()

	if first {
		l.OnInitialized()
	}
	l.OnLoaded()
	return nil
}

// Play implements Engine.
func (v *Virtual) Play() error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return ErrReleased
	}
	v.ops = append(v.ops, "play")
	if v.playing {
		v.mu.Unlock()
		return nil
	}
	v.playing = true
	v.scheduleLocked()
	l := v.listener
	v.mu.Unlock()

	l.OnPlay()
	return nil
}

// Pause implements Engine.
func (v *Virtual) Pause() error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return ErrReleased
	}
	v.ops = append(v.ops, "pause")
	if !v.playing {
		v.mu.Unlock()
		return nil
	}
	v.playing = false
	v.cancelLocked()
	l := v.listener
	v.mu.Unlock()

	l.OnPause()
	return nil
}

// Seek implements Engine.
func (v *Virtual) Seek(positionMs int64) error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return ErrReleased
	}
	v.ops = append(v.ops, fmt.Sprintf("seek:%d", positionMs))
	v.positionMs = max(positionMs, 0)
	if v.durationMs > 0 && v.positionMs > v.durationMs {
		v.positionMs = v.durationMs
	}
	l := v.listener
	v.mu.Unlock()

	l.OnSeekEnd()
	return nil
}

// IsPlaying implements Engine.
func (v *Virtual) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// PositionMs implements Engine.
func (v *Virtual) PositionMs() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.positionMs
}

// DurationMs implements Engine.
func (v *Virtual) DurationMs() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.durationMs
}

// CurrentFormat implements Engine.
func (v *Virtual) CurrentFormat() *media.Format {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.loaded || v.format == nil {
		return nil
	}
	format := *v.format
	return &format
}

// Close implements Engine.
func (v *Virtual) Close() error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return nil
	}
	v.released = true
	v.playing = false
	v.cancelLocked()
	v.ops = append(v.ops, "close")
	l := v.listener
	v.mu.Unlock()

	l.OnReleased()
	return nil
}

// Ops returns the commands received so far, oldest first.
func (v *Virtual) Ops() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.ops...)
}

func (v *Virtual) scheduleLocked() {
	v.cancelLocked()
	v.cancelTick = v.scheduler.After(v.tick, v.advance)
}

func (v *Virtual) cancelLocked() {
	if v.cancelTick != nil {
		v.cancelTick()
		v.cancelTick = nil
	}
}

func (v *Virtual) advance() {
	v.mu.Lock()
	v.cancelTick = nil
	if !v.playing || !v.loaded {
		v.mu.Unlock()
		return
	}

	v.positionMs += v.tick.Milliseconds()
	ended := v.durationMs > 0 && v.positionMs >= v.durationMs
	if ended {
		v.positionMs = v.durationMs
		v.playing = false
	} else {
		v.scheduleLocked()
	}
	position, duration := v.positionMs, v.durationMs
	l := v.listener
	v.mu.Unlock()

	l.OnPosition(position, duration)
	if ended {
		l.OnPlaybackEnded()
	}
}
