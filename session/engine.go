package session

import (
	"github.com/tvloop/tvloop/player"
)

// engineListener moves engine callbacks onto the loop before dispatching them.
type engineListener struct {
	d *Dispatcher
}

// EngineListener returns a player.Listener safe to call from any goroutine.
func (d *Dispatcher) EngineListener() player.Listener {
	return engineListener{d: d}
}

func (l engineListener) post(fn func(d *Dispatcher)) {
	l.d.ctx.Scheduler.Post(func() { fn(l.d) })
}

func (l engineListener) OnInitialized() { l.post((*Dispatcher).EngineInitialized) }
func (l engineListener) OnLoaded() { l.post((*Dispatcher).VideoLoaded) }
func (l engineListener) OnReleased() { l.post((*Dispatcher).EngineReleased) }
func (l engineListener) OnBuffering() { l.post((*Dispatcher).Buffering) }
func (l engineListener) OnPlay() { l.post((*Dispatcher).Play) }
func (l engineListener) OnPause() { l.post((*Dispatcher).Pause) }
func (l engineListener) OnSeekEnd() { l.post((*Dispatcher).SeekEnd) }

func (l engineListener) OnPlaybackEnded() { l.post((*Dispatcher).PlayEnd) }

func (l engineListener) OnError(kind player.ErrorKind, err error) {
	l.post(func(d *Dispatcher) { d.EngineError(kind, err) })
}

func (l engineListener) OnPosition(positionMs, durationMs int64) {
	l.post(func(d *Dispatcher) { d.Tick(positionMs, durationMs) })
}
