package controller

import (
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
	"github.com/tvloop/tvloop/session"
)

const (
	// maxReloads bounds source error retries of a single video.
	maxReloads = 2
	// restartThresholdMs is the position after which "previous" restarts the video instead.
	restartThresholdMs = 5_000
)

// Loader drives the engine from the queue: it loads opened videos, walks the
// queue on previous/next and continues with the next entry when playback ends.
type Loader struct {
	session.Base

	reloads int
}

// NewLoader creates a loader controller.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) OnNewVideo(entry *media.Entry) {
	l.reloads = 0
	l.Context().Queue.SetCurrent(entry)
	l.load(entry, l.startPosition(entry))
}

func (l *Loader) startPosition(entry *media.Entry) int64 {
	if state, ok := session.Find[*State](l.Dispatcher()).Get(); ok {
		return state.StartPosition(entry)
	}
	return entry.PositionMs()
}

func (l *Loader) load(entry *media.Entry, startMs int64) {
	engine := l.Engine()
	if engine == nil {
		return
	}

	log.Infof("loading %s at %dms", entry, startMs)
	if err := engine.Load(entry, startMs); err != nil {
		log.Errorf("load %s: %v", entry, err)
		l.Dispatcher().EngineError(player.ErrorSource, err)
	}
}

// next returns the entry following the current one in the queue, or in its group.
func (l *Loader) next() (*media.Entry, bool) {
	ctx := l.Context()
	if next, ok := ctx.Queue.Next().Get(); ok {
		return next, true
	}

	if video := l.Video(); video != nil {
		return ctx.Groups.After(video)
	}

	return nil, false
}

func (l *Loader) OnNextClicked() bool {
	next, ok := l.next()
	if !ok {
		return false
	}

	l.Dispatcher().OpenVideo(next)
	return true
}

func (l *Loader) OnPreviousClicked() bool {
	engine := l.Engine()
	if engine != nil && engine.PositionMs() > restartThresholdMs {
		if err := engine.Seek(0); err != nil {
			log.Warnf("seek: %v", err)
		}
		return true
	}

	previous, ok := l.Context().Queue.Previous().Get()
	if !ok {
		return false
	}

	l.Dispatcher().OpenVideo(previous)
	return true
}

func (l *Loader) OnPlayEnd() {
	video := l.Video()
	if video != nil && video.FinishOnEnded {
		l.Dispatcher().Finish()
		return
	}

	if !l.OnNextClicked() {
		log.Info("queue exhausted")
		l.Dispatcher().Finish()
	}
}

func (l *Loader) OnEngineError(kind player.ErrorKind, err error) {
	video := l.Video()
	if video == nil || kind != player.ErrorSource {
		return
	}

	if l.reloads < maxReloads {
		l.reloads++
		log.Warnf("reloading %s after %v (attempt %d)", video, err, l.reloads)
		position := int64(0)
		if engine := l.Engine(); engine != nil {
			position = engine.PositionMs()
		}
		l.load(video, position)
		return
	}

	log.Errorf("giving up on %s: %v", video, err)
	l.OnPlayEnd()
}
