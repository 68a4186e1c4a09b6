// Package controller implements the session controllers and their fixed registration order.
package controller

import (
	"github.com/tvloop/tvloop/history"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/session"
)

// endMarginMs is the remaining time under which a saved position restarts the video.
const endMarginMs = 10_000

// State tracks playback progress, saves it to the history and restores it on load.
// It owns the user's play intent, which other controllers may block temporarily.
type State struct {
	session.Base

	playEnabled bool
	blocked     bool
	loaded      bool
}

// NewState creates a state controller. Playback starts enabled.
func NewState() *State {
	return &State{playEnabled: true}
}

// PlayEnabled reports whether the user wants playback running.
func (s *State) PlayEnabled() bool { return s.playEnabled }

// Blocked reports whether play intent changes are suspended.
func (s *State) Blocked() bool { return s.blocked }

// BlockPlay freezes the play intent, so engine pauses issued by other controllers
// are not mistaken for the user's.
func (s *State) BlockPlay() {
	s.blocked = true
}

// Unblock lifts BlockPlay and sets the play intent without touching the engine.
func (s *State) Unblock(playEnabled bool) {
	s.blocked = false
	s.playEnabled = playEnabled
}

// SetPlayEnabled changes the play intent and applies it to the engine.
func (s *State) SetPlayEnabled(enabled bool) {
	s.playEnabled = enabled

	engine := s.Engine()
	if engine == nil || !s.loaded {
		return
	}

	var err error
	if enabled {
		err = engine.Play()
	} else {
		err = engine.Pause()
	}
	if err != nil {
		log.Warnf("apply play intent: %v", err)
	}
}

// StartPosition is where entry should start: the saved position if any, else the
// entry's own progress. Positions too close to the end restart the video.
func (s *State) StartPosition(entry *media.Entry) int64 {
	if media.IsEmpty(entry) || entry.IsLive {
		return 0
	}

	position := entry.PositionMs()
	duration := entry.DurationMs

	if record, ok := s.Context().History.GetByVideoID(entry.VideoID).Get(); ok {
		position = record.PositionMs
		if record.DurationMs > 0 {
			duration = record.DurationMs
		}
	}

	if duration > 0 && duration-position < endMarginMs {
		return 0
	}

	return max(position, 0)
}

// save records the engine position of the current video.
func (s *State) save() {
	video, engine := s.Video(), s.Engine()
	if video == nil || engine == nil || !s.loaded || video.IsLive {
		return
	}

	position, duration := engine.PositionMs(), engine.DurationMs()
	if duration <= 0 {
		duration = video.DurationMs
	}

	video.SyncPosition(position, duration)
	s.Context().Queue.Sync(video)

	record := history.NewRecord(video.Copy(), position, duration, s.Context().Scheduler.Now())
	s.Context().History.Save(record)
	log.Debugf("saved %s", record)
}

func (s *State) OnNewVideo(*media.Entry) {
	s.save()
	s.loaded = false
}

func (s *State) OnVideoLoaded(entry *media.Entry) {
	s.loaded = true
	if s.blocked {
		return
	}
	s.SetPlayEnabled(s.playEnabled)
}

func (s *State) OnPlay() {
	if !s.blocked {
		s.playEnabled = true
	}
}

func (s *State) OnPause() {
	if s.blocked {
		return
	}
	s.playEnabled = false
	s.save()
}

func (s *State) OnPlayEnd() {
	if video := s.Video(); video != nil {
		video.MarkFullyViewed()
		s.Context().Queue.Sync(video)
	}
	s.save()
}

func (s *State) OnEngineReleased() {
	s.save()
	s.loaded = false
}

func (s *State) OnFinish() {
	s.save()
	s.loaded = false
}
