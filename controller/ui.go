package controller

import (
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/session"
)

// SeekStepMs is the distance of a single seek key press.
const SeekStepMs = 10_000

// Key bindings understood by the UI controller.
const (
	KeyPlayPause session.Key = "space"
	KeyBack      session.Key = "left"
	KeyForward   session.Key = "right"
	KeyNext      session.Key = "n"
	KeyPrevious  session.Key = "p"
	KeyChat      session.Key = "c"
	KeyComments  session.Key = "m"
	KeySegments  session.Key = "s"
	KeySync      session.Key = "d"
	KeyQuit      session.Key = "q"
)

// UI maps keys and player buttons to session actions.
type UI struct {
	session.Base

	chat, comments, segments, sync bool
}

// NewUI creates a UI controller.
func NewUI() *UI {
	return &UI{
		chat:     viper.GetBool(key.ChatEnable),
		segments: viper.GetBool(key.SegmentsEnable),
		sync:     viper.GetBool(key.DisplayAutoSync),
	}
}

func (u *UI) togglePlay() {
	state, ok := session.Find[*State](u.Dispatcher()).Get()
	if !ok {
		return
	}
	state.SetPlayEnabled(!state.PlayEnabled())
}

func (u *UI) seek(deltaMs int64) {
	engine := u.Engine()
	if engine == nil {
		return
	}

	target := max(engine.PositionMs()+deltaMs, 0)
	if duration := engine.DurationMs(); duration > 0 {
		target = min(target, duration)
	}

	if err := engine.Seek(target); err != nil {
		log.Warnf("seek: %v", err)
	}
}

func toggle(on *bool) session.ButtonState {
	*on = !*on
	if *on {
		return session.ButtonOn
	}
	return session.ButtonOff
}

func (u *UI) OnKeyEvent(key session.Key) bool {
	d := u.Dispatcher()

	switch key {
	case KeyPlayPause:
		return d.ButtonEvent(session.ButtonPlayPause, session.ButtonOn)
	case KeyBack:
		u.seek(-SeekStepMs)
	case KeyForward:
		u.seek(SeekStepMs)
	case KeyNext:
		return d.NextClicked()
	case KeyPrevious:
		return d.PreviousClicked()
	case KeyChat:
		return d.ButtonEvent(session.ButtonChat, toggle(&u.chat))
	case KeyComments:
		return d.ButtonEvent(session.ButtonComments, toggle(&u.comments))
	case KeySegments:
		return d.ButtonEvent(session.ButtonSegments, toggle(&u.segments))
	case KeySync:
		return d.ButtonEvent(session.ButtonDisplaySync, toggle(&u.sync))
	case KeyQuit:
		d.Finish()
	default:
		return false
	}

	return true
}

func (u *UI) OnButtonEvent(button session.Button, _ session.ButtonState) bool {
	if button != session.ButtonPlayPause {
		return false
	}

	u.togglePlay()
	return true
}
