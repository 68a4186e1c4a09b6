package session

import (
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
)

// Button identifies a player control.
type Button int

const (
	ButtonPlayPause Button = iota
	ButtonPrevious
	ButtonNext
	ButtonChat
	ButtonComments
	ButtonSegments
	ButtonDisplaySync
)

func (b Button) String() string {
	switch b {
	case ButtonPlayPause:
		return "play-pause"
	case ButtonPrevious:
		return "previous"
	case ButtonNext:
		return "next"
	case ButtonChat:
		return "chat"
	case ButtonComments:
		return "comments"
	case ButtonSegments:
		return "segments"
	case ButtonDisplaySync:
		return "display-sync"
	default:
		return "unknown"
	}
}

// ButtonState is the state a button was switched to.
type ButtonState int

const (
	ButtonOff ButtonState = iota
	ButtonOn
)

// Key is a key press, named the way terminals report it ("space", "left", "n").
type Key string

// Controller handles one concern of a playback session.
// Broadcast events reach every controller; the bool-returning ones are chained
// and stop at the first controller that handles them.
// Implementations embed Base, which provides no-op handlers.
type Controller interface {
	OnInit()
	OnNewVideo(entry *media.Entry)
	OnVideoLoaded(entry *media.Entry)
	OnMetadata(meta *media.Metadata)
	OnEngineInitialized()
	OnEngineReleased()
	OnEngineError(kind player.ErrorKind, err error)
	OnBuffering()
	OnPlay()
	OnPause()
	OnSeekEnd()
	OnPlayEnd()
	OnTick(positionMs, durationMs int64)
	OnFinish()

	OnButtonEvent(button Button, state ButtonState) bool
	OnKeyEvent(key Key) bool
	OnPreviousClicked() bool
	OnNextClicked() bool

	attach(d *Dispatcher)
}

// Base gives controllers no-op handlers and access to their dispatcher.
type Base struct {
	dispatcher *Dispatcher
}

func (b *Base) attach(d *Dispatcher) { b.dispatcher = d }

// Dispatcher returns the dispatcher the controller is registered with.
func (b *Base) Dispatcher() *Dispatcher { return b.dispatcher }

// Context returns the shared session context.
func (b *Base) Context() *Context { return b.dispatcher.Context() }

// Engine returns the active engine, nil when there is none.
func (b *Base) Engine() player.Engine { return b.dispatcher.Engine() }

// Video returns the current video, nil before the first one opens.
func (b *Base) Video() *media.Entry { return b.dispatcher.Video() }

func (b *Base) OnInit() {}
func (b *Base) OnNewVideo(*media.Entry) {}
func (b *Base) OnVideoLoaded(*media.Entry) {}
func (b *Base) OnMetadata(*media.Metadata) {}
func (b *Base) OnEngineInitialized() {}
func (b *Base) OnEngineReleased() {}
func (b *Base) OnEngineError(player.ErrorKind, error) {}
func (b *Base) OnBuffering() {}
func (b *Base) OnPlay() {}
func (b *Base) OnPause() {}
func (b *Base) OnSeekEnd() {}
func (b *Base) OnPlayEnd() {}
func (b *Base) OnTick(int64, int64) {}
func (b *Base) OnFinish() {}
func (b *Base) OnButtonEvent(Button, ButtonState) bool { return false }
func (b *Base) OnKeyEvent(Key) bool { return false }
func (b *Base) OnPreviousClicked() bool { return false }
func (b *Base) OnNextClicked() bool { return false }
