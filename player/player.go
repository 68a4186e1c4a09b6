// Package player defines the media engine abstraction driven by a playback session.
// The primary implementation controls 'mpv' via its JSON-IPC interface.
package player

import (
	"github.com/tvloop/tvloop/media"
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	// ErrorSource means the media could not be opened or decoded.
	ErrorSource ErrorKind = "source"
	// ErrorIPC means the engine stopped answering commands.
	ErrorIPC ErrorKind = "ipc"
	// ErrorProcess means the engine process failed.
	ErrorProcess ErrorKind = "process"
)

// Engine is a media decoder and renderer.
type Engine interface {
	// Load opens an entry, starting at startMs. Loading replaces the current media.
	Load(entry *media.Entry, startMs int64) error
	Play() error
	Pause() error
	// Seek moves to an absolute position in milliseconds.
	Seek(positionMs int64) error
	IsPlaying() bool
	PositionMs() int64
	// DurationMs is -1 when unknown.
	DurationMs() int64
	// CurrentFormat returns the format being decoded, nil before it is known.
	CurrentFormat() *media.Format
	// SetListener installs the receiver of lifecycle callbacks. Callbacks may arrive on any goroutine.
	SetListener(l Listener)
	// Close releases the engine. OnReleased follows.
	Close() error
}

// Listener receives engine lifecycle callbacks.
type Listener interface {
	OnInitialized()
	OnLoaded()
	OnReleased()
	OnError(kind ErrorKind, err error)
	OnBuffering()
	OnPlay()
	OnPause()
	OnSeekEnd()
	OnPlaybackEnded()
	OnPosition(positionMs, durationMs int64)
}

// Chapter marks a named position on the engine's timeline.
type Chapter struct {
	Title   string
	StartMs int64
}

// ChapterMarker is implemented by engines that can display chapters.
type ChapterMarker interface {
	SetChapters(chapters []Chapter) error
}

// NopListener ignores every callback.
type NopListener struct{}

func (NopListener) OnInitialized() {}
func (NopListener) OnLoaded() {}
func (NopListener) OnReleased() {}
func (NopListener) OnError(ErrorKind, error) {}
func (NopListener) OnBuffering() {}
func (NopListener) OnPlay() {}
func (NopListener) OnPause() {}
func (NopListener) OnSeekEnd() {}
func (NopListener) OnPlaybackEnded() {}
func (NopListener) OnPosition(int64, int64) {}
