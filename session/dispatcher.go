package session

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
)

// Dispatcher delivers session events to its controllers in registration order.
// It must be driven from the context's loop.
type Dispatcher struct {
	id          string
	ctx         *Context
	controllers []Controller

	video  *media.Entry
	engine player.Engine

	finished bool
	released bool
	closing  bool
	holds    int
	done     chan struct{}
}

// New creates a dispatcher over a fixed, ordered chain of controllers.
func New(ctx *Context, controllers ...Controller) *Dispatcher {
	d := &Dispatcher{
		id:          uuid.NewString(),
		ctx:         ctx,
		controllers: controllers,
		done:        make(chan struct{}),
	}

	for _, c := range controllers {
		c.attach(d)
	}

	return d
}

// ID identifies the session in logs.
func (d *Dispatcher) ID() string { return d.id }

// Context returns the shared session context.
func (d *Dispatcher) Context() *Context { return d.ctx }

// Video returns the current video, nil before the first one opens.
func (d *Dispatcher) Video() *media.Entry { return d.video }

// Engine returns the active engine, nil when there is none.
func (d *Dispatcher) Engine() player.Engine { return d.engine }

// Controllers returns the registered controllers in order.
func (d *Dispatcher) Controllers() []Controller {
	return append([]Controller(nil), d.controllers...)
}

// Done is closed once the session finished and its engine was released.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// SetEngine makes e the active engine and routes its callbacks through the loop.
func (d *Dispatcher) SetEngine(e player.Engine) {
	d.engine = e
	d.released = false
	if e != nil {
		e.SetListener(d.EngineListener())
	}
}

// Find returns the first registered controller of type T.
func Find[T Controller](d *Dispatcher) mo.Option[T] {
	if d == nil {
		return mo.None[T]()
	}

	for _, c := range d.controllers {
		if t, ok := c.(T); ok {
			return mo.Some(t)
		}
	}

	return mo.None[T]()
}

func (d *Dispatcher) logger(c Controller, event string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"session":    d.id,
		"controller": fmt.Sprintf("%T", c),
		"event":      event,
	})
}

// call runs one handler, containing any panic.
func (d *Dispatcher) call(c Controller, event string, fn func(Controller) bool) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger(c, event).Errorf("controller panicked: %v\n%s", r, debug.Stack())
			handled = false
		}
	}()

	return fn(c)
}

func (d *Dispatcher) broadcast(event string, fn func(Controller)) {
	for _, c := range d.controllers {
		d.call(c, event, func(c Controller) bool {
			fn(c)
			return false
		})
	}
}

func (d *Dispatcher) chain(event string, fn func(Controller) bool) bool {
	for _, c := range d.controllers {
		if d.call(c, event, fn) {
			d.logger(c, event).Debug("handled")
			return true
		}
	}
	return false
}

// Init broadcasts OnInit.
func (d *Dispatcher) Init() {
	d.broadcast("init", func(c Controller) { c.OnInit() })
}

// OpenVideo announces entry to the controllers, then makes it the current video.
func (d *Dispatcher) OpenVideo(entry *media.Entry) {
	if media.IsEmpty(entry) || d.finished {
		return
	}

	d.broadcast("new_video", func(c Controller) { c.OnNewVideo(entry) })
	d.video = entry
}

// VideoLoaded broadcasts OnVideoLoaded for the current video.
func (d *Dispatcher) VideoLoaded() {
	if d.video == nil {
		return
	}
	video := d.video
	d.broadcast("video_loaded", func(c Controller) { c.OnVideoLoaded(video) })
}

// Metadata broadcasts OnMetadata.
func (d *Dispatcher) Metadata(meta *media.Metadata) {
	if meta == nil {
		return
	}
	d.broadcast("metadata", func(c Controller) { c.OnMetadata(meta) })
}

// EngineInitialized broadcasts OnEngineInitialized.
func (d *Dispatcher) EngineInitialized() {
	d.broadcast("engine_initialized", func(c Controller) { c.OnEngineInitialized() })
}

// EngineReleased broadcasts OnEngineReleased. A release outside Finish ends the session.
func (d *Dispatcher) EngineReleased() {
	if d.released {
		return
	}
	d.released = true

	d.broadcast("engine_released", func(c Controller) { c.OnEngineReleased() })

	if !d.finished {
		d.Finish()
		return
	}
	d.close()
}

// EngineError broadcasts OnEngineError.
func (d *Dispatcher) EngineError(kind player.ErrorKind, err error) {
	log.WithFields(logrus.Fields{"session": d.id, "kind": kind}).Warnf("engine error: %v", err)
	d.broadcast("engine_error", func(c Controller) { c.OnEngineError(kind, err) })
}

// Buffering broadcasts OnBuffering.
func (d *Dispatcher) Buffering() {
	d.broadcast("buffering", func(c Controller) { c.OnBuffering() })
}

// Play broadcasts OnPlay.
func (d *Dispatcher) Play() {
	d.broadcast("play", func(c Controller) { c.OnPlay() })
}

// Pause broadcasts OnPause.
func (d *Dispatcher) Pause() {
	d.broadcast("pause", func(c Controller) { c.OnPause() })
}

// SeekEnd broadcasts OnSeekEnd.
func (d *Dispatcher) SeekEnd() {
	d.broadcast("seek_end", func(c Controller) { c.OnSeekEnd() })
}

// PlayEnd broadcasts OnPlayEnd.
func (d *Dispatcher) PlayEnd() {
	d.broadcast("play_end", func(c Controller) { c.OnPlayEnd() })
}

// Tick broadcasts OnTick.
func (d *Dispatcher) Tick(positionMs, durationMs int64) {
	d.broadcast("tick", func(c Controller) { c.OnTick(positionMs, durationMs) })
}

// ButtonEvent chains OnButtonEvent.
func (d *Dispatcher) ButtonEvent(button Button, state ButtonState) bool {
	return d.chain("button:"+button.String(), func(c Controller) bool { return c.OnButtonEvent(button, state) })
}

// KeyEvent chains OnKeyEvent.
func (d *Dispatcher) KeyEvent(key Key) bool {
	return d.chain("key:"+string(key), func(c Controller) bool { return c.OnKeyEvent(key) })
}

// PreviousClicked chains OnPreviousClicked.
func (d *Dispatcher) PreviousClicked() bool {
	return d.chain("previous", func(c Controller) bool { return c.OnPreviousClicked() })
}

// NextClicked chains OnNextClicked.
func (d *Dispatcher) NextClicked() bool {
	return d.chain("next", func(c Controller) bool { return c.OnNextClicked() })
}

// Finish ends the session: controllers see OnFinish, pending history is written
// and the engine is closed. Done is closed once the engine reports its release.
func (d *Dispatcher) Finish() {
	if d.finished {
		return
	}
	d.finished = true

	d.broadcast("finish", func(c Controller) { c.OnFinish() })
	d.ctx.History.Flush()

	if d.engine == nil || d.released {
		d.close()
		return
	}

	if err := d.engine.Close(); err != nil {
		log.Warnf("close engine: %v", err)
		d.close()
	}
}

// Hold keeps Done open for teardown work that outlives the engine.
// The returned release may be called more than once.
func (d *Dispatcher) Hold() (release func()) {
	d.holds++
	var released bool
	return func() {
		if released {
			return
		}
		released = true
		d.holds--
		if d.closing {
			d.close()
		}
	}
}

func (d *Dispatcher) close() {
	d.closing = true
	if d.holds > 0 {
		return
	}

	select {
	case <-d.done:
	default:
		log.WithFields(logrus.Fields{"session": d.id}).Info("session finished")
		close(d.done)
	}
}
