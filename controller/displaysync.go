package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/config"
	"github.com/tvloop/tvloop/display"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/session"
)

const (
	// Videos this short never switch modes.
	alwaysSkipMs = 30_000
	// With skip shorts on, videos up to this length count as shorts.
	shortsMaxMs = 61_000
	// maxFormatRetries bounds how often Apply waits for the engine to report a format.
	maxFormatRetries = 5
)

// SyncState is the state of the display mode switch.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncApplying
	SyncApplied
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncApplying:
		return "applying"
	case SyncApplied:
		return "applied"
	case SyncError:
		return "error"
	default:
		return fmt.Sprintf("SyncState(%d)", int(s))
	}
}

// DisplaySyncOptions tune the display sync controller.
type DisplaySyncOptions struct {
	AutoSync bool
	// Pause is how long playback is held while the display switches. Zero never pauses.
	Pause time.Duration
	// ApplyDelay separates a video load from the switch request.
	ApplyDelay time.Duration
	// RestoreDelay separates the engine release from restoring the original mode.
	RestoreDelay time.Duration
	SkipShorts   bool
	Select       display.Options
}

// DisplaySyncOptionsFromConfig reads the display.* settings.
func DisplaySyncOptionsFromConfig() DisplaySyncOptions {
	return DisplaySyncOptions{
		AutoSync:     viper.GetBool(key.DisplayAutoSync),
		Pause:        config.Millis(key.DisplayPauseMs),
		ApplyDelay:   config.Millis(key.DisplayApplyDelayMs),
		RestoreDelay: config.Millis(key.DisplayRestoreDelayMs),
		SkipShorts:   viper.GetBool(key.DisplaySkipShorts),
		Select: display.Options{
			ResolutionSwitch:  viper.GetBool(key.DisplayResolutionSwitch),
			FpsCorrection:     viper.GetBool(key.DisplayFpsCorrection),
			DoubleRefreshRate: viper.GetBool(key.DisplayDoubleRefreshRate),
			Skip24Rate:        viper.GetBool(key.DisplaySkip24Rate),
		},
	}
}

// DisplaySync switches the display to the refresh rate of the playing video.
// Playback is held while the switch runs and resumed by its own timer, at most
// once per switch, whether or not the helper ever reports completion.
type DisplaySync struct {
	session.Base

	options DisplaySyncOptions
	state   SyncState
	target  display.Mode
	// request numbers mode requests so callbacks of abandoned ones are dropped.
	request uint64

	applyTimer   *eventloop.Timer
	resumeTimer  *eventloop.Timer
	restoreTimer *eventloop.Timer

	pausePending           bool
	wasPlayingBeforeSwitch bool
	pendingResumeScheduled bool

	switched      bool
	formatRetries int
}

// NewDisplaySync creates a display sync controller.
func NewDisplaySync(options DisplaySyncOptions) *DisplaySync {
	return &DisplaySync{options: options}
}

// State returns the switch state.
func (c *DisplaySync) State() SyncState { return c.state }

// Target returns the last requested mode.
func (c *DisplaySync) Target() display.Mode { return c.target }

// PausePending reports whether playback is held for a switch.
func (c *DisplaySync) PausePending() bool { return c.pausePending }

// WasPlayingBeforeSwitch reports the play intent saved when the switch started.
func (c *DisplaySync) WasPlayingBeforeSwitch() bool { return c.wasPlayingBeforeSwitch }

func (c *DisplaySync) timers() {
	if c.applyTimer != nil {
		return
	}

	s := c.Context().Scheduler
	c.applyTimer = eventloop.NewTimer(s)
	c.resumeTimer = eventloop.NewTimer(s)
	c.restoreTimer = eventloop.NewTimer(s)
}

func (c *DisplaySync) skip(entry *media.Entry) bool {
	duration := entry.DurationMs
	if duration <= 0 {
		if engine := c.Engine(); engine != nil {
			duration = engine.DurationMs()
		}
	}

	if duration > 0 && duration <= alwaysSkipMs {
		return true
	}

	return c.options.SkipShorts && (entry.IsShorts || (duration > 0 && duration <= shortsMaxMs))
}

func (c *DisplaySync) OnInit() {
	c.timers()
}

func (c *DisplaySync) OnNewVideo(*media.Entry) {
	c.timers()
	c.applyTimer.Stop()
	c.handBack()
	c.abandon()
	c.formatRetries = 0
}

func (c *DisplaySync) OnVideoLoaded(entry *media.Entry) {
	c.timers()
	if !c.options.AutoSync {
		return
	}

	if c.skip(entry) {
		log.Debugf("display sync skipped for %s", entry)
		if c.switched {
			c.restoreOriginal(nil)
		}
		return
	}

	c.applyTimer.Reset(c.options.ApplyDelay, c.Apply)
}

// Apply requests the mode matching the current format. It does nothing when the
// display already shows that mode or a request for it is in flight.
// The helper is only called off the loop.
func (c *DisplaySync) Apply() {
	c.timers()
	engine := c.Engine()
	if !c.options.AutoSync || engine == nil {
		return
	}

	format := engine.CurrentFormat()
	if format.IsEmpty() {
		if c.formatRetries < maxFormatRetries {
			c.formatRetries++
			c.applyTimer.Reset(c.options.ApplyDelay, c.Apply)
		}
		return
	}

	s := c.Context().Scheduler
	helper := c.Context().Display
	request := c.request
	s.Go(func() {
		var (
			current   display.Mode
			supported []display.Mode
		)
		err := guarded(func() (err error) {
			current, supported, err = display.Modes(helper)
			return err
		})

		s.Post(func() {
			if request != c.request || !c.options.AutoSync {
				return
			}
			c.applyModes(helper, format, current, supported, err)
		})
	})
}

func (c *DisplaySync) applyModes(helper display.Helper, format *media.Format, current display.Mode, supported []display.Mode, err error) {
	if err != nil {
		c.fail(err)
		return
	}

	target, ok := display.Select(format, current, supported, c.options.Select)
	if !ok {
		log.Debugf("no display mode fits %s", format)
		return
	}

	if target.Same(current) {
		log.Debugf("display already at %s", current)
		return
	}

	if c.state == SyncApplying && target.Same(c.target) {
		return
	}

	c.request++
	c.state = SyncApplying
	c.target = target
	c.switched = true

	log.Infof("switching display %s -> %s for %s", current, target, format)

	s := c.Context().Scheduler
	request := c.request
	listener := &modeListener{c: c, request: request}
	s.Go(func() {
		err := guarded(func() error { return helper.RequestMode(target, listener) })
		if err == nil {
			return
		}

		s.Post(func() {
			if request == c.request {
				c.fail(err)
			}
		})
	})
}

// guarded runs a display helper call, turning a panic into an error.
func guarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("display helper panicked: %v", r)
		}
	}()

	return fn()
}

func (c *DisplaySync) fail(err error) {
	if errors.Is(err, display.ErrUnsupported) {
		log.Debugf("display sync: %v", err)
	} else {
		log.Warnf("display sync: %v", err)
	}
	c.state = SyncError
}

// abandon drops the in-flight request, if any.
func (c *DisplaySync) abandon() {
	c.request++
	c.state = SyncIdle
}

func (c *DisplaySync) onModeStart(target display.Mode) {
	log.Debugf("display switch to %s started", target)
	c.pausePlayback()
}

func (c *DisplaySync) onModeSuccess(target display.Mode) {
	log.Infof("display switched to %s", target)
	c.state = SyncApplied
}

func (c *DisplaySync) onModeError(target display.Mode, err error) {
	c.fail(fmt.Errorf("switch to %s: %w", target, err))
}

func (c *DisplaySync) onModeCancel() {
	log.Info("display switch cancelled")
	c.state = SyncIdle
	c.resumePlayback()
}

func (c *DisplaySync) pausePlayback() {
	if c.options.Pause <= 0 || c.pendingResumeScheduled {
		return
	}

	engine := c.Engine()
	if state, ok := session.Find[*State](c.Dispatcher()).Get(); ok {
		c.wasPlayingBeforeSwitch = state.PlayEnabled()
		state.BlockPlay()
	} else {
		c.wasPlayingBeforeSwitch = engine != nil && engine.IsPlaying()
	}

	if engine != nil {
		if err := engine.Pause(); err != nil {
			log.Warnf("pause for display switch: %v", err)
		}
	}

	c.pausePending = true
	c.pendingResumeScheduled = true
	c.resumeTimer.Reset(c.options.Pause, c.resumePlayback)
}

func (c *DisplaySync) resumePlayback() {
	if !c.pendingResumeScheduled {
		return
	}

	c.handBack()
	if !c.wasPlayingBeforeSwitch {
		return
	}

	if state, ok := session.Find[*State](c.Dispatcher()).Get(); ok {
		state.SetPlayEnabled(true)
		return
	}

	if engine := c.Engine(); engine != nil {
		if err := engine.Play(); err != nil {
			log.Warnf("resume after display switch: %v", err)
		}
	}
}

// handBack ends the hold without touching the engine.
func (c *DisplaySync) handBack() {
	if !c.pendingResumeScheduled {
		return
	}

	c.pendingResumeScheduled = false
	c.pausePending = false
	c.resumeTimer.Stop()

	if state, ok := session.Find[*State](c.Dispatcher()).Get(); ok {
		state.Unblock(c.wasPlayingBeforeSwitch)
	}
}

// restoreOriginal switches back off the loop; done runs on the loop once it finished.
func (c *DisplaySync) restoreOriginal(done func()) {
	c.switched = false

	s := c.Context().Scheduler
	helper := c.Context().Display
	s.Go(func() {
		err := guarded(helper.RestoreOriginal)

		s.Post(func() {
			if done != nil {
				defer done()
			}
			if err != nil {
				log.Warnf("restore display mode: %v", err)
				return
			}
			log.Info("display mode restored")
		})
	})
}

func (c *DisplaySync) OnEngineReleased() {
	c.timers()
	c.applyTimer.Stop()
	c.handBack()
	c.abandon()

	if !c.switched || c.restoreTimer.Pending() {
		return
	}

	release := c.Dispatcher().Hold()
	c.restoreTimer.Reset(c.options.RestoreDelay, func() {
		c.restoreOriginal(release)
	})
}

func (c *DisplaySync) OnFinish() {
	c.timers()
	c.applyTimer.Stop()
	c.handBack()
}

func (c *DisplaySync) OnButtonEvent(button session.Button, state session.ButtonState) bool {
	if button != session.ButtonDisplaySync {
		return false
	}

	c.timers()
	c.options.AutoSync = state == session.ButtonOn
	switch {
	case c.options.AutoSync && c.Video() != nil:
		c.OnVideoLoaded(c.Video())
	case !c.options.AutoSync && c.switched:
		c.applyTimer.Stop()
		c.restoreOriginal(nil)
	}
	return true
}

// modeListener moves helper callbacks onto the loop and drops those of abandoned requests.
type modeListener struct {
	c       *DisplaySync
	request uint64
}

func (l *modeListener) post(fn func()) {
	l.c.Context().Scheduler.Post(func() {
		if l.request != l.c.request {
			return
		}
		fn()
	})
}

func (l *modeListener) OnModeStart(target display.Mode) {
	l.post(func() { l.c.onModeStart(target) })
}

func (l *modeListener) OnModeSuccess(target display.Mode) {
	l.post(func() { l.c.onModeSuccess(target) })
}

func (l *modeListener) OnModeError(target display.Mode, err error) {
	l.post(func() { l.c.onModeError(target, err) })
}

func (l *modeListener) OnModeCancel() {
	l.post(l.c.onModeCancel)
}
