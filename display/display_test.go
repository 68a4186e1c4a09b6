package display

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvloop/tvloop/media"
)

const sampleXRandR = `Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 16384 x 16384
DP-1 connected 2560x1440+1920+0 (normal left inverted right x axis y axis) 597mm x 336mm
   2560x1440     59.95*+
HDMI-1 connected primary 1920x1080+0+0 (normal left inverted right x axis y axis) 527mm x 296mm
   3840x2160     60.00    59.94    30.00    29.97    24.00    23.98
   1920x1080     60.00*+  50.00    59.94    30.00    25.00    24.00    29.97    23.98
   1920x1080i    60.00    50.00
   1280x720      60.00    50.00    59.94
DP-2 disconnected (normal left inverted right x axis y axis)
`

func TestMode(t *testing.T) {
	Convey("Modes compare structurally", t, func() {
		a := Mode{Width: 1920, Height: 1080, RefreshRate: 60}
		So(a == Mode{Width: 1920, Height: 1080, RefreshRate: 60}, ShouldBeTrue)
		So(a.Same(Mode{Width: 1920, Height: 1080, RefreshRate: 60.001}), ShouldBeTrue)
		So(a.Same(Mode{Width: 1920, Height: 1080, RefreshRate: 59.94}), ShouldBeFalse)
		So(Mode{}.IsZero(), ShouldBeTrue)
		So(a.String(), ShouldEqual, "1920x1080@60.000")
	})
}

func TestSelect(t *testing.T) {
	Convey("Given a display offering common modes", t, func() {
		out, err := parseXRandR(sampleXRandR)
		So(err, ShouldBeNil)
		current := out.current
		format := &media.Format{Width: 1920, Height: 1080, FrameRate: 24}

		Convey("The refresh rate follows the frame rate", func() {
			m, ok := Select(format, current, out.modes, Options{})
			So(ok, ShouldBeTrue)
			So(m, ShouldResemble, Mode{Width: 1920, Height: 1080, RefreshRate: 24})
		})

		Convey("Fps correction picks the NTSC rate", func() {
			m, ok := Select(format, current, out.modes, Options{FpsCorrection: true})
			So(ok, ShouldBeTrue)
			So(m.RefreshRate, ShouldEqual, 23.98)
		})

		Convey("Double refresh rate prefers twice the rate when available", func() {
			f := &media.Format{Width: 1280, Height: 720, FrameRate: 30}
			m, ok := Select(f, current, out.modes, Options{DoubleRefreshRate: true})
			So(ok, ShouldBeTrue)
			So(m.RefreshRate, ShouldEqual, 30)

			f = &media.Format{Width: 1280, Height: 720, FrameRate: 25}
			m, ok = Select(f, current, out.modes, Options{DoubleRefreshRate: true})
			So(ok, ShouldBeTrue)
			So(m.RefreshRate, ShouldEqual, 50)
		})

		Convey("Without resolution switching the resolution is kept", func() {
			f := &media.Format{Width: 3840, Height: 2160, FrameRate: 30}
			m, ok := Select(f, current, out.modes, Options{})
			So(ok, ShouldBeTrue)
			So(m.Width, ShouldEqual, 1920)
		})

		Convey("Resolution switching picks the smallest fitting mode", func() {
			f := &media.Format{Width: 3840, Height: 2160, FrameRate: 30}
			m, ok := Select(f, current, out.modes, Options{ResolutionSwitch: true})
			So(ok, ShouldBeTrue)
			So(m, ShouldResemble, Mode{Width: 3840, Height: 2160, RefreshRate: 30})

			f = &media.Format{Width: 1280, Height: 720, FrameRate: 50}
			m, ok = Select(f, current, out.modes, Options{ResolutionSwitch: true})
			So(ok, ShouldBeTrue)
			So(m, ShouldResemble, Mode{Width: 1280, Height: 720, RefreshRate: 50})
		})

		Convey("Content larger than every mode uses the largest", func() {
			f := &media.Format{Width: 7680, Height: 4320, FrameRate: 60}
			m, ok := Select(f, current, out.modes, Options{ResolutionSwitch: true})
			So(ok, ShouldBeTrue)
			So(m.Width, ShouldEqual, 3840)
			So(m.RefreshRate, ShouldEqual, 60)
		})

		Convey("Nothing is selected when no rate matches, for skipped 24 fps or without a format", func() {
			_, ok := Select(&media.Format{Width: 1920, Height: 1080, FrameRate: 48}, current, out.modes, Options{})
			So(ok, ShouldBeFalse)
			_, ok = Select(format, current, out.modes, Options{Skip24Rate: true})
			So(ok, ShouldBeFalse)
			_, ok = Select(nil, current, out.modes, Options{})
			So(ok, ShouldBeFalse)
			_, ok = Select(format, current, nil, Options{})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestFrameRate(t *testing.T) {
	Convey("FrameRate", t, func() {
		So(FrameRate(24, true), ShouldEqual, 23.976)
		So(FrameRate(30, true), ShouldEqual, 29.97)
		So(FrameRate(60, true), ShouldEqual, 59.94)
		So(FrameRate(25, true), ShouldEqual, 25)
		So(FrameRate(23.976, true), ShouldEqual, 23.976)
		So(FrameRate(24, false), ShouldEqual, 24)
	})
}

func TestParseXRandR(t *testing.T) {
	Convey("parseXRandR", t, func() {
		Convey("Reads the primary output", func() {
			out, err := parseXRandR(sampleXRandR)
			So(err, ShouldBeNil)
			So(out.name, ShouldEqual, "HDMI-1")
			So(out.current, ShouldResemble, Mode{Width: 1920, Height: 1080, RefreshRate: 60})
			So(len(out.modes), ShouldEqual, 6+8+3)
		})

		Convey("Falls back to the first connected output", func() {
			text := strings.Replace(sampleXRandR, "connected primary", "connected", 1)
			out, err := parseXRandR(text)
			So(err, ShouldBeNil)
			So(out.name, ShouldEqual, "DP-1")
		})

		Convey("Fails without a connected output", func() {
			_, err := parseXRandR("Screen 0: minimum 320 x 200\nDP-2 disconnected\n")
			So(errors.Is(err, ErrUnsupported), ShouldBeTrue)
		})
	})
}

type recorder struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 1)}
}

func (r *recorder) add(e string, final bool) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	if final {
		r.done <- struct{}{}
	}
}

func (r *recorder) OnModeStart(Mode) { r.add("start", false) }
func (r *recorder) OnModeSuccess(Mode) { r.add("success", true) }
func (r *recorder) OnModeError(Mode, error) { r.add("error", true) }
func (r *recorder) OnModeCancel() { r.add("cancel", true) }

func (r *recorder) wait() []string {
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestXRandR(t *testing.T) {
	Convey("Given an xrandr helper", t, func() {
		var mu sync.Mutex
		var calls [][]string
		fail := false
		x := &XRandR{run: func(args ...string) ([]byte, error) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, args)
			if args[0] == "--current" {
				return []byte(sampleXRandR), nil
			}
			if fail {
				return nil, errors.New("bad mode")
			}
			return nil, nil
		}}

		target := Mode{Width: 1920, Height: 1080, RefreshRate: 23.98}

		Convey("A request reports start then success", func() {
			rec := newRecorder()
			So(x.RequestMode(target, rec), ShouldBeNil)
			So(rec.wait(), ShouldResemble, []string{"start", "success"})

			mu.Lock()
			last := calls[len(calls)-1]
			mu.Unlock()
			So(last, ShouldResemble, []string{"--output", "HDMI-1", "--mode", "1920x1080", "--rate", "23.98"})

			Convey("and restoring returns to the first mode", func() {
				So(x.RestoreOriginal(), ShouldBeNil)
				mu.Lock()
				last := calls[len(calls)-1]
				mu.Unlock()
				So(last, ShouldResemble, []string{"--output", "HDMI-1", "--mode", "1920x1080", "--rate", "60.00"})
			})
		})

		Convey("A failing switch reports an error", func() {
			mu.Lock()
			fail = true
			mu.Unlock()
			rec := newRecorder()
			So(x.RequestMode(target, rec), ShouldBeNil)
			So(rec.wait(), ShouldResemble, []string{"start", "error"})
		})

		Convey("Reading modes then requesting queries xrandr once", func() {
			current, supported, err := Modes(x)
			So(err, ShouldBeNil)
			So(current.RefreshRate, ShouldEqual, 60)
			So(supported, ShouldNotBeEmpty)

			rec := newRecorder()
			So(x.RequestMode(target, rec), ShouldBeNil)
			So(rec.wait(), ShouldResemble, []string{"start", "success"})

			mu.Lock()
			queries := lo.CountBy(calls, func(args []string) bool { return args[0] == "--current" })
			mu.Unlock()
			So(queries, ShouldEqual, 1)
		})

		Convey("Restoring before any request does nothing", func() {
			So(x.RestoreOriginal(), ShouldBeNil)
			So(calls, ShouldBeEmpty)
		})
	})
}

func TestSimulated(t *testing.T) {
	Convey("Given a simulated display", t, func() {
		start := Mode{Width: 1920, Height: 1080, RefreshRate: 60}
		target := Mode{Width: 1920, Height: 1080, RefreshRate: 24}
		sim := NewSimulated(start, start, target)

		Convey("Requests switch the mode", func() {
			rec := newRecorder()
			So(sim.RequestMode(target, rec), ShouldBeNil)
			So(rec.wait(), ShouldResemble, []string{"start", "success"})
			current, _ := sim.CurrentMode()
			So(current, ShouldResemble, target)
			So(sim.Requests(), ShouldHaveLength, 1)

			So(sim.RestoreOriginal(), ShouldBeNil)
			current, _ = sim.CurrentMode()
			So(current, ShouldResemble, start)
		})

		Convey("Failures are reported", func() {
			sim.Fail = errors.New("nope")
			rec := newRecorder()
			So(sim.RequestMode(target, rec), ShouldBeNil)
			So(rec.wait(), ShouldResemble, []string{"start", "error"})
		})

		Convey("Unsupported always refuses", func() {
			var u Unsupported
			So(u.RequestMode(target, newRecorder()), ShouldEqual, ErrUnsupported)
			_, err := u.CurrentMode()
			So(err, ShouldEqual, ErrUnsupported)
		})
	})
}
