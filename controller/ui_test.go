package controller

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvloop/tvloop/media"
)

func TestUI(t *testing.T) {
	Convey("Given a session driven by keys", t, func() {
		state := NewState()
		h := newHarness(nil, state, NewUI(), NewLoader())
		h.ctx.Queue.AddAll([]*media.Entry{video("a", 600_000), video("b", 600_000)})
		h.open(h.ctx.Queue.All()[0])

		Convey("Space should toggle playback", func() {
			So(h.d.KeyEvent(KeyPlayPause), ShouldBeTrue)
			h.loop.Drain()
			So(state.PlayEnabled(), ShouldBeFalse)
			So(h.engine.IsPlaying(), ShouldBeFalse)

			So(h.d.KeyEvent(KeyPlayPause), ShouldBeTrue)
			h.loop.Drain()
			So(state.PlayEnabled(), ShouldBeTrue)
			So(h.engine.IsPlaying(), ShouldBeTrue)
		})

		Convey("Arrows should seek by a fixed step", func() {
			h.loop.Advance(2 * time.Second)
			So(h.d.KeyEvent(KeyForward), ShouldBeTrue)
			So(h.engine.PositionMs(), ShouldEqual, 12_000)

			So(h.d.KeyEvent(KeyBack), ShouldBeTrue)
			So(h.d.KeyEvent(KeyBack), ShouldBeTrue)
			So(h.engine.PositionMs(), ShouldEqual, 0)
		})

		Convey("N should open the next entry", func() {
			So(h.d.KeyEvent(KeyNext), ShouldBeTrue)
			h.loop.Drain()
			So(h.d.Video().VideoID, ShouldEqual, "b")
		})

		Convey("Q should end the session", func() {
			So(h.d.KeyEvent(KeyQuit), ShouldBeTrue)
			h.loop.Drain()
			So(h.done(), ShouldBeTrue)
		})

		Convey("Unknown keys should not be handled", func() {
			So(h.d.KeyEvent("x"), ShouldBeFalse)
		})
	})
}

func TestDefault(t *testing.T) {
	Convey("The default chain should keep its fixed order", t, func() {
		chain := Default(DisplaySyncOptions{})
		So(chain, ShouldHaveLength, 8)
		So(chain[0], ShouldHaveSameTypeAs, &State{})
		So(chain[3], ShouldHaveSameTypeAs, &Loader{})
		So(chain[5], ShouldHaveSameTypeAs, &DisplaySync{})
		So(chain[7], ShouldHaveSameTypeAs, &Comments{})
	})
}
