package session

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/history"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
	"github.com/tvloop/tvloop/store"
)

func init() {
	filesystem.SetMemMapFs()
}

type recorder struct {
	Base
	name    string
	journal *[]string
	handles Key
	panics  bool
	seen    *media.Entry
}

func (p *recorder) log(event string) { *p.journal = append(*p.journal, p.name+":"+event) }

func (p *recorder) OnInit() {
	if p.panics {
		panic("boom")
	}
	p.log("init")
}

func (p *recorder) OnNewVideo(entry *media.Entry) {
	p.seen = p.Video()
	p.log("new:" + entry.VideoID)
}

func (p *recorder) OnVideoLoaded(entry *media.Entry) { p.log("loaded:" + entry.VideoID) }
func (p *recorder) OnEngineReleased() { p.log("released") }
func (p *recorder) OnEngineError(kind player.ErrorKind, _ error) { p.log("error:" + string(kind)) }
func (p *recorder) OnPlay() { p.log("play") }
func (p *recorder) OnTick(int64, int64) { p.log("tick") }
func (p *recorder) OnFinish() { p.log("finish") }

func (p *recorder) OnKeyEvent(key Key) bool {
	p.log("key:" + string(key))
	if p.panics {
		panic("boom")
	}
	return key == p.handles
}

type other struct {
	Base
}

func newContext() (*Context, *eventloop.Manual, *store.Memory) {
	loop := eventloop.NewManual(time.Unix(0, 0))
	mem := store.NewMemory("default")
	ctx := NewContext(loop, mem, history.Options{Capacity: 50, PersistDelay: 10 * time.Second})
	return ctx, loop, mem
}

func TestDispatch(t *testing.T) {
	Convey("Given a dispatcher with three controllers", t, func() {
		ctx, loop, _ := newContext()
		var journal []string
		a := &recorder{name: "a", journal: &journal, handles: "x"}
		b := &recorder{name: "b", journal: &journal, handles: "y"}
		c := &recorder{name: "c", journal: &journal, handles: "y"}
		d := New(ctx, a, b, c)

		Convey("Broadcasts should reach every controller in order", func() {
			d.Init()
			So(journal, ShouldResemble, []string{"a:init", "b:init", "c:init"})
		})

		Convey("Chained events should stop at the first handler", func() {
			So(d.KeyEvent("y"), ShouldBeTrue)
			So(journal, ShouldResemble, []string{"a:key:y", "b:key:y"})
		})

		Convey("Unhandled chained events should return false", func() {
			So(d.KeyEvent("z"), ShouldBeFalse)
			So(len(journal), ShouldEqual, 3)
		})

		Convey("A panicking controller should not stop dispatch", func() {
			b.panics = true
			d.Init()
			So(journal, ShouldResemble, []string{"a:init", "c:init"})

			journal = nil
			So(d.KeyEvent("y"), ShouldBeTrue)
			So(journal, ShouldResemble, []string{"a:key:y", "b:key:y", "c:key:y"})
		})

		Convey("Opening a video should announce it before it becomes current", func() {
			first := media.New("first", "First")
			second := media.New("second", "Second")

			d.OpenVideo(first)
			So(a.seen, ShouldBeNil)
			So(d.Video(), ShouldEqual, first)

			d.OpenVideo(second)
			So(a.seen, ShouldEqual, first)
			So(d.Video(), ShouldEqual, second)

			d.OpenVideo(&media.Entry{})
			So(d.Video(), ShouldEqual, second)
		})

		Convey("Events without a video should be tolerated", func() {
			d.VideoLoaded()
			d.Metadata(nil)
			So(journal, ShouldBeEmpty)
		})

		Convey("Find should return the first controller of a type", func() {
			found := Find[*recorder](d)
			So(found.IsPresent(), ShouldBeTrue)
			So(found.MustGet(), ShouldEqual, a)

			So(Find[*other](d).IsAbsent(), ShouldBeTrue)
			So(Find[*recorder](nil).IsAbsent(), ShouldBeTrue)
		})

		Convey("Each session should get its own id", func() {
			So(d.ID(), ShouldNotBeEmpty)
			So(New(ctx).ID(), ShouldNotEqual, d.ID())
		})

		Convey("Engine callbacks should only dispatch on the loop", func() {
			listener := d.EngineListener()
			d.OpenVideo(media.New("v", "V"))
			journal = nil

			listener.OnLoaded()
			listener.OnPlay()
			listener.OnPosition(1000, 2000)
			listener.OnError(player.ErrorSource, errors.New("bad"))
			So(journal, ShouldBeEmpty)

			loop.Drain()
			So(journal, ShouldResemble, []string{
				"a:loaded:v", "b:loaded:v", "c:loaded:v",
				"a:play", "b:play", "c:play",
				"a:tick", "b:tick", "c:tick",
				"a:error:source", "b:error:source", "c:error:source",
			})
		})
	})
}

func TestFinish(t *testing.T) {
	Convey("Given a session with a virtual engine", t, func() {
		ctx, loop, mem := newContext()
		var journal []string
		d := New(ctx, &recorder{name: "a", journal: &journal})
		engine := player.NewVirtual(loop, time.Second, nil)
		d.SetEngine(engine)

		done := func() bool {
			select {
			case <-d.Done():
				return true
			default:
				return false
			}
		}

		Convey("Finish should flush history and wait for the release", func() {
			ctx.History.Save(history.NewRecord(media.New("v", "V"), 1000, 2000, loop.Now()))

			d.Finish()
			So(ctx.History.Pending(), ShouldBeFalse)
			So(mem.Writes(), ShouldEqual, 1)
			So(done(), ShouldBeFalse)

			loop.Drain()
			So(done(), ShouldBeTrue)
			So(journal, ShouldResemble, []string{"a:finish", "a:released"})

			d.Finish()
			loop.Drain()
			So(journal, ShouldResemble, []string{"a:finish", "a:released"})
		})

		Convey("A release outside Finish should end the session", func() {
			So(engine.Close(), ShouldBeNil)
			loop.Drain()

			So(done(), ShouldBeTrue)
			So(journal, ShouldResemble, []string{"a:released", "a:finish"})
		})

		Convey("A hold should delay Done until released", func() {
			release := d.Hold()
			d.Finish()
			loop.Drain()
			So(done(), ShouldBeFalse)

			release()
			release()
			So(done(), ShouldBeTrue)
		})

		Convey("Without an engine, Finish should complete at once", func() {
			d.SetEngine(nil)
			d.Finish()
			So(done(), ShouldBeTrue)
		})

		Convey("A finished session should ignore new videos", func() {
			d.Finish()
			d.OpenVideo(media.New("late", "Late"))
			So(d.Video(), ShouldBeNil)
		})
	})
}

func TestContext(t *testing.T) {
	Convey("Switching profiles should clear the queue", t, func() {
		ctx, loop, mem := newContext()
		ctx.Queue.Add(media.New("a", "A"))
		ctx.Groups.Add("row", media.New("b", "B"))

		So(mem.SwitchProfile("kids"), ShouldBeNil)
		loop.Drain()

		So(ctx.Queue.Len(), ShouldEqual, 0)
		So(ctx.Groups.Len(), ShouldEqual, 0)
	})
}
