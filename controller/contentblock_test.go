package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/segments"
	"github.com/tvloop/tvloop/session"
)

func TestContentBlock(t *testing.T) {
	Convey("Given a segments service with a sponsor segment", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("videoID") != "a" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`[{"UUID":"s1","category":"sponsor","actionType":"skip","segment":[10,25]}]`))
		}))
		defer server.Close()

		viper.Set(key.SegmentsEnable, true)
		viper.Set(key.SegmentsCategories, []string{"sponsor"})
		defer viper.Set(key.SegmentsEnable, false)

		block := NewContentBlock()
		h := newHarness(func(ctx *session.Context) { ctx.Segments = segments.New(server.URL, "") },
			NewState(), NewLoader(), block)
		h.open(video("a", 600_000))

		So(block.Segments(), ShouldHaveLength, 1)

		Convey("Playback should jump over the segment once", func() {
			h.loop.Advance(12 * time.Second)

			So(h.count("seek:25000"), ShouldEqual, 1)
			So(h.engine.PositionMs(), ShouldEqual, 27_000)

			So(h.engine.Seek(12_000), ShouldBeNil)
			h.loop.Advance(2 * time.Second)
			So(h.count("seek:25000"), ShouldEqual, 1)
		})

		Convey("Turning skipping off should play through", func() {
			So(h.d.ButtonEvent(session.ButtonSegments, session.ButtonOff), ShouldBeTrue)
			h.loop.Advance(12 * time.Second)

			So(h.count("seek:25000"), ShouldEqual, 0)
			So(h.engine.PositionMs(), ShouldEqual, 12_000)
		})

		Convey("Videos without segments should play through", func() {
			h.open(video("b", 600_000))
			h.loop.Advance(12 * time.Second)

			So(block.Segments(), ShouldBeEmpty)
			So(h.count("seek:25000"), ShouldEqual, 0)
		})
	})
}
