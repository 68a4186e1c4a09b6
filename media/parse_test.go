package media

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given video references", t, func() {
		Convey("Bare ids should be accepted", func() {
			e, err := Parse("dQw4w9WgXcQ")
			So(err, ShouldBeNil)
			So(e.VideoID, ShouldEqual, "dQw4w9WgXcQ")
			So(e.URL, ShouldBeEmpty)
		})

		Convey("Watch links should yield the id, playlist and start time", func() {
			e, err := Parse("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123&t=42s")
			So(err, ShouldBeNil)
			So(e.VideoID, ShouldEqual, "dQw4w9WgXcQ")
			So(e.PlaylistID, ShouldEqual, "PL123")
			So(e.StartTimeSeconds, ShouldEqual, 42)
		})

		Convey("Short links and shorts should be recognized", func() {
			e, err := Parse("https://youtu.be/dQw4w9WgXcQ")
			So(err, ShouldBeNil)
			So(e.VideoID, ShouldEqual, "dQw4w9WgXcQ")

			e, err = Parse("https://m.youtube.com/shorts/abcdefghijk")
			So(err, ShouldBeNil)
			So(e.VideoID, ShouldEqual, "abcdefghijk")
			So(e.IsShorts, ShouldBeTrue)
		})

		Convey("Other links should stay playable as they are", func() {
			e, err := Parse("https://example.com/clip.mp4")
			So(err, ShouldBeNil)
			So(e.URL, ShouldEqual, "https://example.com/clip.mp4")
			So(e.VideoID, ShouldEqual, "https://example.com/clip.mp4")
		})

		Convey("Garbage should be rejected", func() {
			_, err := Parse("   ")
			So(err, ShouldNotBeNil)

			_, err = Parse("not a video")
			So(err, ShouldNotBeNil)
		})
	})
}
