package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/media"
)

func TestCatalog(t *testing.T) {
	Convey("Given a catalog on a manual loop", t, func() {
		loop := eventloop.NewManual(time.Unix(0, 0))
		catalog := NewCatalog()
		catalog.AddMetadata(&media.Metadata{VideoID: "abc", Title: "Clip", CommentsKey: "c-abc", ChatKey: "chat-abc"})
		catalog.AddComments("c-abc", Comment{ID: "1", Author: "ann", Text: "first"})
		catalog.AddChat("chat-abc", ChatMessage{Author: "bob", Text: "hi"}, ChatMessage{Author: "eve", Text: "yo"})

		Convey("Metadata should be emitted as a copy", func() {
			var got *media.Metadata
			eventloop.Subscribe(loop, catalog.Metadata("abc"), eventloop.Handlers[*media.Metadata]{
				Item: func(m *media.Metadata) { got = m },
			})
			loop.Drain()

			So(got, ShouldNotBeNil)
			So(got.Title, ShouldEqual, "Clip")
			got.Title = "changed"

			var again *media.Metadata
			eventloop.Subscribe(loop, catalog.Metadata("abc"), eventloop.Handlers[*media.Metadata]{
				Item: func(m *media.Metadata) { again = m },
			})
			loop.Drain()
			So(again.Title, ShouldEqual, "Clip")
		})

		Convey("Unknown keys should fail with ErrNotFound", func() {
			var failure error
			eventloop.Subscribe(loop, catalog.Comments("missing"), eventloop.Handlers[[]Comment]{
				Error: func(err error) { failure = err },
			})
			loop.Drain()
			So(errors.Is(failure, ErrNotFound), ShouldBeTrue)
		})

		Convey("Chat should replay every message then complete", func() {
			var got []string
			done := false
			eventloop.Subscribe(loop, catalog.Chat("chat-abc"), eventloop.Handlers[ChatMessage]{
				Item: func(m ChatMessage) { got = append(got, m.String()) },
				Done: func() { done = true },
			})
			loop.Drain()
			So(got, ShouldResemble, []string{"bob: hi", "eve: yo"})
			So(done, ShouldBeTrue)
		})

		Convey("A cancelled chat should stop early", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := catalog.Chat("chat-abc")(ctx, func(ChatMessage) {})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

const videoJSON = `{
	"id": "dQw4w9WgXcQ",
	"title": "Song",
	"uploader": "Uploader",
	"channel": "Channel",
	"channel_id": "UC123",
	"duration": 212.5,
	"live_status": "not_live",
	"comments": [
		{"id": "1", "author": "ann", "text": "nice", "like_count": 10, "timestamp": 1700000000, "parent": "root"},
		{"id": "1.1", "author": "bob", "text": "agreed", "like_count": 1, "timestamp": 1700000100, "parent": "1"}
	]
}`

func TestYTDLP(t *testing.T) {
	Convey("Given a yt-dlp service with a fake runner", t, func() {
		var lastArgs []string
		output := videoJSON
		y := &YTDLP{run: func(_ context.Context, args ...string) ([]byte, error) {
			lastArgs = args
			return []byte(output), nil
		}}

		Convey("Metadata should be mapped from the dump", func() {
			var got *media.Metadata
			err := y.Metadata("dQw4w9WgXcQ")(context.Background(), func(m *media.Metadata) { got = m })
			So(err, ShouldBeNil)
			So(got.Title, ShouldEqual, "Song")
			So(got.Author, ShouldEqual, "Channel")
			So(got.ChannelID, ShouldEqual, "UC123")
			So(got.DurationMs, ShouldEqual, 212500)
			So(got.IsLive, ShouldBeFalse)
			So(got.ChatKey, ShouldBeEmpty)
			So(got.CommentsKey, ShouldEqual, "dQw4w9WgXcQ")
			So(lastArgs[len(lastArgs)-1], ShouldEqual, media.WatchURL+"dQw4w9WgXcQ")
			So(lastArgs[len(lastArgs)-2], ShouldEqual, "--")
		})

		Convey("Live streams should expose a chat key", func() {
			output = strings.Replace(videoJSON, `"not_live"`, `"is_live"`, 1)
			var got *media.Metadata
			So(y.Metadata("x")(context.Background(), func(m *media.Metadata) { got = m }), ShouldBeNil)
			So(got.IsLive, ShouldBeTrue)
			So(got.ChatKey, ShouldEqual, "dQw4w9WgXcQ")
		})

		Convey("Urls should be passed through", func() {
			So(y.Metadata("https://example.com/v.mp4")(context.Background(), func(*media.Metadata) {}), ShouldBeNil)
			So(lastArgs[len(lastArgs)-1], ShouldEqual, "https://example.com/v.mp4")
		})

		Convey("Comments should keep top-level entries only", func() {
			var got []Comment
			So(y.Comments("dQw4w9WgXcQ")(context.Background(), func(c []Comment) { got = c }), ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].Author, ShouldEqual, "ann")
			So(got[0].Likes, ShouldEqual, 10)
			So(lastArgs, ShouldContain, "--write-comments")
		})

		Convey("An empty dump should be reported as not found", func() {
			output = `{}`
			err := y.Metadata("x")(context.Background(), func(*media.Metadata) {})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Chat should be unsupported", func() {
			err := y.Chat("x")(context.Background(), func(ChatMessage) {})
			So(errors.Is(err, ErrUnsupported), ShouldBeTrue)
		})
	})
}
