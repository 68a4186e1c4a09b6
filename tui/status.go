package tui

import (
	"github.com/samber/lo"
	"github.com/tvloop/tvloop/content"
	"github.com/tvloop/tvloop/controller"
	"github.com/tvloop/tvloop/display"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/session"
)

// chatLines is how many chat messages the remote shows.
const chatLines = 5

// status is a copy of the session state taken on the loop.
type status struct {
	loaded bool

	title, author string
	link          string
	positionMs    int64
	durationMs    int64
	playing       bool
	live, shorts  bool
	upNext        int

	sync       controller.SyncState
	syncTarget display.Mode
	segments   int
	chat       []content.ChatMessage
	comments   int
}

// snapshot reads d. It must run on the session loop.
func snapshot(d *session.Dispatcher) status {
	var s status

	video := d.Video()
	if video == nil {
		return s
	}

	s.loaded = true
	s.title, s.author = video.Title, video.Author
	s.link = video.URL
	if s.link == "" && video.VideoID != "" {
		s.link = media.WatchURL + video.VideoID
	}
	s.live, s.shorts = video.IsLive, video.IsShorts
	s.durationMs = video.DurationMs
	s.upNext = len(d.Context().Queue.AllAfterCurrent())

	if engine := d.Engine(); engine != nil {
		s.positionMs = engine.PositionMs()
		if duration := engine.DurationMs(); duration > 0 {
			s.durationMs = duration
		}
	}

	if state, ok := session.Find[*controller.State](d).Get(); ok {
		s.playing = state.PlayEnabled()
	}

	if sync, ok := session.Find[*controller.DisplaySync](d).Get(); ok {
		s.sync, s.syncTarget = sync.State(), sync.Target()
	}

	if block, ok := session.Find[*controller.ContentBlock](d).Get(); ok {
		s.segments = len(block.Segments())
	}

	if chat, ok := session.Find[*controller.Chat](d).Get(); ok {
		messages := chat.Messages()
		s.chat = messages[max(len(messages)-chatLines, 0):]
	}

	if comments, ok := session.Find[*controller.Comments](d).Get(); ok {
		s.comments = len(comments.Loaded())
	}

	return s
}

// chatText renders the chat backlog, oldest first.
func (s status) chatText() []string {
	return lo.Map(s.chat, func(m content.ChatMessage, _ int) string { return m.String() })
}
