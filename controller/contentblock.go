package controller

import (
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
	"github.com/tvloop/tvloop/segments"
	"github.com/tvloop/tvloop/session"
)

// ContentBlock skips sponsored and other unwanted segments as playback crosses them.
type ContentBlock struct {
	session.Base

	enabled  bool
	fetch    *eventloop.Subscription
	videoID  string
	segments []segments.Segment
	skipped  map[string]bool
}

// NewContentBlock creates a content-block controller, enabled by segments.enable.
func NewContentBlock() *ContentBlock {
	return &ContentBlock{
		enabled: viper.GetBool(key.SegmentsEnable),
		skipped: make(map[string]bool),
	}
}

// Segments returns the segments known for the current video.
func (c *ContentBlock) Segments() []segments.Segment { return c.segments }

func (c *ContentBlock) reset() {
	c.fetch.Cancel()
	c.videoID = ""
	c.segments = nil
	c.skipped = make(map[string]bool)
}

func (c *ContentBlock) OnNewVideo(*media.Entry) {
	c.reset()
}

func (c *ContentBlock) OnVideoLoaded(entry *media.Entry) {
	ctx := c.Context()
	if !c.enabled || ctx.Segments == nil || entry.VideoID == "" || entry.IsLive {
		return
	}

	if c.videoID == entry.VideoID && (c.fetch.Live() || c.segments != nil) {
		return
	}

	c.reset()
	c.videoID = entry.VideoID
	videoID := entry.VideoID
	categories := viper.GetStringSlice(key.SegmentsCategories)

	c.fetch = eventloop.Subscribe(ctx.Scheduler, ctx.Segments.Stream(videoID, categories), eventloop.Handlers[[]segments.Segment]{
		Item: func(found []segments.Segment) {
			if c.videoID != videoID {
				return
			}
			c.segments = found
			c.markChapters()
		},
		Error: func(err error) {
			log.Warnf("segments %s: %v", videoID, err)
		},
	})
}

func (c *ContentBlock) markChapters() {
	marker, ok := c.Engine().(player.ChapterMarker)
	if !ok || len(c.segments) == 0 {
		return
	}

	chapters := lo.FlatMap(c.segments, func(s segments.Segment, _ int) []player.Chapter {
		return []player.Chapter{
			{Title: s.Category, StartMs: s.StartMs},
			{Title: "", StartMs: s.EndMs},
		}
	})

	if err := marker.SetChapters(chapters); err != nil {
		log.Debugf("set chapters: %v", err)
	}
}

func (c *ContentBlock) OnTick(positionMs, _ int64) {
	if !c.enabled || len(c.segments) == 0 {
		return
	}

	segment, ok := segments.Find(c.segments, positionMs).Get()
	if !ok || c.skipped[segment.UUID] {
		return
	}

	engine := c.Engine()
	if engine == nil {
		return
	}

	c.skipped[segment.UUID] = true
	log.Infof("skipping %s", segment)
	if err := engine.Seek(segment.EndMs); err != nil {
		log.Warnf("skip %s: %v", segment, err)
	}
}

func (c *ContentBlock) OnButtonEvent(button session.Button, state session.ButtonState) bool {
	if button != session.ButtonSegments {
		return false
	}

	c.enabled = state == session.ButtonOn
	log.Infof("segment skipping enabled: %t", c.enabled)
	if c.enabled {
		if video := c.Video(); video != nil {
			c.OnVideoLoaded(video)
		}
	}
	return true
}

func (c *ContentBlock) OnEngineReleased() {
	c.fetch.Cancel()
}

func (c *ContentBlock) OnFinish() {
	c.fetch.Cancel()
}
