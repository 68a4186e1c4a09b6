package controller

import (
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/session"
)

// Suggestions fetches the metadata of every loaded video, merges it into the
// entry and the queue, and broadcasts it to the other controllers.
type Suggestions struct {
	session.Base

	metadata *eventloop.Subscription
	group    media.GroupID
	last     *media.Metadata
}

// NewSuggestions creates a suggestions controller.
func NewSuggestions() *Suggestions {
	return &Suggestions{group: media.NoGroup}
}

// Last returns the metadata of the current video, nil until it arrives.
func (s *Suggestions) Last() *media.Metadata { return s.last }

func (s *Suggestions) OnNewVideo(*media.Entry) {
	s.metadata.Cancel()
	s.last = nil
}

func (s *Suggestions) OnVideoLoaded(entry *media.Entry) {
	ctx := s.Context()
	if ctx.Content == nil || entry.VideoID == "" {
		return
	}

	// one metadata request per controller
	s.metadata.Cancel()
	videoID := entry.VideoID
	s.metadata = eventloop.Subscribe(ctx.Scheduler, ctx.Content.Metadata(videoID), eventloop.Handlers[*media.Metadata]{
		Item: func(meta *media.Metadata) {
			s.apply(videoID, meta)
		},
		Error: func(err error) {
			log.Warnf("metadata %s: %v", videoID, err)
		},
	})
}

func (s *Suggestions) apply(videoID string, meta *media.Metadata) {
	video := s.Video()
	if video == nil || video.VideoID != videoID || meta.VideoID != videoID {
		log.Debugf("dropping stale metadata for %s", videoID)
		return
	}

	ctx := s.Context()
	video.SyncMetadata(meta)
	ctx.Queue.Sync(video)

	if s.group != media.NoGroup {
		ctx.Groups.Remove(s.group)
		s.group = media.NoGroup
	}
	if len(meta.Suggestions) > 0 {
		s.group = ctx.Groups.Add("Suggestions", meta.Suggestions...)
	}

	if !media.IsEmpty(meta.Next) && !ctx.Queue.HasNext() && !ctx.Queue.Contains(meta.Next) {
		ctx.Queue.Add(meta.Next)
	}

	s.last = meta
	s.Dispatcher().Metadata(meta)
}

func (s *Suggestions) OnEngineReleased() {
	s.metadata.Cancel()
}

func (s *Suggestions) OnFinish() {
	s.metadata.Cancel()
}
