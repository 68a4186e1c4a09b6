package controller

import (
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/content"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/session"
)

// Comments loads the comments of the current video when the comments button is pressed.
type Comments struct {
	session.Base

	key      string
	stream   *eventloop.Subscription
	comments []content.Comment
	failed   bool

	// OnComments, when set, receives every loaded page on the loop.
	// A nil page means the comments could not be loaded.
	OnComments func([]content.Comment)
}

// NewComments creates a comments controller.
func NewComments() *Comments {
	return &Comments{}
}

// Loaded returns the comments loaded so far.
func (c *Comments) Loaded() []content.Comment {
	return append([]content.Comment(nil), c.comments...)
}

// Failed reports whether the last load failed.
func (c *Comments) Failed() bool { return c.failed }

func (c *Comments) reset() {
	c.stream.Cancel()
	c.comments = nil
	c.failed = false
}

func (c *Comments) OnNewVideo(*media.Entry) {
	c.reset()
	c.key = ""
}

func (c *Comments) OnMetadata(meta *media.Metadata) {
	if meta.CommentsKey != c.key {
		c.reset()
		c.key = meta.CommentsKey
	}
}

func (c *Comments) open() {
	ctx := c.Context()
	if ctx.Content == nil || c.key == "" {
		c.failed = true
		log.Info("no comments for this video")
		if c.OnComments != nil {
			c.OnComments(nil)
		}
		return
	}

	c.reset()
	commentsKey := c.key
	c.stream = eventloop.Subscribe(ctx.Scheduler, ctx.Content.Comments(commentsKey), eventloop.Handlers[[]content.Comment]{
		Item: func(page []content.Comment) {
			c.comments = append(c.comments, page...)
			if c.OnComments != nil {
				c.OnComments(page)
			}
		},
		Error: func(err error) {
			c.failed = true
			log.Warnf("comments %s: %v", commentsKey, err)
			if c.OnComments != nil {
				c.OnComments(nil)
			}
		},
	})
}

func (c *Comments) OnButtonEvent(button session.Button, state session.ButtonState) bool {
	if button != session.ButtonComments || !viper.GetBool(key.CommentsEnable) {
		return false
	}

	if state == session.ButtonOn {
		c.open()
	} else {
		c.stream.Cancel()
	}
	return true
}

func (c *Comments) OnEngineReleased() {
	c.stream.Cancel()
}

func (c *Comments) OnFinish() {
	c.stream.Cancel()
}
