package controller

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/content"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/session"
)

// chatBacklog bounds the messages kept for display.
const chatBacklog = 100

// Chat follows the live chat of live streams.
type Chat struct {
	session.Base

	enabled  bool
	key      string
	stream   *eventloop.Subscription
	messages []content.ChatMessage

	// OnMessage, when set, receives every accepted message on the loop.
	OnMessage func(content.ChatMessage)
}

// NewChat creates a chat controller, enabled by chat.enable.
func NewChat() *Chat {
	return &Chat{enabled: viper.GetBool(key.ChatEnable)}
}

// Messages returns the most recent messages, oldest first.
func (c *Chat) Messages() []content.ChatMessage {
	return append([]content.ChatMessage(nil), c.messages...)
}

// Open reports whether a chat stream is live.
func (c *Chat) Open() bool { return c.stream.Live() }

func blacklisted(author string) bool {
	author = strings.ToLower(strings.TrimSpace(author))
	return lo.ContainsBy(viper.GetStringSlice(key.ChatBlacklist), func(blocked string) bool {
		return strings.ToLower(strings.TrimSpace(blocked)) == author
	})
}

func (c *Chat) open() {
	ctx := c.Context()
	if ctx.Content == nil || c.key == "" || c.stream.Live() {
		return
	}

	chatKey := c.key
	c.stream = eventloop.Subscribe(ctx.Scheduler, ctx.Content.Chat(chatKey), eventloop.Handlers[content.ChatMessage]{
		Item: func(m content.ChatMessage) {
			if blacklisted(m.Author) {
				return
			}

			c.messages = append(c.messages, m)
			if over := len(c.messages) - chatBacklog; over > 0 {
				c.messages = c.messages[over:]
			}

			if c.OnMessage != nil {
				c.OnMessage(m)
			}
		},
		Error: func(err error) {
			log.Warnf("chat %s: %v", chatKey, err)
		},
	})
}

func (c *Chat) close() {
	c.stream.Cancel()
}

func (c *Chat) OnNewVideo(*media.Entry) {
	c.close()
	c.key = ""
	c.messages = nil
}

func (c *Chat) OnMetadata(meta *media.Metadata) {
	if meta.ChatKey == c.key && c.stream.Live() {
		return
	}

	c.close()
	c.key = meta.ChatKey
	if c.enabled {
		c.open()
	}
}

func (c *Chat) OnButtonEvent(button session.Button, state session.ButtonState) bool {
	if button != session.ButtonChat {
		return false
	}

	c.enabled = state == session.ButtonOn
	if c.enabled {
		if c.key == "" {
			log.Info("no live chat for this video")
		}
		c.open()
	} else {
		c.close()
	}
	return true
}

func (c *Chat) OnEngineReleased() {
	c.close()
}

func (c *Chat) OnFinish() {
	c.close()
}
