package content

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/media"
)

// Catalog is an in-memory Service.
// Chat messages are replayed with Interval between them until the stream is cancelled.
type Catalog struct {
	mu       sync.RWMutex
	metadata map[string]*media.Metadata
	comments map[string][]Comment
	chat     map[string][]ChatMessage

	Interval time.Duration
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		metadata: make(map[string]*media.Metadata),
		comments: make(map[string][]Comment),
		chat:     make(map[string][]ChatMessage),
	}
}

// AddMetadata registers the metadata returned for its video id.
func (c *Catalog) AddMetadata(meta *media.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[meta.VideoID] = meta
}

// AddComments registers the comments returned for key.
func (c *Catalog) AddComments(key string, comments ...Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments[key] = append(c.comments[key], comments...)
}

// AddChat registers the chat messages replayed for key.
func (c *Catalog) AddChat(key string, messages ...ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chat[key] = append(c.chat[key], messages...)
}

// Metadata implements Service.
func (c *Catalog) Metadata(videoID string) eventloop.Stream[*media.Metadata] {
	return func(ctx context.Context, emit func(*media.Metadata)) error {
		c.mu.RLock()
		meta, ok := c.metadata[videoID]
		c.mu.RUnlock()

		if !ok {
			return fmt.Errorf("metadata %q: %w", videoID, ErrNotFound)
		}

		copied := *meta
		emit(&copied)
		return nil
	}
}

// Comments implements Service.
func (c *Catalog) Comments(key string) eventloop.Stream[[]Comment] {
	return func(ctx context.Context, emit func([]Comment)) error {
		c.mu.RLock()
		comments, ok := c.comments[key]
		c.mu.RUnlock()

		if !ok {
			return fmt.Errorf("comments %q: %w", key, ErrNotFound)
		}

		emit(append([]Comment(nil), comments...))
		return nil
	}
}

// Chat implements Service.
func (c *Catalog) Chat(key string) eventloop.Stream[ChatMessage] {
	return func(ctx context.Context, emit func(ChatMessage)) error {
		c.mu.RLock()
		messages, ok := c.chat[key]
		c.mu.RUnlock()

		if !ok {
			return fmt.Errorf("chat %q: %w", key, ErrNotFound)
		}

		for _, m := range messages {
			if c.Interval > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.Interval):
				}
			} else if ctx.Err() != nil {
				return ctx.Err()
			}
			emit(m)
		}

		return nil
	}
}
