// Package content defines the asynchronous metadata, comments and chat sources used by a session.
package content

import (
	"errors"
	"fmt"
	"time"

	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/media"
)

var (
	// ErrNotFound is returned by streams whose key is unknown to the service.
	ErrNotFound = errors.New("content not found")
	// ErrUnsupported is returned by streams a service cannot provide.
	ErrUnsupported = errors.New("content unsupported")
)

// Comment is a single top-level comment.
type Comment struct {
	ID          string
	Author      string
	Text        string
	Likes       int64
	PublishedAt time.Time
}

func (c Comment) String() string {
	return fmt.Sprintf("%s: %s", c.Author, c.Text)
}

// ChatMessage is a single live chat message.
type ChatMessage struct {
	ID     string
	Author string
	Text   string
	At     time.Time
}

func (m ChatMessage) String() string {
	return fmt.Sprintf("%s: %s", m.Author, m.Text)
}

// Service provides network-backed content keyed by opaque tokens.
// Streams do nothing until subscribed and stop when their context is cancelled.
type Service interface {
	// Metadata emits the metadata of a video once.
	Metadata(videoID string) eventloop.Stream[*media.Metadata]
	// Comments emits pages of comments for the key found in the metadata.
	Comments(key string) eventloop.Stream[[]Comment]
	// Chat emits live chat messages as they arrive.
	Chat(key string) eventloop.Stream[ChatMessage]
}
