package media

import "fmt"

// Format describes the stream currently decoded by the engine.
type Format struct {
	ID        string
	Codec     string
	Width     int
	Height    int
	FrameRate float64
}

// IsEmpty reports whether the format lacks the fields needed for display matching.
func (f *Format) IsEmpty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || f.FrameRate <= 0
}

// String implements fmt.Stringer.
func (f *Format) String() string {
	if f == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%dx%d@%.3f %s", f.Width, f.Height, f.FrameRate, f.Codec)
}

// Metadata is the descriptive information fetched for the playing entry.
type Metadata struct {
	VideoID     string
	Title       string
	Author      string
	ChannelID   string
	Description string
	DurationMs  int64
	IsLive      bool
	IsUpcoming  bool

	// Opaque continuation tokens for the content service.
	CommentsKey string
	ChatKey     string

	Next        *Entry
	Suggestions []*Entry
}
