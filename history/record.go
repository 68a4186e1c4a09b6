package history

import (
	"fmt"
	"time"

	"github.com/tvloop/tvloop/media"
)

// Record is the saved playback position of one entry.
type Record struct {
	Entry      *media.Entry
	PositionMs int64
	DurationMs int64
	Speed      float64
	SavedAt    time.Time
}

// NewRecord creates a record at normal speed.
func NewRecord(entry *media.Entry, positionMs, durationMs int64, savedAt time.Time) Record {
	return Record{
		Entry:      entry,
		PositionMs: positionMs,
		DurationMs: durationMs,
		Speed:      1,
		SavedAt:    savedAt,
	}
}

// VideoID returns the video id of the record's entry.
func (r Record) VideoID() string {
	if r.Entry == nil {
		return ""
	}
	return r.Entry.VideoID
}

// Percent returns the watched share, or -1 when the duration is unknown.
func (r Record) Percent() float64 {
	if r.DurationMs <= 0 {
		return -1
	}
	return float64(r.PositionMs) * 100 / float64(r.DurationMs)
}

func (r Record) String() string {
	return fmt.Sprintf("%s at %d/%d ms", r.Entry, r.PositionMs, r.DurationMs)
}
