// Package media defines the playable entry model shared by the queue, the position cache and the session controllers.
package media

import (
	"github.com/mitchellh/hashstructure/v2"
)

// restorePercent is the watched share below which a saved position is ignored.
const restorePercent = 10

// Entry is a single playable item.
type Entry struct {
	VideoID    string
	PlaylistID string
	ChannelID  string
	ReloadKey  string

	Title  string
	Author string
	URL    string

	// PercentWatched is -1 when unknown.
	PercentWatched   float64
	StartTimeSeconds int
	// DurationMs is -1 when unknown.
	DurationMs int64

	IsLive        bool
	IsLiveEnd     bool
	IsUpcoming    bool
	IsShorts      bool
	FinishOnEnded bool

	Group GroupID

	// Heavy payload handles, released by Strip.
	Media     *Format
	NextMedia *Entry
}

// New creates an entry for a single video.
func New(videoID, title string) *Entry {
	return &Entry{
		VideoID:        videoID,
		Title:          title,
		PercentWatched: -1,
		DurationMs:     -1,
		Group:          NoGroup,
	}
}

type identity struct {
	Kind string
	ID   string
}

func (e *Entry) identity() (identity, bool) {
	switch {
	case e.VideoID != "":
		return identity{Kind: "video", ID: e.VideoID}, true
	case e.PlaylistID != "":
		return identity{Kind: "playlist", ID: e.PlaylistID}, true
	case e.ChannelID != "":
		return identity{Kind: "channel", ID: e.ChannelID}, true
	case e.ReloadKey != "":
		return identity{Kind: "reload", ID: e.ReloadKey}, true
	default:
		return identity{}, false
	}
}

// Key returns the identity key of the entry. Zero means the entry has no identity.
func (e *Entry) Key() uint64 {
	if e == nil {
		return 0
	}

	id, ok := e.identity()
	if !ok {
		return 0
	}

	hash, err := hashstructure.Hash(id, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}

	return hash
}

// IsEmpty reports whether the entry is nil or carries no identity.
func IsEmpty(e *Entry) bool {
	return e.Key() == 0
}

// Equal compares entries by identity key. Empty entries are never equal.
func (e *Entry) Equal(other *Entry) bool {
	k := e.Key()
	return k != 0 && k == other.Key()
}

// Sync merges mutable progress from another instance of the same logical entry.
// Unknown progress on the other side is ignored.
func (e *Entry) Sync(other *Entry) {
	if e == nil || other == nil || other.PercentWatched < 0 {
		return
	}

	e.PercentWatched = other.PercentWatched
}

// SyncPosition updates the watched share from an absolute position.
func (e *Entry) SyncPosition(positionMs, durationMs int64) {
	if e == nil || durationMs <= 0 {
		return
	}

	e.PercentWatched = float64(positionMs) / (float64(durationMs) / 100)
}

// SyncMetadata merges freshly fetched metadata into the entry.
func (e *Entry) SyncMetadata(meta *Metadata) {
	if e == nil || meta == nil {
		return
	}

	if e.IsLive && !meta.IsLive {
		e.IsLiveEnd = true
	}

	if meta.Title != "" {
		e.Title = meta.Title
	}
	if meta.Author != "" {
		e.Author = meta.Author
	}
	if meta.ChannelID != "" {
		e.ChannelID = meta.ChannelID
	}
	e.IsLive = meta.IsLive
	e.IsUpcoming = meta.IsUpcoming
	e.DurationMs = meta.DurationMs
	e.NextMedia = meta.Next
}

// MarkFullyViewed moves the entry's progress to its end.
func (e *Entry) MarkFullyViewed() {
	e.PercentWatched = 100
	e.StartTimeSeconds = int(e.DurationMs / 1_000)
}

// MarkNotViewed resets the entry's progress.
func (e *Entry) MarkNotViewed() {
	e.PercentWatched = 0
	e.StartTimeSeconds = 0
}

// PositionMs is the position playback should start from.
// An explicit start time wins; otherwise the watched share is used unless it is
// too small to matter or the entry was watched to the end.
func (e *Entry) PositionMs() int64 {
	if e.StartTimeSeconds > 0 {
		return int64(e.StartTimeSeconds) * 1_000
	}

	if e.PercentWatched <= restorePercent || e.PercentWatched >= 100 {
		return 0
	}

	pos := int64(float64(e.DurationMs) / 100 * e.PercentWatched)
	if pos > 0 && pos < e.DurationMs {
		return pos
	}

	return 0
}

// Strip releases heavy payload handles.
func (e *Entry) Strip() {
	if e == nil {
		return
	}

	e.Media = nil
	e.NextMedia = nil
}

// Copy returns a shallow copy without the heavy payload handles.
func (e *Entry) Copy() *Entry {
	if e == nil {
		return nil
	}

	c := *e
	c.Strip()
	return &c
}

// String implements fmt.Stringer.
func (e *Entry) String() string {
	if e == nil {
		return "<nil>"
	}

	id, _ := e.identity()
	if e.Title == "" {
		return id.Kind + ":" + id.ID
	}

	return e.Title + " (" + id.Kind + ":" + id.ID + ")"
}
