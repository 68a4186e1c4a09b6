package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tvloop/tvloop/media"
)

const currentVersion = 2

// ErrUnknownVersion is returned for payloads written by an unsupported format version.
var ErrUnknownVersion = errors.New("unknown history payload version")

type payload struct {
	Version int               `json:"version"`
	Records []json.RawMessage `json:"records"`
	Broken  bool              `json:"broken,omitempty"`
}

type recordJSON struct {
	VideoID          string  `json:"video_id,omitempty"`
	PlaylistID       string  `json:"playlist_id,omitempty"`
	ChannelID        string  `json:"channel_id,omitempty"`
	ReloadKey        string  `json:"reload_key,omitempty"`
	Title            string  `json:"title,omitempty"`
	Author           string  `json:"author,omitempty"`
	URL              string  `json:"url,omitempty"`
	PercentWatched   float64 `json:"percent_watched"`
	StartTimeSeconds int     `json:"start_time_seconds,omitempty"`
	EntryDurationMs  int64   `json:"entry_duration_ms"`
	IsLive           bool    `json:"is_live,omitempty"`
	IsUpcoming       bool    `json:"is_upcoming,omitempty"`
	IsShorts         bool    `json:"is_shorts,omitempty"`

	PositionMs int64   `json:"position_ms"`
	DurationMs int64   `json:"duration_ms"`
	Speed      float64 `json:"speed"`
	SavedAt    int64   `json:"saved_at"`
}

// defaultRecord holds the values fields take when a payload does not carry them.
// Decoding always starts from it, so fields added later read as defaults in older payloads.
func defaultRecord() recordJSON {
	return recordJSON{
		PercentWatched:  -1,
		EntryDurationMs: -1,
		DurationMs:      -1,
		Speed:           1,
	}
}

func toJSON(r Record) recordJSON {
	e := r.Entry
	return recordJSON{
		VideoID:          e.VideoID,
		PlaylistID:       e.PlaylistID,
		ChannelID:        e.ChannelID,
		ReloadKey:        e.ReloadKey,
		Title:            e.Title,
		Author:           e.Author,
		URL:              e.URL,
		PercentWatched:   e.PercentWatched,
		StartTimeSeconds: e.StartTimeSeconds,
		EntryDurationMs:  e.DurationMs,
		IsLive:           e.IsLive,
		IsUpcoming:       e.IsUpcoming,
		IsShorts:         e.IsShorts,
		PositionMs:       r.PositionMs,
		DurationMs:       r.DurationMs,
		Speed:            r.Speed,
		SavedAt:          r.SavedAt.UnixMilli(),
	}
}

func (j recordJSON) record() Record {
	entry := media.New(j.VideoID, j.Title)
	entry.PlaylistID = j.PlaylistID
	entry.ChannelID = j.ChannelID
	entry.ReloadKey = j.ReloadKey
	entry.Author = j.Author
	entry.URL = j.URL
	entry.PercentWatched = j.PercentWatched
	entry.StartTimeSeconds = j.StartTimeSeconds
	entry.DurationMs = j.EntryDurationMs
	entry.IsLive = j.IsLive
	entry.IsUpcoming = j.IsUpcoming
	entry.IsShorts = j.IsShorts

	return Record{
		Entry:      entry,
		PositionMs: j.PositionMs,
		DurationMs: j.DurationMs,
		Speed:      j.Speed,
		SavedAt:    time.UnixMilli(j.SavedAt),
	}
}

// Encode serializes records and the broken-history flag. The flag is only written when set.
func Encode(records []Record, broken bool) (string, error) {
	p := payload{
		Version: currentVersion,
		Records: make([]json.RawMessage, 0, len(records)),
		Broken:  broken,
	}

	for _, r := range records {
		if media.IsEmpty(r.Entry) {
			continue
		}

		raw, err := json.Marshal(toJSON(r))
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", r.Entry, err)
		}
		p.Records = append(p.Records, raw)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Decode parses a payload written by Encode or by the legacy delimited format.
// Records that cannot be parsed are skipped and counted; the rest are returned.
func Decode(data string) (records []Record, broken bool, skipped int, err error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, false, 0, nil
	}

	if !strings.HasPrefix(data, "{") {
		records, broken, skipped = decodeLegacy(data)
		return records, broken, skipped, nil
	}

	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, false, 0, fmt.Errorf("decode history: %w", err)
	}

	if p.Version != currentVersion {
		return nil, false, 0, fmt.Errorf("%w: %d", ErrUnknownVersion, p.Version)
	}

	for _, raw := range p.Records {
		j := defaultRecord()
		if err := json.Unmarshal(raw, &j); err != nil {
			skipped++
			continue
		}

		r := j.record()
		if media.IsEmpty(r.Entry) {
			skipped++
			continue
		}
		records = append(records, r)
	}

	return records, p.Broken, skipped, nil
}
