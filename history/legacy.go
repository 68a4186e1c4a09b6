package history

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tvloop/tvloop/media"
)

// Delimiters of the unversioned format.
const (
	legacyRecordDelim = "&si;"
	legacyFieldDelim  = "&sf;"
	legacyEntryDelim  = "&vi;"
	legacyMergeDelim  = "&mi;"
	legacyNull        = "null"
)

// Entry blob fields in order. The blob grew over time; older writers stopped early.
const (
	blobVideoID = iota
	blobTitle
	blobPlaylistID
	blobChannelID
	blobReloadKey
	blobAuthor
	blobPercentWatched
	blobStartTimeSeconds
	blobDurationMs
	blobIsLive
	blobIsUpcoming
	blobIsShorts
	blobFields
)

// blobDefaults fill the fields a shorter blob lacks.
var blobDefaults = [blobFields]string{
	blobVideoID:          legacyNull,
	blobTitle:            legacyNull,
	blobPlaylistID:       legacyNull,
	blobChannelID:        legacyNull,
	blobReloadKey:        legacyNull,
	blobAuthor:           legacyNull,
	blobPercentWatched:   "-1",
	blobStartTimeSeconds: "-1",
	blobDurationMs:       "-1",
	blobIsLive:           "false",
	blobIsUpcoming:       "false",
	blobIsShorts:         "false",
}

func decodeLegacy(data string) (records []Record, broken bool, skipped int) {
	states, flag, _ := strings.Cut(data, legacyMergeDelim)
	broken = parseBool(flag)

	for _, encoded := range strings.Split(states, legacyRecordDelim) {
		if encoded == "" {
			continue
		}

		r, ok := decodeLegacyRecord(encoded)
		if !ok {
			skipped++
			continue
		}
		records = append(records, r)
	}

	return records, broken, skipped
}

func decodeLegacyRecord(encoded string) (Record, bool) {
	fields := strings.Split(encoded, legacyFieldDelim)

	entry, ok := decodeLegacyEntry(fields[0])
	if !ok {
		return Record{}, false
	}

	r := Record{
		Entry:      entry,
		PositionMs: parseInt(field(fields, 1), 0),
		DurationMs: parseInt(field(fields, 2), -1),
		Speed:      parseFloat(field(fields, 3), 1),
	}

	if r.DurationMs > 0 {
		entry.PercentWatched = r.Percent()
	}

	return r, true
}

func decodeLegacyEntry(blob string) (*media.Entry, bool) {
	fields := strings.Split(blob, legacyEntryDelim)
	if len(fields) < blobFields {
		fields = append(fields, blobDefaults[len(fields):]...)
	}
	if len(fields) != blobFields {
		return nil, false
	}

	str := func(i int) string {
		return lo.Ternary(fields[i] == legacyNull, "", fields[i])
	}

	entry := media.New(str(blobVideoID), str(blobTitle))
	entry.PlaylistID = str(blobPlaylistID)
	entry.ChannelID = str(blobChannelID)
	entry.ReloadKey = str(blobReloadKey)
	entry.Author = str(blobAuthor)
	entry.PercentWatched = parseFloat(fields[blobPercentWatched], -1)
	entry.StartTimeSeconds = int(lo.Max([]int64{parseInt(fields[blobStartTimeSeconds], 0), 0}))
	entry.DurationMs = parseInt(fields[blobDurationMs], -1)
	entry.IsLive = parseBool(fields[blobIsLive])
	entry.IsUpcoming = parseBool(fields[blobIsUpcoming])
	entry.IsShorts = parseBool(fields[blobIsShorts])

	return entry, !media.IsEmpty(entry)
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func parseInt(s string, def int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(s))
	return v
}
