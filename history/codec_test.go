package history

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvloop/tvloop/media"
)

func sample(id string, pos, dur int64, speed float64) Record {
	e := media.New(id, "title "+id)
	e.PlaylistID = "PL1"
	e.PercentWatched = 12.5
	e.DurationMs = dur
	e.IsShorts = true
	return Record{Entry: e, PositionMs: pos, DurationMs: dur, Speed: speed, SavedAt: time.UnixMilli(1_700_000_000_123)}
}

func TestRoundTrip(t *testing.T) {
	Convey("Encoding then decoding returns the same records", t, func() {
		records := []Record{
			sample("a", 0, 0, 1.0),
			sample("b", 61_000, 120_000, 1.5),
			sample("c", 1<<40, -1, 0.25),
		}
		records[2].Entry.Title = ""
		records[2].Entry.PercentWatched = -1

		data, err := Encode(records, false)
		So(err, ShouldBeNil)
		So(data, ShouldNotContainSubstring, "broken")

		decoded, broken, skipped, err := Decode(data)
		So(err, ShouldBeNil)
		So(broken, ShouldBeFalse)
		So(skipped, ShouldEqual, 0)
		So(decoded, ShouldResemble, records)
	})

	Convey("Links played as-is keep their URL", t, func() {
		entry, err := media.Parse("https://vimeo.com/76979871")
		So(err, ShouldBeNil)

		data, err := Encode([]Record{NewRecord(entry, 5_000, 60_000, time.UnixMilli(1_700_000_000_000))}, false)
		So(err, ShouldBeNil)

		decoded, _, _, err := Decode(data)
		So(err, ShouldBeNil)
		So(decoded, ShouldHaveLength, 1)
		So(decoded[0].Entry.URL, ShouldEqual, "https://vimeo.com/76979871")
		So(decoded[0].Entry.VideoID, ShouldEqual, entry.VideoID)
		So(decoded[0].Entry.Equal(entry), ShouldBeTrue)
	})

	Convey("The broken flag survives", t, func() {
		data, err := Encode(nil, true)
		So(err, ShouldBeNil)
		So(data, ShouldContainSubstring, `"broken":true`)

		_, broken, _, err := Decode(data)
		So(err, ShouldBeNil)
		So(broken, ShouldBeTrue)
	})
}

func TestDecode(t *testing.T) {
	Convey("Decode", t, func() {
		Convey("Empty payloads hold nothing", func() {
			records, broken, skipped, err := Decode("  ")
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
			So(broken, ShouldBeFalse)
			So(skipped, ShouldEqual, 0)
		})

		Convey("Missing fields take their defaults", func() {
			records, _, _, err := Decode(`{"version":2,"records":[{"video_id":"x","position_ms":5}]}`)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
			r := records[0]
			So(r.PositionMs, ShouldEqual, 5)
			So(r.DurationMs, ShouldEqual, -1)
			So(r.Speed, ShouldEqual, 1)
			So(r.Entry.PercentWatched, ShouldEqual, -1)
			So(r.Entry.DurationMs, ShouldEqual, -1)
			So(r.Entry.Group, ShouldEqual, media.NoGroup)
		})

		Convey("Bad records are skipped and the rest kept", func() {
			records, _, skipped, err := Decode(`{"version":2,"records":[{"video_id":"x"},{"title":"no id"},"junk",{"video_id":"y"}]}`)
			So(err, ShouldBeNil)
			So(skipped, ShouldEqual, 2)
			So(records, ShouldHaveLength, 2)
			So(records[1].VideoID(), ShouldEqual, "y")
		})

		Convey("Unknown versions are rejected", func() {
			_, _, _, err := Decode(`{"version":9,"records":[]}`)
			So(errors.Is(err, ErrUnknownVersion), ShouldBeTrue)
		})

		Convey("Malformed JSON is an error", func() {
			_, _, _, err := Decode(`{"version":`)
			So(err, ShouldNotBeNil)
		})
	})
}

func blob(fields ...string) string {
	return strings.Join(fields, legacyEntryDelim)
}

func TestLegacy(t *testing.T) {
	Convey("Given legacy delimited payloads", t, func() {
		full := blob("vid1", "Title", "null", "null", "null", "Author", "40", "0", "100000", "false", "false", "true")
		rec := strings.Join([]string{full, "40000", "100000", "1.25"}, legacyFieldDelim)

		Convey("A complete record parses", func() {
			records, broken, skipped, err := Decode(rec)
			So(err, ShouldBeNil)
			So(broken, ShouldBeFalse)
			So(skipped, ShouldEqual, 0)
			So(records, ShouldHaveLength, 1)

			r := records[0]
			So(r.VideoID(), ShouldEqual, "vid1")
			So(r.Entry.Title, ShouldEqual, "Title")
			So(r.Entry.PlaylistID, ShouldBeEmpty)
			So(r.Entry.Author, ShouldEqual, "Author")
			So(r.Entry.IsShorts, ShouldBeTrue)
			So(r.PositionMs, ShouldEqual, 40_000)
			So(r.DurationMs, ShouldEqual, 100_000)
			So(r.Speed, ShouldEqual, 1.25)
			So(r.Entry.PercentWatched, ShouldEqual, 40)
		})

		Convey("Shorter blobs are padded with defaults", func() {
			short := strings.Join([]string{blob("vid2", "Old"), "1000"}, legacyFieldDelim)
			records, _, skipped, err := Decode(short)
			So(err, ShouldBeNil)
			So(skipped, ShouldEqual, 0)

			r := records[0]
			So(r.VideoID(), ShouldEqual, "vid2")
			So(r.Entry.DurationMs, ShouldEqual, -1)
			So(r.Entry.PercentWatched, ShouldEqual, -1)
			So(r.Entry.IsLive, ShouldBeFalse)
			So(r.DurationMs, ShouldEqual, -1)
			So(r.Speed, ShouldEqual, 1)
		})

		Convey("A bare video id is the oldest blob", func() {
			records, _, _, err := Decode("plainid" + legacyFieldDelim + "10")
			So(err, ShouldBeNil)
			So(records[0].VideoID(), ShouldEqual, "plainid")
		})

		Convey("Longer blobs and blobs without identity are skipped, the rest survive", func() {
			long := blob(append(strings.Split(full, legacyEntryDelim), "extra")...)
			empty := blob("null", "no id")
			data := strings.Join([]string{long, rec, empty}, legacyRecordDelim)

			records, _, skipped, err := Decode(data)
			So(err, ShouldBeNil)
			So(skipped, ShouldEqual, 2)
			So(records, ShouldHaveLength, 1)
			So(records[0].VideoID(), ShouldEqual, "vid1")
		})

		Convey("The merged broken flag is read", func() {
			records, broken, _, err := Decode(rec + legacyMergeDelim + "true")
			So(err, ShouldBeNil)
			So(broken, ShouldBeTrue)
			So(records, ShouldHaveLength, 1)
		})

		Convey("Migrated payloads re-encode in the current format", func() {
			records, broken, _, _ := Decode(rec + legacyMergeDelim + "true")
			data, err := Encode(records, broken)
			So(err, ShouldBeNil)
			So(data, ShouldStartWith, `{"version":2`)

			again, brokenAgain, _, err := Decode(data)
			So(err, ShouldBeNil)
			So(brokenAgain, ShouldBeTrue)
			So(again[0].Entry, ShouldResemble, records[0].Entry)
			So(again[0].PositionMs, ShouldEqual, records[0].PositionMs)
		})
	})
}
