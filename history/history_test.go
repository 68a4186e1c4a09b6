package history

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/store"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func record(id string, pos int64) Record {
	return NewRecord(media.New(id, ""), pos, 100_000, time.Time{})
}

func TestCache(t *testing.T) {
	Convey("Given an empty cache with a 10s persist delay", t, func() {
		loop := eventloop.NewManual(epoch)
		mem := store.NewMemory("default")
		cache := New(mem, loop, Options{Capacity: 50, PersistDelay: 10 * time.Second})

		So(cache.IsEmpty(), ShouldBeTrue)
		So(cache.Last().IsAbsent(), ShouldBeTrue)

		Convey("Three saves two seconds apart produce exactly one write holding all three", func() {
			cache.Save(record("a", 1))
			loop.Advance(2 * time.Second)
			cache.Save(record("b", 2))
			loop.Advance(2 * time.Second)
			cache.Save(record("c", 3))

			loop.Advance(9 * time.Second)
			So(mem.Writes(), ShouldEqual, 0)
			So(cache.Pending(), ShouldBeTrue)

			loop.Advance(time.Second)
			So(mem.Writes(), ShouldEqual, 1)
			So(cache.Pending(), ShouldBeFalse)

			data, _ := mem.GetString(StoreKey)
			records, _, _, err := Decode(data)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 3)
			So(records[0].VideoID(), ShouldEqual, "a")
			So(records[2].VideoID(), ShouldEqual, "c")

			loop.Advance(time.Minute)
			So(mem.Writes(), ShouldEqual, 1)
		})

		Convey("Saving again replaces the older record of the same video", func() {
			cache.Save(record("a", 1))
			cache.Save(record("b", 2))
			cache.Save(record("a", 3))

			So(cache.Len(), ShouldEqual, 2)
			So(cache.GetByVideoID("a").MustGet().PositionMs, ShouldEqual, 3)
			So(cache.Last().MustGet().VideoID(), ShouldEqual, "a")
		})

		Convey("Saves are stamped with the loop clock", func() {
			loop.Advance(time.Hour)
			cache.Save(record("a", 1))
			So(cache.Last().MustGet().SavedAt, ShouldEqual, epoch.Add(time.Hour))
		})

		Convey("Empty entries are ignored", func() {
			cache.Save(Record{})
			cache.Save(NewRecord(&media.Entry{Title: "x"}, 1, 1, epoch))
			So(cache.IsEmpty(), ShouldBeTrue)
			So(cache.Pending(), ShouldBeFalse)
		})

		Convey("Lookups by unknown or empty ids find nothing", func() {
			cache.Save(record("a", 1))
			So(cache.GetByVideoID("zz").IsAbsent(), ShouldBeTrue)
			So(cache.GetByVideoID("").IsAbsent(), ShouldBeTrue)
		})

		Convey("Remove and Clear write immediately and cancel the pending write", func() {
			cache.Save(record("a", 1))
			cache.Save(record("b", 2))
			cache.RemoveByVideoID("a")

			So(mem.Writes(), ShouldEqual, 1)
			So(cache.Pending(), ShouldBeFalse)
			So(cache.GetByVideoID("a").IsAbsent(), ShouldBeTrue)

			cache.Clear()
			So(mem.Writes(), ShouldEqual, 2)
			data, _ := mem.GetString(StoreKey)
			records, _, _, _ := Decode(data)
			So(records, ShouldBeEmpty)

			loop.Advance(time.Minute)
			So(mem.Writes(), ShouldEqual, 2)
		})

		Convey("Snapshots are detached copies", func() {
			cache.Save(record("a", 1))
			snap := cache.Snapshot()
			snap[0].Entry.Title = "changed"
			So(cache.Last().MustGet().Entry.Title, ShouldBeEmpty)
		})
	})
}

func TestCapacity(t *testing.T) {
	Convey("Given a cache bounded to 50", t, func() {
		loop := eventloop.NewManual(epoch)
		cache := New(store.NewMemory("default"), loop, Options{Capacity: 50, PersistDelay: time.Second})

		Convey("It evicts the oldest records first", func() {
			for i := 0; i < 60; i++ {
				cache.Save(record(fmt.Sprint(i), int64(i)))
				So(cache.Len(), ShouldBeLessThanOrEqualTo, 50)
			}

			snap := cache.Snapshot()
			So(snap, ShouldHaveLength, 50)
			So(snap[0].VideoID(), ShouldEqual, "10")
			So(snap[49].VideoID(), ShouldEqual, "59")
			So(cache.GetByVideoID("9").IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestRestore(t *testing.T) {
	Convey("Given a persisted cache", t, func() {
		loop := eventloop.NewManual(epoch)
		mem := store.NewMemory("default")

		first := New(mem, loop, Options{Capacity: 50, PersistDelay: time.Second})
		first.Save(record("a", 10))
		first.SetHistoryBroken(true)
		first.Flush()

		Convey("A new cache restores records and the broken flag", func() {
			second := New(mem, loop, Options{Capacity: 50, PersistDelay: time.Second})
			So(second.Len(), ShouldEqual, 1)
			So(second.GetByVideoID("a").MustGet().PositionMs, ShouldEqual, 10)
			So(second.IsHistoryBroken(), ShouldBeTrue)

			Convey("and keeps the flag on the next write", func() {
				second.Save(record("b", 1))
				loop.Advance(time.Second)
				third := New(mem, loop, Options{Capacity: 50, PersistDelay: time.Second})
				So(third.IsHistoryBroken(), ShouldBeTrue)
				So(third.Len(), ShouldEqual, 2)
			})
		})

		Convey("A profile switch reloads from the new profile", func() {
			So(mem.SwitchProfile("kids"), ShouldBeNil)
			loop.Drain()
			So(first.IsEmpty(), ShouldBeTrue)
			So(first.IsHistoryBroken(), ShouldBeFalse)

			So(mem.SwitchProfile("default"), ShouldBeNil)
			loop.Drain()
			So(first.Len(), ShouldEqual, 1)
		})

		Convey("A smaller capacity keeps the newest restored records", func() {
			for i := 0; i < 5; i++ {
				first.Save(record(fmt.Sprint("n", i), 1))
			}
			first.Flush()

			small := New(mem, loop, Options{Capacity: 3, PersistDelay: time.Second})
			snap := small.Snapshot()
			So(snap, ShouldHaveLength, 3)
			So(snap[2].VideoID(), ShouldEqual, "n4")
		})

		Convey("Unreadable payloads restore nothing", func() {
			So(mem.SetString(StoreKey, `{"version":1}`), ShouldBeNil)
			broken := New(mem, loop, Options{Capacity: 50, PersistDelay: time.Second})
			So(broken.IsEmpty(), ShouldBeTrue)
		})
	})
}
