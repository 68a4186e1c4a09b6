// Package history keeps the recent playback positions of the active profile and persists them.
package history

import (
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/store"
)

// StoreKey is the store key holding the serialized cache.
const StoreKey = "video_state"

// Options tune a Cache.
type Options struct {
	// Capacity bounds the number of records. Oldest records are evicted first.
	Capacity int
	// PersistDelay collapses saves within the window into one write.
	PersistDelay time.Duration
}

// Cache is a bounded, recency-ordered list of playback positions.
// It must be used from the event loop; off-loop readers take a Snapshot through it.
type Cache struct {
	store     store.Store
	scheduler eventloop.Scheduler
	persist   *eventloop.Timer
	options   Options

	records []Record
	broken  bool
}

// New creates a cache, restores it from s and reloads it whenever the profile changes.
func New(s store.Store, scheduler eventloop.Scheduler, options Options) *Cache {
	c := &Cache{
		store:     s,
		scheduler: scheduler,
		persist:   eventloop.NewTimer(scheduler),
		options:   options,
	}

	c.Restore()
	s.OnProfileChanged(func() {
		scheduler.Post(c.Restore)
	})

	return c
}

// Save appends a record, replacing an older record of the same entry, and schedules a write.
func (c *Cache) Save(r Record) {
	if r.Entry == nil || r.Entry.Key() == 0 {
		return
	}

	if r.SavedAt.IsZero() {
		r.SavedAt = c.scheduler.Now()
	}

	c.records = lo.Reject(c.records, func(old Record, _ int) bool { return old.Entry.Equal(r.Entry) })
	c.records = append(c.records, r)

	if over := len(c.records) - c.options.Capacity; c.options.Capacity > 0 && over > 0 {
		c.records = c.records[over:]
	}

	c.persist.Reset(c.options.PersistDelay, c.write)
}

// GetByVideoID returns the newest record of a video.
func (c *Cache) GetByVideoID(videoID string) mo.Option[Record] {
	if videoID == "" {
		return mo.None[Record]()
	}

	for i := len(c.records) - 1; i >= 0; i-- {
		if c.records[i].VideoID() == videoID {
			return mo.Some(c.records[i])
		}
	}

	return mo.None[Record]()
}

// Last returns the most recently saved record.
func (c *Cache) Last() mo.Option[Record] {
	if len(c.records) == 0 {
		return mo.None[Record]()
	}

	return mo.Some(c.records[len(c.records)-1])
}

// RemoveByVideoID drops every record of a video and writes immediately.
func (c *Cache) RemoveByVideoID(videoID string) {
	c.records = lo.Reject(c.records, func(r Record, _ int) bool { return r.VideoID() == videoID })
	c.Flush()
}

// Clear drops every record and writes immediately.
func (c *Cache) Clear() {
	c.records = nil
	c.Flush()
}

// IsEmpty reports whether no record is held.
func (c *Cache) IsEmpty() bool {
	return len(c.records) == 0
}

// Len returns the number of records held.
func (c *Cache) Len() int {
	return len(c.records)
}

// Capacity returns the record bound.
func (c *Cache) Capacity() int {
	return c.options.Capacity
}

// Snapshot returns a copy of the records, oldest first, safe to hand to other goroutines.
func (c *Cache) Snapshot() []Record {
	return lo.Map(c.records, func(r Record, _ int) Record {
		r.Entry = r.Entry.Copy()
		return r
	})
}

// Pending reports whether a debounced write is scheduled.
func (c *Cache) Pending() bool {
	return c.persist.Pending()
}

// SetHistoryBroken sets the flag persisted alongside the records.
func (c *Cache) SetHistoryBroken(broken bool) {
	c.broken = broken
}

// IsHistoryBroken reports the persisted broken-history flag.
func (c *Cache) IsHistoryBroken() bool {
	return c.broken
}

// Flush cancels any debounced write and writes now.
func (c *Cache) Flush() {
	c.persist.Stop()
	c.write()
}

// Restore replaces the records with the persisted ones.
func (c *Cache) Restore() {
	c.persist.Stop()
	c.records = nil
	c.broken = false

	data, err := c.store.GetString(StoreKey)
	if err != nil {
		log.Errorf("history: read: %s", err)
		return
	}

	records, broken, skipped, err := Decode(data)
	if err != nil {
		log.Errorf("history: %s", err)
		return
	}

	if skipped > 0 {
		log.WithFields(logrus.Fields{"skipped": skipped, "restored": len(records)}).Warn("history: dropped unreadable records")
	}

	if over := len(records) - c.options.Capacity; c.options.Capacity > 0 && over > 0 {
		records = records[over:]
	}

	c.records = records
	c.broken = broken
}

func (c *Cache) write() {
	data, err := Encode(c.records, c.broken)
	if err != nil {
		log.Errorf("history: encode: %s", err)
		return
	}

	if err := c.store.SetString(StoreKey, data); err != nil {
		log.Errorf("history: write: %s", err)
	}
}
