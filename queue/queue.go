// Package queue implements the ordered playback queue with a current-item pointer.
package queue

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tvloop/tvloop/media"
	"golang.org/x/exp/slices"
)

// MaxSize is the number of entries kept. Older entries are dropped from the head.
const MaxSize = 50

// Queue is an ordered list of entries with a pointer to the one playing now.
// It is not safe for concurrent use; callers mutate it from the event loop only.
type Queue struct {
	entries []*media.Entry
	synced  []*media.Entry
	current int
}

// New creates an empty queue without a current entry.
func New() *Queue {
	return &Queue{current: -1}
}

// Clear drops every entry and the current pointer.
func (q *Queue) Clear() {
	q.entries = nil
	q.current = -1
}

// ClearPosition forgets the current pointer but keeps the entries.
func (q *Queue) ClearPosition() {
	q.current = -1
}

func (q *Queue) indexOf(e *media.Entry) int {
	return slices.IndexFunc(q.entries, e.Equal)
}

// Add appends an entry.
//
// An entry equal to the current one replaces it in place. An entry equal to
// the tail is moved to the tail again and the pointer advances by one, so a
// queue that just advanced keeps doing so. Any other copy is removed first.
func (q *Queue) Add(e *media.Entry) {
	if media.IsEmpty(e) {
		return
	}

	if current, ok := q.Current().Get(); ok && e.Equal(current) {
		q.entries[q.current] = e
		return
	}

	wasLast := len(q.entries) > 0 && e.Equal(q.entries[len(q.entries)-1])

	q.Remove(e)
	q.entries = append(q.entries, e)

	if wasLast && q.current >= 0 {
		q.current++
	}

	q.trim()
	q.stripPrevious()
}

// AddAll appends entries in order, dropping earlier copies of them.
func (q *Queue) AddAll(entries []*media.Entry) {
	entries = lo.Reject(entries, func(e *media.Entry, _ int) bool { return media.IsEmpty(e) })
	if len(entries) == 0 {
		return
	}

	for _, e := range entries {
		q.Remove(e)
	}

	q.entries = append(q.entries, entries...)
	q.trim()
}

// InsertNext places an entry right after the current one, or at the tail when
// there is no valid current entry. The current entry itself is left in place.
func (q *Queue) InsertNext(e *media.Entry) {
	if media.IsEmpty(e) {
		return
	}
	if cur, ok := q.Current().Get(); ok && cur.Equal(e) {
		return
	}

	q.Remove(e)

	next := len(q.entries) - 1
	if len(q.entries) > q.current {
		next = q.current + 1
	}
	if next < 0 {
		return
	}

	q.entries = slices.Insert(q.entries, next, e)

	q.trim()
	q.stripPrevious()
}

// Remove drops an entry unless it is the current one.
func (q *Queue) Remove(e *media.Entry) {
	if media.IsEmpty(e) {
		return
	}

	if current, ok := q.Current().Get(); ok && e.Equal(current) {
		return
	}

	idx := q.indexOf(e)
	if idx < 0 {
		return
	}

	q.entries = slices.Delete(q.entries, idx, idx+1)

	if idx < q.current {
		q.current--
	}
	if q.current >= len(q.entries) {
		q.current = len(q.entries) - 1
	}
}

// RemoveAllAfterCurrent drops the tail after the current entry. Without a current entry it does nothing.
func (q *Queue) RemoveAllAfterCurrent() {
	if q.current == -1 {
		return
	}

	from := q.current + 1
	if from > 0 && from < len(q.entries) {
		clear(q.entries[from:])
		q.entries = q.entries[:from]
	}
}

// SetCurrent points at an entry, appending it first if it is not queued.
func (q *Queue) SetCurrent(e *media.Entry) {
	if media.IsEmpty(e) {
		return
	}

	if idx := q.indexOf(e); idx >= 0 {
		q.current = idx
		return
	}

	q.Add(e)
	q.current = len(q.entries) - 1
}

// Current returns the entry playing now.
func (q *Queue) Current() mo.Option[*media.Entry] {
	if q.current >= 0 && q.current < len(q.entries) {
		return mo.Some(q.entries[q.current])
	}

	return mo.None[*media.Entry]()
}

// Next returns the entry after the current one.
func (q *Queue) Next() mo.Option[*media.Entry] {
	if q.current >= 0 && q.current+1 < len(q.entries) {
		return mo.Some(q.entries[q.current+1])
	}

	return mo.None[*media.Entry]()
}

// Previous returns the entry before the current one.
func (q *Queue) Previous() mo.Option[*media.Entry] {
	if q.current-1 >= 0 && q.current-1 < len(q.entries) {
		return mo.Some(q.entries[q.current-1])
	}

	return mo.None[*media.Entry]()
}

// HasNext reports whether an entry follows the current one.
func (q *Queue) HasNext() bool {
	return q.Next().IsPresent()
}

// Contains reports whether an equal entry is queued.
func (q *Queue) Contains(e *media.Entry) bool {
	if media.IsEmpty(e) {
		return false
	}

	return q.indexOf(e) >= 0
}

// ContainsAfterCurrent reports whether an equal entry is queued after the current one.
func (q *Queue) ContainsAfterCurrent(e *media.Entry) bool {
	if media.IsEmpty(e) {
		return false
	}

	return slices.IndexFunc(q.AllAfterCurrent(), e.Equal) >= 0
}

// AllAfterCurrent returns a copy of the entries after the current one, or all
// entries when there is no current entry.
func (q *Queue) AllAfterCurrent() []*media.Entry {
	if q.current == -1 {
		return slices.Clone(q.entries)
	}

	from := q.current + 1
	if from > 0 && from < len(q.entries) {
		return slices.Clone(q.entries[from:])
	}

	return nil
}

// All returns a copy of the queued entries.
func (q *Queue) All() []*media.Entry {
	return slices.Clone(q.entries)
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Index returns the current pointer, -1 when nothing is current.
func (q *Queue) Index() int {
	return q.current
}

// Sync merges progress from an updated copy of a queued entry and records the
// copy in the changed journal.
func (q *Queue) Sync(updated *media.Entry) {
	if updated == nil {
		return
	}

	if entry, ok := lo.Find(q.entries, updated.Equal); ok {
		entry.Sync(updated)
	}

	q.synced = lo.Reject(q.synced, func(e *media.Entry, _ int) bool { return e.Equal(updated) })
	q.synced = append(q.synced, updated)
}

// Changed returns the entries synced during this session, oldest first.
func (q *Queue) Changed() []*media.Entry {
	return slices.Clone(q.synced)
}

// OnNewSession resets the changed journal.
func (q *Queue) OnNewSession() {
	q.synced = nil
}

func (q *Queue) trim() {
	if over := len(q.entries) - MaxSize; over > 0 {
		q.entries = slices.Delete(q.entries, 0, over)
		q.current -= over
		if q.current < -1 {
			q.current = -1
		}
	}
}

func (q *Queue) stripPrevious() {
	if q.current == -1 {
		return
	}

	if prev := q.current - 1; prev >= 0 && prev < len(q.entries) {
		q.entries[prev].Strip()
	}
}
