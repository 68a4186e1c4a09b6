// Package session dispatches playback events to a fixed chain of controllers.
package session

import (
	"github.com/tvloop/tvloop/content"
	"github.com/tvloop/tvloop/display"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/history"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/queue"
	"github.com/tvloop/tvloop/segments"
	"github.com/tvloop/tvloop/store"
)

// Context holds the state shared by every controller of a process.
// Queue, History and Groups must only be touched from the Scheduler's loop.
type Context struct {
	Scheduler eventloop.Scheduler
	Store     store.Store
	Queue     *queue.Queue
	History   *history.Cache
	Groups    *media.Groups

	// Optional collaborators. Controllers depending on a nil one stay idle.
	Content  content.Service
	Segments *segments.Client
	Display  display.Helper
}

// NewContext creates the queue and the position cache on s and st.
// The queue is cleared whenever the store switches profiles.
func NewContext(s eventloop.Scheduler, st store.Store, options history.Options) *Context {
	ctx := &Context{
		Scheduler: s,
		Store:     st,
		Queue:     queue.New(),
		History:   history.New(st, s, options),
		Groups:    &media.Groups{},
		Display:   display.Unsupported{},
	}

	st.OnProfileChanged(func() {
		s.Post(func() {
			ctx.Queue.Clear()
			ctx.Groups.Clear()
		})
	})

	return ctx
}
