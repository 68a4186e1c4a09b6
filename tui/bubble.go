package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/open"
	"github.com/tvloop/tvloop/session"
)

// refreshInterval paces status snapshots.
const refreshInterval = 500 * time.Millisecond

type (
	statusMsg status
	doneMsg   struct{}
)

type bubble struct {
	dispatcher *session.Dispatcher
	scheduler  eventloop.Scheduler

	keymap *keymap
	helpC  help.Model

	status   status
	width    int
	quitting bool
}

func newBubble(d *session.Dispatcher, s eventloop.Scheduler) *bubble {
	return &bubble{
		dispatcher: d,
		scheduler:  s,
		keymap:     newKeymap(),
		helpC:      help.New(),
	}
}

func (b *bubble) Init() tea.Cmd {
	return tea.Batch(b.snapshot, b.waitDone)
}

// snapshot asks the loop for the session state. It gives up once the session is over.
func (b *bubble) snapshot() tea.Msg {
	result := make(chan status, 1)
	b.scheduler.Post(func() { result <- snapshot(b.dispatcher) })

	select {
	case s := <-result:
		return statusMsg(s)
	case <-b.dispatcher.Done():
		return doneMsg{}
	}
}

func (b *bubble) waitDone() tea.Msg {
	<-b.dispatcher.Done()
	return doneMsg{}
}

func (b *bubble) refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return b.snapshot() })
}

func openLink(link string) tea.Cmd {
	return func() tea.Msg {
		if err := open.Start(link); err != nil {
			log.Warnf("open %s: %v", link, err)
		}
		return nil
	}
}

func (b *bubble) send(k session.Key) {
	d := b.dispatcher
	b.scheduler.Post(func() { d.KeyEvent(k) })
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.helpC.Width = msg.Width
	case statusMsg:
		b.status = status(msg)
		return b, b.refresh()
	case doneMsg:
		b.quitting = true
		return b, tea.Quit
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keymap.forceQuit):
			d := b.dispatcher
			b.scheduler.Post(d.Finish)
		case key.Matches(msg, b.keymap.browser):
			if b.status.link != "" {
				return b, openLink(b.status.link)
			}
		case key.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		default:
			if k, ok := b.keymap.sessionKey(msg); ok {
				b.send(k)
			}
		}
	}

	return b, nil
}
