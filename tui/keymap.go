package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/controller"
	"github.com/tvloop/tvloop/session"
	"github.com/tvloop/tvloop/style"
)

type keymap struct {
	playPause, back, forward,
	next, previous,
	chat, comments, segments, sync,
	browser,
	quit, forceQuit,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		playPause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("pause/resume")),
		),
		back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "back 10s"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward 10s"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next video"),
		),
		previous: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous video"),
		),
		chat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "live chat"),
		),
		comments: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "comments"),
		),
		segments: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip segments"),
		),
		sync: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "display sync"),
		),
		browser: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// sessionKey resolves a key press to the session key it stands for.
func (k *keymap) sessionKey(msg tea.KeyMsg) (session.Key, bool) {
	bindings := []struct {
		binding key.Binding
		target  session.Key
	}{
		{k.playPause, controller.KeyPlayPause},
		{k.back, controller.KeyBack},
		{k.forward, controller.KeyForward},
		{k.next, controller.KeyNext},
		{k.previous, controller.KeyPrevious},
		{k.chat, controller.KeyChat},
		{k.comments, controller.KeyComments},
		{k.segments, controller.KeySegments},
		{k.sync, controller.KeySync},
		{k.quit, controller.KeyQuit},
	}

	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return b.target, true
		}
	}

	return "", false
}

func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.next, k.quit, k.showHelp}
}

func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.back, k.forward},
		{k.next, k.previous},
		{k.chat, k.comments, k.segments, k.sync},
		{k.browser, k.quit, k.showHelp},
	}
}
