// Package tui provides the terminal remote shown while a session plays.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/session"
)

// Run shows the remote for d until the session finishes.
// Key presses are forwarded to the session on s.
func Run(d *session.Dispatcher, s eventloop.Scheduler) error {
	_, err := tea.NewProgram(newBubble(d, s), tea.WithAltScreen()).Run()
	return err
}
