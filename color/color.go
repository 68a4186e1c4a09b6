// Package color holds the palette shared by the CLI output and the terminal remote.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI base colors, rendered by the user's terminal theme.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	Black  = New("8")
	HiRed  = New("9")

	HiPurple = New("13")
)

// Fixed colors that must look the same on every theme.
var (
	Orange = New("#ffb703")
	Cream  = New("230")
	Indigo = New("62")
)

// Playback roles.
var (
	Live     = Red
	Progress = Purple
	Pending  = Yellow
	Done     = Green
)
