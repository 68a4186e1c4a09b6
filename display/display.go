// Package display models display modes and the platform helper that switches between them.
package display

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupported is returned by helpers on platforms that cannot switch modes.
var ErrUnsupported = errors.New("display mode switching is not supported")

// Mode is a physical display mode. Modes compare structurally.
type Mode struct {
	Width       int
	Height      int
	RefreshRate float64
}

// IsZero reports whether the mode is unset.
func (m Mode) IsZero() bool {
	return m == Mode{}
}

// Same reports whether two modes match, tolerating rounding in reported refresh rates.
func (m Mode) Same(other Mode) bool {
	return m.Width == other.Width && m.Height == other.Height && sameRate(m.RefreshRate, other.RefreshRate)
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d@%.3f", m.Width, m.Height, m.RefreshRate)
}

func sameRate(a, b float64) bool {
	return math.Abs(a-b) < rateTolerance
}

// Listener receives the progress of a mode request. Calls may arrive on any goroutine.
type Listener interface {
	OnModeStart(target Mode)
	OnModeSuccess(target Mode)
	OnModeError(target Mode, err error)
	OnModeCancel()
}

// Helper switches the display mode. Requests are asynchronous: RequestMode returns once the
// request was issued and reports progress through the listener.
type Helper interface {
	CurrentMode() (Mode, error)
	SupportedModes() ([]Mode, error)
	RequestMode(target Mode, l Listener) error
	// RestoreOriginal returns to the mode active before the first request.
	RestoreOriginal() error
}

type modeReader interface {
	Modes() (Mode, []Mode, error)
}

// Modes reads the current and supported modes, in a single query when h can do that.
func Modes(h Helper) (Mode, []Mode, error) {
	if r, ok := h.(modeReader); ok {
		return r.Modes()
	}

	current, err := h.CurrentMode()
	if err != nil {
		return Mode{}, nil, err
	}

	supported, err := h.SupportedModes()
	if err != nil {
		return Mode{}, nil, err
	}

	return current, supported, nil
}

// Unsupported is a Helper for platforms without mode switching.
type Unsupported struct{}

func (Unsupported) CurrentMode() (Mode, error) { return Mode{}, ErrUnsupported }
func (Unsupported) SupportedModes() ([]Mode, error) { return nil, ErrUnsupported }
func (Unsupported) RequestMode(Mode, Listener) error { return ErrUnsupported }
func (Unsupported) RestoreOriginal() error { return ErrUnsupported }
