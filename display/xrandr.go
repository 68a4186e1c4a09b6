package display

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/tvloop/tvloop/log"
)

// XRandR switches modes of an X11 output through the xrandr tool.
type XRandR struct {
	run func(args ...string) ([]byte, error)

	mu       sync.Mutex
	output   string
	original Mode
	last     *xrandrOutput
}

// NewXRandR creates a helper for the primary connected output.
func NewXRandR() *XRandR {
	return &XRandR{
		run: func(args ...string) ([]byte, error) {
			return exec.Command("xrandr", args...).Output()
		},
	}
}

type xrandrOutput struct {
	name    string
	current Mode
	modes   []Mode
}

func (x *XRandR) query() (*xrandrOutput, error) {
	data, err := x.run("--current")
	if err != nil {
		return nil, fmt.Errorf("%w: xrandr: %s", ErrUnsupported, err)
	}

	out, err := parseXRandR(string(data))
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	x.output = out.name
	x.last = out
	x.mu.Unlock()

	return out, nil
}

// latest returns the result of the last query, querying when there is none.
func (x *XRandR) latest() (*xrandrOutput, error) {
	x.mu.Lock()
	out := x.last
	x.mu.Unlock()

	if out != nil {
		return out, nil
	}
	return x.query()
}

// Modes reads the current and supported modes with one xrandr call.
func (x *XRandR) Modes() (Mode, []Mode, error) {
	out, err := x.query()
	if err != nil {
		return Mode{}, nil, err
	}
	return out.current, out.modes, nil
}

// CurrentMode implements Helper.
func (x *XRandR) CurrentMode() (Mode, error) {
	out, err := x.query()
	if err != nil {
		return Mode{}, err
	}
	return out.current, nil
}

// SupportedModes implements Helper.
func (x *XRandR) SupportedModes() ([]Mode, error) {
	out, err := x.query()
	if err != nil {
		return nil, err
	}
	return out.modes, nil
}

// RequestMode implements Helper. It reuses the last query and runs the switch on its own goroutine.
func (x *XRandR) RequestMode(target Mode, l Listener) error {
	out, err := x.latest()
	if err != nil {
		return err
	}

	x.mu.Lock()
	if x.original.IsZero() {
		x.original = out.current
	}
	x.mu.Unlock()

	go func() {
		l.OnModeStart(target)
		if err := x.apply(out.name, target); err != nil {
			l.OnModeError(target, err)
			return
		}

		x.mu.Lock()
		x.last = nil
		x.mu.Unlock()
		l.OnModeSuccess(target)
	}()

	return nil
}

// RestoreOriginal implements Helper.
func (x *XRandR) RestoreOriginal() error {
	x.mu.Lock()
	original, output := x.original, x.output
	x.mu.Unlock()

	if original.IsZero() || output == "" {
		return nil
	}

	return x.apply(output, original)
}

func (x *XRandR) apply(output string, m Mode) error {
	log.Infof("xrandr: switching %s to %s", output, m)

	_, err := x.run(
		"--output", output,
		"--mode", fmt.Sprintf("%dx%d", m.Width, m.Height),
		"--rate", strconv.FormatFloat(m.RefreshRate, 'f', 2, 64),
	)
	if err != nil {
		return fmt.Errorf("xrandr %s %s: %w", output, m, err)
	}

	return nil
}

// parseXRandR reads the modes of the primary connected output, or the first connected one.
func parseXRandR(text string) (*xrandrOutput, error) {
	var (
		outputs []*xrandrOutput
		primary *xrandrOutput
		cur     *xrandrOutput
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			cur = nil
			if len(fields) >= 2 && fields[1] == "connected" {
				cur = &xrandrOutput{name: fields[0]}
				outputs = append(outputs, cur)
				if len(fields) >= 3 && fields[2] == "primary" {
					primary = cur
				}
			}
			continue
		}

		if cur == nil {
			continue
		}

		w, h, ok := parseResolution(fields[0])
		if !ok {
			continue
		}

		for _, token := range fields[1:] {
			active := strings.Contains(token, "*")
			token = strings.TrimRight(token, "*+")
			if token == "" {
				continue
			}

			rate, err := strconv.ParseFloat(token, 64)
			if err != nil {
				continue
			}

			m := Mode{Width: w, Height: h, RefreshRate: rate}
			cur.modes = append(cur.modes, m)
			if active {
				cur.current = m
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if primary != nil {
		return primary, nil
	}
	if len(outputs) > 0 {
		return outputs[0], nil
	}

	return nil, fmt.Errorf("%w: no connected output", ErrUnsupported)
}

func parseResolution(s string) (int, int, bool) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, false
	}

	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, false
	}

	// Interlaced modes carry a suffix and are ignored.
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, false
	}

	return w, h, true
}
