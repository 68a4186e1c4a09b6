package display

import (
	"math"

	"github.com/samber/lo"
	"github.com/tvloop/tvloop/media"
)

const rateTolerance = 0.01

// Options tune mode selection.
type Options struct {
	// ResolutionSwitch allows changing the resolution, not only the refresh rate.
	ResolutionSwitch bool
	// FpsCorrection treats whole-number frame rates as their NTSC variants.
	FpsCorrection bool
	// DoubleRefreshRate prefers twice the frame rate for content below 30 fps.
	DoubleRefreshRate bool
	// Skip24Rate leaves the display alone for 24 fps content.
	Skip24Rate bool
}

var ntsc = map[int]float64{
	24: 23.976,
	30: 29.97,
	60: 59.94,
}

// FrameRate returns the refresh rate that matches the content frame rate.
func FrameRate(fps float64, correction bool) float64 {
	if !correction {
		return fps
	}

	whole := math.Round(fps)
	if math.Abs(fps-whole) > 0.01 {
		return fps
	}

	if corrected, ok := ntsc[int(whole)]; ok {
		return corrected
	}

	return fps
}

// Select picks the supported mode that best fits the format.
// It reports false when no switch should happen.
func Select(format *media.Format, current Mode, supported []Mode, o Options) (Mode, bool) {
	if format.IsEmpty() || len(supported) == 0 {
		return Mode{}, false
	}

	if o.Skip24Rate && math.Abs(format.FrameRate-24) < 0.1 {
		return Mode{}, false
	}

	rate := FrameRate(format.FrameRate, o.FpsCorrection)

	multipliers := []float64{1}
	if o.DoubleRefreshRate && rate < 30 {
		multipliers = []float64{2, 1}
	}

	fits := func(m Mode) bool {
		if o.ResolutionSwitch {
			return m.Width >= format.Width && m.Height >= format.Height
		}
		return m.Width == current.Width && m.Height == current.Height
	}

	candidates := lo.Filter(supported, func(m Mode, _ int) bool { return fits(m) })
	if len(candidates) == 0 && o.ResolutionSwitch {
		// Content larger than any mode: use the largest ones.
		largest := lo.MaxBy(supported, func(a, b Mode) bool { return a.Width*a.Height > b.Width*b.Height })
		candidates = lo.Filter(supported, func(m Mode, _ int) bool {
			return m.Width == largest.Width && m.Height == largest.Height
		})
	}

	for _, k := range multipliers {
		target := rate * k
		matching := lo.Filter(candidates, func(m Mode, _ int) bool { return sameRate(m.RefreshRate, target) })
		if len(matching) == 0 {
			continue
		}

		best := lo.MinBy(matching, func(a, b Mode) bool {
			if a.Width*a.Height != b.Width*b.Height {
				return a.Width*a.Height < b.Width*b.Height
			}
			return math.Abs(a.RefreshRate-target) < math.Abs(b.RefreshRate-target)
		})
		return best, true
	}

	return Mode{}, false
}
