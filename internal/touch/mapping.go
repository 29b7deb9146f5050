package touch

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// Mapping converts raw controller coordinates to display space.
type Mapping struct {
	RawXMin int `yaml:"raw_x_min" json:"raw_x_min"`
	RawXMax int `yaml:"raw_x_max" json:"raw_x_max"`
	RawYMin int `yaml:"raw_y_min" json:"raw_y_min"`
	RawYMax int `yaml:"raw_y_max" json:"raw_y_max"`

	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	SwapXY  bool `yaml:"swap_xy" json:"swap_xy"`
	InvertX bool `yaml:"invert_x" json:"invert_x"`
	InvertY bool `yaml:"invert_y" json:"invert_y"`

	// MinStrength drops contacts whose signal strength is below it.
	MinStrength uint16 `yaml:"min_strength" json:"min_strength"`
}

// DefaultMapping matches a CST328 panel mounted in landscape on a 320x240
// display.
func DefaultMapping() Mapping {
	return Mapping{
		RawXMin:     0,
		RawXMax:     240,
		RawYMin:     0,
		RawYMax:     320,
		Width:       320,
		Height:      240,
		SwapXY:      true,
		InvertY:     true,
		MinStrength: 20,
	}
}

// Validate checks that the ranges are usable.
func (m Mapping) Validate() error {
	var errs []error
	if m.RawXMax <= m.RawXMin {
		errs = append(errs, fmt.Errorf("raw x range [%d,%d] is empty", m.RawXMin, m.RawXMax))
	}
	if m.RawYMax <= m.RawYMin {
		errs = append(errs, fmt.Errorf("raw y range [%d,%d] is empty", m.RawYMin, m.RawYMax))
	}
	if m.Width <= 0 || m.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d must be positive", m.Width, m.Height))
	}
	return errors.Join(errs...)
}

// Apply maps raw points to display samples. Weak contacts are dropped and the
// result is truncated to gesture.MaxPoints.
func (m Mapping) Apply(raw []RawPoint) []gesture.Sample {
	out := make([]gesture.Sample, 0, min(len(raw), gesture.MaxPoints))
	for _, p := range raw {
		if len(out) == gesture.MaxPoints {
			break
		}
		if p.Strength < m.MinStrength {
			continue
		}
		x, y := m.toDisplay(int(p.X), int(p.Y))
		out = append(out, gesture.Sample{X: uint16(x), Y: uint16(y), Strength: p.Strength})
	}
	return out
}

func (m Mapping) toDisplay(rx, ry int) (int, int) {
	var x, y int
	if m.SwapXY {
		x = remap(ry, m.RawYMin, m.RawYMax, 0, m.Width-1)
		y = remap(rx, m.RawXMin, m.RawXMax, 0, m.Height-1)
	} else {
		x = remap(rx, m.RawXMin, m.RawXMax, 0, m.Width-1)
		y = remap(ry, m.RawYMin, m.RawYMax, 0, m.Height-1)
	}
	x = clamp(x, 0, m.Width-1)
	y = clamp(y, 0, m.Height-1)
	if m.InvertX {
		x = m.Width - 1 - x
	}
	if m.InvertY {
		y = m.Height - 1 - y
	}
	return x, y
}

// remap linearly maps v from [inMin,inMax] to [outMin,outMax] with integer
// truncation.
func remap(v, inMin, inMax, outMin, outMax int) int {
	if inMax == inMin {
		return outMin
	}
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
