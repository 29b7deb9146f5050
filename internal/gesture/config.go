package gesture

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the recognition thresholds. Durations are wall-clock and
// independent of the tick rate; distances are display pixels.
type Config struct {
	// TapMaxDuration is the longest contact that still counts as a tap.
	TapMaxDuration time.Duration `yaml:"tap_max_duration" json:"tap_max_duration"`
	// TapMaxMovement is the per-axis movement allowed for taps and long presses.
	TapMaxMovement float64 `yaml:"tap_max_movement" json:"tap_max_movement"`
	// DoubleTapInterval is the maximum gap between two taps of a double tap.
	DoubleTapInterval time.Duration `yaml:"double_tap_interval" json:"double_tap_interval"`
	// LongPressDuration must be exceeded before a stationary finger fires LongPress.
	LongPressDuration time.Duration `yaml:"long_press_duration" json:"long_press_duration"`
	// SwipeMinDistance is the minimum travel for a swipe.
	SwipeMinDistance float64 `yaml:"swipe_min_distance" json:"swipe_min_distance"`
	// SwipeAxisRatio is how much one axis must dominate the other.
	SwipeAxisRatio float64 `yaml:"swipe_axis_ratio" json:"swipe_axis_ratio"`
	// LiveSwipeWindow bounds how long after touch-down a swipe is detected
	// while the finger is still down.
	LiveSwipeWindow time.Duration `yaml:"live_swipe_window" json:"live_swipe_window"`
	// PinchThreshold is the change in finger distance that fires a pinch.
	PinchThreshold float64 `yaml:"pinch_threshold" json:"pinch_threshold"`
	// RotateThreshold is the change in finger angle, in degrees, that fires a rotation.
	RotateThreshold float64 `yaml:"rotate_threshold" json:"rotate_threshold"`
	// ProximityTolerance is the radius for matching a sample to a slot.
	ProximityTolerance float64 `yaml:"proximity_tolerance" json:"proximity_tolerance"`
	// SettleWindow is how long the finger count must hold before a tick is
	// classified. Zero disables settling.
	SettleWindow time.Duration `yaml:"settle_window" json:"settle_window"`
}

// DefaultConfig returns the thresholds tuned for a 320x240 capacitive panel.
func DefaultConfig() Config {
	return Config{
		TapMaxDuration:     250 * time.Millisecond,
		TapMaxMovement:     20,
		DoubleTapInterval:  400 * time.Millisecond,
		LongPressDuration:  800 * time.Millisecond,
		SwipeMinDistance:   30,
		SwipeAxisRatio:     1.5,
		LiveSwipeWindow:    800 * time.Millisecond,
		PinchThreshold:     18,
		RotateThreshold:    15,
		ProximityTolerance: 60,
		SettleWindow:       10 * time.Millisecond,
	}
}

// Validate reports every threshold that is out of range.
func (c Config) Validate() error {
	var errs []error
	positiveDurations := []struct {
		name string
		v    time.Duration
	}{
		{"tap_max_duration", c.TapMaxDuration},
		{"double_tap_interval", c.DoubleTapInterval},
		{"long_press_duration", c.LongPressDuration},
		{"live_swipe_window", c.LiveSwipeWindow},
	}
	for _, d := range positiveDurations {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", d.name, d.v))
		}
	}

	positiveValues := []struct {
		name string
		v    float64
	}{
		{"tap_max_movement", c.TapMaxMovement},
		{"swipe_min_distance", c.SwipeMinDistance},
		{"pinch_threshold", c.PinchThreshold},
		{"rotate_threshold", c.RotateThreshold},
		{"proximity_tolerance", c.ProximityTolerance},
	}
	for _, v := range positiveValues {
		if v.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", v.name, v.v))
		}
	}

	if c.SwipeAxisRatio < 1 {
		errs = append(errs, fmt.Errorf("swipe_axis_ratio must be at least 1, got %g", c.SwipeAxisRatio))
	}
	if c.SettleWindow < 0 {
		errs = append(errs, fmt.Errorf("settle_window must not be negative, got %v", c.SettleWindow))
	}

	return errors.Join(errs...)
}
