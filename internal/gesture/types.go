// Package gesture turns per-tick touch samples into discrete multi-touch gestures.
//
// The package has two stateful parts. The Tracker keeps a fixed array of slots,
// one per finger contact session, and matches each tick's unordered samples to
// them by proximity. The Classifier reads the tracker's slot view and runs one
// small state machine per finger count, emitting at most one Event per tick.
// Recognizer ties both together. Nothing in this package blocks, logs or
// performs I/O, and all time is passed in by the caller.
package gesture

import (
	"fmt"
	"time"
)

// MaxPoints is the number of tracker slots and the maximum number of samples
// accepted from a single frame. Excess samples are dropped.
const MaxPoints = 5

// Sample is one raw contact reported by the touch controller for a single tick.
// Coordinates are display space and the sample has already passed the
// controller's strength filter.
type Sample struct {
	X        uint16 `json:"x"`
	Y        uint16 `json:"y"`
	Strength uint16 `json:"strength"`
}

// Frame is the per-tick input from the touch feed.
//
// Available reports whether the controller produced a fresh frame this tick.
// A frame with Available set and no samples means no fingers are down; a frame
// with Available unset means nothing new was read and must not be treated as
// a release.
type Frame struct {
	Available bool
	Samples   []Sample
}

// Point is a position in display space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Type identifies a recognized gesture.
type Type uint8

const (
	None Type = iota
	Tap
	DoubleTap
	LongPress
	SwipeLeft
	SwipeRight
	SwipeUp
	SwipeDown
	PinchIn
	PinchOut
	RotateCW
	RotateCCW
	TwoFingerTap
	ThreeFingerTap
)

var typeNames = [...]string{
	None:           "None",
	Tap:            "Tap",
	DoubleTap:      "DoubleTap",
	LongPress:      "LongPress",
	SwipeLeft:      "SwipeLeft",
	SwipeRight:     "SwipeRight",
	SwipeUp:        "SwipeUp",
	SwipeDown:      "SwipeDown",
	PinchIn:        "PinchIn",
	PinchOut:       "PinchOut",
	RotateCW:       "RotateCW",
	RotateCCW:      "RotateCCW",
	TwoFingerTap:   "TwoFingerTap",
	ThreeFingerTap: "ThreeFingerTap",
}

// Types returns every gesture type except None, in declaration order.
func Types() []Type {
	types := make([]Type, 0, len(typeNames)-1)
	for t := Tap; int(t) < len(typeNames); t++ {
		types = append(types, t)
	}
	return types
}

// String returns the display name of the gesture type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType returns the gesture type with the given display name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("unknown gesture type %q", name)
}

// MarshalText encodes the type as its display name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a display name produced by MarshalText.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Event is a recognized gesture. It is a plain value: consumers receive a copy
// and a Type of None means "no event this tick".
//
// X and Y anchor the event at a finger position or a multi-finger centroid.
// Value depends on the type: contact duration in milliseconds for taps and
// long presses, distance in pixels for swipes and pinches, degrees for
// rotations and the finger count for ThreeFingerTap.
type Event struct {
	Type        Type      `json:"type"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Value       float64   `json:"value"`
	FingerCount int       `json:"finger_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// IsNone reports whether the event carries no gesture.
func (e Event) IsNone() bool {
	return e.Type == None
}

// Slot is the tracker's record of one finger's continuous contact session.
// A slot index is reused across sessions and is not a stable finger identity.
type Slot struct {
	Position       Point
	StartPosition  Point
	Strength       uint16
	StartTime      time.Time
	EndTime        time.Time
	Active         bool
	WasActive      bool
	LongPressFired bool
}

// SlotView is a copy of the tracker state after one update.
type SlotView struct {
	Slots  [MaxPoints]Slot
	Active int
}

// ActiveIndices appends the indices of active slots to dst in slot order.
func (v *SlotView) ActiveIndices(dst []int) []int {
	for i := range v.Slots {
		if v.Slots[i].Active {
			dst = append(dst, i)
		}
	}
	return dst
}

// ActivePoints returns the positions of all active slots in slot order.
func (v *SlotView) ActivePoints() []Point {
	points := make([]Point, 0, v.Active)
	for i := range v.Slots {
		if v.Slots[i].Active {
			points = append(points, v.Slots[i].Position)
		}
	}
	return points
}
