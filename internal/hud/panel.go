// Package hud renders the heads-up display: the last recognized gesture,
// live finger positions and loop telemetry, drawn onto a 320x240 frame.
package hud

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultClearAfter is how long the last gesture stays on screen.
const DefaultClearAfter = 3 * time.Second

// Finger is one active contact as shown on the display.
type Finger struct {
	Slot int
	gesture.Point
}

// State is a snapshot of everything the HUD shows.
type State struct {
	Last    gesture.Event
	FPS     float64
	Fingers []Finger
	Enabled bool
}

// Panel accumulates display state from the recognition loop. It is safe for
// concurrent use: the loop writes while renderers read.
type Panel struct {
	mu         sync.Mutex
	clearAfter time.Duration
	last       gesture.Event
	fps        float64
	fingers    []Finger
	enabled    bool
}

// NewPanel creates a Panel that drops the last gesture clearAfter after it
// was recognized. A non-positive clearAfter uses DefaultClearAfter.
func NewPanel(clearAfter time.Duration) *Panel {
	if clearAfter <= 0 {
		clearAfter = DefaultClearAfter
	}
	return &Panel{clearAfter: clearAfter, enabled: true}
}

// Observe records the outcome of one tick.
func (p *Panel) Observe(ev gesture.Event, view gesture.SlotView, fps float64) {
	fingers := make([]Finger, 0, view.Active)
	for i, s := range view.Slots {
		if s.Active {
			fingers = append(fingers, Finger{Slot: i, Point: s.Position})
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !ev.IsNone() {
		p.last = ev
	}
	p.fps = fps
	p.fingers = fingers
}

// SetEnabled records whether recognition is running.
func (p *Panel) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()
}

// Clear forgets the last gesture and finger positions.
func (p *Panel) Clear() {
	p.mu.Lock()
	p.last = gesture.Event{}
	p.fingers = nil
	p.mu.Unlock()
}

// Snapshot returns the state to display at now.
func (p *Panel) Snapshot(now time.Time) State {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := State{
		Last:    p.last,
		FPS:     p.fps,
		Fingers: append([]Finger(nil), p.fingers...),
		Enabled: p.enabled,
	}
	if !s.Last.IsNone() && now.Sub(s.Last.Timestamp) >= p.clearAfter {
		s.Last = gesture.Event{}
	}
	return s
}

// HeaderLine is the telemetry line at the top of the display.
func HeaderLine(s State) string {
	if !s.Enabled {
		return fmt.Sprintf("FPS %.0f  paused", s.FPS)
	}
	return fmt.Sprintf("FPS %.0f  fingers %d", s.FPS, len(s.Fingers))
}

// GestureLine describes the last gesture, or a dash when there is none.
func GestureLine(s State) string {
	ev := s.Last
	if ev.IsNone() {
		return "Gesture: -"
	}
	return fmt.Sprintf("Gesture: %s (%d) val=%.1f @%d,%d", ev.Type, ev.FingerCount, ev.Value, ev.X, ev.Y)
}
