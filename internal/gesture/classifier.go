package gesture

import (
	"math"
	"time"
)

// oneFingerEpisode tracks a single finger from touch-down to release.
type oneFingerEpisode struct {
	active    bool
	committed bool // a LongPress or live swipe already fired
	slot      int
	start     Point
	last      Point
	startTime time.Time
}

// twoFingerEpisode tracks a two-finger contact from its first tick to release.
type twoFingerEpisode struct {
	active        bool
	committed     bool // a pinch or rotation already fired
	startDistance float64
	startAngle    float64
	centroid      Point
	startTime     time.Time
	lastTime      time.Time
}

// tapMemory bridges two touch-down episodes for double-tap detection.
type tapMemory struct {
	valid bool
	time  time.Time
	pos   Point
}

// Classifier turns the tracker's slot view into gesture events. It keeps
// one-shot latches per finger-count episode so each episode fires at most one
// gesture, and emits at most one Event per call to Process.
//
// A Classifier is not safe for concurrent use.
type Classifier struct {
	cfg Config

	one oneFingerEpisode
	two twoFingerEpisode
	tap tapMemory

	// multiTouch is set once the current touch-down reached two or more
	// fingers; no new one-finger episode starts until all fingers lift.
	multiTouch bool
	// threeFired is set once a ThreeFingerTap fired in the current touch-down.
	threeFired bool
	// lastCount is the finger count of the last classified tick.
	lastCount int

	settleCount int
	settleSince time.Time
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg, one: oneFingerEpisode{slot: -1}}
}

// Process classifies one tick. It returns an Event with Type None when no
// gesture is due.
func (c *Classifier) Process(view SlotView, now time.Time) Event {
	count := view.Active

	if !c.settled(count, now) {
		return c.none(count, now)
	}

	var ev Event
	switch {
	case count == 0:
		ev = c.release(&view, now)
	case count == 1:
		ev = c.oneFinger(&view, now)
	case count == 2:
		ev = c.twoFinger(&view, now)
	default:
		ev = c.multiFinger(&view, now)
	}
	c.lastCount = count

	if ev.Type == None {
		return c.none(count, now)
	}
	ev.Timestamp = now
	return ev
}

// settled reports whether the finger count has held for the settle window.
func (c *Classifier) settled(count int, now time.Time) bool {
	if c.cfg.SettleWindow <= 0 {
		return true
	}
	if count != c.settleCount || c.settleSince.IsZero() {
		c.settleCount = count
		c.settleSince = now
	}
	return now.Sub(c.settleSince) >= c.cfg.SettleWindow
}

func (c *Classifier) none(count int, now time.Time) Event {
	return Event{Type: None, FingerCount: count, Timestamp: now}
}

// release finalizes any uncommitted episode once all fingers have lifted.
func (c *Classifier) release(view *SlotView, now time.Time) Event {
	var ev Event
	if c.one.active && !c.one.committed {
		ev = c.finalizeOneFinger(view, now)
	}
	if ev.Type == None && c.two.active && !c.two.committed {
		ev = Event{
			Type:        TwoFingerTap,
			X:           c.two.centroid.X,
			Y:           c.two.centroid.Y,
			Value:       millis(c.two.lastTime.Sub(c.two.startTime)),
			FingerCount: 2,
		}
	}

	c.one = oneFingerEpisode{slot: -1}
	c.two = twoFingerEpisode{}
	c.multiTouch = false
	c.threeFired = false
	return ev
}

// finalizeOneFinger decides between tap, double tap and swipe on release.
func (c *Classifier) finalizeOneFinger(view *SlotView, now time.Time) Event {
	end := now
	if c.one.slot >= 0 {
		if s := view.Slots[c.one.slot]; !s.Active && !s.EndTime.IsZero() && !s.EndTime.Before(c.one.startTime) {
			end = s.EndTime
		}
	}
	dt := end.Sub(c.one.startTime)
	if dt < 0 {
		dt = 0
	}

	dx := float64(c.one.last.X - c.one.start.X)
	dy := float64(c.one.last.Y - c.one.start.Y)

	if dt <= c.cfg.TapMaxDuration && c.withinTapMovement(dx, dy) {
		pos := c.one.start
		if c.tap.valid && end.Sub(c.tap.time) <= c.cfg.DoubleTapInterval && c.withinTapMovement(
			float64(pos.X-c.tap.pos.X), float64(pos.Y-c.tap.pos.Y)) {
			c.tap = tapMemory{}
			return Event{Type: DoubleTap, X: pos.X, Y: pos.Y, Value: millis(dt), FingerCount: 1}
		}
		c.tap = tapMemory{valid: true, time: end, pos: pos}
		return Event{Type: Tap, X: pos.X, Y: pos.Y, Value: millis(dt), FingerCount: 1}
	}

	if dist := math.Hypot(dx, dy); dist >= c.cfg.SwipeMinDistance {
		if t := c.swipeDirection(dx, dy); t != None {
			return Event{Type: t, X: c.one.last.X, Y: c.one.last.Y, Value: dist, FingerCount: 1}
		}
	}
	return Event{}
}

// oneFinger runs live long-press and swipe detection while a single finger is down.
func (c *Classifier) oneFinger(view *SlotView, now time.Time) Event {
	if c.multiTouch {
		return Event{}
	}

	var buf [MaxPoints]int
	idx := view.ActiveIndices(buf[:0])[0]
	s := view.Slots[idx]

	if !c.one.active {
		start := s.StartTime
		if start.IsZero() {
			start = now
		}
		c.one = oneFingerEpisode{active: true, slot: idx, start: s.StartPosition, startTime: start}
	}
	c.one.slot = idx
	c.one.last = s.Position

	if c.one.committed {
		return Event{}
	}

	dt := now.Sub(c.one.startTime)
	dx := float64(c.one.last.X - c.one.start.X)
	dy := float64(c.one.last.Y - c.one.start.Y)

	if dt > c.cfg.LongPressDuration && c.withinTapMovement(dx, dy) {
		c.one.committed = true
		return Event{Type: LongPress, X: s.Position.X, Y: s.Position.Y, Value: millis(dt), FingerCount: 1}
	}

	if dist := math.Hypot(dx, dy); dist >= c.cfg.SwipeMinDistance && dt <= c.cfg.LiveSwipeWindow {
		if t := c.swipeDirection(dx, dy); t != None {
			c.one.committed = true
			return Event{Type: t, X: s.Position.X, Y: s.Position.Y, Value: dist, FingerCount: 1}
		}
	}
	return Event{}
}

// twoFinger runs pinch and rotate detection. Whichever threshold is crossed
// first wins the episode.
func (c *Classifier) twoFinger(view *SlotView, now time.Time) Event {
	c.multiTouch = true
	c.one = oneFingerEpisode{slot: -1}

	var buf [MaxPoints]int
	ids := view.ActiveIndices(buf[:0])
	a, b := view.Slots[ids[0]].Position, view.Slots[ids[1]].Position

	d := distance(a, b)
	ang := angle(a, b)
	center := midpoint(a, b)

	if !c.two.active {
		c.two = twoFingerEpisode{
			active:        true,
			committed:     c.threeFired,
			startDistance: d,
			startAngle:    ang,
			centroid:      center,
			startTime:     now,
			lastTime:      now,
		}
		return Event{}
	}
	c.two.centroid = center
	c.two.lastTime = now

	if c.two.committed {
		return Event{}
	}

	dd := d - c.two.startDistance
	da := normalizeAngle(ang - c.two.startAngle)

	if math.Abs(dd) >= c.cfg.PinchThreshold {
		c.two.committed = true
		t := PinchOut
		if dd < 0 {
			t = PinchIn
		}
		return Event{Type: t, X: center.X, Y: center.Y, Value: math.Abs(dd), FingerCount: 2}
	}

	if math.Abs(da) >= radians(c.cfg.RotateThreshold) {
		c.two.committed = true
		t := RotateCCW
		if da < 0 {
			t = RotateCW
		}
		return Event{Type: t, X: center.X, Y: center.Y, Value: degrees(math.Abs(da)), FingerCount: 2}
	}
	return Event{}
}

// multiFinger fires ThreeFingerTap on the tick the count first reaches three.
func (c *Classifier) multiFinger(view *SlotView, now time.Time) Event {
	c.multiTouch = true
	c.one = oneFingerEpisode{slot: -1}
	if c.two.active {
		c.two.committed = true
	}

	if c.lastCount >= 3 {
		return Event{}
	}
	c.threeFired = true

	center := centroid(view.ActivePoints())
	return Event{
		Type:        ThreeFingerTap,
		X:           center.X,
		Y:           center.Y,
		Value:       float64(view.Active),
		FingerCount: view.Active,
	}
}

// swipeDirection picks the dominant axis. Near-diagonal movement where
// neither axis dominates yields None.
func (c *Classifier) swipeDirection(dx, dy float64) Type {
	adx, ady := math.Abs(dx), math.Abs(dy)
	switch {
	case adx > ady*c.cfg.SwipeAxisRatio:
		if dx > 0 {
			return SwipeRight
		}
		return SwipeLeft
	case ady > adx*c.cfg.SwipeAxisRatio:
		if dy > 0 {
			return SwipeDown
		}
		return SwipeUp
	}
	return None
}

func (c *Classifier) withinTapMovement(dx, dy float64) bool {
	return math.Abs(dx) <= c.cfg.TapMaxMovement && math.Abs(dy) <= c.cfg.TapMaxMovement
}

// LongPressSlot returns the slot index of the current one-finger episode, or
// -1 when no single finger is tracked.
func (c *Classifier) LongPressSlot() int {
	if !c.one.active {
		return -1
	}
	return c.one.slot
}

// Reset clears all episode state and the double-tap memory.
func (c *Classifier) Reset() {
	*c = Classifier{cfg: c.cfg, one: oneFingerEpisode{slot: -1}}
}
