package gesture

import (
	"math"
	"time"
)

// Tracker maintains per-finger identity across ticks. The controller reports
// an unordered list of points each tick; the tracker matches each point to the
// slot whose last position is nearest, within a tolerance radius, and opens a
// new session in a free slot otherwise.
//
// The slot array is fixed-size and reused, so an update costs at most
// O(MaxPoints²) distance checks and never allocates.
type Tracker struct {
	tolerance float64
	slots     [MaxPoints]Slot
	active    int
}

// NewTracker creates a Tracker that matches samples to slots within the given
// radius in pixels.
func NewTracker(tolerance float64) *Tracker {
	return &Tracker{tolerance: tolerance}
}

// Update consumes one fresh frame of samples and returns the resulting view.
//
// Algorithm:
// 1. Snapshot WasActive from Active for every slot
// 2. Match each sample to the nearest unclaimed slot that was active last tick
// 3. Accept the match only inside the tolerance radius, else use a free slot
// 4. Start a session (start position/time, long-press latch) on new slots
// 5. Deactivate previously active slots that were not claimed
// 6. Recount active slots
func (t *Tracker) Update(samples []Sample, now time.Time) SlotView {
	for i := range t.slots {
		t.slots[i].WasActive = t.slots[i].Active
	}

	if len(samples) > MaxPoints {
		samples = samples[:MaxPoints]
	}

	var claimed [MaxPoints]bool
	for _, s := range samples {
		pos := Point{X: int(s.X), Y: int(s.Y)}

		idx, continuing := t.nearest(pos, &claimed), true
		if idx < 0 {
			idx, continuing = t.free(&claimed), false
		}
		claimed[idx] = true

		slot := &t.slots[idx]
		if !continuing {
			if slot.WasActive {
				// The finger that owned this slot is gone; its session ends here.
				slot.EndTime = now
			}
			slot.StartPosition = pos
			slot.StartTime = now
			slot.LongPressFired = false
		}
		slot.Position = pos
		slot.Strength = s.Strength
		slot.Active = true
	}

	t.active = 0
	for i := range t.slots {
		slot := &t.slots[i]
		if slot.WasActive && !claimed[i] {
			slot.Active = false
			slot.EndTime = now
		}
		if slot.Active {
			t.active++
		}
	}

	return t.View()
}

// nearest returns the unclaimed, previously active slot closest to pos, or -1
// if none lies strictly inside the tolerance radius.
func (t *Tracker) nearest(pos Point, claimed *[MaxPoints]bool) int {
	best, bestDist := -1, math.Inf(1)
	for i := range t.slots {
		if !t.slots[i].WasActive || claimed[i] {
			continue
		}
		if d := distance(t.slots[i].Position, pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist >= t.tolerance {
		return -1
	}
	return best
}

// free returns the first slot that was inactive last tick and is unclaimed.
// When every such slot is taken it falls back to the first unclaimed slot,
// which always exists because at most MaxPoints samples are placed.
func (t *Tracker) free(claimed *[MaxPoints]bool) int {
	fallback := -1
	for i := range t.slots {
		if claimed[i] {
			continue
		}
		if !t.slots[i].WasActive {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// View returns a copy of the current slot state.
func (t *Tracker) View() SlotView {
	return SlotView{Slots: t.slots, Active: t.active}
}

// ActiveCount returns the number of active slots.
func (t *Tracker) ActiveCount() int {
	return t.active
}

// MarkLongPressFired latches the long-press flag on a slot for the rest of
// its session.
func (t *Tracker) MarkLongPressFired(idx int) {
	if idx < 0 || idx >= MaxPoints || !t.slots[idx].Active {
		return
	}
	t.slots[idx].LongPressFired = true
}

// Reset clears every slot.
func (t *Tracker) Reset() {
	t.slots = [MaxPoints]Slot{}
	t.active = 0
}
