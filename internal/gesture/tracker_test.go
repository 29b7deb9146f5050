package gesture

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func samples(points ...Point) []Sample {
	out := make([]Sample, len(points))
	for i, p := range points {
		out[i] = Sample{X: uint16(p.X), Y: uint16(p.Y), Strength: 40}
	}
	return out
}

func TestTracker_NewTouchStartsSession(t *testing.T) {
	tr := NewTracker(60)

	view := tr.Update(samples(Point{100, 100}), at(0))

	if view.Active != 1 {
		t.Fatalf("expected 1 active slot, got %d", view.Active)
	}
	want := Slot{
		Position:      Point{100, 100},
		StartPosition: Point{100, 100},
		Strength:      40,
		StartTime:     at(0),
		Active:        true,
	}
	if diff := cmp.Diff(want, view.Slots[0]); diff != "" {
		t.Errorf("slot 0 mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_MovementKeepsSlot(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{100, 100}), at(0))

	view := tr.Update(samples(Point{130, 110}), at(17))

	s := view.Slots[0]
	if !s.Active || !s.WasActive {
		t.Fatalf("expected slot 0 active and active last tick, got active=%v was=%v", s.Active, s.WasActive)
	}
	if s.Position != (Point{130, 110}) {
		t.Errorf("expected position (130,110), got %v", s.Position)
	}
	if s.StartPosition != (Point{100, 100}) {
		t.Errorf("expected start position to stay (100,100), got %v", s.StartPosition)
	}
	if !s.StartTime.Equal(at(0)) {
		t.Errorf("expected start time to stay at 0ms, got %v", s.StartTime)
	}
}

func TestTracker_IdentityStableAcrossReorder(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{50, 50}, Point{250, 200}), at(0))

	// The controller reports the same two fingers in the opposite order.
	view := tr.Update(samples(Point{255, 198}, Point{52, 49}), at(17))

	if view.Slots[0].Position != (Point{52, 49}) {
		t.Errorf("slot 0: expected (52,49), got %v", view.Slots[0].Position)
	}
	if view.Slots[1].Position != (Point{255, 198}) {
		t.Errorf("slot 1: expected (255,198), got %v", view.Slots[1].Position)
	}
	if view.Active != 2 {
		t.Errorf("expected 2 active, got %d", view.Active)
	}
}

func TestTracker_FarSampleOpensNewSession(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{10, 10}), at(0))

	view := tr.Update(samples(Point{200, 200}), at(17))

	if view.Slots[0].Active {
		t.Error("expected slot 0 to be released")
	}
	if !view.Slots[0].EndTime.Equal(at(17)) {
		t.Errorf("expected slot 0 end time at 17ms, got %v", view.Slots[0].EndTime)
	}
	s := view.Slots[1]
	if !s.Active || s.StartPosition != (Point{200, 200}) || !s.StartTime.Equal(at(17)) {
		t.Errorf("expected new session in slot 1, got %+v", s)
	}
}

func TestTracker_ToleranceIsExclusive(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{0, 0}), at(0))

	// Exactly at the tolerance radius is not a match.
	view := tr.Update(samples(Point{60, 0}), at(17))

	if view.Slots[0].Active {
		t.Error("expected slot 0 to be released at exactly the tolerance distance")
	}
	if !view.Slots[1].Active {
		t.Error("expected sample to open slot 1")
	}
}

func TestTracker_Release(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{100, 100}), at(0))

	view := tr.Update(nil, at(150))

	s := view.Slots[0]
	if s.Active {
		t.Error("expected slot to be inactive after release")
	}
	if !s.WasActive {
		t.Error("expected WasActive to record the previous tick")
	}
	if !s.EndTime.Equal(at(150)) {
		t.Errorf("expected end time 150ms, got %v", s.EndTime)
	}
	if view.Active != 0 {
		t.Errorf("expected 0 active, got %d", view.Active)
	}
}

func TestTracker_OverflowDropsExcessSamples(t *testing.T) {
	tr := NewTracker(60)

	var pts []Point
	for i := 0; i < MaxPoints+2; i++ {
		pts = append(pts, Point{X: 20 + i*40, Y: 100})
	}
	view := tr.Update(samples(pts...), at(0))

	if view.Active != MaxPoints {
		t.Fatalf("expected %d active slots, got %d", MaxPoints, view.Active)
	}
	for i := 0; i < MaxPoints; i++ {
		if view.Slots[i].Position != pts[i] {
			t.Errorf("slot %d: expected %v, got %v", i, pts[i], view.Slots[i].Position)
		}
	}
}

func TestTracker_LongPressLatchResetsPerSession(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{100, 100}), at(0))
	tr.MarkLongPressFired(0)

	if !tr.View().Slots[0].LongPressFired {
		t.Fatal("expected long press latch to be set")
	}

	tr.Update(nil, at(900))
	view := tr.Update(samples(Point{100, 100}), at(1000))

	if view.Slots[0].LongPressFired {
		t.Error("expected latch to be cleared for a new session")
	}

	// Marking an inactive slot is ignored.
	tr.MarkLongPressFired(3)
	if tr.View().Slots[3].LongPressFired {
		t.Error("expected inactive slot to stay unlatched")
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(60)
	tr.Update(samples(Point{1, 1}, Point{200, 200}), at(0))

	tr.Reset()

	if diff := cmp.Diff(SlotView{}, tr.View()); diff != "" {
		t.Errorf("expected empty view after reset (-want +got):\n%s", diff)
	}
}

// Every sample in a frame must land in its own slot, whatever the history.
func TestTracker_NoSharedSlots(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewTracker(60)

	for tick := 0; tick < 2000; tick++ {
		n := rng.Intn(MaxPoints + 1)
		pts := make([]Point, n)
		for i := range pts {
			pts[i] = Point{X: rng.Intn(320), Y: rng.Intn(240)}
		}

		view := tr.Update(samples(pts...), at(tick*17))

		if view.Active != n {
			t.Fatalf("tick %d: expected %d active slots, got %d", tick, n, view.Active)
		}
		used := make(map[int]bool)
		for _, p := range pts {
			found := -1
			for i, s := range view.Slots {
				if s.Active && s.Position == p && !used[i] {
					found = i
					break
				}
			}
			if found < 0 {
				t.Fatalf("tick %d: sample %v has no slot of its own", tick, p)
			}
			used[found] = true
		}
	}
}
