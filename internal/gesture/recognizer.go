package gesture

import "time"

// Recognizer runs the tracker and classifier once per tick.
// It is not safe for concurrent use; callers serialize Step and Reset.
type Recognizer struct {
	cfg        Config
	tracker    *Tracker
	classifier *Classifier
	view       SlotView
}

// NewRecognizer creates a Recognizer with the given thresholds.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{
		cfg:        cfg,
		tracker:    NewTracker(cfg.ProximityTolerance),
		classifier: NewClassifier(cfg),
	}
}

// Step processes one tick. When the frame is unavailable the tracker is left
// untouched and the previous slot view is classified again, so stale polls
// never look like a release.
func (r *Recognizer) Step(frame Frame, now time.Time) Event {
	if frame.Available {
		r.view = r.tracker.Update(frame.Samples, now)
	}

	ev := r.classifier.Process(r.view, now)
	if ev.Type == LongPress {
		if idx := r.classifier.LongPressSlot(); idx >= 0 {
			r.tracker.MarkLongPressFired(idx)
			r.view.Slots[idx].LongPressFired = true
		}
	}
	return ev
}

// View returns the slot view used for the last Step.
func (r *Recognizer) View() SlotView {
	return r.view
}

// Config returns the thresholds the recognizer was built with.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// Reset clears all slot state, episode state and tap memory. It is called
// after the touch controller recovers from corrupted frames.
func (r *Recognizer) Reset() {
	r.tracker.Reset()
	r.classifier.Reset()
	r.view = SlotView{}
}
