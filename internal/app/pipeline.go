package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/touch"
)

// Smoothing weights for the tick-rate estimate.
const (
	fpsKeep = 0.9
	fpsNew  = 0.1
)

// Run drives Tick from the clock until ctx is canceled. When a store is
// configured it also runs the journal and, with plugins, the action
// dispatcher; both are drained before Run returns.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return nil
	}
	defer a.running.Store(false)

	var subs []int
	if a.config.Store != nil {
		id, events := a.Subscribe(journalBuffer)
		subs = append(subs, id)
		a.workers.Add(1)
		go a.runJournal(events)

		if a.config.Plugins != nil {
			id, events := a.Subscribe(0)
			subs = append(subs, id)
			a.workers.Add(1)
			go a.runDispatcher(ctx, events)
		}
	}

	ticker := a.clock.NewTicker(a.config.TickInterval)
	Logf("Recognition loop started (tick %v)", a.config.TickInterval)

	defer func() {
		ticker.Stop()
		for _, id := range subs {
			a.Unsubscribe(id)
		}
		a.workers.Wait()
		Logf("Recognition loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C():
			a.Tick(now)
		}
	}
}

// Tick runs one recognition step at now: honor a controller reset request,
// take the pending frame, step the recognizer and publish the result.
func (a *App) Tick(now time.Time) gesture.Event {
	resetRequested := false
	if rr, ok := a.config.Feed.(touch.ResetRequester); ok && rr.ResetRequested() {
		resetRequested = true
		Logf("Touch controller reset requested, clearing recognizer")
	}

	frame := a.config.Feed.Poll()
	enabled := a.enabled.Load()

	a.mu.Lock()
	if resetRequested {
		a.recognizer.Reset()
	}
	a.updateFPS(now)
	var ev gesture.Event
	if enabled {
		ev = a.recognizer.Step(frame, now)
	}
	view := a.recognizer.View()
	fps := a.fps
	a.mu.Unlock()

	a.panel.Observe(ev, view, fps)
	if !ev.IsNone() {
		a.publish(ev)
	}
	return ev
}

// updateFPS folds the interval since the previous tick into the moving
// average. Caller holds a.mu.
func (a *App) updateFPS(now time.Time) {
	if !a.lastTick.IsZero() {
		dt := now.Sub(a.lastTick)
		if dt < time.Microsecond {
			dt = time.Microsecond
		}
		a.fps = fpsKeep*a.fps + fpsNew*(float64(time.Second)/float64(dt))
	}
	a.lastTick = now
}
