package audio

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultGap is the minimum spacing between two played sequences.
const DefaultGap = 150 * time.Millisecond

// Feedback plays the tone sequence of each event to an output, dropping events
// that arrive faster than the limiter allows.
type Feedback struct {
	mu      sync.Mutex
	out     io.Writer
	synth   Synth
	limiter *rate.Limiter
}

// NewFeedback creates a Feedback writing PCM to out, allowing one sequence per gap.
func NewFeedback(out io.Writer, synth Synth, gap time.Duration) *Feedback {
	return &Feedback{
		out:     out,
		synth:   synth,
		limiter: rate.NewLimiter(rate.Every(gap), 1),
	}
}

// Play renders the sequence for ev. It reports whether anything was played.
// The event timestamp is the limiter's clock, so replayed traces rate-limit
// the same way live input does.
func (f *Feedback) Play(ev gesture.Event) (bool, error) {
	tones := Sequence(ev.Type)
	if len(tones) == 0 {
		return false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.limiter.AllowN(ev.Timestamp, 1) {
		return false, nil
	}
	if err := f.synth.Write(f.out, tones); err != nil {
		return false, err
	}
	return true, nil
}

// Run plays events until ctx is done or events is closed.
func (f *Feedback) Run(ctx context.Context, events <-chan gesture.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, err := f.Play(ev); err != nil {
				log.Printf("audio: %v", err)
			}
		}
	}
}
