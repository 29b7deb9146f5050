package touch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// TraceFrame is one recorded tick.
type TraceFrame struct {
	At    time.Duration
	Frame gesture.Frame
}

// traceLine is the JSONL encoding of a TraceFrame. Points are display-space
// [x, y, strength] triples.
type traceLine struct {
	TimeMs int64       `json:"t_ms"`
	Stale  bool        `json:"stale,omitempty"`
	Points [][3]uint16 `json:"points"`
}

// ReadTrace parses a JSONL touch trace. Blank lines are skipped.
func ReadTrace(r io.Reader) ([]TraceFrame, error) {
	var frames []TraceFrame
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		if len(scan.Bytes()) == 0 {
			continue
		}

		var tl traceLine
		if err := json.Unmarshal(scan.Bytes(), &tl); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", lineNo, err)
		}
		if n := len(frames); n > 0 && time.Duration(tl.TimeMs)*time.Millisecond < frames[n-1].At {
			return nil, fmt.Errorf("trace line %d: time goes backwards", lineNo)
		}

		tf := TraceFrame{At: time.Duration(tl.TimeMs) * time.Millisecond}
		if !tl.Stale {
			tf.Frame.Available = true
			tf.Frame.Samples = make([]gesture.Sample, len(tl.Points))
			for i, p := range tl.Points {
				tf.Frame.Samples[i] = gesture.Sample{X: p[0], Y: p[1], Strength: p[2]}
			}
		}
		frames = append(frames, tf)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return frames, nil
}

// WriteTrace encodes frames as JSONL, the inverse of ReadTrace.
func WriteTrace(w io.Writer, frames []TraceFrame) error {
	enc := json.NewEncoder(w)
	for _, tf := range frames {
		tl := traceLine{TimeMs: tf.At.Milliseconds(), Stale: !tf.Frame.Available, Points: [][3]uint16{}}
		for _, s := range tf.Frame.Samples {
			tl.Points = append(tl.Points, [3]uint16{s.X, s.Y, s.Strength})
		}
		if err := enc.Encode(tl); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}
	return nil
}

// ReplayFeed yields recorded frames one per Poll, ignoring their timestamps.
type ReplayFeed struct {
	frames []TraceFrame
	next   int
}

func NewReplayFeed(frames []TraceFrame) *ReplayFeed {
	return &ReplayFeed{frames: frames}
}

func (f *ReplayFeed) Poll() gesture.Frame {
	if f.next >= len(f.frames) {
		return gesture.Frame{}
	}
	fr := f.frames[f.next].Frame
	f.next++
	return fr
}

// Done reports whether every frame has been polled.
func (f *ReplayFeed) Done() bool {
	return f.next >= len(f.frames)
}

func (f *ReplayFeed) Close() error {
	f.next = len(f.frames)
	return nil
}

// Replay steps r through frames at their recorded times relative to start and
// returns every emitted event.
func Replay(r *gesture.Recognizer, frames []TraceFrame, start time.Time) []gesture.Event {
	var events []gesture.Event
	for _, tf := range frames {
		if ev := r.Step(tf.Frame, start.Add(tf.At)); !ev.IsNone() {
			events = append(events, ev)
		}
	}
	return events
}
