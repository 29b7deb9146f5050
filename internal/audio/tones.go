// Package audio plays short tone sequences as acoustic feedback for
// recognized gestures.
package audio

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Tone is a sine tone. A zero frequency is a rest.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

func beep(hz float64, ms int) Tone { return Tone{Freq: hz, Duration: time.Duration(ms) * time.Millisecond} }
func rest(ms int) Tone            { return Tone{Duration: time.Duration(ms) * time.Millisecond} }

var sequences = map[gesture.Type][]Tone{
	gesture.Tap:            {beep(1200, 60)},
	gesture.DoubleTap:      {beep(1200, 60), rest(40), beep(1200, 60)},
	gesture.LongPress:      {beep(600, 200)},
	gesture.SwipeLeft:      {beep(900, 80)},
	gesture.SwipeRight:     {beep(900, 80)},
	gesture.SwipeUp:        {beep(700, 80)},
	gesture.SwipeDown:      {beep(700, 80)},
	gesture.PinchIn:        {beep(500, 80), rest(40), beep(400, 100)},
	gesture.PinchOut:       {beep(400, 80), rest(40), beep(500, 100)},
	gesture.RotateCW:       {beep(1000, 70), rest(30), beep(1200, 70)},
	gesture.RotateCCW:      {beep(1200, 70), rest(30), beep(1000, 70)},
	gesture.TwoFingerTap:   {beep(1000, 60), rest(20), beep(1000, 60)},
	gesture.ThreeFingerTap: {beep(800, 120)},
}

// Sequence returns the tones for a gesture type, or nil for None.
func Sequence(t gesture.Type) []Tone {
	return sequences[t]
}

// Duration returns the total length of a tone sequence.
func Duration(tones []Tone) time.Duration {
	var d time.Duration
	for _, t := range tones {
		d += t.Duration
	}
	return d
}
