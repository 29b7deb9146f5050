package audio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// Synth renders tones as signed 16-bit little-endian mono PCM.
type Synth struct {
	SampleRate int
	// Amplitude is the peak level in [0,1].
	Amplitude float64
}

// DefaultSynth returns a quiet 22.05 kHz synth.
func DefaultSynth() Synth {
	return Synth{SampleRate: 22050, Amplitude: 0.2}
}

// SampleCount returns how many samples cover d.
func (s Synth) SampleCount(d time.Duration) int {
	return int(int64(s.SampleRate) * int64(d) / int64(time.Second))
}

// Write renders tones to w. Rests are written as silence.
func (s Synth) Write(w io.Writer, tones []Tone) error {
	bw := bufio.NewWriter(w)
	peak := s.Amplitude * math.MaxInt16

	var buf [2]byte
	for _, t := range tones {
		n := s.SampleCount(t.Duration)
		for i := 0; i < n; i++ {
			var v int16
			if t.Freq > 0 {
				v = int16(peak * math.Sin(2*math.Pi*t.Freq*float64(i)/float64(s.SampleRate)))
			}
			binary.LittleEndian.PutUint16(buf[:], uint16(v))
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("write pcm: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	return nil
}
