package touch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultCorruptionLimit is the number of consecutive unreadable lines after
// which the feed asks for a recognizer reset.
const DefaultCorruptionLimit = 5

// PortOptions describes the serial connection to the touch bridge.
type PortOptions struct {
	BaudRate int    `yaml:"baud_rate" json:"baud_rate"`
	DataBits int    `yaml:"data_bits" json:"data_bits"`
	StopBits int    `yaml:"stop_bits" json:"stop_bits"`
	Parity   string `yaml:"parity" json:"parity"`
}

// Normalize validates the options and fills in defaults for unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	switch p := strings.ToUpper(strings.TrimSpace(opts.Parity)); p {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	return opts, nil
}

// SerialMode converts the options to the mode go.bug.st/serial opens with.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{BaudRate: opts.BaudRate, DataBits: opts.DataBits}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	} else {
		mode.StopBits = serial.OneStopBit
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	default:
		mode.Parity = serial.NoParity
	}
	return mode, nil
}

// SerialFeed reads frames from a touch bridge speaking a line protocol:
//
//	P <n> <x1> <y1> <s1> ... <xn> <yn> <sn>   one controller frame, n may be 0
//	R                                         controller reset notice
//
// Lines starting with '#' are bridge diagnostics and are ignored.
//
// Frames arriving between two polls are coalesced and the latest wins, except
// that a zero-finger frame is never lost: if contacts land again before the
// release was polled, Poll reports the empty frame first and the new contacts
// on the following call.
type SerialFeed struct {
	port    io.ReadCloser
	mapping Mapping
	limit   int

	mu     sync.Mutex
	latest []gesture.Sample
	// release is set when a zero-finger frame arrived since the last poll.
	release bool
	err     error

	ready atomic.Bool
	reset atomic.Bool

	done      chan struct{}
	closeOnce sync.Once
}

// OpenSerial opens the serial port at path and starts reading frames from it.
// limit is the corruption limit passed to NewSerialFeed.
func OpenSerial(path string, opts PortOptions, mapping Mapping, limit int) (*SerialFeed, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return NewSerialFeed(port, mapping, limit), nil
}

// NewSerialFeed starts reading frames from port. A non-positive limit uses
// DefaultCorruptionLimit.
func NewSerialFeed(port io.ReadCloser, mapping Mapping, limit int) *SerialFeed {
	if limit <= 0 {
		limit = DefaultCorruptionLimit
	}
	f := &SerialFeed{
		port:    port,
		mapping: mapping,
		limit:   limit,
		done:    make(chan struct{}),
	}
	go f.read()
	return f
}

func (f *SerialFeed) read() {
	defer close(f.done)

	bad := 0
	scan := bufio.NewScanner(f.port)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if line == "R" {
			bad = 0
			f.reset.Store(true)
			continue
		}

		raw, err := ParseFrame(line)
		if err != nil {
			bad++
			if bad >= f.limit {
				bad = 0
				f.reset.Store(true)
			}
			continue
		}
		bad = 0

		samples := f.mapping.Apply(raw)
		f.mu.Lock()
		f.latest = samples
		if len(samples) == 0 {
			f.release = true
		}
		f.mu.Unlock()
		f.ready.Store(true)
	}

	f.mu.Lock()
	if err := scan.Err(); err != nil {
		f.err = fmt.Errorf("read touch frames: %w", err)
	} else {
		f.err = ErrFeedClosed
	}
	f.mu.Unlock()
}

// Poll returns the latest frame if one arrived since the previous poll. A
// pending release is reported before any contacts that followed it.
func (f *SerialFeed) Poll() gesture.Frame {
	if !f.ready.Swap(false) {
		return gesture.Frame{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.release && len(f.latest) > 0 {
		f.release = false
		f.ready.Store(true)
		return gesture.Frame{Available: true}
	}
	f.release = false
	samples := append([]gesture.Sample(nil), f.latest...)
	return gesture.Frame{Available: true, Samples: samples}
}

// ResetRequested reports and clears a pending reset request.
func (f *SerialFeed) ResetRequested() bool {
	return f.reset.Swap(false)
}

// Err returns why the reader stopped, or nil while it is running.
func (f *SerialFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Done is closed when the reader goroutine exits.
func (f *SerialFeed) Done() <-chan struct{} {
	return f.done
}

// Close closes the port and waits for the reader to exit.
func (f *SerialFeed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.port.Close()
		<-f.done
	})
	return err
}

// ParseFrame parses a "P" line into raw points.
func ParseFrame(line string) ([]RawPoint, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "P" {
		return nil, fmt.Errorf("not a frame line: %q", line)
	}

	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid point count %q", fields[1])
	}
	if len(fields) != 2+3*n {
		return nil, fmt.Errorf("frame declares %d points but has %d values", n, len(fields)-2)
	}

	points := make([]RawPoint, n)
	for i := range points {
		var vals [3]uint16
		for j := range vals {
			v, err := strconv.ParseUint(fields[2+3*i+j], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			vals[j] = uint16(v)
		}
		points[i] = RawPoint{X: vals[0], Y: vals[1], Strength: vals[2]}
	}
	return points, nil
}
