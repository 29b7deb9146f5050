package touch

import (
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// MockFeed replays queued frames, one per Poll. When the queue is empty it
// reports no fresh frame.
type MockFeed struct {
	mu     sync.Mutex
	frames []gesture.Frame
	reset  bool
	closed bool
}

// NewMockFeed returns a feed that yields frames in order.
func NewMockFeed(frames ...gesture.Frame) *MockFeed {
	return &MockFeed{frames: frames}
}

// Push queues more frames.
func (m *MockFeed) Push(frames ...gesture.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frames...)
}

// Touch queues a fresh frame with the given display points.
func (m *MockFeed) Touch(points ...gesture.Point) {
	samples := make([]gesture.Sample, len(points))
	for i, p := range points {
		samples[i] = gesture.Sample{X: uint16(p.X), Y: uint16(p.Y), Strength: 50}
	}
	m.Push(gesture.Frame{Available: true, Samples: samples})
}

func (m *MockFeed) Poll() gesture.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || len(m.frames) == 0 {
		return gesture.Frame{}
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f
}

// Remaining returns the number of queued frames.
func (m *MockFeed) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// RequestReset makes the next ResetRequested call return true.
func (m *MockFeed) RequestReset() {
	m.mu.Lock()
	m.reset = true
	m.mu.Unlock()
}

func (m *MockFeed) ResetRequested() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.reset
	m.reset = false
	return r
}

func (m *MockFeed) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrFeedClosed
	}
	m.closed = true
	return nil
}
