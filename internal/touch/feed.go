// Package touch adapts touch controllers to the per-tick gesture.Frame input.
//
// A Feed is polled once per scheduler tick and never blocks. Hardware feeds
// read on their own goroutine and publish the latest frame behind an atomic
// ready flag, which Poll tests and clears.
package touch

import (
	"errors"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrFeedClosed is returned once a feed has been closed or its source ended.
var ErrFeedClosed = errors.New("touch feed closed")

// Feed produces one frame per tick.
type Feed interface {
	// Poll returns the frame for this tick. Available is false when the
	// controller produced nothing new since the last poll.
	Poll() gesture.Frame
	Close() error
}

// ResetRequester is implemented by feeds that can detect a controller fault
// and ask the pipeline to reset the recognizer.
type ResetRequester interface {
	// ResetRequested reports and clears a pending reset request.
	ResetRequested() bool
}

// RawPoint is a contact in controller coordinates, before mapping.
type RawPoint struct {
	X, Y     uint16
	Strength uint16
}
