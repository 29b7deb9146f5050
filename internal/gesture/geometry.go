package gesture

import (
	"math"
	"time"
)

// distance returns the Euclidean distance between two points.
func distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// angle returns the direction from a to b in radians.
func angle(a, b Point) float64 {
	return math.Atan2(float64(b.Y-a.Y), float64(b.X-a.X))
}

// normalizeAngle wraps an angle difference into (-π, π].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// midpoint returns the integer midpoint of two points.
func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// centroid returns the integer mean of the given points.
func centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sx, sy int
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	return Point{X: sx / len(points), Y: sy / len(points)}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// millis converts a duration to fractional milliseconds, clamping negative
// durations to zero.
func millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
