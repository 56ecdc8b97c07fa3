package core

import (
	"time"
)

// Millis is a monotonic offset in whole milliseconds from session start
type Millis int64

// Sub returns the elapsed milliseconds between two offsets
func (m Millis) Sub(earlier Millis) int64 {
	return int64(m) - int64(earlier)
}

// Duration converts the offset to a time.Duration
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Clock abstracts the time source so sessions can be driven deterministically
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Time values from time.Now carry a
// monotonic reading, so differences between them are skew-free.
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Stopwatch converts clock readings into Millis relative to a fixed origin
type Stopwatch struct {
	clock  Clock
	origin time.Time
}

// NewStopwatch starts a stopwatch at the clock's current reading
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{clock: clock, origin: clock.Now()}
}

// Elapsed returns the whole milliseconds since the stopwatch was started
func (s *Stopwatch) Elapsed() Millis {
	return Millis(s.clock.Now().Sub(s.origin) / time.Millisecond)
}

// StartedAt returns the wall-clock origin
func (s *Stopwatch) StartedAt() time.Time {
	return s.origin
}
