// Package clock provides the monotonic simulation clock. Every timer in the
// combat core is an absolute timestamp compared against Clock.Now; nothing
// sleeps or schedules callbacks.
package clock

import (
	"fmt"
	"math"
	"time"
)

// Never is the sentinel for an unset timestamp.
const Never time.Duration = -1 << 63

// Clock reports simulation time elapsed since the world started.
type Clock interface {
	Now() time.Duration
}

// Manual is a Clock advanced explicitly by its owner, one step per frame.
// It is not safe for concurrent use.
type Manual struct {
	now time.Duration
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

// Now returns the current simulation time.
func (m *Manual) Now() time.Duration { return m.now }

// Advance moves the clock forward by d.
//
// Precondition: d >= 0.
// Postcondition: Now() has increased by exactly d.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		panic(fmt.Sprintf("clock: Advance called with negative duration %v", d))
	}
	m.now += d
}

// Set moves the clock to t.
//
// Precondition: t >= Now(); the clock is monotonic.
func (m *Manual) Set(t time.Duration) {
	if t < m.now {
		panic(fmt.Sprintf("clock: Set(%v) would move time backwards from %v", t, m.now))
	}
	m.now = t
}

// Since returns now - t, or a zero duration if t is Never.
func Since(now, t time.Duration) time.Duration {
	if t == Never {
		return 0
	}
	return now - t
}

// Seconds converts a float number of seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
