// Package timeout provides a single millisecond deadline.
//
// There is no rollover handling. If Arm is called close enough to the clock's
// wraparound that now+ms overflows, the deadline is numerically small and the
// timer reports expired immediately. If the clock wraps while a deadline is
// pending, Expired reports false until the clock climbs past the deadline
// again, one full wrap period later.
package timeout

import "github.com/sweeney/boardutil/internal/clock"

// Timer tracks one deadline against a clock.
type Timer struct {
	clk      clock.Clock
	deadline uint32
	armed    bool
}

// New creates a timer that is already expired.
func New(clk clock.Clock) *Timer {
	return &Timer{clk: clk, deadline: clk.Now()}
}

// Arm sets the deadline ms milliseconds from now. Zero is legal.
func (t *Timer) Arm(ms uint32) {
	t.deadline = t.clk.Now() + ms
	t.armed = true
}

// Expired reports whether the clock is strictly past the deadline. A timer
// is not expired at the deadline instant itself, only one tick after it.
func (t *Timer) Expired() bool {
	if !t.armed {
		return true
	}
	return t.deadline < t.clk.Now()
}

// Deadline returns the clock value the timer expires after.
func (t *Timer) Deadline() uint32 {
	return t.deadline
}
