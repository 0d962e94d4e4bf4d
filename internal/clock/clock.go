// Package clock provides the millisecond counter the board utilities run on.
// The counter is 32 bits wide and wraps to zero after about 49.7 days, like a
// microcontroller millis() counter.
package clock

import "time"

// Clock returns a monotonically increasing millisecond count.
type Clock interface {
	// Now returns milliseconds since an arbitrary origin. The value wraps
	// at its maximum representable value.
	Now() uint32
}

// Real counts milliseconds since it was created.
type Real struct {
	start time.Time
}

// NewReal creates a clock whose origin is the current instant.
func NewReal() *Real {
	return &Real{start: time.Now()}
}

// Now returns the elapsed milliseconds truncated to 32 bits.
func (c *Real) Now() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
