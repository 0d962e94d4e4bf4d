// Package smooth averages the last few samples of a noisy reading.
package smooth

import (
	"fmt"

	"github.com/sweeney/boardutil/internal/diag"
)

const (
	MinPoints = 2
	MaxPoints = 9
)

// Smoother returns the running average of the last n samples.
//
// A Smoother built with an out-of-range size is disabled: every Add reports a
// diagnostic and returns 0. Callers that ignore Enabled will read zeros.
type Smoother struct {
	sink   diag.Sink
	points int // 0 when disabled

	values [MaxPoints]float32
	next   int
	count  int
}

// New creates a smoother over n points, n in [MinPoints, MaxPoints].
func New(n int, sink diag.Sink) *Smoother {
	if sink == nil {
		sink = diag.Discard{}
	}
	s := &Smoother{sink: sink}

	switch {
	case n < MinPoints:
		sink.Emit(fmt.Sprintf("invalid number of points to smooth (%d): need at least %d", n, MinPoints))
		return s
	case n > MaxPoints:
		sink.Emit(fmt.Sprintf("invalid number of points to smooth (%d): must be at most %d", n, MaxPoints))
		return s
	}

	s.points = n
	return s
}

// Add stores v and returns the average of the samples held.
//
// The first sample is returned unchanged. Until the window fills, the
// average is over the samples seen so far, so early results ramp up to the
// full n-point average rather than being pulled towards zero.
func (s *Smoother) Add(v float32) float32 {
	if s.points == 0 {
		s.sink.Emit("smoother not initialised properly")
		return 0
	}

	s.values[s.next] = v
	s.next++
	if s.next >= s.points {
		s.next = 0
	}

	if s.count < s.points {
		s.count++
		if s.count == 1 {
			return v
		}
	}

	var sum float64
	for i := 0; i < s.count; i++ {
		sum += float64(s.values[i])
	}
	return float32(sum / float64(s.count))
}

// Enabled reports whether the smoother was built with a valid size.
func (s *Smoother) Enabled() bool {
	return s.points != 0
}

// Capacity returns the window size, or 0 for a disabled smoother.
func (s *Smoother) Capacity() int {
	return s.points
}

// Count returns how many slots hold samples; it saturates at Capacity.
func (s *Smoother) Count() int {
	return s.count
}
