// Package heartbeat blinks a liveness LED from a cooperative control loop.
//
// The Scheduler does no work on its own: the host loop calls Service often,
// or blocks in PauseFor/Wait which call Service for it. The Scheduler is not
// safe for concurrent use. A host that drives it from more than one goroutine
// must serialise Service, the setters and the attached callback itself.
package heartbeat

import (
	"context"
	"errors"
	"log"
	"runtime"
	"time"

	"github.com/sweeney/boardutil/internal/clock"
	"github.com/sweeney/boardutil/internal/gpio"
)

// Version identifies the library release.
const Version = "boardutil v0.00.05"

const (
	// Read passed to SetPin or SetInterval queries the current value.
	Read = -1

	// Fail is returned by SetPin for a pin outside the valid range.
	Fail = -1

	// Disabled as an LED pin stops physical toggling. Deadlines still advance
	// and the callback still runs.
	Disabled = 0

	// NoPin passed to TogglePin is a no-op.
	NoPin = -1

	DefaultPin      = 13
	DefaultInterval = 250

	// Pins 0 and 1 are the serial port on the reference board.
	DefaultMinPin = 2
	DefaultMaxPin = 13
)

// ErrInvalidPin is returned by SetPin for a pin outside the valid range.
var ErrInvalidPin = errors.New("heartbeat: invalid pin")

// Options tune a Scheduler. Zero fields take the defaults.
type Options struct {
	// Pin is the initial LED pin.
	Pin int
	// MinPin and MaxPin bound the pins SetPin accepts, inclusive.
	MinPin int
	MaxPin int
}

// Scheduler toggles an LED pin every interval milliseconds.
type Scheduler struct {
	clk  clock.Clock
	pins gpio.Pins

	pin      int
	interval uint32
	next     uint32

	minPin int
	maxPin int

	callback        func()
	callbackEnabled bool

	// Set when the deadline was reset to the zero basis after the counter
	// overflowed; due checks are held until the clock itself wraps.
	awaitWrap bool
	last      uint32

	beats uint64
}

// New creates a Scheduler with the default interval and the callback disabled.
// The first deadline is one interval after clock zero, not after construction,
// so a clock that is already past it beats on the first Service call.
func New(clk clock.Clock, pins gpio.Pins, opts Options) *Scheduler {
	s := &Scheduler{
		clk:      clk,
		pins:     pins,
		pin:      opts.Pin,
		interval: DefaultInterval,
		next:     DefaultInterval,
		minPin:   opts.MinPin,
		maxPin:   opts.MaxPin,
	}
	if s.pin == 0 {
		s.pin = DefaultPin
	}
	if s.minPin == 0 {
		s.minPin = DefaultMinPin
	}
	if s.maxPin == 0 {
		s.maxPin = DefaultMaxPin
	}
	return s
}

// Initialize disables any attached callback, restores the default interval,
// configures pin for input and output and makes it the LED pin.
// Pin 0 disables the LED without touching GPIO.
func (s *Scheduler) Initialize(pin int) error {
	s.callbackEnabled = false
	s.interval = DefaultInterval

	if pin != Disabled {
		if err := s.pins.Configure(pin, gpio.InputOutput); err != nil {
			return err
		}
	}
	s.pin = pin
	return nil
}

// SetPin sets the LED pin and returns the pin now in use.
//
// Read returns the current pin without changing it. Disabled turns the LED
// off. Any other pin outside [MinPin, MaxPin] returns Fail and ErrInvalidPin
// and leaves the current pin in place.
func (s *Scheduler) SetPin(pin int) (int, error) {
	if pin == Read {
		return s.pin, nil
	}
	if pin == Disabled {
		s.pin = Disabled
		return s.pin, nil
	}
	if pin < s.minPin || pin > s.maxPin {
		return Fail, ErrInvalidPin
	}
	if err := s.pins.Configure(pin, gpio.InputOutput); err != nil {
		return Fail, err
	}
	s.pin = pin
	return s.pin, nil
}

// Pin returns the LED pin, or Disabled.
func (s *Scheduler) Pin() int {
	return s.pin
}

// SetInterval replaces the toggle interval in milliseconds and returns the
// interval now in use. Read returns the current interval without changing it.
// There is no bounds checking: zero toggles on every Service call and other
// negative values wrap to very long intervals.
func (s *Scheduler) SetInterval(ms int64) int64 {
	if ms != Read {
		s.interval = uint32(ms)
	}
	return int64(s.interval)
}

// Interval returns the toggle interval in milliseconds.
func (s *Scheduler) Interval() uint32 {
	return s.interval
}

// AttachCallback runs fn on every beat, just before the LED toggles.
// There is no detach; attach a no-op function instead.
func (s *Scheduler) AttachCallback(fn func()) {
	s.callback = fn
	s.callbackEnabled = true
}

// Beats returns how many times the deadline has been reached.
func (s *Scheduler) Beats() uint64 {
	return s.beats
}

// Next returns the clock value of the next beat.
func (s *Scheduler) Next() uint32 {
	return s.next
}

// Service beats if the deadline has been reached: it advances the deadline,
// runs the callback and toggles the LED. Call it from the host loop as often
// as possible.
func (s *Scheduler) Service() {
	now := s.clk.Now()

	if s.awaitWrap {
		if now >= s.last {
			s.last = now
			return
		}
		s.awaitWrap = false
	}
	s.last = now

	if now < s.next {
		return
	}

	next := s.next + s.interval
	if next <= now {
		// Fell behind by more than an interval, or the sum overflowed.
		next = now + s.interval
		if next < now {
			// Counter overflow: restart from zero and lose the phase.
			next = s.interval
			s.awaitWrap = true
		}
	}
	s.next = next
	s.beats++

	if s.callbackEnabled && s.callback != nil {
		s.callback()
	}

	if s.pin == Disabled {
		return
	}
	if _, err := s.TogglePin(s.pin); err != nil {
		log.Printf("heartbeat: toggle pin %d: %v", s.pin, err)
	}
}

// PauseFor busy-waits for ms milliseconds, servicing the heartbeat the whole
// time. It cannot be cancelled. If now+ms overflows the counter it returns
// immediately.
func (s *Scheduler) PauseFor(ms uint32) {
	end := s.clk.Now() + ms
	for s.clk.Now() < end {
		s.Service()
	}
}

// Wait is PauseFor for hosts with a scheduler: it services the heartbeat
// between yields and returns early with ctx.Err() when ctx is done.
func (s *Scheduler) Wait(ctx context.Context, d time.Duration) error {
	end := s.clk.Now() + uint32(d.Milliseconds())
	for s.clk.Now() < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Service()
		runtime.Gosched()
	}
	return nil
}

// TogglePin drives pin to the complement of its current level and returns
// the new level, 0 or 1. NoPin returns -1 without touching GPIO.
func (s *Scheduler) TogglePin(pin int) (int, error) {
	if pin == NoPin {
		return -1, nil
	}
	level, err := s.pins.Read(pin)
	if err != nil {
		return -1, err
	}
	level = level.Not()
	if err := s.pins.Write(pin, level); err != nil {
		return -1, err
	}
	return int(level), nil
}
