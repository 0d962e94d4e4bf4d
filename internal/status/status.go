// Package status provides a status tracker for the boardutil daemon.
// The run loop writes it; the print and shutdown paths read snapshots.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip         string
	PollMs       int64
	SmoothPoints int
	NVRAMPath    string
	PinRangeLow  int
	PinRangeHigh int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Pin         int
	IntervalMs  int64
	Beats       uint64
	LastBeat    time.Time
	AvgPeriodMs float32
	ComPort     string
	StartTime   time.Time
	Now         time.Time
	Config      Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetHeartbeat records the LED pin and interval in use.
func (t *Tracker) SetHeartbeat(pin int, intervalMs int64) {
	t.mu.Lock()
	t.snap.Pin = pin
	t.snap.IntervalMs = intervalMs
	t.mu.Unlock()
}

// RecordBeat records a heartbeat and the smoothed beat period.
// Called from the heartbeat callback.
func (t *Tracker) RecordBeat(at time.Time, beats uint64, avgPeriodMs float32) {
	t.mu.Lock()
	t.snap.Beats = beats
	t.snap.LastBeat = at
	t.snap.AvgPeriodMs = avgPeriodMs
	t.mu.Unlock()
}

// SetComPort sets the COM port label.
func (t *Tracker) SetComPort(label string) {
	t.mu.Lock()
	t.snap.ComPort = label
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
