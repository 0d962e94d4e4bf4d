package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	ComPort       string        `json:"com_port"`
	Heartbeat     HeartbeatJSON `json:"heartbeat"`
	Config        ConfigJSON    `json:"config"`
}

// HeartbeatJSON reports the heartbeat LED state.
type HeartbeatJSON struct {
	Pin         int     `json:"pin"`
	Enabled     bool    `json:"enabled"`
	IntervalMs  int64   `json:"interval_ms"`
	Beats       uint64  `json:"beats"`
	LastBeat    string  `json:"last_beat,omitempty"`
	AvgPeriodMs float32 `json:"avg_period_ms"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip         string `json:"chip"`
	PollMs       int64  `json:"poll_ms"`
	SmoothPoints int    `json:"smooth_points"`
	NVRAMPath    string `json:"nvram_path"`
	PinRange     [2]int `json:"pin_range"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		ComPort:       snap.ComPort,
		Heartbeat: HeartbeatJSON{
			Pin:         snap.Pin,
			Enabled:     snap.Pin != 0,
			IntervalMs:  snap.IntervalMs,
			Beats:       snap.Beats,
			AvgPeriodMs: snap.AvgPeriodMs,
		},
		Config: ConfigJSON{
			Chip:         snap.Config.Chip,
			PollMs:       snap.Config.PollMs,
			SmoothPoints: snap.Config.SmoothPoints,
			NVRAMPath:    snap.Config.NVRAMPath,
			PinRange:     [2]int{snap.Config.PinRangeLow, snap.Config.PinRangeHigh},
		},
	}
	if !snap.LastBeat.IsZero() {
		inner.Heartbeat.LastBeat = snap.LastBeat.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the indented JSON status for printing.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns compact JSON status tagged with a lifecycle event
// such as "STARTUP" or "SHUTDOWN", for one-line log output.
func FormatStatusEvent(snap Snapshot, event string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
