package config

import (
	"fmt"

	"github.com/sweeney/boardutil/internal/comport"
	"github.com/sweeney/boardutil/internal/heartbeat"
	"github.com/sweeney/boardutil/internal/nvstore"
	"github.com/sweeney/boardutil/internal/smooth"
)

// Validate checks the configuration without modifying it.
func Validate(cfg *Config) error {
	if cfg.GPIO.Chip == "" {
		return fmt.Errorf("gpio.chip must be set")
	}

	hb := cfg.Heartbeat
	if hb.MinPin < 0 || hb.MaxPin < hb.MinPin {
		return fmt.Errorf("heartbeat: invalid pin range [%d, %d]", hb.MinPin, hb.MaxPin)
	}
	if hb.Pin != heartbeat.Disabled && (hb.Pin < hb.MinPin || hb.Pin > hb.MaxPin) {
		return fmt.Errorf("heartbeat.pin %d outside [%d, %d] (use 0 to disable)", hb.Pin, hb.MinPin, hb.MaxPin)
	}
	// The scheduler itself accepts any interval; the daemon does not.
	if hb.IntervalMs <= 0 {
		return fmt.Errorf("heartbeat.interval_ms must be positive, got %d", hb.IntervalMs)
	}

	if p := cfg.Smoothing.Points; p < smooth.MinPoints || p > smooth.MaxPoints {
		return fmt.Errorf("smoothing.points %d outside [%d, %d]", p, smooth.MinPoints, smooth.MaxPoints)
	}

	if cfg.NVRAM.Path == "" {
		return fmt.Errorf("nvram.path must be set")
	}
	if cfg.NVRAM.Size < comport.Address+nvstore.IntSize {
		return fmt.Errorf("nvram.size %d too small to hold address 0x%X", cfg.NVRAM.Size, comport.Address)
	}

	if cfg.Loop.PollMs <= 0 {
		return fmt.Errorf("loop.poll_ms must be positive, got %d", cfg.Loop.PollMs)
	}
	if cfg.Loop.ReportBeats < 0 {
		return fmt.Errorf("loop.report_beats must not be negative, got %d", cfg.Loop.ReportBeats)
	}

	return nil
}
