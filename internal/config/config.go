// Package config loads the boardutil daemon configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/boardutil/internal/gpio"
	"github.com/sweeney/boardutil/internal/heartbeat"
	"github.com/sweeney/boardutil/internal/nvstore"
)

// Config is the daemon configuration.
type Config struct {
	GPIO      GPIOConfig      `yaml:"gpio"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	NVRAM     NVRAMConfig     `yaml:"nvram"`
	Loop      LoopConfig      `yaml:"loop"`
}

// GPIOConfig selects the GPIO character device.
type GPIOConfig struct {
	Chip string `yaml:"chip"`
}

// HeartbeatConfig configures the heartbeat LED.
type HeartbeatConfig struct {
	Pin        int   `yaml:"pin"`         // 0 disables the LED
	IntervalMs int64 `yaml:"interval_ms"` // toggle interval
	MinPin     int   `yaml:"min_pin"`     // lowest pin SetPin accepts
	MaxPin     int   `yaml:"max_pin"`     // highest pin SetPin accepts
}

// SmoothingConfig configures the beat period smoother.
type SmoothingConfig struct {
	Points int `yaml:"points"`
}

// NVRAMConfig locates the emulated EEPROM image.
type NVRAMConfig struct {
	Path string `yaml:"path"`
	Size int    `yaml:"size"`
}

// LoopConfig tunes the host control loop.
type LoopConfig struct {
	PollMs      int64 `yaml:"poll_ms"`      // how often Service is called
	ReportBeats int   `yaml:"report_beats"` // log the smoothed period every N beats, 0 disables
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Chip: gpio.DefaultChip,
		},
		Heartbeat: HeartbeatConfig{
			Pin:        heartbeat.DefaultPin,
			IntervalMs: heartbeat.DefaultInterval,
			MinPin:     heartbeat.DefaultMinPin,
			MaxPin:     heartbeat.DefaultMaxPin,
		},
		Smoothing: SmoothingConfig{
			Points: 5,
		},
		NVRAM: NVRAMConfig{
			Path: "/var/lib/boardutil/eeprom.bin",
			Size: nvstore.DefaultSize,
		},
		Loop: LoopConfig{
			PollMs:      5,
			ReportBeats: 40,
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults; fields absent from the file keep their default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
