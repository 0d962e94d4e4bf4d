// Package gpio provides digital pin I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Level is the logical level of a digital pin.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

// Not returns the logical complement of l.
func (l Level) Not() Level {
	if l == Low {
		return High
	}
	return Low
}

func (l Level) String() string {
	if l == Low {
		return "LOW"
	}
	return "HIGH"
}

// Mode is the direction a pin is configured for.
type Mode int

const (
	Input Mode = iota
	Output
	// InputOutput drives the pin and allows its level to be read back.
	InputOutput
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "input"
	case Output:
		return "output"
	case InputOutput:
		return "input|output"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Pins reads and drives digital pins by number.
type Pins interface {
	// Configure sets the direction of pin.
	Configure(pin int, mode Mode) error

	// Read returns the current level of pin. For output pins this is the
	// level being driven.
	Read(pin int) (Level, error)

	// Write drives pin to level.
	Write(pin int, level Level) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 13
)
