//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPins drives pins on actual hardware using the Linux GPIO character device.
// Lines are requested lazily on first Configure and kept until Close.
type RealPins struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealPins opens the named GPIO chip (for example "gpiochip0").
func NewRealPins(chipName string) (*RealPins, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	return &RealPins{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

// Configure requests pin with the given direction, or reconfigures it if it
// was already requested. An output line reports the level it is driving, so
// InputOutput is requested as an output.
func (r *RealPins) Configure(pin int, mode Mode) error {
	if l, ok := r.lines[pin]; ok {
		var err error
		if mode == Input {
			err = l.Reconfigure(gpiocdev.AsInput)
		} else {
			err = l.Reconfigure(gpiocdev.AsOutput(0))
		}
		if err != nil {
			return fmt.Errorf("reconfigure pin %d as %s: %w", pin, mode, err)
		}
		return nil
	}

	var (
		l   *gpiocdev.Line
		err error
	)
	if mode == Input {
		l, err = r.chip.RequestLine(pin, gpiocdev.AsInput)
	} else {
		l, err = r.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	}
	if err != nil {
		return fmt.Errorf("request pin %d as %s: %w", pin, mode, err)
	}
	r.lines[pin] = l
	return nil
}

func (r *RealPins) line(pin int) (*gpiocdev.Line, error) {
	l, ok := r.lines[pin]
	if !ok {
		return nil, fmt.Errorf("pin %d not configured", pin)
	}
	return l, nil
}

// Read returns the level of pin.
func (r *RealPins) Read(pin int) (Level, error) {
	l, err := r.line(pin)
	if err != nil {
		return Low, err
	}
	v, err := l.Value()
	if err != nil {
		return Low, fmt.Errorf("read pin %d: %w", pin, err)
	}
	if v == 0 {
		return Low, nil
	}
	return High, nil
}

// Write drives pin to level.
func (r *RealPins) Write(pin int, level Level) error {
	l, err := r.line(pin)
	if err != nil {
		return err
	}
	if err := l.SetValue(int(level)); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults) before
// closing so an LED is not left lit across a restart.
func (r *RealPins) Close() error {
	var errs []error

	for pin, l := range r.lines {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	r.lines = make(map[int]*gpiocdev.Line)

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
