//go:build !linux

package gpio

import "errors"

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(chipName string) (*RealPins, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Configure is not implemented on non-Linux platforms.
func (r *RealPins) Configure(pin int, mode Mode) error {
	return errors.New("gpio: not supported")
}

// Read is not implemented on non-Linux platforms.
func (r *RealPins) Read(pin int) (Level, error) {
	return Low, errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (r *RealPins) Write(pin int, level Level) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealPins) Close() error {
	return nil
}
