package gpio

import "fmt"

// FakePins is a test double that keeps pin levels in memory.
type FakePins struct {
	// Levels holds the current level of each pin.
	Levels map[int]Level

	// Modes holds the configured mode of each pin.
	Modes map[int]Mode

	// Writes records every Write call in order.
	Writes []Write

	// Reads counts Read calls.
	Reads int

	// ReadError, if set, will be returned by Read().
	ReadError error

	// WriteError, if set, will be returned by Write().
	WriteError error

	// ConfigureError, if set, will be returned by Configure().
	ConfigureError error

	// Closed tracks if Close was called
	Closed bool
}

// Write is a single recorded pin write.
type Write struct {
	Pin   int
	Level Level
}

// NewFakePins creates FakePins with every pin low and unconfigured.
func NewFakePins() *FakePins {
	return &FakePins{
		Levels: make(map[int]Level),
		Modes:  make(map[int]Mode),
	}
}

// Configure records the mode for pin.
func (f *FakePins) Configure(pin int, mode Mode) error {
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	if pin < 0 {
		return fmt.Errorf("configure pin %d: invalid pin", pin)
	}
	f.Modes[pin] = mode
	return nil
}

// Read returns the stored level of pin.
func (f *FakePins) Read(pin int) (Level, error) {
	f.Reads++
	if f.ReadError != nil {
		return Low, f.ReadError
	}
	return f.Levels[pin], nil
}

// Write stores level for pin and records the write.
func (f *FakePins) Write(pin int, level Level) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Levels[pin] = level
	f.Writes = append(f.Writes, Write{Pin: pin, Level: level})
	return nil
}

// WritesTo returns the recorded writes for pin.
func (f *FakePins) WritesTo(pin int) []Write {
	var out []Write
	for _, w := range f.Writes {
		if w.Pin == pin {
			out = append(out, w)
		}
	}
	return out
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes and levels.
func (f *FakePins) Reset() {
	f.Levels = make(map[int]Level)
	f.Modes = make(map[int]Mode)
	f.Writes = nil
	f.Reads = 0
	f.Closed = false
}
