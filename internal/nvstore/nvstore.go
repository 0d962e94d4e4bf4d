// Package nvstore emulates a small byte-addressed EEPROM.
//
// Integers are stored as 16-bit little-endian words, the width of an int on
// the AVR boards the layout comes from. An erased cell reads 0xFF, so an
// unwritten integer reads back as -1.
package nvstore

import "errors"

// Store reads and writes integers at fixed addresses in non-volatile memory.
type Store interface {
	// ReadInt returns the integer stored at addr.
	ReadInt(addr int) (int, error)

	// WriteInt stores v at addr. The value persists across restarts.
	WriteInt(addr int, v int) error

	// Close releases the underlying storage.
	Close() error
}

const (
	// DefaultSize matches the 1 KiB EEPROM of an ATmega328.
	DefaultSize = 1024

	// IntSize is the number of bytes an integer occupies.
	IntSize = 2

	erased = 0xFF
)

var (
	ErrAddressRange = errors.New("nvstore: address out of range")
	ErrValueRange   = errors.New("nvstore: value does not fit in 16 bits")
	ErrClosed       = errors.New("nvstore: store closed")
)

func checkAddr(addr, size int) error {
	if addr < 0 || addr+IntSize > size {
		return ErrAddressRange
	}
	return nil
}

func checkValue(v int) error {
	if v < -32768 || v > 32767 {
		return ErrValueRange
	}
	return nil
}
