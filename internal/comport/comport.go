// Package comport remembers which serial port a board enumerates as.
//
// The number is written once per board into non-volatile memory and read
// back at startup, so a display can show the port at a glance.
package comport

import (
	"fmt"

	"github.com/sweeney/boardutil/internal/nvstore"
)

const (
	// Address is where the port number lives in non-volatile memory.
	Address = 0xC0

	// NotSet is the label for an unset or invalid port number.
	NotSet = "COM port not set"
)

// ComPort reads and writes the stored port number.
type ComPort struct {
	store nvstore.Store
}

// New creates a ComPort backed by store.
func New(store nvstore.Store) *ComPort {
	return &ComPort{store: store}
}

// Valid reports whether n is a usable port number: 2 < n < 0xFF.
// An erased cell (0xFF or -1) is not valid.
func Valid(n int) bool {
	return n > 2 && n < 0xFF
}

// Set stores n. It only needs to be called once per board.
func (c *ComPort) Set(n int) error {
	if err := c.store.WriteInt(Address, n); err != nil {
		return fmt.Errorf("store com port: %w", err)
	}
	return nil
}

// Number returns the stored value and whether it is a valid port number.
func (c *ComPort) Number() (int, bool, error) {
	n, err := c.store.ReadInt(Address)
	if err != nil {
		return 0, false, fmt.Errorf("read com port: %w", err)
	}
	return n, Valid(n), nil
}

// Label returns "COM<n>" for a valid stored number, otherwise NotSet.
func (c *ComPort) Label() (string, error) {
	n, ok, err := c.Number()
	if err != nil {
		return "", err
	}
	if !ok {
		return NotSet, nil
	}
	return fmt.Sprintf("COM%d", n), nil
}
