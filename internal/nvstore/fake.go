package nvstore

// FakeStore is an in-memory Store for tests.
type FakeStore struct {
	// Image is the raw memory. It starts erased.
	Image []byte

	// WriteError, if set, will be returned by WriteInt.
	WriteError error

	// ReadError, if set, will be returned by ReadInt.
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeStore creates an erased in-memory image of size bytes.
func NewFakeStore(size int) *FakeStore {
	img := make([]byte, size)
	for i := range img {
		img[i] = erased
	}
	return &FakeStore{Image: img}
}

// ReadInt returns the integer stored at addr.
func (f *FakeStore) ReadInt(addr int) (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if err := checkAddr(addr, len(f.Image)); err != nil {
		return 0, err
	}
	return int(int16(uint16(f.Image[addr]) | uint16(f.Image[addr+1])<<8)), nil
}

// WriteInt stores v at addr.
func (f *FakeStore) WriteInt(addr int, v int) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	if err := checkAddr(addr, len(f.Image)); err != nil {
		return err
	}
	if err := checkValue(v); err != nil {
		return err
	}
	u := uint16(int16(v))
	f.Image[addr] = byte(u)
	f.Image[addr+1] = byte(u >> 8)
	return nil
}

// Close marks the store as closed.
func (f *FakeStore) Close() error {
	f.Closed = true
	return nil
}
