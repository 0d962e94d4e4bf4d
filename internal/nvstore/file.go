package nvstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// FileStore keeps the EEPROM image in a regular file.
type FileStore struct {
	f    *os.File
	size int
}

// OpenFile opens the image at path, creating an erased image of size bytes if
// it does not exist. An existing shorter image is padded with erased bytes.
func OpenFile(path string, size int) (*FileStore, error) {
	if size < IntSize {
		return nil, fmt.Errorf("nvstore: image size %d too small", size)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image %s: %w", path, err)
	}

	if pad := int64(size) - info.Size(); pad > 0 {
		if _, err := f.WriteAt(bytes.Repeat([]byte{erased}, int(pad)), info.Size()); err != nil {
			f.Close()
			return nil, fmt.Errorf("erase image %s: %w", path, err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sync image %s: %w", path, err)
		}
	}

	return &FileStore{f: f, size: size}, nil
}

// ReadInt returns the integer stored at addr.
func (s *FileStore) ReadInt(addr int) (int, error) {
	if s.f == nil {
		return 0, ErrClosed
	}
	if err := checkAddr(addr, s.size); err != nil {
		return 0, err
	}

	var buf [IntSize]byte
	if _, err := s.f.ReadAt(buf[:], int64(addr)); err != nil && err != io.EOF {
		return 0, fmt.Errorf("read address 0x%X: %w", addr, err)
	}
	return int(int16(binary.LittleEndian.Uint16(buf[:]))), nil
}

// WriteInt stores v at addr and syncs the image to disk.
func (s *FileStore) WriteInt(addr int, v int) error {
	if s.f == nil {
		return ErrClosed
	}
	if err := checkAddr(addr, s.size); err != nil {
		return err
	}
	if err := checkValue(v); err != nil {
		return err
	}

	var buf [IntSize]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(int16(v)))
	if _, err := s.f.WriteAt(buf[:], int64(addr)); err != nil {
		return fmt.Errorf("write address 0x%X: %w", addr, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// Size returns the image size in bytes.
func (s *FileStore) Size() int {
	return s.size
}

// Close closes the image file.
func (s *FileStore) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
