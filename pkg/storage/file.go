package storage

import (
	"fmt"
	"os"
)

// FileDevice is a Device backed by a regular file, emulating an EEPROM
// image on hosts without real non-volatile parameter memory.
type FileDevice struct {
	file *os.File
	size int
}

// OpenFileDevice opens (or creates) a backing file with the given capacity.
// A shorter existing file is zero-extended; a longer one is rejected to
// avoid silently truncating someone else's image.
func OpenFileDevice(path string, size int) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() > int64(size) {
		f.Close()
		return nil, fmt.Errorf("backing file %q larger than device size %d", path, size)
	}
	if info.Size() < int64(size) {
		if err = f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &FileDevice{file: f, size: size}, nil
}

// ReadByte implements Device.
func (d *FileDevice) ReadByte(addr int) (byte, error) {
	if addr < 0 || addr >= d.size {
		return 0, ErrOutOfRange
	}
	var buf [1]byte
	if _, err := d.file.ReadAt(buf[:], int64(addr)); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteByte implements Device.
func (d *FileDevice) WriteByte(addr int, b byte) error {
	if addr < 0 || addr >= d.size {
		return ErrOutOfRange
	}
	_, err := d.file.WriteAt([]byte{b}, int64(addr))
	return err
}

// Size implements Device.
func (d *FileDevice) Size() int {
	return d.size
}

// Sync flushes the backing file to stable storage.
func (d *FileDevice) Sync() error {
	return d.file.Sync()
}

// Close implements io.Closer.
func (d *FileDevice) Close() error {
	return d.file.Close()
}
