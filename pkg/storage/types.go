// Package storage abstracts byte-addressable non-volatile storage.
//
// Devices are deliberately byte-granular: the parameter store persists
// single-slot updates by rewriting individual bytes, matching EEPROM-like
// media where writes are the expensive, wear-limited operation.
package storage

import "errors"

// ErrOutOfRange indicates an address outside the device capacity.
var ErrOutOfRange = errors.New("address out of range")

// Device is a fixed-capacity, byte-addressable non-volatile medium.
// Reads and writes are synchronous and may fail.
type Device interface {
	// ReadByte reads the byte at addr.
	ReadByte(addr int) (byte, error)
	// WriteByte writes b at addr.
	WriteByte(addr int, b byte) error
	// Size returns the device capacity in bytes.
	Size() int
}

// ReadFull reads the entire device content.
func ReadFull(dev Device) ([]byte, error) {
	return ReadRange(dev, 0, dev.Size())
}

// ReadRange reads n bytes starting at addr.
func ReadRange(dev Device, addr, n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := range buf {
		b, err := dev.ReadByte(addr + i)
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// WriteRange writes p starting at addr.
func WriteRange(dev Device, addr int, p []byte) error {
	for i, b := range p {
		if err := dev.WriteByte(addr+i, b); err != nil {
			return err
		}
	}
	return nil
}
