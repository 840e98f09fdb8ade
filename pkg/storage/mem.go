package storage

// MemDevice is an in-memory Device for simulation and tests.
type MemDevice struct {
	buf []byte
}

// NewMemDevice creates a zero-filled MemDevice with the given capacity.
func NewMemDevice(size int) *MemDevice {
	return &MemDevice{buf: make([]byte, size)}
}

// NewMemDeviceFrom creates a MemDevice seeded with a copy of p.
func NewMemDeviceFrom(p []byte) *MemDevice {
	buf := make([]byte, len(p))
	copy(buf, p)
	return &MemDevice{buf: buf}
}

// ReadByte implements Device.
func (d *MemDevice) ReadByte(addr int) (byte, error) {
	if addr < 0 || addr >= len(d.buf) {
		return 0, ErrOutOfRange
	}
	return d.buf[addr], nil
}

// WriteByte implements Device.
func (d *MemDevice) WriteByte(addr int, b byte) error {
	if addr < 0 || addr >= len(d.buf) {
		return ErrOutOfRange
	}
	d.buf[addr] = b
	return nil
}

// Size implements Device.
func (d *MemDevice) Size() int {
	return len(d.buf)
}

// Bytes exposes the underlying buffer for inspection in tests.
func (d *MemDevice) Bytes() []byte {
	return d.buf
}
