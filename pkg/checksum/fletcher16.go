// Package checksum implements the Fletcher-16 checksum used to validate
// persisted parameter images and link frames.
//
// The algorithm is load-bearing: images written by one version of the
// store must validate under another, so any change here breaks round-trip
// compatibility with already-persisted images.
package checksum

// Fletcher16 accumulates a Fletcher-16 checksum byte by byte.
// The zero value is ready to use.
type Fletcher16 struct {
	sum1 uint16
	sum2 uint16
}

// Write implements io.Writer and never fails.
func (f *Fletcher16) Write(p []byte) (int, error) {
	for _, b := range p {
		f.sum1 = (f.sum1 + uint16(b)) % 255
		f.sum2 = (f.sum2 + f.sum1) % 255
	}
	return len(p), nil
}

// Sum16 combines the two running sums as hi<<8|lo.
func (f *Fletcher16) Sum16() uint16 {
	return f.sum2<<8 | f.sum1
}

// Reset restores the initial state.
func (f *Fletcher16) Reset() {
	f.sum1, f.sum2 = 0, 0
}

// Compute calculates the Fletcher-16 checksum of p.
func Compute(p []byte) uint16 {
	var f Fletcher16
	f.Write(p)
	return f.Sum16()
}
