// Package param implements the persistent, checksum-verified parameter
// store holding the vehicle's tunable float parameters.
//
// The on-media image layout is fixed for interoperability with other
// implementations:
//
//	offset 0..2       magic header {'B','F','S'}
//	offset 3..3+4N    N float32 values, little-endian, slot order = index
//	offset 3+4N..+1   Fletcher-16 checksum over header+values, big-endian
package param

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/robotalks/param.go/pkg/checksum"
)

// headerTag marks an initialized parameter image.
var headerTag = []byte{'B', 'F', 'S'}

const (
	headerSize  = 3
	slotSize    = 4
	trailerSize = 2
)

// ImageSize returns the total image size for count parameter slots.
func ImageSize(count int) int {
	return headerSize + count*slotSize + trailerSize
}

// slotOffset returns the byte offset of slot i within the image.
func slotOffset(i int) int {
	return headerSize + i*slotSize
}

// putValue stores v into slot i of img.
func putValue(img []byte, i int, v float32) {
	binary.LittleEndian.PutUint32(img[slotOffset(i):], math.Float32bits(v))
}

// valueAt loads the float stored in slot i of img.
func valueAt(img []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(img[slotOffset(i):]))
}

// hasHeader reports whether img starts with the magic header.
func hasHeader(img []byte) bool {
	return bytes.Equal(img[:headerSize], headerTag)
}

// seal recomputes the checksum over header+values and stores it in the
// trailer. Fletcher-16 state is not byte-locally composable, so the whole
// region is re-scanned even when a single slot changed.
func seal(img []byte) {
	sum := checksum.Compute(img[:len(img)-trailerSize])
	binary.BigEndian.PutUint16(img[len(img)-trailerSize:], sum)
}

// sealed reports whether the trailer matches the checksum of header+values.
func sealed(img []byte) bool {
	sum := checksum.Compute(img[:len(img)-trailerSize])
	return binary.BigEndian.Uint16(img[len(img)-trailerSize:]) == sum
}
