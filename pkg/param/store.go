package param

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/param.go/pkg/storage"
)

// MaxCount bounds the slot count so indexes fit the link wire format.
const MaxCount = 0xffff

// LoadState is the outcome of loading the image from storage.
type LoadState int

const (
	// StateValid means the stored image validated and was adopted.
	StateValid LoadState = iota
	// StateInitialized means the header was absent (first boot) and a
	// fresh all-zero image was written.
	StateInitialized
	// StateReset means the checksum mismatched (corruption) and the
	// image was reset to all-zero defaults.
	StateReset
)

// String implements fmt.Stringer.
func (s LoadState) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateInitialized:
		return "initialized"
	case StateReset:
		return "reset"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Store maintains a validated, durable mirror of N float parameters.
//
// It has exactly one owner: all methods must be called from a single
// goroutine (the control loop). Load runs once before the first update;
// Set runs at most once per update cycle.
type Store struct {
	dev    storage.Device
	img    []byte
	values []float32
}

// NewStore creates a Store over dev. The device must be large enough to
// hold the full image for conf.Count slots.
func NewStore(dev storage.Device, conf Config) (*Store, error) {
	count := conf.Count
	if count == 0 {
		count = DefaultCount
	}
	if count < 0 || count > MaxCount {
		return nil, fmt.Errorf("invalid parameter count %d", count)
	}
	if size := ImageSize(count); dev.Size() < size {
		return nil, fmt.Errorf("device size %d below image size %d", dev.Size(), size)
	}
	return &Store{
		dev:    dev,
		img:    make([]byte, ImageSize(count)),
		values: make([]float32, count),
	}, nil
}

// Load reads the full image from storage and validates it.
//
// A missing header means first boot, a checksum mismatch means corruption;
// both recover locally by rewriting an all-zero default image. Corrupted
// values are deliberately discarded rather than salvaged: flying with a
// partially-corrupt tuning parameter is worse than flying with known
// defaults. Only storage I/O failures surface as errors.
func (s *Store) Load() (LoadState, error) {
	img, err := storage.ReadRange(s.dev, 0, len(s.img))
	if err != nil {
		return StateValid, &StorageError{Op: "read", Err: err}
	}
	copy(s.img, img)

	if !hasHeader(s.img) {
		glog.Info("parameter storage not initialized, initializing...")
		if err = s.rewrite(); err != nil {
			return StateInitialized, err
		}
		glog.Info("done")
		return StateInitialized, nil
	}

	if !sealed(s.img) {
		glog.Warning("parameter storage corrupted, resetting...")
		if err = s.rewrite(); err != nil {
			return StateReset, err
		}
		glog.Info("done")
		return StateReset, nil
	}

	for i := range s.values {
		s.values[i] = valueAt(s.img, i)
	}
	glog.V(2).Infof("parameter storage valid, %d slots", len(s.values))
	return StateValid, nil
}

// Set updates slot i to v and persists the change.
//
// Only the 4 bytes of the slot and the 2 checksum bytes are written back;
// the rest of the image is untouched on the medium. The checksum is
// recomputed over the entire header+values region, which is required for
// correctness and acceptable for small slot counts.
func (s *Store) Set(i int, v float32) error {
	if i < 0 || i >= len(s.values) {
		return ErrSlotRange
	}
	s.values[i] = v
	putValue(s.img, i, v)
	seal(s.img)

	off := slotOffset(i)
	if err := storage.WriteRange(s.dev, off, s.img[off:off+slotSize]); err != nil {
		return &StorageError{Op: "write slot", Err: err}
	}
	if err := storage.WriteRange(s.dev, len(s.img)-trailerSize, s.img[len(s.img)-trailerSize:]); err != nil {
		return &StorageError{Op: "write checksum", Err: err}
	}
	glog.V(4).Infof("param[%d] = %g persisted", i, v)
	return nil
}

// Reset rewrites the image with the header, all-zero values and a fresh
// checksum. Used on first boot, on corruption, and by bench tooling.
func (s *Store) Reset() error {
	return s.rewrite()
}

func (s *Store) rewrite() error {
	copy(s.img, headerTag)
	for i := range s.values {
		s.values[i] = 0
		putValue(s.img, i, 0)
	}
	seal(s.img)
	if err := storage.WriteRange(s.dev, 0, s.img); err != nil {
		return &StorageError{Op: "write image", Err: err}
	}
	return nil
}

// Verify re-reads the image from the device and reports whether it carries
// the magic header and a matching checksum.
func (s *Store) Verify() (bool, error) {
	img, err := storage.ReadRange(s.dev, 0, len(s.img))
	if err != nil {
		return false, &StorageError{Op: "read", Err: err}
	}
	return hasHeader(img) && sealed(img), nil
}

// Count returns the number of parameter slots.
func (s *Store) Count() int {
	return len(s.values)
}

// ImageSize returns the on-media image size in bytes.
func (s *Store) ImageSize() int {
	return len(s.img)
}

// Value returns the value of slot i.
func (s *Store) Value(i int) (float32, error) {
	if i < 0 || i >= len(s.values) {
		return 0, ErrSlotRange
	}
	return s.values[i], nil
}

// Values returns a snapshot of the in-memory parameter array.
func (s *Store) Values() []float32 {
	vals := make([]float32, len(s.values))
	copy(vals, s.values)
	return vals
}

// Checksum returns the checksum currently stored in the in-memory image.
func (s *Store) Checksum() uint16 {
	return binary.BigEndian.Uint16(s.img[len(s.img)-trailerSize:])
}
