package param

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/param.go/pkg/checksum"
	"github.com/robotalks/param.go/pkg/storage"
)

// recordingDevice tracks every address written, to assert single-slot
// updates touch exactly the changed bytes.
type recordingDevice struct {
	*storage.MemDevice
	written []int
}

func (d *recordingDevice) WriteByte(addr int, b byte) error {
	if err := d.MemDevice.WriteByte(addr, b); err != nil {
		return err
	}
	d.written = append(d.written, addr)
	return nil
}

// faultyDevice fails writes on demand.
type faultyDevice struct {
	*storage.MemDevice
	failWrites bool
}

var errDeviceFault = errors.New("device fault")

func (d *faultyDevice) WriteByte(addr int, b byte) error {
	if d.failWrites {
		return errDeviceFault
	}
	return d.MemDevice.WriteByte(addr, b)
}

// goldenImage builds the expected on-media bytes for the given values.
func goldenImage(values []float32) []byte {
	img := make([]byte, ImageSize(len(values)))
	copy(img, headerTag)
	for i, v := range values {
		binary.LittleEndian.PutUint32(img[headerSize+i*slotSize:], math.Float32bits(v))
	}
	sum := checksum.Compute(img[:len(img)-trailerSize])
	binary.BigEndian.PutUint16(img[len(img)-trailerSize:], sum)
	return img
}

func newTestStore(t *testing.T, count int) (*Store, *storage.MemDevice) {
	dev := storage.NewMemDevice(ImageSize(count))
	s, err := NewStore(dev, Config{Count: count})
	require.NoError(t, err)
	return s, dev
}

func TestNewStore(t *testing.T) {
	dev := storage.NewMemDevice(ImageSize(4))
	_, err := NewStore(dev, Config{Count: 4})
	require.NoError(t, err)

	// default count when unset
	dev = storage.NewMemDevice(ImageSize(DefaultCount))
	s, err := NewStore(dev, Config{})
	require.NoError(t, err)
	require.Equal(t, DefaultCount, s.Count())

	// device too small
	_, err = NewStore(storage.NewMemDevice(ImageSize(4)-1), Config{Count: 4})
	require.Error(t, err)

	// invalid counts
	_, err = NewStore(dev, Config{Count: -1})
	require.Error(t, err)
	_, err = NewStore(dev, Config{Count: MaxCount + 1})
	require.Error(t, err)
}

func TestLoadFirstBoot(t *testing.T) {
	// arbitrary non-magic bytes on the medium
	dev := storage.NewMemDeviceFrom(make([]byte, ImageSize(4)))
	for i := 0; i < dev.Size(); i++ {
		dev.WriteByte(i, byte(0xC3+i))
	}
	s, err := NewStore(dev, Config{Count: 4})
	require.NoError(t, err)

	state, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, StateInitialized, state)
	require.Equal(t, []float32{0, 0, 0, 0}, s.Values())
	require.Equal(t, goldenImage(make([]float32, 4)), dev.Bytes())
}

func TestLoadValid(t *testing.T) {
	values := []float32{1.5, -2.25, 0, 3.0e7}
	dev := storage.NewMemDeviceFrom(goldenImage(values))
	s, err := NewStore(dev, Config{Count: 4})
	require.NoError(t, err)

	state, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, StateValid, state)
	require.Equal(t, values, s.Values())
}

func TestLoadCorrupted(t *testing.T) {
	values := []float32{1.5, -2.25, 0, 3.0e7}
	testCases := []struct {
		name string
		addr int
	}{
		{"checksum byte flipped", ImageSize(4) - 1},
		{"value byte flipped", headerSize + 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := goldenImage(values)
			img[tc.addr] ^= 0x01
			dev := storage.NewMemDeviceFrom(img)
			s, err := NewStore(dev, Config{Count: 4})
			require.NoError(t, err)

			state, err := s.Load()
			require.NoError(t, err)
			require.Equal(t, StateReset, state)
			// stored values are discarded, not salvaged
			require.Equal(t, []float32{0, 0, 0, 0}, s.Values())
			require.Equal(t, goldenImage(make([]float32, 4)), dev.Bytes())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	s, dev := newTestStore(t, 6)
	_, err := s.Load()
	require.NoError(t, err)

	values := []float32{0.25, -1, 100.5, 0, 3.14159, -6.5e-3}
	for i, v := range values {
		require.NoError(t, s.Set(i, v))
	}
	require.Equal(t, goldenImage(values), dev.Bytes())

	// reload from the same medium without other writes
	s2, err := NewStore(dev, Config{Count: 6})
	require.NoError(t, err)
	state, err := s2.Load()
	require.NoError(t, err)
	require.Equal(t, StateValid, state)
	require.Equal(t, values, s2.Values())
}

func TestSetIdempotent(t *testing.T) {
	s, dev := newTestStore(t, 4)
	_, err := s.Load()
	require.NoError(t, err)

	require.NoError(t, s.Set(2, 7.5))
	once := append([]byte(nil), dev.Bytes()...)
	require.NoError(t, s.Set(2, 7.5))
	require.Equal(t, once, dev.Bytes())
	require.Equal(t, goldenImage([]float32{0, 0, 7.5, 0}), dev.Bytes())
}

func TestSetIsolation(t *testing.T) {
	s, dev := newTestStore(t, 4)
	_, err := s.Load()
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Set(i, float32(i)+0.5))
	}
	before := append([]byte(nil), dev.Bytes()...)

	require.NoError(t, s.Set(1, -9))

	// bytes of every slot j != 1 are untouched
	for i := 0; i < 4; i++ {
		if i == 1 {
			continue
		}
		off := headerSize + i*slotSize
		require.Equal(t, before[off:off+slotSize], dev.Bytes()[off:off+slotSize], "slot %d", i)
	}
	v, err := s.Value(1)
	require.NoError(t, err)
	require.Equal(t, float32(-9), v)
}

func TestSetPartialWrite(t *testing.T) {
	mem := storage.NewMemDevice(ImageSize(4))
	dev := &recordingDevice{MemDevice: mem}
	s, err := NewStore(dev, Config{Count: 4})
	require.NoError(t, err)
	_, err = s.Load()
	require.NoError(t, err)

	dev.written = nil
	require.NoError(t, s.Set(1, 42))

	// exactly the 4 slot bytes plus the 2 checksum bytes
	off := headerSize + 1*slotSize
	end := ImageSize(4)
	require.Equal(t, []int{off, off + 1, off + 2, off + 3, end - 2, end - 1}, dev.written)

	// the partial write reconstructs a fully valid image
	ok, err := s.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSetBounds(t *testing.T) {
	s, _ := newTestStore(t, 4)
	_, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, ErrSlotRange, s.Set(-1, 1))
	require.Equal(t, ErrSlotRange, s.Set(4, 1))
	_, err = s.Value(4)
	require.Equal(t, ErrSlotRange, err)
}

func TestSetWriteFailure(t *testing.T) {
	mem := storage.NewMemDevice(ImageSize(4))
	dev := &faultyDevice{MemDevice: mem}
	s, err := NewStore(dev, Config{Count: 4})
	require.NoError(t, err)
	_, err = s.Load()
	require.NoError(t, err)

	dev.failWrites = true
	err = s.Set(0, 5)
	require.Error(t, err)
	var serr *StorageError
	require.True(t, errors.As(err, &serr))

	// in-memory state already reflects the update
	v, err := s.Value(0)
	require.NoError(t, err)
	require.Equal(t, float32(5), v)

	// retrying the identical update repairs the medium
	dev.failWrites = false
	require.NoError(t, s.Set(0, 5))
	ok, err := s.Verify()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, goldenImage([]float32{5, 0, 0, 0}), mem.Bytes())
}

func TestValuesSnapshot(t *testing.T) {
	s, _ := newTestStore(t, 2)
	_, err := s.Load()
	require.NoError(t, err)
	require.NoError(t, s.Set(0, 1))
	vals := s.Values()
	vals[0] = 99 // caller mutation must not leak into the store
	v, err := s.Value(0)
	require.NoError(t, err)
	require.Equal(t, float32(1), v)
}

func TestChecksumMatchesEngine(t *testing.T) {
	s, dev := newTestStore(t, 3)
	_, err := s.Load()
	require.NoError(t, err)
	require.NoError(t, s.Set(1, 2.5))

	region := dev.Bytes()[:ImageSize(3)-trailerSize]
	require.Equal(t, checksum.Compute(region), s.Checksum())
}
