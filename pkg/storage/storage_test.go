package storage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDevice(t *testing.T) {
	dev := NewMemDevice(8)
	require.Equal(t, 8, dev.Size())

	require.NoError(t, dev.WriteByte(0, 0xAA))
	require.NoError(t, dev.WriteByte(7, 0x55))
	b, err := dev.ReadByte(0)
	require.NoError(t, err)
	require.Equal(t, byte(0xAA), b)
	b, err = dev.ReadByte(7)
	require.NoError(t, err)
	require.Equal(t, byte(0x55), b)

	_, err = dev.ReadByte(8)
	require.Equal(t, ErrOutOfRange, err)
	_, err = dev.ReadByte(-1)
	require.Equal(t, ErrOutOfRange, err)
	require.Equal(t, ErrOutOfRange, dev.WriteByte(8, 0))
}

func TestMemDeviceFrom(t *testing.T) {
	seed := []byte{1, 2, 3}
	dev := NewMemDeviceFrom(seed)
	seed[0] = 9 // device keeps its own copy
	b, err := dev.ReadByte(0)
	require.NoError(t, err)
	require.Equal(t, byte(1), b)
}

func TestReadFullWriteRange(t *testing.T) {
	dev := NewMemDevice(6)
	require.NoError(t, WriteRange(dev, 2, []byte{7, 8, 9}))
	buf, err := ReadFull(dev)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 7, 8, 9, 0}, buf)
	require.Equal(t, ErrOutOfRange, WriteRange(dev, 4, []byte{1, 2, 3}))
}

func TestFileDevice(t *testing.T) {
	dir, err := ioutil.TempDir("", "paramstore")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "params.img")

	dev, err := OpenFileDevice(path, 16)
	require.NoError(t, err)
	require.Equal(t, 16, dev.Size())
	require.NoError(t, dev.WriteByte(3, 0x42))
	require.NoError(t, dev.Sync())
	require.NoError(t, dev.Close())

	// content survives reopen
	dev, err = OpenFileDevice(path, 16)
	require.NoError(t, err)
	b, err := dev.ReadByte(3)
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b)
	b, err = dev.ReadByte(15)
	require.NoError(t, err)
	require.Equal(t, byte(0), b)
	require.NoError(t, dev.Close())

	// refuse to shrink an existing image
	_, err = OpenFileDevice(path, 8)
	require.Error(t, err)
}
