package telem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketEncoding(t *testing.T) {
	testCases := []struct {
		name   string
		bytes  []byte
		expect []byte
	}{
		{"set", (&SetPacket{Index: 3, Value: 1.5}).Bytes(), []byte{0x01, 3, 0, 0x00, 0x00, 0xC0, 0x3F}},
		{"ack", (&AckPacket{Index: 0x0102, Value: 0}).Bytes(), []byte{0x03, 0x02, 0x01, 0, 0, 0, 0}},
		{"empty table", (&TablePacket{}).Bytes(), []byte{0x02, 0, 0}},
		{"table", (&TablePacket{Values: []float32{1.5}}).Bytes(), []byte{0x02, 1, 0, 0x00, 0x00, 0xC0, 0x3F}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.bytes)
		})
	}
}

func TestDecode(t *testing.T) {
	msg, err := Decode((&SetPacket{Index: 7, Value: -2.25}).Bytes())
	require.NoError(t, err)
	require.Equal(t, &SetPacket{Index: 7, Value: -2.25}, msg)

	msg, err = Decode((&AckPacket{Index: 1, Value: 3}).Bytes())
	require.NoError(t, err)
	require.Equal(t, &AckPacket{Index: 1, Value: 3}, msg)

	msg, err = Decode((&TablePacket{Values: []float32{0, 4.5}}).Bytes())
	require.NoError(t, err)
	require.Equal(t, &TablePacket{Values: []float32{0, 4.5}}, msg)
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		pkt  []byte
	}{
		{"empty", nil},
		{"unknown op", []byte{0x7F}},
		{"short set", []byte{0x01, 0, 0}},
		{"long set", append((&SetPacket{}).Bytes(), 0)},
		{"short table header", []byte{0x02, 1}},
		{"table length mismatch", []byte{0x02, 2, 0, 1, 2, 3, 4}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.pkt)
			require.Error(t, err)
		})
	}
}
