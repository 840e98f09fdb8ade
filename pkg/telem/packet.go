package telem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Link packet wire format: a one-byte op code followed by little-endian
// fields. Values are IEEE-754 single precision, matching the slot layout
// of the persisted image.
const (
	opSet   byte = 0x01 // ground -> vehicle: set one parameter
	opTable byte = 0x02 // vehicle -> ground: announce the full table
	opAck   byte = 0x03 // vehicle -> ground: confirm a persisted update
)

var (
	// ErrShortPacket indicates a packet too short for its op code.
	ErrShortPacket = errors.New("short packet")
	// ErrUnknownOp indicates an unrecognized op code.
	ErrUnknownOp = errors.New("unknown op code")
)

// SetPacket requests updating one parameter slot.
type SetPacket struct {
	Index uint16
	Value float32
}

// Bytes returns encoded bytes for sending.
func (p *SetPacket) Bytes() []byte {
	return encodeIndexValue(opSet, p.Index, p.Value)
}

// AckPacket confirms a persisted parameter update.
type AckPacket struct {
	Index uint16
	Value float32
}

// Bytes returns encoded bytes for sending.
func (p *AckPacket) Bytes() []byte {
	return encodeIndexValue(opAck, p.Index, p.Value)
}

// TablePacket announces the full parameter table.
type TablePacket struct {
	Values []float32
}

// Bytes returns encoded bytes for sending.
func (p *TablePacket) Bytes() []byte {
	b := make([]byte, 3+4*len(p.Values))
	b[0] = opTable
	binary.LittleEndian.PutUint16(b[1:], uint16(len(p.Values)))
	for i, v := range p.Values {
		binary.LittleEndian.PutUint32(b[3+4*i:], math.Float32bits(v))
	}
	return b
}

func encodeIndexValue(op byte, index uint16, value float32) []byte {
	b := make([]byte, 7)
	b[0] = op
	binary.LittleEndian.PutUint16(b[1:], index)
	binary.LittleEndian.PutUint32(b[3:], math.Float32bits(value))
	return b
}

func decodeIndexValue(pkt []byte) (uint16, float32, error) {
	if len(pkt) != 7 {
		return 0, 0, ErrShortPacket
	}
	index := binary.LittleEndian.Uint16(pkt[1:])
	value := math.Float32frombits(binary.LittleEndian.Uint32(pkt[3:]))
	return index, value, nil
}

// Decode parses a received packet into one of the packet types.
func Decode(pkt []byte) (interface{}, error) {
	if len(pkt) == 0 {
		return nil, ErrShortPacket
	}
	switch pkt[0] {
	case opSet:
		index, value, err := decodeIndexValue(pkt)
		if err != nil {
			return nil, err
		}
		return &SetPacket{Index: index, Value: value}, nil
	case opAck:
		index, value, err := decodeIndexValue(pkt)
		if err != nil {
			return nil, err
		}
		return &AckPacket{Index: index, Value: value}, nil
	case opTable:
		if len(pkt) < 3 {
			return nil, ErrShortPacket
		}
		count := int(binary.LittleEndian.Uint16(pkt[1:]))
		if len(pkt) != 3+4*count {
			return nil, fmt.Errorf("table packet length %d, want %d", len(pkt), 3+4*count)
		}
		values := make([]float32, count)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(pkt[3+4*i:]))
		}
		return &TablePacket{Values: values}, nil
	}
	return nil, ErrUnknownOp
}
