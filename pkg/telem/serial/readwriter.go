// Package serial carries link packets over a serial telemetry radio.
//
// The byte stream is framed with start/end/escape markers and each frame
// carries a Fletcher-16 trailer, so frames corrupted on the air are
// dropped instead of delivered.
package serial

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/param.go/pkg/checksum"
)

// Framing markers. Any of them occurring in the payload is escaped.
const (
	markSOF byte = 0xF7
	markEOF byte = 0x7F
	markESC byte = 0x7D
)

// ReadWriter implements telem.PacketReadWriter over a byte stream.
type ReadWriter struct {
	rw io.ReadWriteCloser
	br *bufio.Reader
}

// New wraps a byte stream.
func New(rw io.ReadWriteCloser) *ReadWriter {
	return &ReadWriter{rw: rw, br: bufio.NewReader(rw)}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 0, 2*len(pkt)+7)
	buf = append(buf, markSOF)
	for _, b := range pkt {
		buf = appendEscaped(buf, b)
	}
	sum := checksum.Compute(pkt)
	buf = appendEscaped(buf, byte(sum>>8))
	buf = appendEscaped(buf, byte(sum))
	buf = append(buf, markEOF)
	_, err := p.rw.Write(buf)
	return err
}

// ReadPacket implements PacketReader. It scans past noise between frames
// and silently drops frames whose trailer does not validate.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	for {
		if err := p.seekSOF(); err != nil {
			return nil, err
		}
		frame, err := p.readFrame()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue // resynced on an unexpected SOF
		}
		if len(frame) < 2 {
			glog.Warning("runt frame dropped")
			continue
		}
		payload := frame[:len(frame)-2]
		sum := binary.BigEndian.Uint16(frame[len(frame)-2:])
		if checksum.Compute(payload) != sum {
			glog.Warningf("frame checksum mismatch, %d bytes dropped", len(payload))
			continue
		}
		return payload, nil
	}
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.rw.Close()
}

func appendEscaped(buf []byte, b byte) []byte {
	if b == markSOF || b == markEOF || b == markESC {
		buf = append(buf, markESC)
	}
	return append(buf, b)
}

func (p *ReadWriter) seekSOF() error {
	for {
		b, err := p.br.ReadByte()
		if err != nil {
			return err
		}
		if b == markSOF {
			return nil
		}
	}
}

// readFrame collects unescaped bytes until EOF-marker. A bare SOF inside
// a frame means the previous frame was truncated; nil is returned and the
// reader is already positioned at the new frame's first byte.
func (p *ReadWriter) readFrame() ([]byte, error) {
	var frame []byte
	for {
		b, err := p.br.ReadByte()
		if err != nil {
			return nil, err
		}
		switch b {
		case markEOF:
			return frame, nil
		case markSOF:
			glog.Warning("truncated frame dropped")
			if err = p.br.UnreadByte(); err != nil {
				return nil, err
			}
			return nil, nil
		case markESC:
			if b, err = p.br.ReadByte(); err != nil {
				return nil, err
			}
			frame = append(frame, b)
		default:
			frame = append(frame, b)
		}
	}
}
