package telem

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chanPipe is an in-memory PacketReadWriter for tests.
type chanPipe struct {
	in chan []byte

	lock    sync.Mutex
	written [][]byte
	closed  bool
}

func newChanPipe() *chanPipe {
	return &chanPipe{in: make(chan []byte, 16)}
}

func (p *chanPipe) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.in
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (p *chanPipe) WritePacket(pkt []byte) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.written = append(p.written, pkt)
	return nil
}

func (p *chanPipe) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.closed {
		p.closed = true
		close(p.in)
	}
	return nil
}

func (p *chanPipe) sent() [][]byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([][]byte(nil), p.written...)
}

func TestPacketLinkSetParams(t *testing.T) {
	pipe := newChanPipe()
	link := NewPacketLink(pipe)
	require.NoError(t, link.SetParams([]float32{1, 2.5}))
	require.Equal(t, [][]byte{(&TablePacket{Values: []float32{1, 2.5}}).Bytes()}, pipe.sent())
	require.Equal(t, float32(2.5), link.Param(1))
	require.Equal(t, float32(0), link.Param(5))
}

func TestPacketLinkUpdates(t *testing.T) {
	pipe := newChanPipe()
	link := NewPacketLink(pipe)
	require.NoError(t, link.SetParams(make([]float32, 4)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- link.Run(ctx) }()

	pipe.in <- []byte{0xEE, 1, 2}                        // malformed, dropped
	pipe.in <- (&SetPacket{Index: 9, Value: 1}).Bytes()  // unknown slot, dropped
	pipe.in <- (&SetPacket{Index: 2, Value: -4}).Bytes() // queued
	pipe.in <- (&SetPacket{Index: 2, Value: 8}).Bytes()  // coalesced with previous
	pipe.in <- (&SetPacket{Index: 0, Value: 1}).Bytes()  // queued

	require.Eventually(t, func() bool {
		link.lock.Lock()
		defer link.lock.Unlock()
		return len(link.pending) == 2
	}, time.Second, time.Millisecond)

	// at most one index per call, FIFO, latest value wins
	i, ok := link.UpdatedParam()
	require.True(t, ok)
	require.Equal(t, 2, i)
	require.Equal(t, float32(8), link.Param(2))

	i, ok = link.UpdatedParam()
	require.True(t, ok)
	require.Equal(t, 0, i)

	_, ok = link.UpdatedParam()
	require.False(t, ok)

	cancel()
	require.Equal(t, context.Canceled, <-done)
}

func TestPacketLinkAck(t *testing.T) {
	pipe := newChanPipe()
	link := NewPacketLink(pipe)
	require.NoError(t, link.AckParam(3, 7))
	require.Equal(t, [][]byte{(&AckPacket{Index: 3, Value: 7}).Bytes()}, pipe.sent())
}

func TestPacketLinkStopsOnTransportError(t *testing.T) {
	pipe := newChanPipe()
	link := NewPacketLink(pipe)
	pipe.Close()
	require.Equal(t, io.EOF, link.Run(context.Background()))
}
