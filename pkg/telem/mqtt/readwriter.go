package mqtt

import (
	"context"
	"io"
	"sync"
)

// ReadWriter implements telem.PacketReadWriter over a pair of topics:
// set requests arrive on SubTopic, table/ack reports go out on PubTopic.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	lock     sync.Mutex
	closed   bool
	packetCh chan []byte
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{Queue: q, packetCh: make(chan []byte, 1)}
}

// ForVehicle sets topics using the default convention:
// SubTopic = id/set, PubTopic = id/report.
func (p *ReadWriter) ForVehicle(id string) *ReadWriter {
	p.SubTopic, p.PubTopic = id+"/set", id+"/report"
	return p
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.packetCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return p.Queue.Pub(p.PubTopic, pkt)
}

// Run implements Runnable, holding the subscription until canceled.
func (p *ReadWriter) Run(ctx context.Context) error {
	if err := p.Queue.Sub(p.SubTopic, p.handleMsg); err != nil {
		return err
	}
	<-ctx.Done()
	p.Queue.Unsub(p.SubTopic)
	p.lock.Lock()
	p.closed = true
	close(p.packetCh)
	p.lock.Unlock()
	return ctx.Err()
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.Queue.Close()
}

// handleMsg runs on the mqtt client's dispatch goroutine; a message can
// still be in flight after Unsub, so the send is guarded against the
// channel being closed.
func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return
	}
	p.packetCh <- payload
}
