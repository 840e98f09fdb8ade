package telem

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/param.go/pkg/framework"
)

// PacketLink implements Link over a PacketReadWriter transport.
//
// Incoming set requests are queued; the tuner drains them one per update
// cycle. Malformed packets are logged and dropped, never fatal to the
// link: a flying vehicle must tolerate a noisy ground channel.
type PacketLink struct {
	rw PacketReadWriter

	lock    sync.Mutex
	params  []float32
	pending []int
	queued  map[int]bool
}

// NewPacketLink creates a PacketLink.
func NewPacketLink(rw PacketReadWriter) *PacketLink {
	return &PacketLink{
		rw:     rw,
		queued: make(map[int]bool),
	}
}

// SetParams implements Link.
func (l *PacketLink) SetParams(values []float32) error {
	l.lock.Lock()
	l.params = make([]float32, len(values))
	copy(l.params, values)
	pkt := &TablePacket{Values: values}
	l.lock.Unlock()
	return l.rw.WritePacket(pkt.Bytes())
}

// UpdatedParam implements Link.
func (l *PacketLink) UpdatedParam() (int, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.pending) == 0 {
		return -1, false
	}
	i := l.pending[0]
	l.pending = l.pending[1:]
	delete(l.queued, i)
	return i, true
}

// Param implements Link.
func (l *PacketLink) Param(i int) float32 {
	l.lock.Lock()
	defer l.lock.Unlock()
	if i < 0 || i >= len(l.params) {
		return 0
	}
	return l.params[i]
}

// AckParam implements Acker.
func (l *PacketLink) AckParam(i int, v float32) error {
	pkt := &AckPacket{Index: uint16(i), Value: v}
	return l.rw.WritePacket(pkt.Bytes())
}

// Run implements Runnable. It reads packets until the context is canceled
// or the transport fails.
func (l *PacketLink) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, l, func() error {
		for {
			pkt, err := l.rw.ReadPacket()
			if err != nil {
				return err
			}
			msg, err := Decode(pkt)
			if err != nil {
				glog.Warningf("bad link packet dropped: %v", err)
				continue
			}
			if set, ok := msg.(*SetPacket); ok {
				l.handleSet(set)
			}
		}
	})
}

// AddToLoop implements LoopAdder.
func (l *PacketLink) AddToLoop(loop *fx.Loop) {
	if adder, ok := l.rw.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := l.rw.(fx.Runnable); ok {
		loop.AddRunnable(fx.NamedRun("link-transport", runnable))
	}
	loop.AddRunnable(fx.NamedRun("packet-link", l))
}

// Close implements io.Closer, closing the transport if it supports it.
func (l *PacketLink) Close() error {
	if closer, ok := l.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (l *PacketLink) handleSet(pkt *SetPacket) {
	l.lock.Lock()
	defer l.lock.Unlock()
	i := int(pkt.Index)
	if i >= len(l.params) {
		glog.Warningf("set request for unknown slot %d dropped", i)
		return
	}
	l.params[i] = pkt.Value
	if !l.queued[i] {
		l.queued[i] = true
		l.pending = append(l.pending, i)
	}
	glog.V(2).Infof("set request param[%d] = %g", i, pkt.Value)
}
