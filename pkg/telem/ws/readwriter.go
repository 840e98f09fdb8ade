// Package ws carries link packets over a websocket, for browser-based
// ground tools. Each websocket message is one packet; framing and
// integrity come with the websocket, so no extra trailer is added.
package ws

import "golang.org/x/net/websocket"

// ReadWriter implements telem.PacketReadWriter over a websocket
// connection.
type ReadWriter websocket.Conn

// New wraps an established websocket connection.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a ground station websocket endpoint,
// e.g. ws://host:port/param.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Handler adapts a per-connection callback into an http.Handler, for
// ground-side tools accepting vehicle connections.
func Handler(serve func(*ReadWriter)) websocket.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		serve(New(conn))
	})
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive(p.conn(), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(p.conn(), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.conn().Close()
}

func (p *ReadWriter) conn() *websocket.Conn {
	return (*websocket.Conn)(p)
}
