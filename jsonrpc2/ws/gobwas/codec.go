package gobwas

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	rpcws "github.com/vipnode/jsonrpc/jsonrpc2/ws"
)

// WebSocketDial returns a Codec that wraps a client-side connection with JSON
// encoding and decoding.
func WebSocketDial(ctx context.Context, url string) (jsonrpc2.Codec, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return newCodec(conn, br, true), nil
}

func clientWebSocketCodec(conn net.Conn) *wsCodec {
	return newCodec(conn, nil, true)
}

// serverWebSocketCodec returns a server-side Codec that wraps JSON encoding and
// decoding over a websocket connection.
func serverWebSocketCodec(conn net.Conn) *wsCodec {
	return newCodec(conn, nil, false)
}

func newCodec(conn net.Conn, br *bufio.Reader, client bool) *wsCodec {
	codec := &wsCodec{conn: conn, client: client}
	var r io.Reader = conn
	if br != nil {
		// Frames that arrived with the handshake are buffered here.
		r = br
	}
	codec.rw = struct {
		io.Reader
		io.Writer
	}{r, lockedWriter{&codec.mu, conn}}
	return codec
}

// lockedWriter serializes control frame replies with our own writes.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (lw lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

var _ jsonrpc2.Codec = &wsCodec{}

type wsCodec struct {
	mu     sync.Mutex
	conn   net.Conn
	rw     io.ReadWriter
	client bool
}

func (codec *wsCodec) ReadMessage() (json.RawMessage, error) {
	var data []byte
	var err error
	if codec.client {
		data, _, err = wsutil.ReadServerData(codec.rw)
	} else {
		data, _, err = wsutil.ReadClientData(codec.rw)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (codec *wsCodec) WriteMessage(raw json.RawMessage) error {
	codec.mu.Lock()
	defer codec.mu.Unlock()
	if codec.client {
		return wsutil.WriteClientMessage(codec.conn, ws.OpText, raw)
	}
	return wsutil.WriteServerMessage(codec.conn, ws.OpText, raw)
}

func (codec *wsCodec) Close() error {
	return codec.conn.Close()
}

var _ rpcws.Upgrader = &Upgrader{}

// Upgrader upgrades an HTTP request to a WebSocket request and returns the
// appropriate jsonrpc2 codec.
type Upgrader struct {
	Upgrader ws.HTTPUpgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter, h http.Header) (jsonrpc2.Codec, error) {
	upgrader := u.Upgrader
	if h != nil {
		upgrader.Header = h
	}
	conn, rw, _, err := upgrader.Upgrade(r, w)
	if err != nil {
		return nil, err
	}
	var br *bufio.Reader
	if rw != nil && rw.Reader.Buffered() > 0 {
		br = rw.Reader
	}
	return newCodec(conn, br, false), nil
}

// WebsocketHandler serves srv to websocket clients.
func WebsocketHandler(srv *jsonrpc2.Server) http.HandlerFunc {
	return rpcws.Handler(&Upgrader{}, srv)
}
