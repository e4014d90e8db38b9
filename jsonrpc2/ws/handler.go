package ws

import (
	"io"
	"net/http"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

const (
	// PendingLimit is the number of outbound calls a connection holds before
	// the oldest get discarded.
	PendingLimit = 50
	// PendingDiscard is the number of oldest calls discarded at the limit.
	PendingDiscard = 10
)

// Handler returns an http.HandlerFunc that upgrades each request with u and
// serves srv over the connection until it closes. Handlers of srv can call
// back into the peer through jsonrpc2.CtxService.
func Handler(u Upgrader, srv *jsonrpc2.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codec, err := u.Upgrade(r, w, nil)
		if err != nil {
			logger.Printf("websocket upgrade error from %s: %s", r.RemoteAddr, err)
			return
		}
		defer codec.Close()
		remote := &jsonrpc2.Remote{
			Codec:  jsonrpc2.DebugCodec(r.RemoteAddr, codec),
			Server: srv,
			Client: &jsonrpc2.Client{
				PendingLimit:   PendingLimit,
				PendingDiscard: PendingDiscard,
			},
		}
		if err := remote.Serve(); err != nil && err != io.EOF {
			logger.Printf("jsonrpc2.Remote.Serve() error from %s: %s", r.RemoteAddr, err)
		}
	}
}
