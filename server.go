package main

import (
	"net/http"
	"strings"

	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws"
)

// server routes POST requests to the HTTP transport and WebSocket upgrade
// requests to a bidirectional session, both backed by the same registry.
type server struct {
	jsonrpc2.HTTPServer
	header http.Header
	ws     http.HandlerFunc
}

func newServer(upgrader ws.Upgrader) *server {
	s := &server{header: http.Header{}}
	s.ws = ws.Handler(upgrader, &s.HTTPServer.Server)
	return s
}

func isUpgrade(r *http.Request) bool {
	for _, v := range r.Header.Values("Connection") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
				return true
			}
		}
	}
	return false
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, values := range s.header {
		for _, v := range values {
			w.Header().Set(k, v)
		}
	}
	switch r.Method {
	case http.MethodPost:
		// Assume RPC over HTTP
		s.HTTPServer.ServeHTTP(w, r)
	case http.MethodGet:
		if !isUpgrade(r) {
			http.Error(w, "expected a websocket upgrade or a POST request", http.StatusBadRequest)
			return
		}
		logger.Debugf("WebSocket session from %s", r.RemoteAddr)
		s.ws(w, r)
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
	}
}
