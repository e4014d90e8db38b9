package main

import (
	"io"
	"io/ioutil"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	"github.com/vipnode/jsonrpc/internal/arith"
	"github.com/vipnode/jsonrpc/internal/echo"
	"github.com/vipnode/jsonrpc/internal/kvstore"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws"
)

var logger *golog.Logger

// SetLogger overrides the main logger of this command.
func SetLogger(l *golog.Logger) {
	logger = l
}

// enableDebugLogging points the loggers of the subpackages at w.
func enableDebugLogging(w io.Writer) {
	jsonrpc2.SetLogger(w)
	ws.SetLogger(w)
	arith.SetLogger(w)
	echo.SetLogger(w)
	kvstore.SetLogger(w)
}

func init() {
	// Set a default null logger
	SetLogger(golog.New(ioutil.Discard, log.Debug))
}
