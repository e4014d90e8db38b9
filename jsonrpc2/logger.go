package jsonrpc2

import (
	"io"
	"io/ioutil"
	"log"
)

var logger *log.Logger

// SetLogger overrides the logger output for this package. Anomalies such as
// unmatched responses and failed notifications are logged here.
func SetLogger(w io.Writer) {
	logger = log.New(w, "[jsonrpc2] ", log.Flags())
}

func init() {
	SetLogger(ioutil.Discard)
}
