package arith

import (
	"io"
	"io/ioutil"
	"log"
)

var logger *log.Logger

// SetLogger overrides the logger output for this package.
func SetLogger(w io.Writer) {
	logger = log.New(w, "[arith] ", log.Flags())
}

func init() {
	SetLogger(ioutil.Discard)
}
