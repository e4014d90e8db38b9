package kvstore

import (
	"io"
	"io/ioutil"
	"log"
)

var logger *log.Logger

// SetLogger overrides the logger output for this package.
func SetLogger(w io.Writer) {
	logger = log.New(w, "[kvstore] ", log.Flags())
}

func init() {
	SetLogger(ioutil.Discard)
}
