package jsonrpc2

import (
	"encoding/json"
	"io"

	"github.com/vipnode/jsonrpc/internal/pretty"
)

// Codec is an abstraction for receiving and sending raw JSONRPC payloads,
// each one a single message or a batch. WriteMessage is not required to be
// safe for concurrent use, Remote serializes writes.
type Codec interface {
	ReadMessage() (json.RawMessage, error)
	WriteMessage(json.RawMessage) error
	Close() error
}

var _ Codec = &jsonCodec{}

// IOCodec returns a Codec that reads and writes a stream of JSON values,
// one payload per value.
func IOCodec(rwc io.ReadWriteCloser) *jsonCodec {
	return &jsonCodec{
		decoder: json.NewDecoder(rwc),
		encoder: json.NewEncoder(rwc),
		closer:  rwc,
	}
}

type jsonCodec struct {
	decoder    *json.Decoder
	encoder    *json.Encoder
	closer     io.Closer
	remoteAddr string
}

func (codec *jsonCodec) ReadMessage() (json.RawMessage, error) {
	var raw json.RawMessage
	if err := codec.decoder.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (codec *jsonCodec) WriteMessage(raw json.RawMessage) error {
	return codec.encoder.Encode(raw)
}

func (codec *jsonCodec) Close() error {
	return codec.closer.Close()
}

// RemoteAddr returns the address of the peer, if known.
func (codec *jsonCodec) RemoteAddr() string {
	return codec.remoteAddr
}

// debugMaxLen is the payload size past which DebugCodec logs a prefix only.
const debugMaxLen = 1024

// DebugCodec wraps a Codec and logs every payload read and written, labelled
// with the given name.
func DebugCodec(label string, codec Codec) Codec {
	return &debugCodec{Codec: codec, label: label}
}

type debugCodec struct {
	Codec
	label string
}

func (codec *debugCodec) ReadMessage() (json.RawMessage, error) {
	raw, err := codec.Codec.ReadMessage()
	if err != nil {
		logger.Printf("%s <- error: %s", codec.label, err)
		return raw, err
	}
	logger.Printf("%s <- %s", codec.label, pretty.Abbrev(string(raw), debugMaxLen))
	return raw, nil
}

func (codec *debugCodec) WriteMessage(raw json.RawMessage) error {
	logger.Printf("%s -> %s", codec.label, pretty.Abbrev(string(raw), debugMaxLen))
	return codec.Codec.WriteMessage(raw)
}
