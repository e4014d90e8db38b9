package gobwas

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

func TestWebSocketCodec(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	clientCodec := clientWebSocketCodec(c1)
	serverCodec := serverWebSocketCodec(c2)

	go clientCodec.WriteMessage(json.RawMessage(`{"jsonrpc":"2.0","method":"foo"}`))
	msg, err := serverCodec.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != `{"jsonrpc":"2.0","method":"foo"}` {
		t.Errorf("wrong message: %s", msg)
	}

	go serverCodec.WriteMessage(json.RawMessage(`{"jsonrpc":"2.0","result":"bar","id":1}`))
	msg, err = clientCodec.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(msg) != `{"jsonrpc":"2.0","result":"bar","id":1}` {
		t.Errorf("wrong message: %s", msg)
	}
}

type Echo struct{}

func (e *Echo) Echo(s string) string {
	return s
}

func TestWebsocketHandler(t *testing.T) {
	srv := &jsonrpc2.Server{}
	if err := srv.Register("", &Echo{}); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(WebsocketHandler(srv))
	defer ts.Close()

	codec, err := WebSocketDial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	remote := &jsonrpc2.Remote{Codec: codec}
	defer remote.Close()
	go remote.Serve()

	var got string
	if err := remote.Call(context.Background(), &got, "echo", "hello"); err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("got: %q; want %q", got, "hello")
	}
}
