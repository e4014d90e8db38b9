package kvstore

import (
	"context"
	"testing"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

func TestService(t *testing.T) {
	rpc := jsonrpc2.Local{}
	store := MemoryStore()
	defer store.Close()
	if err := Register(&rpc.Server, store); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	type config struct {
		Name  string `json:"name"`
		Ports []int  `json:"ports"`
	}
	want := config{Name: "node", Ports: []int{80, 443}}
	if err := rpc.Call(ctx, nil, "kv_set", "cfg", want); err != nil {
		t.Fatal(err)
	}

	var got config
	if err := rpc.Call(ctx, &got, "kv_get", "cfg"); err != nil {
		t.Fatal(err)
	}
	if got.Name != want.Name || len(got.Ports) != 2 || got.Ports[1] != 443 {
		t.Errorf("got: %+v; want %+v", got, want)
	}

	if err := rpc.Call(ctx, nil, "kv_delete", "cfg"); err != nil {
		t.Fatal(err)
	}
	err := rpc.Call(ctx, &got, "kv_get", "cfg")
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok || rpcErr.Code != ErrCodeNotFound {
		t.Errorf("expected a not found error, got: %v", err)
	} else if string(rpcErr.Data) != `"cfg"` {
		t.Errorf("error data should name the key: %s", rpcErr.Data)
	}

	err = rpc.Call(ctx, nil, "kv_set", "", 1)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.ErrCodeInvalidParams {
		t.Errorf("expected an invalid params error, got: %v", err)
	}
}
