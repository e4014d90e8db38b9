package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vipnode/jsonrpc/internal/kvstore"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gobwas"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gorilla"
)

func newTestServer(t *testing.T, wsImpl string) *httptest.Server {
	t.Helper()
	upgrader, err := findUpgrader(wsImpl)
	if err != nil {
		t.Fatal(err)
	}
	handler := newServer(upgrader)
	handler.header.Set("Access-Control-Allow-Origin", "*")
	store := kvstore.MemoryStore()
	t.Cleanup(func() { store.Close() })
	if err := registerServices(&handler.Server, store); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestServerHTTP(t *testing.T) {
	ts := newTestServer(t, "gorilla")

	service := &jsonrpc2.HTTPService{Endpoint: ts.URL}
	ctx := context.Background()

	var sum int64
	if err := service.Call(ctx, &sum, "addArray", 2, 3); err != nil {
		t.Fatal(err)
	}
	if sum != 5 {
		t.Errorf("addArray: got %d; want 5", sum)
	}

	if err := service.Call(ctx, nil, "kv_set", "greeting", "hi"); err != nil {
		t.Fatal(err)
	}
	var got string
	if err := service.Call(ctx, &got, "kv_get", "greeting"); err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Errorf("kv_get: got %q; want %q", got, "hi")
	}

	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"ping","id":1}`))
	if err != nil {
		t.Fatal(err)
	}
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := resp.Header.Get("Access-Control-Allow-Origin"), "*"; got != want {
		t.Errorf("allow origin header: got %q; want %q", got, want)
	}
	if got, want := string(body), `{"jsonrpc":"2.0","result":"pong","id":1}`; got != want {
		t.Errorf("ping: got %s; want %s", got, want)
	}
}

func TestServerStatus(t *testing.T) {
	ts := newTestServer(t, "gorilla")

	testcases := []struct {
		Method string
		Header string
		Status int
	}{
		{http.MethodGet, "", http.StatusBadRequest},
		{http.MethodGet, "keep-alive", http.StatusBadRequest},
		{http.MethodOptions, "", http.StatusNoContent},
		{http.MethodPut, "", http.StatusMethodNotAllowed},
	}

	for i, tc := range testcases {
		req, err := http.NewRequest(tc.Method, ts.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		if tc.Header != "" {
			req.Header.Set("Connection", tc.Header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.Status {
			t.Errorf("[case %d] %s: got status %d; want %d", i, tc.Method, resp.StatusCode, tc.Status)
		}
	}
}

func TestServerWebSocket(t *testing.T) {
	dialers := map[string]func(context.Context, string) (jsonrpc2.Codec, error){
		"gorilla": gorilla.WebSocketDial,
		"gobwas":  gobwas.WebSocketDial,
	}
	for name, dial := range dialers {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, name)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			codec, err := dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"))
			if err != nil {
				t.Fatal(err)
			}
			remote := &jsonrpc2.Remote{Codec: codec}
			defer remote.Close()
			go remote.Serve()

			var quotient int64
			if err := remote.Call(ctx, &quotient, "divideArray", 12, 4); err != nil {
				t.Fatal(err)
			}
			if quotient != 3 {
				t.Errorf("divideArray: got %d; want 3", quotient)
			}

			params, err := jsonrpc2.NamedParamsOf(map[string]string{"msg": "hello"})
			if err != nil {
				t.Fatal(err)
			}
			var echoed map[string]string
			if err := remote.CallParams(ctx, &echoed, "echoObj", params); err != nil {
				t.Fatal(err)
			}
			if echoed["msg"] != "hello" {
				t.Errorf("echoObj: got %v", echoed)
			}

			err = remote.Call(ctx, nil, "divideArray", 1, 0)
			var rpcErr *jsonrpc2.Error
			if !errors.As(err, &rpcErr) || rpcErr.Code != -32003 {
				t.Errorf("divideArray by zero: got %v; want code -32003", err)
			}
		})
	}
}

func TestFindUpgrader(t *testing.T) {
	for _, name := range []string{"gorilla", "gobwas"} {
		if _, err := findUpgrader(name); err != nil {
			t.Errorf("findUpgrader(%q): %s", name, err)
		}
	}
	if _, err := findUpgrader("nope"); err == nil {
		t.Error("findUpgrader(nope): expected an error")
	}
}

func TestParseArgs(t *testing.T) {
	testcases := []struct {
		Args  []string
		Named bool
		Want  string
	}{
		{nil, false, `[]`},
		{[]string{"1", "2"}, false, `[1,2]`},
		{[]string{"hello", `"quoted"`, "true"}, false, `["hello","quoted",true]`},
		{[]string{`{"a":1}`}, false, `[{"a":1}]`},
		{[]string{`{"a":1}`}, true, `{"a":1}`},
	}

	for i, tc := range testcases {
		params, err := parseArgs(tc.Args, tc.Named)
		if err != nil {
			t.Errorf("[case %d] unexpected error: %s", i, err)
			continue
		}
		got, err := json.Marshal(params)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tc.Want {
			t.Errorf("[case %d] got %s; want %s", i, got, tc.Want)
		}
	}

	if _, err := parseArgs([]string{"1", "2"}, true); err == nil {
		t.Error("named params with two args: expected an error")
	}
	if _, err := parseArgs([]string{"[1]"}, true); err == nil {
		t.Error("named params with an array: expected an error")
	}
}

func TestExplain(t *testing.T) {
	testcases := []struct {
		Err     error
		Contain string
	}{
		{jsonrpc2.ErrTimeout, "--timeout"},
		{jsonrpc2.ErrClosed, "abandoned"},
		{jsonrpc2.ErrMethodNotFound("nope"), "does not have this method"},
		{jsonrpc2.ErrInvalidParams("bad"), "--named"},
		{jsonrpc2.NewError(-32003, "divided by zero", nil), "code -32003"},
		{&jsonrpc2.TransportError{Err: jsonrpc2.HTTPRequestError{Reason: "bad status code: 429"}}, "rate limited"},
		{ErrExplain{errors.New("oops"), "already explained"}, "already explained"},
		{errors.New("mystery"), "missing an explanation"},
	}

	for i, tc := range testcases {
		got := explain(tc.Err).Error()
		if !strings.Contains(got, tc.Contain) {
			t.Errorf("[case %d] got %q; want it to contain %q", i, got, tc.Contain)
		}
		if !errors.Is(explain(tc.Err), tc.Err) {
			t.Errorf("[case %d] explained error does not wrap its cause", i)
		}
	}
}
