package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gobwas"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gorilla"
)

// callService is the common surface of the HTTP and WebSocket transports.
type callService interface {
	jsonrpc2.Service
	CallParams(ctx context.Context, result interface{}, method string, params jsonrpc2.Params) error
	Notify(ctx context.Context, method string, params ...interface{}) error
}

// parseArgs turns command line arguments into params. Arguments that are not
// valid JSON are sent as strings.
func parseArgs(args []string, named bool) (jsonrpc2.Params, error) {
	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if json.Valid([]byte(arg)) {
			values = append(values, json.RawMessage(arg))
		} else {
			values = append(values, arg)
		}
	}
	if !named {
		return jsonrpc2.TupleParams(values...)
	}
	if len(values) != 1 {
		return jsonrpc2.Params{}, ErrExplain{
			fmt.Errorf("named params take exactly one argument, got %d", len(values)),
			`Pass a single JSON object, such as '{"msg": "hello"}'.`,
		}
	}
	return jsonrpc2.NamedParamsOf(values[0])
}

func dialService(ctx context.Context, endpoint string, wsImpl string, version jsonrpc2.Version) (callService, func() error, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, err
	}
	switch u.Scheme {
	case "http", "https":
		service := &jsonrpc2.HTTPService{
			Client:   jsonrpc2.Client{Version: version},
			Endpoint: endpoint,
		}
		return service, func() error { return nil }, nil
	case "ws", "wss":
		var codec jsonrpc2.Codec
		switch wsImpl {
		case "gorilla":
			codec, err = gorilla.WebSocketDial(ctx, endpoint)
		case "gobwas":
			codec, err = gobwas.WebSocketDial(ctx, endpoint)
		default:
			return nil, nil, fmt.Errorf("unknown websocket implementation: %q", wsImpl)
		}
		if err != nil {
			return nil, nil, ErrExplain{err, "Failed to connect to the WebSocket endpoint."}
		}
		remote := &jsonrpc2.Remote{
			Codec:  jsonrpc2.DebugCodec(endpoint, codec),
			Client: &jsonrpc2.Client{Version: version},
		}
		go func() {
			if err := remote.Serve(); err != nil {
				logger.Debugf("WebSocket session ended: %s", err)
			}
		}()
		return remote, remote.Close, nil
	}
	return nil, nil, ErrExplain{
		fmt.Errorf("unsupported endpoint scheme: %q", u.Scheme),
		"Use an http://, https://, ws:// or wss:// endpoint.",
	}
}

func runCall(options Options) error {
	opts := options.Call
	params, err := parseArgs(opts.Args.Params, opts.Named)
	if err != nil {
		return err
	}
	version := jsonrpc2.Version2
	if opts.V1 {
		version = jsonrpc2.Version1
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	service, closer, err := dialService(ctx, opts.Args.Endpoint, opts.WebSocket, version)
	if err != nil {
		return err
	}
	defer closer()

	logger.Infof("Calling %s on %s (%s params)", opts.Args.Method, opts.Args.Endpoint, params.Kind)
	if opts.Notify {
		if params.Kind == jsonrpc2.NamedParams {
			return ErrExplain{
				fmt.Errorf("named notifications are not supported"),
				"Drop --named or --notify.",
			}
		}
		values := make([]interface{}, 0, len(params.Positional))
		for _, raw := range params.Positional {
			values = append(values, raw)
		}
		return service.Notify(ctx, opts.Args.Method, values...)
	}

	var result json.RawMessage
	if err := service.CallParams(ctx, &result, opts.Args.Method, params); err != nil {
		return err
	}
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, result, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(os.Stdout)
	return err
}
