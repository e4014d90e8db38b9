package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// ServePipe sets up symmetric server/clients over a net.Pipe() and starts
// both in goroutines. Useful for testing. Services still need to be registered.
func ServePipe() (*Remote, *Remote) {
	c1, c2 := net.Pipe()
	client := Remote{
		Codec:  IOCodec(c1),
		Client: &Client{},
		Server: &Server{},
	}
	server := Remote{
		Codec:  IOCodec(c2),
		Client: &Client{},
		Server: &Server{},
	}
	go server.Serve()
	go client.Serve()
	return &server, &client
}

// ErrContextMissingValue is returned when a context is missing an expected value.
type ErrContextMissingValue struct {
	Key serviceContext
}

func (err ErrContextMissingValue) Error() string {
	return fmt.Sprintf("context missing value: %s", err.Key)
}

type serviceContext string

var ctxService serviceContext = "service"

// CtxService returns a Service associated with this request from a context
// used within a call. This is useful for initiating bidirectional calls.
func CtxService(ctx context.Context) (Service, error) {
	s, ok := ctx.Value(ctxService).(Service)
	if !ok {
		return nil, ErrContextMissingValue{ctxService}
	}
	return s, nil
}

// Service represents a remote service that can be called.
type Service interface {
	Call(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

var _ Service = &Remote{}

// Remote is a wrapper around a connection that can be both a Client and a
// Server. It implements the Service interface, and manages async message
// routing: inbound requests go to Server, inbound responses go to Client.
type Remote struct {
	Codec
	Client *Client
	Server *Server

	once    sync.Once
	writeMu sync.Mutex
}

func (r *Remote) init() {
	r.once.Do(func() {
		if r.Client == nil {
			r.Client = &Client{}
		}
		if r.Server == nil {
			r.Server = &Server{}
		}
	})
}

func (r *Remote) write(raw []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.Codec.WriteMessage(raw)
}

// Serve reads payloads until the codec fails, at which point every pending
// call is resolved with ErrClosed and the read error is returned.
func (r *Remote) Serve() error {
	r.init()
	for {
		if err := r.serveOne(); err != nil {
			r.Client.Close()
			return err
		}
	}
}

func (r *Remote) serveOne() error {
	raw, err := r.Codec.ReadMessage()
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			r.writeError(ErrParse(err.Error()))
		}
		return err
	}

	payload, err := Decode(raw)
	if err != nil {
		rpcErr, ok := asRPCError(err)
		if !ok {
			rpcErr = ErrParse(err.Error())
		}
		r.writeError(rpcErr)
		return nil
	}

	var requests, responses []Item
	for _, item := range payload.Items {
		if item.IsResponse() {
			responses = append(responses, item)
		} else {
			requests = append(requests, item)
		}
	}
	if len(responses) > 0 {
		r.Client.deliverItems(responses)
	}
	if len(requests) > 0 {
		go r.handleRequests(&Payload{Batch: payload.Batch, Items: requests})
	}
	return nil
}

func (r *Remote) writeError(rpcErr *Error) {
	out := r.Server.encode(NewErrorResponse(NullID(), Version2, rpcErr))
	if out == nil {
		return
	}
	if err := r.write(out); err != nil {
		logger.Printf("Remote.Serve(): Failed to write error response: %s", err)
	}
}

func (r *Remote) handleRequests(payload *Payload) {
	ctx := context.WithValue(context.Background(), ctxService, r)
	out := r.Server.encodeResponses(payload.Batch, r.Server.HandlePayload(ctx, payload))
	if out == nil {
		return
	}
	if err := r.write(out); err != nil {
		logger.Printf("Remote.Serve(): Failed to write response: %s", err)
	}
}

// Go sends a call and returns its Pending entry without waiting for the
// response. A version of zero uses the Client's version.
func (r *Remote) Go(version Version, method string, params Params) (*Pending, error) {
	r.init()
	msg, p, err := r.Client.Call(version, method, params)
	if err != nil {
		return nil, err
	}
	raw, err := Encode(msg)
	if err != nil {
		r.Client.Cancel(msg.ID, err)
		return nil, err
	}
	if err := r.write(raw); err != nil {
		terr := &TransportError{Err: err}
		r.Client.Cancel(msg.ID, terr)
		return nil, terr
	}
	return p, nil
}

// Call handles sending an RPC and receiving the corresponding response synchronously.
func (r *Remote) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	p, err := TupleParams(params...)
	if err != nil {
		return err
	}
	return r.CallParams(ctx, result, method, p)
}

// CallParams is Call with params that are already normalized, such as named
// params.
func (r *Remote) CallParams(ctx context.Context, result interface{}, method string, params Params) error {
	pending, err := r.Go(0, method, params)
	if err != nil {
		return err
	}
	return pending.Result(ctx, result)
}

// Notify sends a notification. No response is expected.
func (r *Remote) Notify(ctx context.Context, method string, params ...interface{}) error {
	r.init()
	p, err := TupleParams(params...)
	if err != nil {
		return err
	}
	msg, err := r.Client.Notification(0, method, p)
	if err != nil {
		return err
	}
	raw, err := Encode(msg)
	if err != nil {
		return err
	}
	if err := r.write(raw); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// Batch sends the calls as one batch and returns a Pending entry per element,
// nil for notifications.
func (r *Remote) Batch(calls ...BatchCall) ([]*Pending, error) {
	r.init()
	batch, pending, err := r.Client.Batch(calls...)
	if err != nil {
		return nil, err
	}
	raw, err := EncodeBatch(batch)
	if err != nil {
		r.Client.cancelAll(pending, err)
		return nil, err
	}
	if err := r.write(raw); err != nil {
		terr := &TransportError{Err: err}
		r.Client.cancelAll(pending, terr)
		return nil, terr
	}
	return pending, nil
}

// Close closes the codec and resolves pending calls with ErrClosed.
func (r *Remote) Close() error {
	r.init()
	err := r.Codec.Close()
	r.Client.Close()
	return err
}
