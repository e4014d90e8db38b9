package jsonrpc2

import (
	"context"
	"errors"
)

var _ Service = &Local{}

// Local is a Service implementation for a local Server. It's like a Remote, but
// without a Codec: calls are still encoded and decoded, so they exercise the
// same wire path as a connection does.
type Local struct {
	Client
	Server
}

var errNoResponse = errors.New("no response for call")

func (loc *Local) serve(ctx context.Context, msg interface{}) []byte {
	var raw []byte
	var err error
	switch m := msg.(type) {
	case *Message:
		raw, err = Encode(m)
	case Batch:
		raw, err = EncodeBatch(m)
	}
	if err != nil {
		logger.Printf("Local: Failed to encode: %s", err)
		return nil
	}
	ctx = context.WithValue(ctx, ctxService, loc)
	return loc.Server.ServePayload(ctx, raw)
}

func (loc *Local) deliver(out []byte, pending ...*Pending) {
	if out != nil {
		if _, err := loc.Client.DeliverPayload(out); err != nil {
			logger.Printf("Local: Failed to deliver: %s", err)
		}
	}
	for _, p := range pending {
		if p == nil {
			continue
		}
		select {
		case <-p.Done():
		default:
			loc.Client.pending.cancel(p, &TransportError{Err: errNoResponse})
		}
	}
}

func (loc *Local) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	p, err := TupleParams(params...)
	if err != nil {
		return err
	}
	return loc.CallParams(ctx, result, method, p)
}

// CallParams is Call with params that are already normalized.
func (loc *Local) CallParams(ctx context.Context, result interface{}, method string, params Params) error {
	msg, pending, err := loc.Client.Call(0, method, params)
	if err != nil {
		return err
	}
	loc.deliver(loc.serve(ctx, msg), pending)
	return pending.Result(ctx, result)
}

func (loc *Local) Notify(ctx context.Context, method string, params ...interface{}) error {
	p, err := TupleParams(params...)
	if err != nil {
		return err
	}
	msg, err := loc.Client.Notification(0, method, p)
	if err != nil {
		return err
	}
	_ = loc.serve(ctx, msg)
	return nil
}

// Batch dispatches the calls as one batch. The returned entries are already
// resolved, nil for notifications.
func (loc *Local) Batch(ctx context.Context, calls ...BatchCall) ([]*Pending, error) {
	batch, pending, err := loc.Client.Batch(calls...)
	if err != nil {
		return nil, err
	}
	loc.deliver(loc.serve(ctx, batch), pending...)
	return pending, nil
}
