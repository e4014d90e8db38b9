package jsonrpc2

import (
	"fmt"
	"sync/atomic"
)

// Client builds outbound requests and correlates inbound responses with
// their pending calls. It does no I/O: a transport such as Remote, Local or
// HTTPService sends what Call returns and hands what it receives to Deliver.
type Client struct {
	// Version is used for calls made with a zero Version (Version2 when unset).
	Version Version
	// StringIDs makes NextID return string ids of the form "id-N".
	StringIDs bool

	// PendingLimit is the number of calls to hold before the oldest calls get discarded.
	PendingLimit int
	// PendingDiscard is the number of oldest calls that get discarded when PendingLimit is reached.
	PendingDiscard int

	id      uint64
	pending pendingTable
}

// NextID returns a fresh request id. Ids are unique for the lifetime of the
// client.
func (c *Client) NextID() ID {
	n := atomic.AddUint64(&c.id, 1)
	if c.StringIDs {
		return StringID(fmt.Sprintf("id-%d", n))
	}
	return NumberID(int64(n))
}

func (c *Client) version(v Version) Version {
	if v != 0 {
		return v
	}
	return c.Version.orDefault()
}

func checkCallParams(version Version, params Params) (Params, error) {
	if version != Version1 {
		return params, nil
	}
	switch params.Kind {
	case NamedParams:
		return params, fmt.Errorf("jsonrpc2: version 1.0 does not support named params")
	case NoParams:
		return Params{Kind: PositionalParams, Positional: nil}, nil
	}
	return params, nil
}

// Request returns a request with positional params that is not tracked as
// pending. It suits transports that read the response synchronously.
func (c *Client) Request(method string, params ...interface{}) (*Message, error) {
	p, err := TupleParams(params...)
	if err != nil {
		return nil, err
	}
	version := c.version(0)
	if p, err = checkCallParams(version, p); err != nil {
		return nil, err
	}
	return &Message{
		Request: &Request{Method: method, Params: p},
		ID:      c.NextID(),
		Version: version,
	}, nil
}

// Call returns a request with a fresh id and the Pending entry that its
// response will resolve. The caller is responsible for sending the request.
func (c *Client) Call(version Version, method string, params Params) (*Message, *Pending, error) {
	version = c.version(version)
	params, err := checkCallParams(version, params)
	if err != nil {
		return nil, nil, err
	}
	msg := &Message{
		Request: &Request{Method: method, Params: params},
		ID:      c.NextID(),
		Version: version,
	}
	p := newPending(msg, &c.pending)
	if err := c.pending.add(p, c.PendingLimit, c.PendingDiscard); err != nil {
		return nil, nil, err
	}
	return msg, p, nil
}

// Notification returns a request without an id. Notifications require
// version 2.0.
func (c *Client) Notification(version Version, method string, params Params) (*Message, error) {
	version = c.version(version)
	if version != Version2 {
		return nil, ErrNotificationV1
	}
	return &Message{
		Request: &Request{Method: method, Params: params},
		Version: version,
	}, nil
}

// BatchCall is one element of an outbound batch.
type BatchCall struct {
	Method string
	Params Params
	// Notify sends the element as a notification.
	Notify bool
}

// Batch returns the version 2.0 messages for calls along with a Pending
// entry per element, nil for notifications.
func (c *Client) Batch(calls ...BatchCall) (Batch, []*Pending, error) {
	if len(calls) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	batch := make(Batch, 0, len(calls))
	pending := make([]*Pending, 0, len(calls))
	for _, call := range calls {
		if call.Notify {
			msg, err := c.Notification(Version2, call.Method, call.Params)
			if err != nil {
				c.cancelAll(pending, ErrCanceled)
				return nil, nil, err
			}
			batch = append(batch, msg)
			pending = append(pending, nil)
			continue
		}
		msg, p, err := c.Call(Version2, call.Method, call.Params)
		if err != nil {
			c.cancelAll(pending, ErrCanceled)
			return nil, nil, err
		}
		batch = append(batch, msg)
		pending = append(pending, p)
	}
	return batch, pending, nil
}

func (c *Client) cancelAll(pending []*Pending, err error) {
	for _, p := range pending {
		if p != nil {
			c.pending.cancel(p, err)
		}
	}
}

// Deliver resolves the pending calls that the given responses answer. A
// response whose id matches no pending call is logged and dropped, as is
// anything that is not a response. It returns the number of calls resolved.
func (c *Client) Deliver(msgs ...*Message) int {
	n := 0
	for _, msg := range msgs {
		if msg == nil || msg.Response == nil {
			logger.Printf("Client.Deliver(): Dropping non-response: %s", msg)
			continue
		}
		if c.pending.resolve(msg.ID.Key(), msg, nil) {
			n++
			continue
		}
		logger.Printf("Client.Deliver(): Dropping unmatched response: %s", msg.ID)
	}
	return n
}

// DeliverPayload decodes raw responses and delivers them. An invalid
// response whose id is known resolves its call with the protocol error.
func (c *Client) DeliverPayload(data []byte) (int, error) {
	payload, err := Decode(data)
	if err != nil {
		return 0, err
	}
	return c.deliverItems(payload.Items), nil
}

func (c *Client) deliverItems(items []Item) int {
	n := 0
	for _, item := range items {
		switch {
		case item.Err != nil && !item.ID.IsAbsent() && !item.ID.IsNull():
			if c.pending.resolve(item.ID.Key(), nil, item.Err) {
				n++
				continue
			}
			logger.Printf("Client.Deliver(): Dropping invalid message %s: %s", item.ID, item.Err)
		case item.Err != nil:
			logger.Printf("Client.Deliver(): Dropping invalid message: %s", item.Err)
		default:
			n += c.Deliver(item.Msg)
		}
	}
	return n
}

// Cancel resolves the call with the given id with err, ErrCanceled when err
// is nil. A late response for it is dropped. It returns false if no such
// call is pending.
func (c *Client) Cancel(id ID, err error) bool {
	if err == nil {
		err = ErrCanceled
	}
	return c.pending.resolve(id.Key(), nil, err)
}

// Close resolves every pending call with ErrClosed and makes further calls
// fail with ErrClosed. It returns the number of calls resolved.
func (c *Client) Close() int {
	return c.pending.closeAll(ErrClosed)
}

// Len returns the number of pending calls.
func (c *Client) Len() int {
	return c.pending.len()
}
