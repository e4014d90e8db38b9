package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unicode"

	"golang.org/x/sync/errgroup"
)

// Server contains the method registry and dispatches requests to it.
type Server struct {
	Registry

	// HideErrors withholds the detail of internal errors from responses. By
	// default the detail is sent in the error data for version 2.0.
	HideErrors bool
	// BatchLimit is the number of batch elements handled concurrently (optional).
	BatchLimit int
}

// Register adds valid methods from the receiver to the registry with the given
// prefix, for each of the given versions (Version2 when none is given).
// Method names are lowercased.
func (s *Server) Register(prefix string, receiver interface{}, versions ...Version) error {
	methods, err := Methods(receiver)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		versions = []Version{Version2}
	}

	var buf bytes.Buffer
	for name, m := range methods {
		buf.WriteString(prefix)
		buf.WriteRune(unicode.ToLower(rune(name[0])))
		buf.WriteString(name[1:])
		m.Name = buf.String()
		buf.Reset()
		for _, version := range versions {
			m.Version = version
			if err := s.Add(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterMethod adds a single method of the receiver under the given name.
func (s *Server) RegisterMethod(name string, receiver interface{}, methodName string, versions ...Version) error {
	m, err := MethodByName(receiver, methodName)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		versions = []Version{Version2}
	}
	m.Name = name
	for _, version := range versions {
		m.Version = version
		if err := s.Add(m); err != nil {
			return err
		}
	}
	return nil
}

// Handle processes a single request and returns its response, or nil for a
// notification. Handler failures of notifications are only logged.
func (s *Server) Handle(ctx context.Context, msg *Message) *Message {
	version := msg.Version.orDefault()
	if msg.Request == nil {
		return NewErrorResponse(msg.ID, version, ErrInvalidRequest("message is not a request"))
	}
	result, rpcErr := s.invoke(ctx, msg, version)
	if msg.IsNotification() {
		if rpcErr != nil {
			logger.Printf("Server.Handle(): notification %s failed: %s", msg.Method, rpcErr)
		}
		return nil
	}
	return newResponse(msg.ID, version, result, rpcErr)
}

func (s *Server) invoke(ctx context.Context, msg *Message, version Version) (result json.RawMessage, rpcErr *Error) {
	m, err := s.Resolve(msg.Method, version)
	if err != nil {
		return nil, err.(*Error)
	}
	if rpcErr := m.checkParams(msg.Params); rpcErr != nil {
		return nil, rpcErr
	}

	defer func() {
		if r := recover(); r != nil {
			result, rpcErr = nil, s.internalError(msg.Method, version, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := m.Func(ctx, msg.Params)
	if err != nil {
		if appErr, ok := asRPCError(err); ok {
			return nil, appErr
		}
		return nil, s.internalError(msg.Method, version, err)
	}
	if result, err = marshalValue(res); err != nil {
		return nil, s.internalError(msg.Method, version, fmt.Errorf("failed to encode result: %s", err))
	}
	return result, nil
}

func (s *Server) internalError(method string, version Version, err error) *Error {
	logger.Printf("Server.Handle(): %s failed: %s", method, err)
	rpcErr := &Error{Code: ErrCodeInternal, Message: "internal error"}
	if version == Version2 && !s.HideErrors {
		rpcErr.Data, _ = json.Marshal(err.Error())
	}
	return rpcErr
}

// HandlePayload dispatches the requests of a decoded payload and returns
// their responses in request order, without entries for notifications.
// Batch elements are handled concurrently. Responses in the payload are
// skipped, they belong to a Client.
func (s *Server) HandlePayload(ctx context.Context, payload *Payload) []*Message {
	out := make([]*Message, len(payload.Items))
	handle := func(i int) {
		item := payload.Items[i]
		switch {
		case item.Err != nil && item.IsResponse():
			logger.Printf("Server.HandlePayload(): Dropping invalid response: %s", item.Err)
		case item.Err != nil:
			out[i] = NewErrorResponse(item.ID, item.Version, item.Err)
		case item.Msg.Request != nil:
			out[i] = s.Handle(ctx, item.Msg)
		}
	}

	if len(payload.Items) == 1 {
		handle(0)
	} else {
		var g errgroup.Group
		if s.BatchLimit > 0 {
			g.SetLimit(s.BatchLimit)
		}
		for i := range payload.Items {
			i := i
			g.Go(func() error {
				handle(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	responses := make([]*Message, 0, len(out))
	for _, resp := range out {
		if resp != nil {
			responses = append(responses, resp)
		}
	}
	return responses
}

// ServePayload decodes a raw inbound payload, dispatches it and returns the
// raw response payload. It returns nil when no response is due, which is the
// case when every request was a notification.
func (s *Server) ServePayload(ctx context.Context, data []byte) []byte {
	payload, err := Decode(data)
	if err != nil {
		rpcErr, ok := asRPCError(err)
		if !ok {
			rpcErr = ErrParse(err.Error())
		}
		return s.encode(NewErrorResponse(NullID(), Version2, rpcErr))
	}
	return s.encodeResponses(payload.Batch, s.HandlePayload(ctx, payload))
}

func (s *Server) encodeResponses(batch bool, responses []*Message) []byte {
	if len(responses) == 0 {
		return nil
	}
	if !batch {
		return s.encode(responses[0])
	}
	out, err := EncodeBatch(responses)
	if err != nil {
		logger.Printf("Server.ServePayload(): failed to encode batch: %s", err)
		return nil
	}
	return out
}

func (s *Server) encode(msg *Message) []byte {
	out, err := Encode(msg)
	if err != nil {
		logger.Printf("Server.ServePayload(): failed to encode response: %s", err)
		return nil
	}
	return out
}
