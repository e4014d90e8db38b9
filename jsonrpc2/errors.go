package jsonrpc2

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603

	// ErrCodeServer through ErrCodeServerMin are reserved for
	// implementation-defined server errors.
	ErrCodeServer    = -32000
	ErrCodeServerMin = -32099
)

// Error is the JSONRPC error object. It is returned by handlers to send an
// application error, and returned to callers when a response carries one.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (err *Error) Error() string {
	return fmt.Sprintf("%d: %s", err.Code, err.Message)
}

// ErrorCode returns the JSONRPC error code.
func (err *Error) ErrorCode() int {
	return err.Code
}

// IsReserved is true for codes in the range reserved by the protocol
// (-32768 to -32000).
func (err *Error) IsReserved() bool {
	return err.Code >= -32768 && err.Code <= ErrCodeServer
}

// NewError returns an application error. Data is marshalled to JSON, a nil
// data is omitted.
func NewError(code int, message string, data interface{}) *Error {
	e := &Error{Code: code, Message: message}
	if data == nil {
		return e
	}
	raw, err := json.Marshal(data)
	if err != nil {
		raw, _ = json.Marshal(err.Error())
	}
	e.Data = raw
	return e
}

func ErrParse(detail string) *Error {
	return &Error{Code: ErrCodeParse, Message: fmt.Sprintf("parse error: %s", detail)}
}

func ErrInvalidRequest(detail string) *Error {
	return &Error{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("invalid request: %s", detail)}
}

func ErrMethodNotFound(method string) *Error {
	return &Error{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", method)}
}

func ErrInvalidParams(detail string) *Error {
	return &Error{Code: ErrCodeInvalidParams, Message: fmt.Sprintf("invalid params: %s", detail)}
}

func ErrInternal(detail string) *Error {
	return &Error{Code: ErrCodeInternal, Message: fmt.Sprintf("internal error: %s", detail)}
}

var (
	// ErrTimeout resolves a pending call whose context deadline passed.
	ErrTimeout = errors.New("jsonrpc2: call timed out")
	// ErrCanceled resolves a pending call that was abandoned or evicted.
	ErrCanceled = errors.New("jsonrpc2: call canceled")
	// ErrClosed resolves pending calls when their session ends. It is a
	// cancellation: errors.Is(ErrClosed, ErrCanceled) is true.
	ErrClosed = fmt.Errorf("jsonrpc2: session closed: %w", ErrCanceled)

	// ErrNotificationV1 is returned when building a notification for
	// JSONRPC 1.0, which requires an id on every request.
	ErrNotificationV1 = errors.New("jsonrpc2: notifications require version 2.0")
	// ErrBatchV1 is returned when batching messages for JSONRPC 1.0.
	ErrBatchV1 = errors.New("jsonrpc2: batches require version 2.0")
	// ErrEmptyBatch is returned when encoding a batch without messages.
	ErrEmptyBatch = errors.New("jsonrpc2: empty batch")
)

// TransportError wraps a failure of the underlying transport while sending
// or receiving a call.
type TransportError struct {
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("jsonrpc2: transport error: %s", err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

// DuplicateMethodError is returned when a method is registered twice for the
// same version.
type DuplicateMethodError struct {
	Method  string
	Version Version
}

func (err *DuplicateMethodError) Error() string {
	return fmt.Sprintf("jsonrpc2: method already registered: %s (version %s)", err.Method, err.Version)
}

// asRPCError maps any handler failure to an *Error.
func asRPCError(err error) (*Error, bool) {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}
