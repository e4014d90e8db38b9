package jsonrpc2

import (
	"encoding/json"
	"fmt"
)

// Batch is an ordered list of messages sent as one JSON array. Batches are
// only legal for JSONRPC 2.0.
type Batch []*Message

// Payload is a decoded inbound payload: a single message or a batch.
type Payload struct {
	Batch bool
	Items []Item
}

// Item is one decoded element of a payload. Err is set when the element is
// structurally invalid, in which case ID and Version are best-effort values
// recovered for the error response.
type Item struct {
	Msg     *Message
	Err     *Error
	ID      ID
	Version Version

	// response is true when an invalid element looked like a response.
	response bool
}

// IsResponse is true for items holding, or looking like, a response.
func (item Item) IsResponse() bool {
	if item.Msg != nil {
		return item.Msg.Response != nil
	}
	return item.response
}

// Decode parses a raw payload. Malformed JSON returns an *Error with
// ErrCodeParse; a payload that is neither an object nor a non-empty array
// returns an *Error with ErrCodeInvalidRequest. Element-level structural
// problems are reported per Item.
func Decode(data []byte) (*Payload, error) {
	if !json.Valid(data) {
		var v interface{}
		err := json.Unmarshal(data, &v)
		if err == nil {
			err = fmt.Errorf("invalid JSON")
		}
		return nil, ErrParse(err.Error())
	}

	switch firstByte(data) {
	case '{':
		return &Payload{Items: []Item{decodeItem(data)}}, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, ErrParse(err.Error())
		}
		if len(elems) == 0 {
			return nil, ErrInvalidRequest("empty batch")
		}
		payload := &Payload{Batch: true, Items: make([]Item, 0, len(elems))}
		for _, elem := range elems {
			item := decodeItem(elem)
			if item.Err != nil {
				item.Version = Version2
			} else if item.Msg.Version != Version2 {
				item = Item{
					Err:      ErrInvalidRequest("batches require version 2.0"),
					ID:       item.Msg.ID,
					Version:  Version2,
					response: item.Msg.Response != nil,
				}
			}
			payload.Items = append(payload.Items, item)
		}
		return payload, nil
	}
	return nil, ErrInvalidRequest(fmt.Sprintf("expected an object or an array, got %s", kindOf(data)))
}

// DecodeMessage parses a payload holding exactly one valid message.
func DecodeMessage(data []byte) (*Message, error) {
	payload, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if payload.Batch {
		return nil, ErrInvalidRequest("expected a single message, got a batch")
	}
	item := payload.Items[0]
	if item.Err != nil {
		return nil, item.Err
	}
	return item.Msg, nil
}

// Encode serializes a single message.
func Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

// EncodeBatch serializes messages as a JSON array.
func EncodeBatch(batch Batch) ([]byte, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, msg := range batch {
		if msg.Version.orDefault() != Version2 {
			return nil, ErrBatchV1
		}
	}
	return json.Marshal([]*Message(batch))
}

func invalidItem(item Item, response bool, format string, args ...interface{}) Item {
	detail := fmt.Sprintf(format, args...)
	item.response = response
	if response {
		item.Err = &Error{Code: ErrCodeInvalidRequest, Message: "invalid response: " + detail}
	} else {
		item.Err = ErrInvalidRequest(detail)
	}
	if item.ID.IsAbsent() {
		item.ID = NullID()
	}
	return item
}

// decodeItem decodes one syntactically valid JSON element.
func decodeItem(raw json.RawMessage) Item {
	item := Item{Version: Version2}
	var fields map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &fields) != nil {
		return invalidItem(item, false, "expected an object, got %s", kindOf(raw))
	}

	rawResult, hasResult := fields["result"]
	rawError, hasError := fields["error"]
	rawMethod, hasMethod := fields["method"]
	isResponse := !hasMethod && (hasResult || hasError)

	if rawID, ok := fields["id"]; ok {
		id, err := ParseID(rawID)
		if err != nil {
			return invalidItem(item, isResponse, "%s", err)
		}
		item.ID = id
	}

	item.Version = Version1
	if rawVersion, ok := fields["jsonrpc"]; ok {
		var tag string
		if err := json.Unmarshal(rawVersion, &tag); err != nil {
			item.Version = Version2
			return invalidItem(item, isResponse, "jsonrpc must be a string")
		}
		v, err := ParseVersion(tag)
		if err != nil {
			item.Version = Version2
			return invalidItem(item, isResponse, "%s", err)
		}
		item.Version = v
	}

	switch {
	case hasMethod && (hasResult || hasError):
		return invalidItem(item, false, "message has both a method and a result or error")
	case hasMethod:
		return decodeRequest(item, rawMethod, fields)
	case isResponse:
		return decodeResponse(item, fields, rawResult, hasResult, rawError, hasError)
	}
	return invalidItem(item, false, "message has no method, result or error")
}

func decodeRequest(item Item, rawMethod json.RawMessage, fields map[string]json.RawMessage) Item {
	req := &Request{}
	if err := json.Unmarshal(rawMethod, &req.Method); err != nil {
		return invalidItem(item, false, "method must be a string")
	}
	if req.Method == "" {
		return invalidItem(item, false, "method must not be empty")
	}
	if rawParams, ok := fields["params"]; ok {
		if err := req.Params.UnmarshalJSON(rawParams); err != nil {
			return invalidItem(item, false, "%s", err)
		}
	}
	if item.Version == Version1 {
		if req.Params.Kind == NamedParams {
			return invalidItem(item, false, "version 1.0 params must be an array")
		}
		if !item.ID.IsNumber() && !item.ID.IsString() {
			return invalidItem(item, false, "version 1.0 requests require a number or string id")
		}
	}
	item.Msg = &Message{Request: req, ID: item.ID, Version: item.Version}
	return item
}

func decodeResponse(item Item, fields map[string]json.RawMessage, rawResult json.RawMessage, hasResult bool, rawError json.RawMessage, hasError bool) Item {
	if _, ok := fields["id"]; !ok {
		return invalidItem(item, true, "missing id")
	}
	resp := &Response{}
	if item.Version == Version1 {
		errNull := !hasError || isNull(rawError)
		resultNull := !hasResult || isNull(rawResult)
		switch {
		case !errNull && !resultNull:
			return invalidItem(item, true, "response has both a result and an error")
		case !errNull:
			resp.Error = decodeV1Error(rawError)
		case hasResult:
			resp.Result = rawResult
		default:
			resp.Result = json.RawMessage(nullLiteral)
		}
	} else {
		switch {
		case hasResult && hasError:
			return invalidItem(item, true, "response has both a result and an error")
		case hasError:
			rpcErr, err := decodeErrorObject(rawError)
			if err != nil {
				return invalidItem(item, true, "%s", err)
			}
			resp.Error = rpcErr
		default:
			resp.Result = rawResult
		}
	}
	item.Msg = &Message{Response: resp, ID: item.ID, Version: item.Version}
	return item
}

func decodeErrorObject(raw json.RawMessage) (*Error, error) {
	if !isObject(raw) {
		return nil, fmt.Errorf("error must be an object, got %s", kindOf(raw))
	}
	var obj struct {
		Code    *int            `json:"code"`
		Message *string         `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("malformed error object: %s", err)
	}
	if obj.Code == nil {
		return nil, fmt.Errorf("error object is missing a code")
	}
	if obj.Message == nil {
		return nil, fmt.Errorf("error object is missing a message")
	}
	return &Error{Code: *obj.Code, Message: *obj.Message, Data: obj.Data}, nil
}

// decodeV1Error accepts any value as a 1.0 error. Values that are not error
// objects are kept in Data under ErrCodeServer.
func decodeV1Error(raw json.RawMessage) *Error {
	if rpcErr, err := decodeErrorObject(raw); err == nil {
		return rpcErr
	}
	e := &Error{Code: ErrCodeServer, Message: string(raw), Data: raw}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		e.Message = s
	}
	return e
}

// newResponse builds a response for a request.
func newResponse(id ID, version Version, result json.RawMessage, rpcErr *Error) *Message {
	if id.IsAbsent() {
		id = NullID()
	}
	return &Message{
		Response: &Response{Result: result, Error: rpcErr},
		ID:       id,
		Version:  version,
	}
}

// NewErrorResponse returns an error response for the given id.
func NewErrorResponse(id ID, version Version, rpcErr *Error) *Message {
	return newResponse(id, version.orDefault(), nil, rpcErr)
}

// NewResultResponse marshals result into a success response for the given id.
func NewResultResponse(id ID, version Version, result interface{}) (*Message, error) {
	raw, err := marshalValue(result)
	if err != nil {
		return nil, err
	}
	return newResponse(id, version.orDefault(), raw, nil), nil
}
