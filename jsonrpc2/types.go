package jsonrpc2

import (
	"encoding/json"
	"fmt"
)

// Request is the request half of a Message.
type Request struct {
	Method string
	Params Params
}

// Response is the response half of a Message. A valid response holds either
// a Result or an Error, never both.
type Response struct {
	Result json.RawMessage
	Error  *Error
}

// UnmarshalResult decodes the result into result, or returns the response
// error. A null result or a nil destination leaves result untouched.
func (resp *Response) UnmarshalResult(result interface{}) error {
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 || isNull(resp.Result) {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// Message is the JSONRPC envelope. Exactly one of Request or Response is set.
type Message struct {
	*Request
	*Response

	ID      ID
	Version Version
}

// IsNotification is true for requests that do not expect a response.
func (m *Message) IsNotification() bool {
	return m.Request != nil && (m.ID.IsAbsent() || m.ID.IsNull())
}

func (m *Message) String() string {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("<invalid message id=%s: %s>", m.ID, err)
	}
	return string(b)
}

type wireRequest struct {
	Version string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method"`
	Params  *Params         `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type wireResponse struct {
	Version string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// wireResponseV1 always carries both result and error, one of them null.
type wireResponseV1 struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
	ID     json.RawMessage `json:"id"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	version := m.Version.orDefault()
	switch {
	case m.Request != nil && m.Response != nil:
		return nil, fmt.Errorf("jsonrpc2: message %s has both a request and a response", m.ID)
	case m.Request != nil:
		w := wireRequest{Method: m.Method}
		params := m.Params
		if version == Version2 {
			w.Version = version2Tag
		} else if params.Kind == NoParams {
			params = Params{Kind: PositionalParams}
		}
		if params.Kind != NoParams {
			w.Params = &params
		}
		if !m.ID.IsAbsent() {
			w.ID = m.ID.Raw()
		}
		return json.Marshal(w)
	case m.Response != nil:
		if m.Error != nil && len(m.Result) > 0 {
			return nil, fmt.Errorf("jsonrpc2: response %s has both a result and an error", m.ID)
		}
		if version == Version1 {
			return json.Marshal(wireResponseV1{
				Result: m.Result,
				Error:  m.Error,
				ID:     m.ID.Raw(),
			})
		}
		w := wireResponse{
			Version: version2Tag,
			Result:  m.Result,
			Error:   m.Error,
			ID:      m.ID.Raw(),
		}
		if w.Error == nil && len(w.Result) == 0 {
			w.Result = json.RawMessage(nullLiteral)
		}
		return json.Marshal(w)
	}
	return nil, fmt.Errorf("jsonrpc2: message %s has neither a request nor a response", m.ID)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	item := decodeItem(data)
	if item.Err != nil {
		return item.Err
	}
	*m = *item.Msg
	return nil
}
