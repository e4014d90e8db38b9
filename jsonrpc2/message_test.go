package jsonrpc2

import (
	"strings"
	"testing"
)

func TestDecodeInvalid(t *testing.T) {
	testcases := []struct {
		Data string
		Code int
	}{
		{`{"jsonrpc":"2.0","method":`, ErrCodeParse},
		{`not json`, ErrCodeParse},
		{``, ErrCodeParse},
		{`[]`, ErrCodeInvalidRequest},
		{`42`, ErrCodeInvalidRequest},
		{`"hello"`, ErrCodeInvalidRequest},
	}

	for _, tc := range testcases {
		_, err := Decode([]byte(tc.Data))
		if err == nil {
			t.Errorf("%q: expected an error", tc.Data)
			continue
		}
		assertErrorCode(t, err, tc.Code)
	}
}

func TestDecodeInvalidItem(t *testing.T) {
	testcases := []struct {
		Data     string
		ID       ID
		Version  Version
		Response bool
	}{
		{`{"jsonrpc":"2.0","method":1,"id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":"2.0","method":"","id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":"2.0","method":"foo","params":3,"id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":"2.0","method":"foo","params":null,"id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":"2.0","method":"foo","id":{}}`, NullID(), Version2, false},
		{`{"jsonrpc":"3.0","method":"foo","id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":2,"method":"foo","id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":"2.0","method":"foo","result":1,"id":1}`, NumberID(1), Version2, false},
		{`{"jsonrpc":"2.0","id":1}`, NumberID(1), Version2, false},
		{`{"method":"foo","params":{"a":1},"id":1}`, NumberID(1), Version1, false},
		{`{"method":"foo","params":[]}`, NullID(), Version1, false},
		{`{"jsonrpc":"2.0","result":1}`, NullID(), Version2, true},
		{`{"jsonrpc":"2.0","result":1,"error":{"code":1,"message":"x"},"id":1}`, NumberID(1), Version2, true},
		{`{"jsonrpc":"2.0","error":{"message":"x"},"id":1}`, NumberID(1), Version2, true},
		{`{"jsonrpc":"2.0","error":"x","id":1}`, NumberID(1), Version2, true},
		{`{"result":1,"error":"x","id":1}`, NumberID(1), Version1, true},
	}

	for _, tc := range testcases {
		payload, err := Decode([]byte(tc.Data))
		if err != nil {
			t.Errorf("%s: unexpected payload error: %s", tc.Data, err)
			continue
		}
		item := payload.Items[0]
		if item.Err == nil {
			t.Errorf("%s: expected an invalid item, got: %s", tc.Data, item.Msg)
			continue
		}
		if item.Err.Code != ErrCodeInvalidRequest {
			t.Errorf("%s: wrong code: %d", tc.Data, item.Err.Code)
		}
		if !item.ID.Equal(tc.ID) {
			t.Errorf("%s: wrong id: got %s; want %s", tc.Data, item.ID, tc.ID)
		}
		if item.Version != tc.Version {
			t.Errorf("%s: wrong version: got %s; want %s", tc.Data, item.Version, tc.Version)
		}
		if item.IsResponse() != tc.Response {
			t.Errorf("%s: wrong response flag: %v", tc.Data, item.IsResponse())
		}
		if tc.Response && !strings.HasPrefix(item.Err.Message, "invalid response") {
			t.Errorf("%s: wrong message: %s", tc.Data, item.Err.Message)
		}
	}
}

func TestDecodeVersions(t *testing.T) {
	msg := mustDecodeMessage(t, `{"jsonrpc":"1.0","method":"foo","params":[],"id":1}`)
	if msg.Version != Version1 {
		t.Errorf("explicit 1.0 marker: got version %s", msg.Version)
	}
	msg = mustDecodeMessage(t, `{"method":"foo","params":[],"id":"a"}`)
	if msg.Version != Version1 {
		t.Errorf("missing marker: got version %s", msg.Version)
	}
	msg = mustDecodeMessage(t, `{"jsonrpc":"2.0","method":"foo"}`)
	if msg.Version != Version2 || !msg.IsNotification() {
		t.Errorf("expected a 2.0 notification: %s", msg)
	}
}

func TestDecodeV1Error(t *testing.T) {
	msg := mustDecodeMessage(t, `{"result":null,"error":"went wrong","id":1}`)
	if msg.Error == nil {
		t.Fatalf("expected an error response: %s", msg)
	}
	if msg.Error.Code != ErrCodeServer || msg.Error.Message != "went wrong" {
		t.Errorf("unexpected error: %+v", msg.Error)
	}
	if string(msg.Error.Data) != `"went wrong"` {
		t.Errorf("error data should keep the raw value: %s", msg.Error.Data)
	}

	msg = mustDecodeMessage(t, `{"result":[1],"error":null,"id":1}`)
	if msg.Error != nil || string(msg.Result) != `[1]` {
		t.Errorf("unexpected response: %s", msg)
	}
}

func TestDecodeBatch(t *testing.T) {
	payload, err := Decode([]byte(`[
		{"jsonrpc":"2.0","method":"a","id":1},
		{"jsonrpc":"2.0","method":"b"},
		{"method":"c","params":[],"id":3},
		5,
		{"jsonrpc":"2.0","result":"r","id":9}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if !payload.Batch {
		t.Error("expected a batch payload")
	}
	if got, want := len(payload.Items), 5; got != want {
		t.Fatalf("got %d items; want %d", got, want)
	}
	if payload.Items[0].Err != nil || payload.Items[0].Msg.Method != "a" {
		t.Errorf("item 0: %+v", payload.Items[0])
	}
	if payload.Items[1].Err != nil || !payload.Items[1].Msg.IsNotification() {
		t.Errorf("item 1: %+v", payload.Items[1])
	}
	if item := payload.Items[2]; item.Err == nil || !item.ID.Equal(NumberID(3)) || item.Version != Version2 {
		t.Errorf("item 2 should be rejected as a 1.0 batch element: %+v", item)
	}
	if item := payload.Items[3]; item.Err == nil || !item.ID.IsNull() || item.Version != Version2 {
		t.Errorf("item 3 should be invalid with a null id: %+v", item)
	}
	if item := payload.Items[4]; item.Err != nil || !item.IsResponse() {
		t.Errorf("item 4 should be a response: %+v", item)
	}
}

func TestEncodeBatch(t *testing.T) {
	if _, err := EncodeBatch(nil); err != ErrEmptyBatch {
		t.Errorf("got: %v; want %v", err, ErrEmptyBatch)
	}

	v1 := &Message{Request: &Request{Method: "a"}, ID: NumberID(1), Version: Version1}
	if _, err := EncodeBatch(Batch{v1}); err != ErrBatchV1 {
		t.Errorf("got: %v; want %v", err, ErrBatchV1)
	}

	out, err := EncodeBatch(Batch{
		{Request: &Request{Method: "a"}, ID: NumberID(1)},
		{Request: &Request{Method: "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"jsonrpc":"2.0","method":"a","id":1},{"jsonrpc":"2.0","method":"b"}]`
	if string(out) != want {
		t.Errorf("got: %s; want %s", out, want)
	}
}

func TestDecodeMessageBatch(t *testing.T) {
	_, err := DecodeMessage([]byte(`[{"jsonrpc":"2.0","method":"a"}]`))
	assertErrorCode(t, err, ErrCodeInvalidRequest)
}
