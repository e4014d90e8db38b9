package jsonrpc2

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var nullLiteral = []byte("null")

// ID identifies a request. It holds the compact JSON literal of a number,
// string or null so that it round-trips byte for byte. The zero value is an
// absent ID.
type ID struct {
	raw []byte
}

// NumberID returns a numeric ID.
func NumberID(n int64) ID {
	return ID{raw: []byte(strconv.FormatInt(n, 10))}
}

// StringID returns a string ID.
func StringID(s string) ID {
	raw, _ := json.Marshal(s)
	return ID{raw: raw}
}

// NullID returns the null ID, used for responses whose request ID could not
// be determined.
func NullID() ID {
	return ID{raw: nullLiteral}
}

var errInvalidID = errors.New("id must be a number, string or null")

// ParseID validates a raw JSON id value.
func ParseID(raw json.RawMessage) (ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ID{}, nil
	}
	switch raw[0] {
	case 'n':
		if !bytes.Equal(raw, nullLiteral) {
			return ID{}, errInvalidID
		}
		return NullID(), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ID{}, errInvalidID
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ID{}, errInvalidID
		}
	default:
		return ID{}, errInvalidID
	}
	id := make([]byte, len(raw))
	copy(id, raw)
	return ID{raw: id}, nil
}

// IsAbsent is true when no id was given at all.
func (id ID) IsAbsent() bool {
	return len(id.raw) == 0
}

// IsNull is true for an explicit null id.
func (id ID) IsNull() bool {
	return bytes.Equal(id.raw, nullLiteral)
}

// IsString is true for string ids.
func (id ID) IsString() bool {
	return len(id.raw) > 0 && id.raw[0] == '"'
}

// IsNumber is true for numeric ids.
func (id ID) IsNumber() bool {
	return !id.IsAbsent() && !id.IsNull() && !id.IsString()
}

// Key returns a string usable as a map key. Distinct ids have distinct keys,
// so 1 and "1" never collide.
func (id ID) Key() string {
	return string(id.raw)
}

// Raw returns the JSON literal of the id, "null" when absent.
func (id ID) Raw() json.RawMessage {
	if id.IsAbsent() {
		return json.RawMessage(nullLiteral)
	}
	return json.RawMessage(id.raw)
}

// Equal reports whether both ids have the same literal.
func (id ID) Equal(other ID) bool {
	return bytes.Equal(id.raw, other.raw)
}

func (id ID) String() string {
	if id.IsAbsent() {
		return "<none>"
	}
	return string(id.raw)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return id.Raw(), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	parsed, err := ParseID(data)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
