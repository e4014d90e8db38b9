package jsonrpc2

import "encoding/json"

// Helpers for JSON parsing

// firstByte returns the first non-space byte of a message, or 0.
func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		if isSpace(b) {
			continue
		}
		return b
	}
	return 0
}

// isArray returns true if the message is a JSON array (starts
// with '[', spaces skipped).
func isArray(raw json.RawMessage) bool {
	return firstByte(raw) == '['
}

// isObject returns true if the message is a JSON object.
func isObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

// isNull returns true if the message is the null literal.
func isNull(raw json.RawMessage) bool {
	return firstByte(raw) == 'n'
}

// kindOf names the JSON type of a message, for error messages.
func kindOf(raw json.RawMessage) string {
	switch firstByte(raw) {
	case '[':
		return "array"
	case '{':
		return "object"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case 0:
		return "nothing"
	}
	return "number"
}

// isSpace returns true if the byte is considered a space in JSON syntax.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
