package jsonrpc2

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParamsKind is the wire shape of a request's params.
type ParamsKind int

const (
	NoParams ParamsKind = iota
	PositionalParams
	NamedParams
)

func (k ParamsKind) String() string {
	switch k {
	case NoParams:
		return "none"
	case PositionalParams:
		return "positional"
	case NamedParams:
		return "named"
	}
	return fmt.Sprintf("ParamsKind(%d)", int(k))
}

// Params holds the params of a request in normalized form: either an
// ordered list of positional values or a mapping of named values.
type Params struct {
	Kind       ParamsKind
	Positional []json.RawMessage
	Named      map[string]json.RawMessage
}

// Len returns the number of values held.
func (p Params) Len() int {
	switch p.Kind {
	case PositionalParams:
		return len(p.Positional)
	case NamedParams:
		return len(p.Named)
	}
	return 0
}

func (p Params) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PositionalParams:
		if p.Positional == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(p.Positional)
	case NamedParams:
		if p.Named == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(p.Named)
	}
	return nullLiteral, nil
}

func (p *Params) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("params must be an array or an object")
	}
	switch data[0] {
	case '[':
		var values []json.RawMessage
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		if values == nil {
			values = []json.RawMessage{}
		}
		*p = Params{Kind: PositionalParams, Positional: values}
		return nil
	case '{':
		var values map[string]json.RawMessage
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*p = Params{Kind: NamedParams, Named: values}
		return nil
	}
	return fmt.Errorf("params must be an array or an object")
}

// Mode selects how a call-site value is normalized into Params.
type Mode int

const (
	// ModeScalar wraps a single value: v -> [v].
	ModeScalar Mode = iota
	// ModeOption takes an Option: None -> [], Some(v) -> [v].
	ModeOption
	// ModeTuple takes a []interface{} of fixed arity, order preserved.
	ModeTuple
	// ModeSequence takes any slice or array, of any length.
	ModeSequence
	// ModeNamed takes a map or struct and produces named params.
	ModeNamed
)

// Option is an optional argument. The zero value is None.
type Option struct {
	Value interface{}
	Valid bool
}

// Some returns an Option holding v.
func Some(v interface{}) Option {
	return Option{Value: v, Valid: true}
}

// None returns an empty Option.
func None() Option {
	return Option{}
}

func marshalValue(v interface{}) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

// ScalarParams returns positional params holding the single value v.
func ScalarParams(v interface{}) (Params, error) {
	raw, err := marshalValue(v)
	if err != nil {
		return Params{}, err
	}
	return Params{Kind: PositionalParams, Positional: []json.RawMessage{raw}}, nil
}

// OptionParams returns empty positional params for None, and a single
// positional value for Some.
func OptionParams(opt Option) (Params, error) {
	if !opt.Valid {
		return Params{Kind: PositionalParams, Positional: []json.RawMessage{}}, nil
	}
	return ScalarParams(opt.Value)
}

// TupleParams returns positional params holding values in order.
func TupleParams(values ...interface{}) (Params, error) {
	p := Params{Kind: PositionalParams, Positional: make([]json.RawMessage, 0, len(values))}
	for i, v := range values {
		raw, err := marshalValue(v)
		if err != nil {
			return Params{}, fmt.Errorf("param %d: %s", i, err)
		}
		p.Positional = append(p.Positional, raw)
	}
	return p, nil
}

// SequenceParams returns positional params for a slice or array value.
func SequenceParams(seq interface{}) (Params, error) {
	raw, err := marshalValue(seq)
	if err != nil {
		return Params{}, err
	}
	if !isArray(raw) {
		return Params{}, fmt.Errorf("sequence params must encode to a JSON array, got %s", kindOf(raw))
	}
	var p Params
	if err := p.UnmarshalJSON(raw); err != nil {
		return Params{}, err
	}
	return p, nil
}

// NamedParamsOf returns named params for a map or struct value.
func NamedParamsOf(v interface{}) (Params, error) {
	raw, err := marshalValue(v)
	if err != nil {
		return Params{}, err
	}
	if !isObject(raw) {
		return Params{}, fmt.Errorf("named params must encode to a JSON object, got %s", kindOf(raw))
	}
	var p Params
	if err := p.UnmarshalJSON(raw); err != nil {
		return Params{}, err
	}
	return p, nil
}

// EncodeParams normalizes v according to mode.
func EncodeParams(v interface{}, mode Mode) (Params, error) {
	switch mode {
	case ModeScalar:
		return ScalarParams(v)
	case ModeOption:
		opt, ok := v.(Option)
		if !ok {
			return Params{}, fmt.Errorf("option mode requires an Option, got %T", v)
		}
		return OptionParams(opt)
	case ModeTuple:
		values, ok := v.([]interface{})
		if !ok {
			return Params{}, fmt.Errorf("tuple mode requires []interface{}, got %T", v)
		}
		return TupleParams(values...)
	case ModeSequence:
		return SequenceParams(v)
	case ModeNamed:
		return NamedParamsOf(v)
	}
	return Params{}, fmt.Errorf("unknown params mode: %d", mode)
}

// Decode is the inverse of EncodeParams. The destination depends on mode:
// a pointer for ModeScalar, ModeSequence and ModeNamed, an *Option for
// ModeOption, and a []interface{} of pointers for ModeTuple. Shape and arity
// mismatches return an *Error with ErrCodeInvalidParams.
func (p Params) Decode(mode Mode, dst interface{}) error {
	switch mode {
	case ModeScalar:
		return p.DecodeScalar(dst)
	case ModeOption:
		opt, ok := dst.(*Option)
		if !ok {
			return fmt.Errorf("option mode requires an *Option, got %T", dst)
		}
		if opt.Value == nil {
			var v interface{}
			valid, err := p.DecodeOption(&v)
			if valid {
				opt.Value = v
			}
			opt.Valid = valid
			return err
		}
		valid, err := p.DecodeOption(opt.Value)
		opt.Valid = valid
		return err
	case ModeTuple:
		values, ok := dst.([]interface{})
		if !ok {
			return fmt.Errorf("tuple mode requires []interface{}, got %T", dst)
		}
		return p.DecodeTuple(values...)
	case ModeSequence:
		return p.DecodeSequence(dst)
	case ModeNamed:
		return p.DecodeNamed(dst)
	}
	return fmt.Errorf("unknown params mode: %d", mode)
}

// positional returns the positional values, treating absent params as an
// empty list.
func (p Params) positional() ([]json.RawMessage, *Error) {
	switch p.Kind {
	case NoParams:
		return nil, nil
	case PositionalParams:
		return p.Positional, nil
	}
	return nil, ErrInvalidParams(fmt.Sprintf("expected positional params, got %s", p.Kind))
}

func decodeValue(raw json.RawMessage, dst interface{}, pos int) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidParams(fmt.Sprintf("param %d: %s", pos, err))
	}
	return nil
}

// DecodeScalar decodes exactly one positional value into dst.
func (p Params) DecodeScalar(dst interface{}) error {
	values, rpcErr := p.positional()
	if rpcErr != nil {
		return rpcErr
	}
	if len(values) != 1 {
		return ErrInvalidParams(fmt.Sprintf("expected 1 param, got %d", len(values)))
	}
	return decodeValue(values[0], dst, 0)
}

// DecodeOption decodes zero or one positional value into dst, and reports
// whether a value was present.
func (p Params) DecodeOption(dst interface{}) (bool, error) {
	values, rpcErr := p.positional()
	if rpcErr != nil {
		return false, rpcErr
	}
	switch len(values) {
	case 0:
		return false, nil
	case 1:
		return true, decodeValue(values[0], dst, 0)
	}
	return false, ErrInvalidParams(fmt.Sprintf("expected at most 1 param, got %d", len(values)))
}

// DecodeTuple decodes exactly len(dsts) positional values, in order.
func (p Params) DecodeTuple(dsts ...interface{}) error {
	values, rpcErr := p.positional()
	if rpcErr != nil {
		return rpcErr
	}
	if len(values) != len(dsts) {
		return ErrInvalidParams(fmt.Sprintf("expected %d params, got %d", len(dsts), len(values)))
	}
	for i, raw := range values {
		if err := decodeValue(raw, dsts[i], i); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSequence decodes all positional values into a pointer to a slice.
func (p Params) DecodeSequence(dst interface{}) error {
	values, rpcErr := p.positional()
	if rpcErr != nil {
		return rpcErr
	}
	if values == nil {
		values = []json.RawMessage{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return ErrInvalidParams(err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidParams(err.Error())
	}
	return nil
}

// DecodeNamed decodes named params into a pointer to a struct or map.
func (p Params) DecodeNamed(dst interface{}) error {
	if p.Kind != NamedParams {
		return ErrInvalidParams(fmt.Sprintf("expected named params, got %s", p.Kind))
	}
	raw, err := json.Marshal(p.Named)
	if err != nil {
		return ErrInvalidParams(err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidParams(err.Error())
	}
	return nil
}
