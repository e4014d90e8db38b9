package jsonrpc2

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// Shape is a set of params shapes a method accepts.
type Shape uint8

const (
	AcceptPositional Shape = 1 << iota
	AcceptNamed

	AcceptAny = AcceptPositional | AcceptNamed
)

// AnyArity disables the positional arity check of a Method.
const AnyArity = -1

// HandlerFunc is the invocation entry point of a method. A returned *Error is
// sent as-is, any other error is reported as an internal error.
type HandlerFunc func(ctx context.Context, params Params) (interface{}, error)

// Method describes a callable method.
type Method struct {
	Name    string
	Version Version
	Accepts Shape
	// Arity is the number of positional params required, or AnyArity.
	// Absent params count as zero positional params.
	Arity int
	Func  HandlerFunc
}

// PositionalMethod returns a method that takes exactly arity positional
// params.
func PositionalMethod(name string, arity int, fn HandlerFunc) Method {
	return Method{Name: name, Accepts: AcceptPositional, Arity: arity, Func: fn}
}

// NamedMethod returns a method that takes named params.
func NamedMethod(name string, fn HandlerFunc) Method {
	return Method{Name: name, Accepts: AcceptNamed, Arity: AnyArity, Func: fn}
}

// checkParams asserts that params match the declared shape and arity.
func (m *Method) checkParams(params Params) *Error {
	switch params.Kind {
	case NamedParams:
		if m.Accepts&AcceptNamed == 0 {
			return ErrInvalidParams(fmt.Sprintf("%s does not accept named params", m.Name))
		}
		return nil
	case PositionalParams:
		if m.Accepts&AcceptPositional == 0 {
			return ErrInvalidParams(fmt.Sprintf("%s does not accept positional params", m.Name))
		}
	}
	if m.Arity >= 0 && m.Accepts&AcceptPositional != 0 && params.Len() != m.Arity {
		return ErrInvalidParams(fmt.Sprintf("%s expects %d params, got %d", m.Name, m.Arity, params.Len()))
	}
	return nil
}

var typeOfError = reflect.TypeOf((*error)(nil)).Elem()
var typeOfContext = reflect.TypeOf((*context.Context)(nil)).Elem()

// methodArgTypes returns the arg types and whether all the types are valid
// (exported or builtin).
func methodArgTypes(methodType reflect.Type) (argTypes []reflect.Type, hasCtx bool, ok bool) {
	argNum := methodType.NumIn()
	argTypes = make([]reflect.Type, 0, argNum-1)
	argPos := 1 // Skip receiver
	for ; argPos < argNum; argPos++ {
		argType := methodType.In(argPos)
		if !isExportedOrBuiltin(argType) {
			return nil, hasCtx, false
		}
		if argType == typeOfContext {
			hasCtx = true
			continue
		}
		argTypes = append(argTypes, argType)
	}
	return argTypes, hasCtx, true
}

// methodErrPos returns the return value index position of an error type for
// supported return layouts: (), (interface{}), (error), (interface{}, error)
func methodErrPos(methodType reflect.Type) (int, bool) {
	switch methodType.NumOut() {
	case 0:
		return -1, true
	case 1:
		if methodType.Out(0) == typeOfError {
			// Single error return value
			return 0, true
		}
		// Single non-error return value
		return -1, true
	case 2:
		if methodType.Out(1) == typeOfError {
			// Two return values, one error type
			return 1, true
		}
		// Two return values, no error type, unsupported.
		return -1, false
	}
	return -1, false
}

// Methods returns a mapping of valid method names to Method definitions for a
// instance's receiver. The methods take positional params and have no
// version set.
func Methods(receiver interface{}) (map[string]Method, error) {
	kind := reflect.TypeOf(receiver)
	val := reflect.ValueOf(receiver)
	if name := reflect.Indirect(val).Type().Name(); !isExported(name) {
		return nil, fmt.Errorf("receiver must be exported: %s", name)
	}

	methods := map[string]Method{}
	for i := 0; i < kind.NumMethod(); i++ {
		method := kind.Method(i)
		if method.PkgPath != "" {
			// Skip unexported methods
			continue
		}
		m, err := reflectMethod(val, method)
		if err == errUnsupportedArgs {
			// Skip methods with unexported arg types
			continue
		} else if err != nil {
			return nil, err
		}
		methods[method.Name] = m
	}

	return methods, nil
}

// MethodByName returns the Method definition of a single receiver method.
func MethodByName(receiver interface{}, name string) (Method, error) {
	val := reflect.ValueOf(receiver)
	method, ok := reflect.TypeOf(receiver).MethodByName(name)
	if !ok {
		return Method{}, fmt.Errorf("method not found: %s", name)
	}
	return reflectMethod(val, method)
}

var errUnsupportedArgs = fmt.Errorf("unsupported argument types")

func reflectMethod(receiver reflect.Value, method reflect.Method) (Method, error) {
	// Load arg types (skip first arg, the receiver)
	argTypes, hasCtx, ok := methodArgTypes(method.Type)
	if !ok {
		return Method{}, errUnsupportedArgs
	}

	// Find ErrPos, if any.
	errPos, ok := methodErrPos(method.Type)
	if !ok {
		return Method{}, fmt.Errorf("unsupported return values in method: %s", method.Name)
	}

	rm := &receiverMethod{
		receiver: receiver,
		method:   method,
		argTypes: argTypes,
		errPos:   errPos,
		hasCtx:   hasCtx,
	}
	return Method{
		Name:    method.Name,
		Accepts: AcceptPositional,
		Arity:   len(argTypes),
		Func:    rm.call,
	}, nil
}

// receiverMethod is a method of a registered receiver, called by reflection.
type receiverMethod struct {
	receiver reflect.Value
	method   reflect.Method
	argTypes []reflect.Type
	errPos   int
	hasCtx   bool
}

func (m *receiverMethod) call(ctx context.Context, params Params) (interface{}, error) {
	args, err := parsePositionalArguments(params, m.argTypes)
	if err != nil {
		return nil, err
	}

	arguments := []reflect.Value{m.receiver}
	if m.hasCtx {
		arguments = append(arguments, reflect.ValueOf(ctx))
	}
	if len(args) > 0 {
		arguments = append(arguments, args...)
	}

	reply := m.method.Func.Call(arguments)

	// Are there any return values?
	if len(reply) == 0 {
		return nil, nil
	}
	// Is there an error return value?
	if m.errPos >= 0 && !reply[m.errPos].IsNil() {
		return nil, reply[m.errPos].Interface().(error)
	}
	if m.errPos == 0 {
		return nil, nil
	}

	// All is good, assume the first result is what we want to return
	// This supports (), (err), (res, err)
	return reply[0].Interface(), nil
}

// parsePositionalArguments asserts each positional param into a value of
// the corresponding type.
func parsePositionalArguments(params Params, types []reflect.Type) ([]reflect.Value, error) {
	values, rpcErr := params.positional()
	if rpcErr != nil {
		return nil, rpcErr
	}
	if len(values) > len(types) {
		return nil, ErrInvalidParams("too many arguments")
	}
	if len(values) < len(types) {
		return nil, ErrInvalidParams("not enough arguments")
	}

	args := make([]reflect.Value, 0, len(types))
	for i, argType := range types {
		value := reflect.New(argType)
		if err := json.Unmarshal(values[i], value.Interface()); err != nil {
			return nil, ErrInvalidParams(fmt.Sprintf("param %d: %s", i, err))
		}
		args = append(args, value.Elem())
	}
	return args, nil
}
