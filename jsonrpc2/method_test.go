package jsonrpc2

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type SomeReq struct {
	Foo string `json:"foo"`
	Bar string `json:"bar"`
}

type SomeResp struct {
	Foo string `json:"foo"`
	Bar string `json:"bar"`
}

type SomeType struct{}

func (s *SomeType) Hello(prefix string, req SomeReq) (*SomeResp, error) {
	return &SomeResp{Foo: prefix + req.Foo, Bar: req.Bar}, nil
}

func (s *SomeType) WithContext(ctx context.Context, n int) int {
	return n * 2
}

func (s *SomeType) Nothing() {}

func (s *SomeType) Unsupported(req someUnexported) string {
	return "unreachable"
}

func (s *SomeType) hidden() string {
	return "hidden"
}

type someUnexported struct{}

func TestMethodArgs(t *testing.T) {
	receiver := &SomeType{}
	m, err := MethodByName(receiver, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if m.Arity != 2 || m.Accepts != AcceptPositional {
		t.Errorf("unexpected method definition: %+v", m)
	}

	params, err := TupleParams("pre-", SomeReq{Foo: "hello", Bar: "bye"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Func(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	resp, ok := res.(*SomeResp)
	if !ok {
		t.Fatalf("invalid response type: %T", res)
	}

	if resp.Foo != "pre-hello" || resp.Bar != "bye" {
		t.Errorf("response mismatch: %+v", resp)
	}
}

func TestMethodContext(t *testing.T) {
	m, err := MethodByName(&SomeType{}, "WithContext")
	if err != nil {
		t.Fatal(err)
	}
	if m.Arity != 1 {
		t.Errorf("context should not count towards arity: %d", m.Arity)
	}
	params, _ := ScalarParams(21)
	res, err := m.Func(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	if res != 42 {
		t.Errorf("got: %v; want 42", res)
	}

	m, err = MethodByName(&SomeType{}, "Nothing")
	if err != nil {
		t.Fatal(err)
	}
	if res, err := m.Func(context.Background(), Params{}); res != nil || err != nil {
		t.Errorf("got: %v, %v", res, err)
	}
}

func TestMethods(t *testing.T) {
	methods, err := Methods(&SomeType{})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"Hello", "Nothing", "WithContext"}
	if len(names) != len(want) {
		t.Fatalf("got: %q; want %q", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got: %q; want %q", names, want)
		}
	}

	if _, err := Methods(&someUnexported{}); err == nil {
		t.Error("unexported receivers should be rejected")
	}
}

func TestMethodCheckParams(t *testing.T) {
	m := PositionalMethod("add", 2, func(ctx context.Context, params Params) (interface{}, error) {
		return nil, nil
	})
	two, _ := TupleParams(1, 2)
	one, _ := TupleParams(1)
	named, _ := NamedParamsOf(map[string]int{"a": 1})

	if err := m.checkParams(two); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if err := m.checkParams(one); err == nil || err.Code != ErrCodeInvalidParams {
		t.Errorf("expected an arity error: %v", err)
	}
	if err := m.checkParams(Params{}); err == nil {
		t.Error("absent params count as zero params")
	}
	if err := m.checkParams(named); err == nil {
		t.Error("named params should be rejected")
	}

	m.Accepts = AcceptAny
	if err := m.checkParams(named); err != nil {
		t.Errorf("unexpected error: %s", err)
	}

	n := greetMethod()
	if err := n.checkParams(two); err == nil {
		t.Error("positional params should be rejected")
	}
}

func TestRegistry(t *testing.T) {
	noop := func(ctx context.Context, params Params) (interface{}, error) { return nil, nil }

	var r Registry
	if err := r.Add(PositionalMethod("ping", 0, noop)); err != nil {
		t.Fatal(err)
	}
	err := r.Add(PositionalMethod("ping", 0, noop))
	var dupErr *DuplicateMethodError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected a duplicate error, got: %v", err)
	}
	if dupErr.Method != "ping" || dupErr.Version != Version2 {
		t.Errorf("unexpected duplicate error: %+v", dupErr)
	}

	v1 := PositionalMethod("ping", 0, noop)
	v1.Version = Version1
	if err := r.Add(v1); err != nil {
		t.Errorf("same name with another version should be allowed: %s", err)
	}

	namedV1 := NamedMethod("greet", noop)
	namedV1.Version = Version1
	if err := r.Add(namedV1); err == nil {
		t.Error("1.0 methods must accept positional params")
	}
	if err := r.Add(Method{Name: "nofunc", Accepts: AcceptAny}); err == nil {
		t.Error("methods without a handler should be rejected")
	}
	if err := r.Add(Method{Accepts: AcceptAny, Func: noop}); err == nil {
		t.Error("methods without a name should be rejected")
	}

	if _, err := r.Resolve("ping", Version1); err != nil {
		t.Error(err)
	}
	_, err = r.Resolve("pong", Version2)
	assertErrorCode(t, err, ErrCodeMethodNotFound)

	methods := r.Methods()
	if len(methods) != 2 || methods[0].Version != Version1 || methods[1].Version != Version2 {
		t.Errorf("unexpected methods: %+v", methods)
	}
}
