package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type FruitService struct{}

func (f *FruitService) Apple() string {
	return "Apple"
}

func (f *FruitService) Banana() error {
	return nil
}

func (f *FruitService) Cherry() (string, error) {
	return "Cherry", nil
}

func (f *FruitService) Durian() error {
	return errors.New("durian failure")
}

func (f *FruitService) Elderberry() error {
	return NewError(-32001, "elderberry is out of season", map[string]int{"month": 3})
}

func (f *FruitService) Fig() string {
	panic("fig exploded")
}

func (f *FruitService) Grape(n int, color string) ([]string, error) {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, color)
	}
	return out, nil
}

type Pinger struct {
	PongService Service
}

func (f *Pinger) Ping() string {
	return "ping"
}

func (f *Pinger) PingPong() string {
	var pong string
	err := f.PongService.Call(context.Background(), &pong, "pong")
	if err != nil {
		return fmt.Sprintf("err: %s", err)
	}
	return "ping" + pong
}

type Ponger struct{}

func (b *Ponger) Pong() string {
	return "pong"
}

type Fib struct{}

func (f *Fib) Fibonacci(ctx context.Context, a int, b int, steps int) (int, error) {
	service, err := CtxService(ctx)
	if err != nil {
		return 0, err
	}
	a, b = b, a+b
	if steps <= 0 {
		return b, nil
	}
	if err := service.Call(ctx, &b, "fibonacci", a, b, steps-1); err != nil {
		return 0, err
	}
	return b, nil
}

// Gate lets Fast overtake Slow when both are in flight.
type Gate struct {
	ch chan struct{}
}

func (g *Gate) Slow() string {
	<-g.ch
	return "slow"
}

func (g *Gate) Fast() string {
	close(g.ch)
	return "fast"
}

func greetMethod() Method {
	return NamedMethod("greet", func(ctx context.Context, params Params) (interface{}, error) {
		var args struct {
			Name string `json:"name"`
		}
		if err := params.DecodeNamed(&args); err != nil {
			return nil, err
		}
		return "hello " + args.Name, nil
	})
}

func assertEqualJSON(t *testing.T, a, b interface{}, format string, args ...interface{}) {
	t.Helper()

	aa, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Compare(aa, bb) != 0 {
		prefix := fmt.Sprintf(format, args...)
		t.Errorf(prefix+"\n   got: %q\n  want: %q", aa, bb)
	}
}

func assertErrorCode(t *testing.T, err error, code int) {
	t.Helper()

	rpcErr, ok := asRPCError(err)
	if !ok {
		t.Fatalf("expected an *Error with code %d, got: %v", code, err)
	}
	if rpcErr.Code != code {
		t.Errorf("wrong error code: got %d; want %d (%s)", rpcErr.Code, code, rpcErr.Message)
	}
}

func mustDecodeMessage(t *testing.T, data string) *Message {
	t.Helper()

	msg, err := DecodeMessage([]byte(data))
	if err != nil {
		t.Fatalf("failed to decode %s: %s", data, err)
	}
	return msg
}
