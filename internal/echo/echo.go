// Package echo holds small demo services: echoes, a ping and a static todo
// list.
package echo

import (
	"context"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

// Service echoes messages back.
type Service struct{}

// EchoArray returns msg as given.
func (s *Service) EchoArray(msg string) string {
	logger.Printf("echoArray: %q", msg)
	return msg
}

// Ping answers "pong".
func (s *Service) Ping() string {
	return "pong"
}

// TodoItem is an entry of the todo list.
type TodoItem struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

var todoList = []TodoItem{
	{ID: 1, Title: "Learning Go", Status: "pending"},
	{ID: 2, Title: "Meeting with devs team", Status: "completed"},
}

func echoObj(ctx context.Context, params jsonrpc2.Params) (interface{}, error) {
	var args struct {
		Msg *string `json:"msg"`
	}
	if err := params.DecodeNamed(&args); err != nil {
		return nil, err
	}
	if args.Msg == nil {
		return nil, jsonrpc2.ErrInvalidParams("msg is required")
	}
	return map[string]string{"msg": *args.Msg}, nil
}

func listTodos(ctx context.Context, params jsonrpc2.Params) (interface{}, error) {
	return todoList, nil
}

// Register adds echoArray, echoObj, ping and todoList for version 2.0.
func Register(srv *jsonrpc2.Server) error {
	if err := srv.Register("", &Service{}); err != nil {
		return err
	}
	if err := srv.Add(jsonrpc2.NamedMethod("echoObj", echoObj)); err != nil {
		return err
	}
	// todoList takes no arguments in either shape.
	return srv.Add(jsonrpc2.Method{
		Name:    "todoList",
		Accepts: jsonrpc2.AcceptAny,
		Arity:   0,
		Func:    listTodos,
	})
}
