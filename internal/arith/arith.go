// Package arith is a demo service of checked int64 arithmetic, served to both
// JSONRPC 1.0 and 2.0 clients.
package arith

import (
	"context"
	"math"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

// ErrCodeArith is the application error code of arithmetic failures.
const ErrCodeArith = -32003

var (
	errAddOverflow      = jsonrpc2.NewError(ErrCodeArith, "add overflow", nil)
	errSubtractOverflow = jsonrpc2.NewError(ErrCodeArith, "subtract overflow", nil)
	errMultiplyOverflow = jsonrpc2.NewError(ErrCodeArith, "multiply overflow", nil)
	errDivideOverflow   = jsonrpc2.NewError(ErrCodeArith, "divide overflow", nil)
	errDivideByZero     = jsonrpc2.NewError(ErrCodeArith, "divided by zero", nil)
)

func add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, errAddOverflow
	}
	return a + b, nil
}

func subtract(a, b int64) (int64, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, errSubtractOverflow
	}
	return a - b, nil
}

func multiply(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, errMultiplyOverflow
	}
	return r, nil
}

func divide(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errDivideByZero
	}
	if a == math.MinInt64 && b == -1 {
		return 0, errDivideOverflow
	}
	return a / b, nil
}

// Service takes positional operands: addArray(a, b) and so on.
type Service struct{}

func (s *Service) AddArray(a, b int64) (int64, error) {
	logger.Printf("addArray: %d + %d", a, b)
	return add(a, b)
}

func (s *Service) SubtractArray(a, b int64) (int64, error) {
	logger.Printf("subtractArray: %d - %d", a, b)
	return subtract(a, b)
}

func (s *Service) MultiplyArray(a, b int64) (int64, error) {
	logger.Printf("multiplyArray: %d * %d", a, b)
	return multiply(a, b)
}

func (s *Service) DivideArray(a, b int64) (int64, error) {
	logger.Printf("divideArray: %d / %d", a, b)
	return divide(a, b)
}

// Operands are the named params of the Obj methods.
type Operands struct {
	LHS *int64 `json:"lhs"`
	RHS *int64 `json:"rhs"`
}

func objMethod(name string, op func(a, b int64) (int64, error)) jsonrpc2.Method {
	return jsonrpc2.NamedMethod(name, func(ctx context.Context, params jsonrpc2.Params) (interface{}, error) {
		var args Operands
		if err := params.DecodeNamed(&args); err != nil {
			return nil, err
		}
		if args.LHS == nil || args.RHS == nil {
			return nil, jsonrpc2.ErrInvalidParams("lhs and rhs are required")
		}
		logger.Printf("%s: %d, %d", name, *args.LHS, *args.RHS)
		return op(*args.LHS, *args.RHS)
	})
}

// Register adds the Array methods for both protocol versions, and the Obj
// methods (named params) for version 2.0.
func Register(srv *jsonrpc2.Server) error {
	if err := srv.Register("", &Service{}, jsonrpc2.Version1, jsonrpc2.Version2); err != nil {
		return err
	}
	methods := []jsonrpc2.Method{
		objMethod("addObj", add),
		objMethod("subtractObj", subtract),
		objMethod("multiplyObj", multiply),
		objMethod("divideObj", divide),
	}
	for _, m := range methods {
		if err := srv.Add(m); err != nil {
			return err
		}
	}
	return nil
}
