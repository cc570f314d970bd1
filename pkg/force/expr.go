package force

import (
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

// env is the evaluation environment of a force expression.
type env struct {
	D float64 `expr:"d"`
	K float64 `expr:"k"`
}

// Compile parses src into a Func.
//
// The returned Func owns a private virtual machine and must not be called
// from more than one goroutine at a time; compile once per simulation run.
// A runtime evaluation failure yields NaN, which the simulation treats as a
// zero contribution.
func Compile(src string) (Func, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New(errors.ErrCodeInvalidExpression, "expression is empty")
	}

	program, err := expr.Compile(src, compileOptions()...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidExpression, err, "cannot compile %q", src)
	}

	var machine vm.VM
	return func(d, k float64) float64 {
		out, err := machine.Run(program, env{D: d, K: k})
		if err != nil {
			return math.NaN()
		}
		f, ok := out.(float64)
		if !ok {
			return math.NaN()
		}
		return f
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level defaults.
func MustCompile(src string) Func {
	f, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return f
}

// compileOptions restricts the language to numeric expressions over d and k.
func compileOptions() []expr.Option {
	return []expr.Option{
		expr.Env(env{}),
		expr.AsFloat64(),
		expr.DisableAllBuiltins(),
		unary("log", math.Log),
		unary("ln", math.Log),
		unary("log10", math.Log10),
		unary("sqrt", math.Sqrt),
		unary("exp", math.Exp),
		unary("abs", math.Abs),
	}
}

// unary registers a single-argument math function.
func unary(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fn(x), nil
	})
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func withField(err error, field string) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.WithField(field)
	}
	return errors.Wrap(errors.ErrCodeInvalidExpression, err, "invalid expression").WithField(field)
}
