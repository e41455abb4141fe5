// builtin_core.go — the primitive-function table.
//
// Everything here is installed into the initial environment as an ordinary
// named binding; the evaluator calls primitives through the same protocol as
// user functions and never looks at their names. Each primitive does its own
// arity and operand-type checking.
package pithon

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// ---- operators ---------------------------------------------------------

func registerOperatorPrimitives(env *Env) {
	env.Define("+", PrimitiveVal("+", primAdd))
	defineNumericOp(env, "-", func(a, b float64) (float64, error) { return a - b, nil })
	defineNumericOp(env, "*", func(a, b float64) (float64, error) { return a * b, nil })
	defineNumericOp(env, "/", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, &RuntimeError{Kind: ErrType, Msg: "division by zero"}
		}
		return a / b, nil
	})
	defineNumericOp(env, "%", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, &RuntimeError{Kind: ErrType, Msg: "modulo by zero"}
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b // remainder takes the divisor's sign
		}
		return m, nil
	})

	defineComparisonOp(env, "<", func(c int) bool { return c < 0 })
	defineComparisonOp(env, "<=", func(c int) bool { return c <= 0 })
	defineComparisonOp(env, ">", func(c int) bool { return c > 0 })
	defineComparisonOp(env, ">=", func(c int) bool { return c >= 0 })

	env.Define("==", PrimitiveVal("==", func(args []Value) (Value, error) {
		if err := wantArity("==", args, 2); err != nil {
			return Value{}, err
		}
		return Bool(valueEqual(args[0], args[1])), nil
	}))
	env.Define("!=", PrimitiveVal("!=", func(args []Value) (Value, error) {
		if err := wantArity("!=", args, 2); err != nil {
			return Value{}, err
		}
		return Bool(!valueEqual(args[0], args[1])), nil
	}))
}

// primAdd implements '+': numeric addition, string concatenation, and
// list/tuple concatenation (building a fresh container).
func primAdd(args []Value) (Value, error) {
	if err := wantArity("+", args, 2); err != nil {
		return Value{}, err
	}
	a, b := args[0], args[1]
	switch {
	case a.Tag == VTNumber && b.Tag == VTNumber:
		return Number(a.Data.(float64) + b.Data.(float64)), nil
	case a.Tag == VTString && b.Tag == VTString:
		return Str(a.Data.(string) + b.Data.(string)), nil
	case a.Tag == VTList && b.Tag == VTList:
		left, right := a.Data.(*ListObject).Elems, b.Data.(*ListObject).Elems
		out := make([]Value, 0, len(left)+len(right))
		out = append(out, left...)
		out = append(out, right...)
		return NewList(out), nil
	case a.Tag == VTTuple && b.Tag == VTTuple:
		left, right := a.Data.([]Value), b.Data.([]Value)
		out := make([]Value, 0, len(left)+len(right))
		out = append(out, left...)
		out = append(out, right...)
		return Tuple(out), nil
	default:
		return Value{}, operandErr("+", a, b)
	}
}

func defineNumericOp(env *Env, name string, f func(a, b float64) (float64, error)) {
	env.Define(name, PrimitiveVal(name, func(args []Value) (Value, error) {
		if err := wantArity(name, args, 2); err != nil {
			return Value{}, err
		}
		if args[0].Tag != VTNumber || args[1].Tag != VTNumber {
			return Value{}, operandErr(name, args[0], args[1])
		}
		out, err := f(args[0].Data.(float64), args[1].Data.(float64))
		if err != nil {
			return Value{}, err
		}
		return Number(out), nil
	}))
}

// defineComparisonOp installs an ordering operator for number or string
// operand pairs; ok maps the three-way comparison onto the operator.
func defineComparisonOp(env *Env, name string, ok func(c int) bool) {
	env.Define(name, PrimitiveVal(name, func(args []Value) (Value, error) {
		if err := wantArity(name, args, 2); err != nil {
			return Value{}, err
		}
		a, b := args[0], args[1]
		switch {
		case a.Tag == VTNumber && b.Tag == VTNumber:
			x, y := a.Data.(float64), b.Data.(float64)
			c := 0
			if x < y {
				c = -1
			} else if x > y {
				c = 1
			}
			return Bool(ok(c)), nil
		case a.Tag == VTString && b.Tag == VTString:
			return Bool(ok(strings.Compare(a.Data.(string), b.Data.(string)))), nil
		default:
			return Value{}, operandErr(name, a, b)
		}
	}))
}

// ---- core builtins ------------------------------------------------------

func registerCorePrimitives(env *Env) {
	env.Define("print", PrimitiveVal("print", func(args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Display(a)
		}
		fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
		return None, nil
	}))

	env.Define("len", PrimitiveVal("len", func(args []Value) (Value, error) {
		if err := wantArity("len", args, 1); err != nil {
			return Value{}, err
		}
		switch v := args[0]; v.Tag {
		case VTString:
			return Number(float64(len([]rune(v.Data.(string))))), nil
		case VTList:
			return Number(float64(len(v.Data.(*ListObject).Elems))), nil
		case VTTuple:
			return Number(float64(len(v.Data.([]Value)))), nil
		default:
			return Value{}, &RuntimeError{Kind: ErrType,
				Msg: fmt.Sprintf("len() expects a string, list or tuple, not %s", v.Tag.KindName())}
		}
	}))

	env.Define("range", PrimitiveVal("range", func(args []Value) (Value, error) {
		if len(args) < 1 || len(args) > 3 {
			return Value{}, &RuntimeError{Kind: ErrArity,
				Msg: fmt.Sprintf("range() takes 1 to 3 arguments but %d were given", len(args))}
		}
		nums := make([]float64, len(args))
		for i, a := range args {
			if a.Tag != VTNumber {
				return Value{}, &RuntimeError{Kind: ErrType,
					Msg: fmt.Sprintf("range() expects numbers, not %s", a.Tag.KindName())}
			}
			nums[i] = a.Data.(float64)
		}
		start, stop, step := 0.0, nums[0], 1.0
		if len(nums) >= 2 {
			start, stop = nums[0], nums[1]
		}
		if len(nums) == 3 {
			step = nums[2]
		}
		if step == 0 {
			return Value{}, &RuntimeError{Kind: ErrType, Msg: "range() step must not be zero"}
		}
		var out []Value
		if step > 0 {
			for v := start; v < stop; v += step {
				out = append(out, Number(v))
			}
		} else {
			for v := start; v > stop; v += step {
				out = append(out, Number(v))
			}
		}
		return NewList(out), nil
	}))

	env.Define("str", PrimitiveVal("str", func(args []Value) (Value, error) {
		if err := wantArity("str", args, 1); err != nil {
			return Value{}, err
		}
		return Str(Display(args[0])), nil
	}))

	env.Define("type", PrimitiveVal("type", func(args []Value) (Value, error) {
		if err := wantArity("type", args, 1); err != nil {
			return Value{}, err
		}
		if args[0].Tag == VTObject {
			return Str(args[0].Data.(*Object).Class.Name), nil
		}
		return Str(args[0].Tag.KindName()), nil
	}))

	env.Define("abs", PrimitiveVal("abs", func(args []Value) (Value, error) {
		if err := wantArity("abs", args, 1); err != nil {
			return Value{}, err
		}
		if args[0].Tag != VTNumber {
			return Value{}, &RuntimeError{Kind: ErrType,
				Msg: fmt.Sprintf("abs() expects a number, not %s", args[0].Tag.KindName())}
		}
		return Number(math.Abs(args[0].Data.(float64))), nil
	}))
}

// ---- shared checks ------------------------------------------------------

func wantArity(name string, args []Value, n int) error {
	if len(args) != n {
		return &RuntimeError{Kind: ErrArity,
			Msg: fmt.Sprintf("%s expects %d arguments but %d were given", name, n, len(args))}
	}
	return nil
}

func operandErr(op string, a, b Value) error {
	return &RuntimeError{Kind: ErrType,
		Msg: fmt.Sprintf("unsupported operand types for %s: %s and %s", op, a.Tag.KindName(), b.Tag.KindName())}
}
