// interpreter_exec.go — the evaluation engine.
//
// A single recursive dispatcher (evalNode) maps every syntax-tree node kind
// to a value or a failure. Non-local control transfer (`return`, `break`,
// `continue`) is modeled as three dedicated signal types that implement
// error and travel the ordinary (Value, error) return path: every construct
// that may catch a signal does so with an explicit type switch, and anything
// it does not catch keeps unwinding unmodified. Loops catch break/continue;
// function, method, and constructor bodies catch return; the Evaluate
// boundary converts whatever leaks into a ControlError.
//
// Error discipline: taxonomy failures are *RuntimeError values constructed
// at the failure site with the offending node's position; nothing in this
// file panics, and positions are attached exactly once (primitives report
// position-less errors, which the call site then pins to the call node).
package pithon

import (
	"fmt"
	"strings"
)

// Control-flow signals. Structurally distinct from the value model: they are
// error implementations so they propagate through nested evaluation without
// ever being mistaken for a result.

type returnSignal struct {
	at    Position
	value Value
}

func (returnSignal) Error() string { return "return" }

type breakSignal struct {
	at Position
}

func (breakSignal) Error() string { return "break" }

type continueSignal struct {
	at Position
}

func (continueSignal) Error() string { return "continue" }

// exposeSignal turns a signal that escaped every matching construct into a
// ControlError; real errors pass through untouched.
func exposeSignal(err error) error {
	switch sig := err.(type) {
	case returnSignal:
		return &RuntimeError{Kind: ErrControl, Msg: "'return' outside function", Line: sig.at.Line, Col: sig.at.Col}
	case breakSignal:
		return &RuntimeError{Kind: ErrControl, Msg: "'break' outside loop", Line: sig.at.Line, Col: sig.at.Col}
	case continueSignal:
		return &RuntimeError{Kind: ErrControl, Msg: "'continue' outside loop", Line: sig.at.Line, Col: sig.at.Col}
	}
	return err
}

// evalBlock evaluates a statement sequence and yields the last statement's
// value (None for an empty sequence). Signals and errors abort the rest of
// the sequence.
func evalBlock(stmts []Node, env *Env) (Value, error) {
	out := None
	for _, stmt := range stmts {
		v, err := evalNode(stmt, env)
		if err != nil {
			return Value{}, err
		}
		out = v
	}
	return out, nil
}

// evalNode is the dispatcher: one evaluation rule per node kind.
func evalNode(n Node, env *Env) (Value, error) {
	switch node := n.(type) {
	case *NumberLit:
		return Number(node.Value), nil

	case *BoolLit:
		return Bool(node.Value), nil

	case *StringLit:
		return Str(node.Value), nil

	case *NoneLit:
		return None, nil

	case *ListLit:
		elems, err := evalElems(node.Elems, env)
		if err != nil {
			return Value{}, err
		}
		return NewList(elems), nil

	case *TupleLit:
		elems, err := evalElems(node.Elems, env)
		if err != nil {
			return Value{}, err
		}
		return Tuple(elems), nil

	case *VarRef:
		v, err := env.Get(node.Name)
		if err != nil {
			return Value{}, errAt(err, node.Pos())
		}
		return v, nil

	case *BinaryOp:
		// Operators are not special-cased: a binary operation is a call of
		// the operator's primitive, reached through ordinary lookup.
		call := &Call{
			pos:  node.pos,
			Fn:   &VarRef{pos: node.pos, Name: node.Op},
			Args: []Node{node.Left, node.Right},
		}
		return evalNode(call, env)

	case *Assign:
		v, err := evalNode(node.Value, env)
		if err != nil {
			return Value{}, err
		}
		env.Define(node.Name, v)
		return v, nil

	case *AttrAssign:
		target, err := evalNode(node.Object, env)
		if err != nil {
			return Value{}, err
		}
		if target.Tag != VTObject {
			return Value{}, typeErr(node, "cannot assign attribute on value of type %s", target.Tag.KindName())
		}
		v, err := evalNode(node.Value, env)
		if err != nil {
			return Value{}, err
		}
		target.Data.(*Object).Attributes[node.Attr] = v
		return v, nil

	case *AttrAccess:
		target, err := evalNode(node.Object, env)
		if err != nil {
			return Value{}, err
		}
		if target.Tag != VTObject {
			return Value{}, typeErr(node, "cannot access attribute on value of type %s", target.Tag.KindName())
		}
		obj := target.Data.(*Object)
		if v, ok := obj.Attributes[node.Attr]; ok {
			return v, nil
		}
		if m, ok := obj.Class.Methods[node.Attr]; ok {
			// Bound fresh on every access; methods are never pre-bound.
			return Value{Tag: VTMethod, Data: &BoundMethod{Fn: m, Receiver: obj}}, nil
		}
		return Value{}, &RuntimeError{
			Kind: ErrAttribute,
			Msg:  fmt.Sprintf("%s object has no attribute %q", obj.Class.Name, node.Attr),
			Line: node.Pos().Line, Col: node.Pos().Col,
		}

	case *If:
		cond, err := evalNode(node.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if cond.Tag != VTBool {
			return Value{}, typeErr(node.Cond, "condition must be a bool, not %s", cond.Tag.KindName())
		}
		if cond.Data.(bool) {
			return evalBlock(node.Then, env)
		}
		return evalBlock(node.Else, env)

	case *NotOp:
		operand, err := evalNode(node.Operand, env)
		if err != nil {
			return Value{}, err
		}
		truth, err := truthiness(operand, node.Operand, "not")
		if err != nil {
			return Value{}, err
		}
		return Bool(!truth), nil

	case *AndOp:
		left, err := evalNode(node.Left, env)
		if err != nil {
			return Value{}, err
		}
		truth, err := truthiness(left, node.Left, "and")
		if err != nil {
			return Value{}, err
		}
		if !truth {
			return left, nil // short-circuit: the right operand never runs
		}
		right, err := evalNode(node.Right, env)
		if err != nil {
			return Value{}, err
		}
		if _, err := truthiness(right, node.Right, "and"); err != nil {
			return Value{}, err
		}
		return right, nil

	case *OrOp:
		left, err := evalNode(node.Left, env)
		if err != nil {
			return Value{}, err
		}
		truth, err := truthiness(left, node.Left, "or")
		if err != nil {
			return Value{}, err
		}
		if truth {
			return left, nil // short-circuit
		}
		right, err := evalNode(node.Right, env)
		if err != nil {
			return Value{}, err
		}
		if _, err := truthiness(right, node.Right, "or"); err != nil {
			return Value{}, err
		}
		return right, nil

	case *While:
		return evalWhile(node, env)

	case *For:
		return evalFor(node, env)

	case *Break:
		return Value{}, breakSignal{at: node.Pos()}

	case *Continue:
		return Value{}, continueSignal{at: node.Pos()}

	case *Return:
		v, err := evalNode(node.Value, env)
		if err != nil {
			return Value{}, err
		}
		return Value{}, returnSignal{at: node.Pos(), value: v}

	case *FunctionDef:
		env.Define(node.Name, Value{Tag: VTFunction, Data: &Closure{Def: node, Env: env}})
		return None, nil

	case *ClassDef:
		// The class body is evaluated once, now: every method closes over
		// one shared class-body frame. Instantiation never re-runs this.
		classEnv := NewEnv(env)
		methods := make(map[string]*Closure, len(node.Methods))
		for _, m := range node.Methods {
			methods[m.Name] = &Closure{Def: m, Env: classEnv}
		}
		env.Define(node.Name, Value{Tag: VTClass, Data: &Class{Name: node.Name, Methods: methods}})
		return None, nil

	case *Call:
		callee, err := evalNode(node.Fn, env)
		if err != nil {
			return Value{}, err
		}
		args, err := evalElems(node.Args, env)
		if err != nil {
			return Value{}, err
		}
		return applyCall(callee, args, node)

	case *Subscript:
		return evalSubscript(node, env)

	case *InOp:
		return evalIn(node, env)

	default:
		return Value{}, &RuntimeError{
			Kind: ErrType,
			Msg:  fmt.Sprintf("unsupported node kind %T", n),
			Line: n.Pos().Line, Col: n.Pos().Col,
		}
	}
}

// evalElems evaluates an expression list left to right.
func evalElems(nodes []Node, env *Env) ([]Value, error) {
	out := make([]Value, 0, len(nodes))
	for _, e := range nodes {
		v, err := evalNode(e, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// truthiness maps a value to a truth per the and/or/not operand contract:
// only Bool, Number, String, None, List and Tuple participate; everything
// else is a type error naming the operator.
func truthiness(v Value, at Node, op string) (bool, error) {
	switch v.Tag {
	case VTBool:
		return v.Data.(bool), nil
	case VTNumber:
		return v.Data.(float64) != 0, nil
	case VTString:
		return v.Data.(string) != "", nil
	case VTNone:
		return false, nil
	case VTList:
		return len(v.Data.(*ListObject).Elems) > 0, nil
	case VTTuple:
		return len(v.Data.([]Value)) > 0, nil
	default:
		return false, typeErr(at, "unsupported operand type for '%s': %s", op, v.Tag.KindName())
	}
}

func evalWhile(node *While, env *Env) (Value, error) {
	out := None
	for {
		cond, err := evalNode(node.Cond, env)
		if err != nil {
			return Value{}, err
		}
		if cond.Tag != VTBool {
			return Value{}, typeErr(node.Cond, "condition must be a bool, not %s", cond.Tag.KindName())
		}
		if !cond.Data.(bool) {
			return out, nil
		}
		v, err := evalBlock(node.Body, env)
		if err != nil {
			switch err.(type) {
			case breakSignal:
				return out, nil
			case continueSignal:
				continue
			default:
				return Value{}, err
			}
		}
		out = v
	}
}

func evalFor(node *For, env *Env) (Value, error) {
	iterable, err := evalNode(node.Iterable, env)
	if err != nil {
		return Value{}, err
	}
	var elems []Value
	switch iterable.Tag {
	case VTList:
		elems = iterable.Data.(*ListObject).Elems
	case VTTuple:
		elems = iterable.Data.([]Value)
	default:
		return Value{}, typeErr(node.Iterable, "for expects a list or tuple, not %s", iterable.Tag.KindName())
	}
	out := None
	for _, item := range elems {
		// The loop variable lands in the enclosing frame on purpose: no
		// child frame exists for the body, so the variable (and anything
		// the body defines) outlives the loop and shadows outer bindings
		// for the rest of this scope.
		env.Define(node.Var, item)
		v, err := evalBlock(node.Body, env)
		if err != nil {
			switch err.(type) {
			case breakSignal:
				return out, nil
			case continueSignal:
				continue
			default:
				return Value{}, err
			}
		}
		out = v
	}
	return out, nil
}

func evalSubscript(node *Subscript, env *Env) (Value, error) {
	collection, err := evalNode(node.Collection, env)
	if err != nil {
		return Value{}, err
	}
	index, err := evalNode(node.Index, env)
	if err != nil {
		return Value{}, err
	}
	if index.Tag != VTNumber {
		return Value{}, typeErr(node.Index, "index must be a number, not %s", index.Tag.KindName())
	}
	idx := int(index.Data.(float64))

	switch collection.Tag {
	case VTList:
		elems := collection.Data.(*ListObject).Elems
		i, ok := normalizeIndex(idx, len(elems))
		if !ok {
			return Value{}, indexErr(node, "list index out of range")
		}
		return elems[i], nil
	case VTTuple:
		elems := collection.Data.([]Value)
		i, ok := normalizeIndex(idx, len(elems))
		if !ok {
			return Value{}, indexErr(node, "tuple index out of range")
		}
		return elems[i], nil
	case VTString:
		runes := []rune(collection.Data.(string))
		i, ok := normalizeIndex(idx, len(runes))
		if !ok {
			return Value{}, indexErr(node, "string index out of range")
		}
		return Str(string(runes[i])), nil
	default:
		return Value{}, typeErr(node, "value of type %s is not subscriptable", collection.Tag.KindName())
	}
}

// normalizeIndex resolves a possibly negative index against length n.
// Negative indexes address from the end, as in the source language.
func normalizeIndex(idx, n int) (int, bool) {
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

func evalIn(node *InOp, env *Env) (Value, error) {
	container, err := evalNode(node.Container, env)
	if err != nil {
		return Value{}, err
	}
	element, err := evalNode(node.Element, env)
	if err != nil {
		return Value{}, err
	}
	switch container.Tag {
	case VTList:
		return Bool(containsValue(container.Data.(*ListObject).Elems, element)), nil
	case VTTuple:
		return Bool(containsValue(container.Data.([]Value), element)), nil
	case VTString:
		// Inherited quirk, kept by contract: a string container performs
		// substring containment for a string element and answers false
		// (not an error) for any other element kind.
		if element.Tag == VTString {
			return Bool(strings.Contains(container.Data.(string), element.Data.(string))), nil
		}
		return Bool(false), nil
	default:
		return Value{}, typeErr(node, "'in' is only supported for lists, tuples and strings")
	}
}

func containsValue(elems []Value, v Value) bool {
	for _, e := range elems {
		if valueEqual(e, v) {
			return true
		}
	}
	return false
}

// valueEqual is structural on primitives and containers and identity-based
// on closures, methods, classes and objects.
func valueEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNone:
		return true
	case VTNumber:
		return a.Data.(float64) == b.Data.(float64)
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTList:
		return sliceEqual(a.Data.(*ListObject).Elems, b.Data.(*ListObject).Elems)
	case VTTuple:
		return sliceEqual(a.Data.([]Value), b.Data.([]Value))
	default:
		return a.Data == b.Data
	}
}

func sliceEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------------
// Call / construction protocol
// ----------------------------------------------------------------------------

// applyCall invokes callee with already-evaluated args. The same binding
// rules serve plain calls, bound-method calls and construction; site is the
// call node, used to pin error positions.
func applyCall(callee Value, args []Value, site Node) (Value, error) {
	switch callee.Tag {
	case VTPrimitive:
		p := callee.Data.(*Primitive)
		v, err := p.Fn(args)
		if err != nil {
			return Value{}, errAt(err, site.Pos())
		}
		return v, nil

	case VTClass:
		return construct(callee.Data.(*Class), args, site)

	case VTMethod:
		m := callee.Data.(*BoundMethod)
		recv := Value{Tag: VTObject, Data: m.Receiver}
		return invokeClosure(m.Fn, &recv, args, site)

	case VTFunction:
		return invokeClosure(callee.Data.(*Closure), nil, args, site)

	default:
		return Value{}, typeErr(site, "value of type %s is not callable", callee.Tag.KindName())
	}
}

// invokeClosure binds arguments into a fresh child of the closure's captured
// frame and runs the body. With a receiver, the first declared parameter is
// bound to it and the rest bind positionally. A variadic tail collects the
// surplus into a list; without one, surplus or missing arguments are fatal.
// A caught return signal's value is the result; otherwise the body's last
// statement value (None for an empty body).
func invokeClosure(c *Closure, receiver *Value, args []Value, site Node) (Value, error) {
	frame := NewEnv(c.Env)
	params := c.Def.Params
	if receiver != nil && len(params) > 0 {
		frame.Define(params[0], *receiver)
		params = params[1:]
	}

	for i, name := range params {
		if i >= len(args) {
			return Value{}, arityErr(site, "missing argument %q for %s()", name, c.Def.Name)
		}
		frame.Define(name, args[i])
	}
	if c.Def.Vararg != "" {
		frame.Define(c.Def.Vararg, NewList(args[len(params):]))
	} else if len(args) > len(params) {
		return Value{}, arityErr(site, "%s() takes %d arguments but %d were given",
			c.Def.Name, len(params), len(args))
	}

	out := None
	for _, stmt := range c.Def.Body {
		v, err := evalNode(stmt, frame)
		if err != nil {
			if ret, ok := err.(returnSignal); ok {
				return ret.value, nil
			}
			return Value{}, err
		}
		out = v
	}
	return out, nil
}

// construct creates a new instance of cls and runs __init__ when the class
// declares one. The constructor's return value is always discarded; surplus
// positional arguments beyond the declared parameters are ignored, while
// missing arguments stay fatal.
func construct(cls *Class, args []Value, site Node) (Value, error) {
	obj := &Object{Class: cls, Attributes: map[string]Value{}}
	instance := Value{Tag: VTObject, Data: obj}

	init, ok := cls.Methods["__init__"]
	if !ok {
		return instance, nil
	}
	frame := NewEnv(init.Env)
	params := init.Def.Params
	if len(params) > 0 {
		frame.Define(params[0], instance)
		params = params[1:]
	}
	for i, name := range params {
		if i >= len(args) {
			return Value{}, arityErr(site, "missing argument %q for %s.__init__()", name, cls.Name)
		}
		frame.Define(name, args[i])
	}

	for _, stmt := range init.Def.Body {
		if _, err := evalNode(stmt, frame); err != nil {
			if _, ok := err.(returnSignal); ok {
				break // constructors may return; the value is ignored
			}
			return Value{}, err
		}
	}
	return instance, nil
}

// ----------------------------------------------------------------------------
// Error helpers
// ----------------------------------------------------------------------------

func typeErr(at Node, format string, args ...any) error {
	p := at.Pos()
	return &RuntimeError{Kind: ErrType, Msg: fmt.Sprintf(format, args...), Line: p.Line, Col: p.Col}
}

func indexErr(at Node, msg string) error {
	p := at.Pos()
	return &RuntimeError{Kind: ErrIndex, Msg: msg, Line: p.Line, Col: p.Col}
}

func arityErr(at Node, format string, args ...any) error {
	p := at.Pos()
	return &RuntimeError{Kind: ErrArity, Msg: fmt.Sprintf(format, args...), Line: p.Line, Col: p.Col}
}

// errAt pins a position onto a RuntimeError that does not carry one yet
// (environment lookups and primitives report position-less errors).
func errAt(err error, p Position) error {
	if re, ok := err.(*RuntimeError); ok && re.Line == 0 {
		return &RuntimeError{Kind: re.Kind, Msg: re.Msg, Line: p.Line, Col: p.Col}
	}
	return err
}
