// interpreter.go — public surface of the Pithon runtime.
//
// This file holds the exported types and thin entry points; the evaluation
// engine itself lives in interpreter_exec.go.
//
// What you get here:
//   - The runtime value model (`Value`, `ValueTag`, constructors).
//   - Environments (`Env`) forming the lexical scope chain.
//   - The `Interpreter` with its two well-known frames and the Eval entry
//     points, plus primitive registration.
//
// SCOPING
// -------
// Code evaluates in environments (`*Env`) chained via parent links. Lookup
// resolves the nearest binding walking outward; definition always writes the
// current frame. The Interpreter exposes two frames:
//   - `Core`: the primitive table (operators and builtins). Operators such as
//     `+` are ordinary names bound here; the evaluator reaches them through
//     plain variable lookup and never special-cases them.
//   - `Global`: user program state, a child of Core.
//
// `EvalSource` runs in a fresh child of Global (sandboxed); names defined by
// the program land in that throwaway frame. `EvalPersistentSource` runs in
// Global itself (REPL-style), so definitions persist across calls.
//
// ERRORS
// ------
// All Eval entry points return (Value, error). Failures are *RuntimeError
// (see errors.go) carrying a kind, a message, and a 1-based position; lex and
// parse failures are *LexError / *ParseError. Values are never used to carry
// failures. The three control-flow signals (return/break/continue) are
// internal and are converted to ControlError if a program lets one escape its
// enclosing function or loop.
package pithon

import "fmt"

// Version of the interpreter, stamped into the CLI.
const Version = "0.3.1"

// ValueTag enumerates the runtime kinds a Value may hold.
// The tag determines which Go type lives in Value.Data.
type ValueTag int

const (
	VTNone      ValueTag = iota // nil
	VTNumber                    // float64
	VTBool                      // bool
	VTString                    // string
	VTList                      // *ListObject (mutable, shared by reference)
	VTTuple                     // []Value (immutable)
	VTFunction                  // *Closure
	VTMethod                    // *BoundMethod
	VTClass                     // *Class
	VTObject                    // *Object
	VTPrimitive                 // *Primitive (host callable)
)

// KindName returns the user-facing name of the tag, as used in error
// messages and by the `type` builtin.
func (t ValueTag) KindName() string {
	switch t {
	case VTNone:
		return "none"
	case VTNumber:
		return "number"
	case VTBool:
		return "bool"
	case VTString:
		return "string"
	case VTList:
		return "list"
	case VTTuple:
		return "tuple"
	case VTFunction:
		return "function"
	case VTMethod:
		return "method"
	case VTClass:
		return "class"
	case VTObject:
		return "object"
	case VTPrimitive:
		return "builtin"
	default:
		return "unknown"
	}
}

// Value is the universal runtime carrier. The closed set of variants is the
// ValueTag list above; Data holds the Go representation for the active tag.
type Value struct {
	Tag  ValueTag
	Data any
}

// None is the unit/absence value.
var None = Value{Tag: VTNone}

// Primitive constructors.
func Number(f float64) Value { return Value{Tag: VTNumber, Data: f} }
func Bool(b bool) Value      { return Value{Tag: VTBool, Data: b} }
func Str(s string) Value     { return Value{Tag: VTString, Data: s} }

// ListObject is the shared storage behind a list value. Lists are mutable
// and aliased by reference: every Value holding the same *ListObject sees
// the same elements.
type ListObject struct {
	Elems []Value
}

// NewList wraps elems into a fresh list value.
func NewList(elems []Value) Value {
	return Value{Tag: VTList, Data: &ListObject{Elems: elems}}
}

// Tuple wraps elems into an immutable tuple value. The slice must not be
// mutated after the call.
func Tuple(elems []Value) Value { return Value{Tag: VTTuple, Data: elems} }

// Closure is a function definition paired with the frame that was active at
// its definition site. The frame is shared, never copied: closures over the
// same frame observe each other's mutations.
type Closure struct {
	Def *FunctionDef
	Env *Env
}

// BoundMethod pairs a method closure with its receiver instance. Bound
// methods are constructed fresh on each attribute access, never cached.
type BoundMethod struct {
	Fn       *Closure
	Receiver *Object
}

// Class is a class definition: a name and its method table. The method
// closures all share the class body's frame.
type Class struct {
	Name    string
	Methods map[string]*Closure
}

// Object is a class instance with its own mutable attribute map. Attribute
// lookup checks Attributes first, then the class's method table.
type Object struct {
	Class      *Class
	Attributes map[string]Value
}

// PrimitiveFunc is the calling convention for host primitives: the evaluated
// argument list in, a value or a typed failure out. Primitives are
// responsible for their own arity and operand-type checking.
type PrimitiveFunc func(args []Value) (Value, error)

// Primitive is a named host callable installed in the initial environment.
type Primitive struct {
	Name string
	Fn   PrimitiveFunc
}

// PrimitiveVal wraps a host callable into a Value.
func PrimitiveVal(name string, fn PrimitiveFunc) Value {
	return Value{Tag: VTPrimitive, Data: &Primitive{Name: name, Fn: fn}}
}

// Env is a lexical environment frame: a name table plus an optional parent.
// Frames are shared by every closure that captured them and stay alive for
// as long as any reference remains.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

// Define binds name in this frame, shadowing any outer binding. It never
// searches outward.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Get resolves name against the nearest frame walking outward. An unbound
// name is a NameError.
func (e *Env) Get(name string) (Value, error) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.table[name]; ok {
			return v, nil
		}
	}
	return Value{}, &RuntimeError{Kind: ErrName, Msg: fmt.Sprintf("name %q is not defined", name)}
}

// InitialEnv constructs a fresh top frame pre-populated with the primitive
// table (operators plus core builtins). Each call yields an independent
// environment, so separate evaluation sessions never share state.
func InitialEnv() *Env {
	env := NewEnv(nil)
	registerOperatorPrimitives(env)
	registerCorePrimitives(env)
	return env
}

// Interpreter is the entry point for evaluating Pithon programs.
type Interpreter struct {
	Core   *Env // primitive table; parent of Global
	Global *Env // persistent program state (REPL globals)
}

// NewInterpreter returns a ready-to-use instance: Core holds the primitives,
// Global is an empty child of Core.
func NewInterpreter() *Interpreter {
	core := InitialEnv()
	return &Interpreter{Core: core, Global: NewEnv(core)}
}

// RegisterPrimitive installs a host callable into Core under name, making it
// reachable from programs through ordinary variable lookup.
func (ip *Interpreter) RegisterPrimitive(name string, fn PrimitiveFunc) {
	ip.Core.Define(name, PrimitiveVal(name, fn))
}

// Evaluate runs a program (a statement sequence) in env and returns the last
// statement's value, or None for an empty program. Errors abort evaluation
// and surface as described in the package comment; a control-flow signal
// reaching this boundary is reported as a ControlError.
func Evaluate(program []Node, env *Env) (Value, error) {
	out := None
	for _, stmt := range program {
		v, err := evalNode(stmt, env)
		if err != nil {
			return Value{}, exposeSignal(err)
		}
		out = v
	}
	return out, nil
}

// EvalSource parses and evaluates src in a fresh child of Global.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	program, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return Evaluate(program, NewEnv(ip.Global))
}

// EvalPersistentSource parses and evaluates src in Global itself, so
// definitions persist across calls (REPL-style).
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	program, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return Evaluate(program, ip.Global)
}
