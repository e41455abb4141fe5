// ast.go — the syntax tree consumed by the evaluator.
//
// The node set is closed: every construct of the language is one of the
// structs below, and the evaluator dispatches over them exhaustively.
// Statements and expressions are not separated; every node evaluates to a
// Value (definitions and loops evaluate to None), which is what lets `if`
// branches and function bodies yield the value of their last statement.
//
// Every node carries the 1-based source position of its first token so that
// runtime errors can point back into the source.
package pithon

// Position is a 1-based line/column pair in the original source.
type Position struct {
	Line int
	Col  int
}

// Node is a syntax-tree node. A program is a []Node.
type Node interface {
	Pos() Position
}

type pos struct {
	Line int
	Col  int
}

func (p pos) Pos() Position { return Position{Line: p.Line, Col: p.Col} }

// Literals.

type NumberLit struct {
	pos
	Value float64
}

type BoolLit struct {
	pos
	Value bool
}

type StringLit struct {
	pos
	Value string
}

type NoneLit struct {
	pos
}

type ListLit struct {
	pos
	Elems []Node
}

type TupleLit struct {
	pos
	Elems []Node
}

// VarRef reads a name through the environment chain.
type VarRef struct {
	pos
	Name string
}

// BinaryOp applies a named operator to two operands. The evaluator desugars
// it into a call of the operator's primitive, looked up like any variable.
type BinaryOp struct {
	pos
	Op    string
	Left  Node
	Right Node
}

// Assign binds Name in the current frame and yields the assigned value.
type Assign struct {
	pos
	Name  string
	Value Node
}

// AttrAssign writes Object.Attr = Value and yields the assigned value.
type AttrAssign struct {
	pos
	Object Node
	Attr   string
	Value  Node
}

// AttrAccess reads Object.Attr (instance attribute, else bound class method).
type AttrAccess struct {
	pos
	Object Node
	Attr   string
}

// If selects one branch on a Bool condition. Elif chains are parsed as a
// nested If in Else.
type If struct {
	pos
	Cond Node
	Then []Node
	Else []Node
}

// Boolean connectives. And/Or short-circuit and yield an operand, not a Bool.

type NotOp struct {
	pos
	Operand Node
}

type AndOp struct {
	pos
	Left  Node
	Right Node
}

type OrOp struct {
	pos
	Left  Node
	Right Node
}

type While struct {
	pos
	Cond Node
	Body []Node
}

// For binds Var in the enclosing frame for each element of Iterable.
type For struct {
	pos
	Var      string
	Iterable Node
	Body     []Node
}

type Break struct {
	pos
}

type Continue struct {
	pos
}

type Return struct {
	pos
	Value Node // never nil; a bare `return` carries a NoneLit
}

// FunctionDef declares a function. Vararg is "" when the function has no
// variadic tail; otherwise surplus positional arguments are collected into a
// List bound under that name.
type FunctionDef struct {
	pos
	Name   string
	Params []string
	Vararg string
	Body   []Node
}

// ClassDef declares a class whose body is a sequence of method definitions.
type ClassDef struct {
	pos
	Name    string
	Methods []*FunctionDef
}

type Call struct {
	pos
	Fn   Node
	Args []Node
}

type Subscript struct {
	pos
	Collection Node
	Index      Node
}

// InOp is the membership test `Element in Container`.
type InOp struct {
	pos
	Element   Node
	Container Node
}
