package pithon

import (
	"errors"
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) Node {
	t.Helper()
	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v\nsource:\n%s", err, src)
	}
	if len(program) != 1 {
		t.Fatalf("want 1 statement, got %d", len(program))
	}
	return program[0]
}

func wantParseErr(t *testing.T, src, substr string) *ParseError {
	t.Helper()
	_, err := Parse(src)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *ParseError, got %T: %v\nsource:\n%s", err, err, src)
	}
	if !strings.Contains(pe.Msg, substr) {
		t.Fatalf("want message containing %q, got %q", substr, pe.Msg)
	}
	return pe
}

func Test_Parser_Precedence_Shape(t *testing.T) {
	add, ok := parseOne(t, "1 + 2 * 3").(*BinaryOp)
	if !ok || add.Op != "+" {
		t.Fatalf("want top-level '+', got %#v", add)
	}
	mul, ok := add.Right.(*BinaryOp)
	if !ok || mul.Op != "*" {
		t.Fatalf("want '*' on the right of '+', got %#v", add.Right)
	}
}

func Test_Parser_Grouping_Overrides_Precedence(t *testing.T) {
	mul, ok := parseOne(t, "(1 + 2) * 3").(*BinaryOp)
	if !ok || mul.Op != "*" {
		t.Fatalf("want top-level '*', got %#v", mul)
	}
	if _, ok := mul.Left.(*BinaryOp); !ok {
		t.Fatalf("want grouped '+' on the left, got %#v", mul.Left)
	}
}

func Test_Parser_Unary_Minus_Is_Zero_Minus(t *testing.T) {
	neg, ok := parseOne(t, "-x").(*BinaryOp)
	if !ok || neg.Op != "-" {
		t.Fatalf("want '-' operation, got %#v", neg)
	}
	zero, ok := neg.Left.(*NumberLit)
	if !ok || zero.Value != 0 {
		t.Fatalf("want zero left operand, got %#v", neg.Left)
	}
}

func Test_Parser_Comparison_And_Membership(t *testing.T) {
	cmp, ok := parseOne(t, "a + 1 < b").(*BinaryOp)
	if !ok || cmp.Op != "<" {
		t.Fatalf("want '<' above '+', got %#v", cmp)
	}
	in, ok := parseOne(t, "x in xs").(*InOp)
	if !ok {
		t.Fatalf("want InOp, got %#v", in)
	}
}

func Test_Parser_Boolean_Operator_Nesting(t *testing.T) {
	// or binds loosest: a and b or c == (a and b) or c
	or, ok := parseOne(t, "a and b or c").(*OrOp)
	if !ok {
		t.Fatalf("want OrOp at top, got %#v", or)
	}
	if _, ok := or.Left.(*AndOp); !ok {
		t.Fatalf("want AndOp on the left, got %#v", or.Left)
	}
	not, ok := parseOne(t, "not a and b").(*AndOp)
	if !ok {
		t.Fatalf("want AndOp at top, got %#v", not)
	}
	if _, ok := not.Left.(*NotOp); !ok {
		t.Fatalf("want NotOp on the left, got %#v", not.Left)
	}
}

func Test_Parser_Assignment_Chain_Right_Associative(t *testing.T) {
	outer, ok := parseOne(t, "x = y = 1").(*Assign)
	if !ok || outer.Name != "x" {
		t.Fatalf("want assignment to x, got %#v", outer)
	}
	inner, ok := outer.Value.(*Assign)
	if !ok || inner.Name != "y" {
		t.Fatalf("want nested assignment to y, got %#v", outer.Value)
	}
}

func Test_Parser_Attribute_Assignment(t *testing.T) {
	aa, ok := parseOne(t, "p.x = 1").(*AttrAssign)
	if !ok || aa.Attr != "x" {
		t.Fatalf("want attribute assignment, got %#v", aa)
	}
}

func Test_Parser_Invalid_Assignment_Target(t *testing.T) {
	wantParseErr(t, "f() = 1", "cannot assign to this expression")
	wantParseErr(t, "1 = 2", "cannot assign to this expression")
}

func Test_Parser_Elif_Desugars_To_Nested_If(t *testing.T) {
	src := "if a:\n    1\nelif b:\n    2\nelse:\n    3\n"
	top, ok := parseOne(t, src).(*If)
	if !ok {
		t.Fatalf("want If, got %#v", top)
	}
	if len(top.Else) != 1 {
		t.Fatalf("want single nested else statement, got %d", len(top.Else))
	}
	nested, ok := top.Else[0].(*If)
	if !ok {
		t.Fatalf("want nested If in else branch, got %#v", top.Else[0])
	}
	if len(nested.Else) != 1 {
		t.Fatalf("want else body on nested If, got %d statements", len(nested.Else))
	}
}

func Test_Parser_Single_Line_Suite(t *testing.T) {
	ifNode, ok := parseOne(t, "if a: b = 1").(*If)
	if !ok || len(ifNode.Then) != 1 {
		t.Fatalf("want single-statement suite, got %#v", ifNode)
	}
}

func Test_Parser_Def_Params_And_Vararg(t *testing.T) {
	def, ok := parseOne(t, "def f(a, b, *rest):\n    a\n").(*FunctionDef)
	if !ok {
		t.Fatalf("want FunctionDef, got %#v", def)
	}
	if len(def.Params) != 2 || def.Params[0] != "a" || def.Params[1] != "b" {
		t.Fatalf("want params [a b], got %v", def.Params)
	}
	if def.Vararg != "rest" {
		t.Fatalf("want vararg 'rest', got %q", def.Vararg)
	}
}

func Test_Parser_Bare_Return_Means_None(t *testing.T) {
	def := parseOne(t, "def f():\n    return\n").(*FunctionDef)
	ret, ok := def.Body[0].(*Return)
	if !ok {
		t.Fatalf("want Return, got %#v", def.Body[0])
	}
	if _, ok := ret.Value.(*NoneLit); !ok {
		t.Fatalf("want None value on bare return, got %#v", ret.Value)
	}
}

func Test_Parser_Class_Body_Is_Methods_Only(t *testing.T) {
	src := "class C:\n    def a(self):\n        1\n    def b(self):\n        2\n"
	cls, ok := parseOne(t, src).(*ClassDef)
	if !ok || len(cls.Methods) != 2 {
		t.Fatalf("want class with 2 methods, got %#v", cls)
	}
	wantParseErr(t, "class C:\n    x = 1\n", "expected a method definition")
}

func Test_Parser_Tuple_Forms(t *testing.T) {
	if tup := parseOne(t, "()").(*TupleLit); len(tup.Elems) != 0 {
		t.Fatalf("want empty tuple, got %#v", tup)
	}
	if _, ok := parseOne(t, "(1)").(*NumberLit); !ok {
		t.Fatal("want (1) to parse as plain grouping")
	}
	if tup := parseOne(t, "(1,)").(*TupleLit); len(tup.Elems) != 1 {
		t.Fatalf("want single-element tuple, got %#v", tup)
	}
	if tup := parseOne(t, "(1, 2, 3)").(*TupleLit); len(tup.Elems) != 3 {
		t.Fatalf("want three-element tuple, got %#v", tup)
	}
}

func Test_Parser_Postfix_Chains(t *testing.T) {
	// a.b(1)[0] nests as Subscript(Call(AttrAccess)).
	sub, ok := parseOne(t, "a.b(1)[0]").(*Subscript)
	if !ok {
		t.Fatalf("want Subscript at top, got %#v", sub)
	}
	call, ok := sub.Collection.(*Call)
	if !ok {
		t.Fatalf("want Call under subscript, got %#v", sub.Collection)
	}
	if _, ok := call.Fn.(*AttrAccess); !ok {
		t.Fatalf("want attribute access as callee, got %#v", call.Fn)
	}
}

func Test_Parser_Incomplete_Input_Flag(t *testing.T) {
	for _, src := range []string{
		"def f():",
		"if x:",
		"while x:\n",
		"(1, 2",
		"[1,",
		"class C:",
	} {
		pe := wantParseErr(t, src, "")
		if !pe.Incomplete {
			t.Fatalf("want Incomplete for %q, got %v", src, pe)
		}
	}
	// A same-line syntax error is not incomplete.
	pe := wantParseErr(t, "if : 1", "expected an expression")
	if pe.Incomplete {
		t.Fatalf("want hard error for %q, got incomplete", "if : 1")
	}
}

func Test_Parser_Multiple_Statements(t *testing.T) {
	program, err := Parse("x = 1\ny = 2\n\nz = x + y\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program) != 3 {
		t.Fatalf("want 3 statements, got %d", len(program))
	}
}
