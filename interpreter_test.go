package pithon

import (
	"errors"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func evalSrc(t *testing.T, src string) Value {
	t.Helper()
	ip := NewInterpreter()
	v, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("EvalSource error: %v\nsource:\n%s", err, src)
	}
	return v
}

func mustEvalPersistent(t *testing.T, ip *Interpreter, src string) Value {
	t.Helper()
	v, err := ip.EvalPersistentSource(src)
	if err != nil {
		t.Fatalf("eval error for %q: %v", src, err)
	}
	return v
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNumber {
		t.Fatalf("want number %g, got %#v", f, v)
	}
	if got := v.Data.(float64); got != f {
		t.Fatalf("want number %g, got %g", f, got)
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTString || v.Data.(string) != s {
		t.Fatalf("want string %q, got %#v", s, v)
	}
}

func wantBool(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %#v", b, v)
	}
}

func wantNone(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNone {
		t.Fatalf("want None, got %#v", v)
	}
}

// wantErrKind runs src expecting a *RuntimeError of the given kind whose
// message contains substr.
func wantErrKind(t *testing.T, src string, kind ErrorKind, substr string) {
	t.Helper()
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("want %s, got success\nsource:\n%s", kind.Label(), src)
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if re.Kind != kind {
		t.Fatalf("want kind %s, got %s: %v", kind.Label(), re.Kind.Label(), re)
	}
	if !strings.Contains(re.Msg, substr) {
		t.Fatalf("want message containing %q, got %q", substr, re.Msg)
	}
}

// --- literals and operators ------------------------------------------------

func Test_Eval_Literals(t *testing.T) {
	wantNum(t, evalSrc(t, "42"), 42)
	wantNum(t, evalSrc(t, "5."), 5.0)
	wantNum(t, evalSrc(t, ".5"), 0.5)
	wantNum(t, evalSrc(t, "1e3"), 1000)
	wantStr(t, evalSrc(t, `"hi"`), "hi")
	wantStr(t, evalSrc(t, `'hi'`), "hi")
	wantBool(t, evalSrc(t, "True"), true)
	wantBool(t, evalSrc(t, "False"), false)
	wantNone(t, evalSrc(t, "None"))
}

func Test_Eval_EmptyProgram(t *testing.T) {
	wantNone(t, evalSrc(t, ""))
	wantNone(t, evalSrc(t, "\n\n# just a comment\n"))
}

func Test_Eval_Arithmetic_And_Precedence(t *testing.T) {
	wantNum(t, evalSrc(t, "1 + 2 * 3"), 7)
	wantNum(t, evalSrc(t, "(1 + 2) * 3"), 9)
	wantNum(t, evalSrc(t, "10 / 4"), 2.5)
	wantNum(t, evalSrc(t, "7 % 4"), 3)
	wantNum(t, evalSrc(t, "-3 + 5"), 2)
	wantNum(t, evalSrc(t, "-(2 + 3)"), -5)
}

func Test_Eval_Comparisons(t *testing.T) {
	wantBool(t, evalSrc(t, "3 < 4"), true)
	wantBool(t, evalSrc(t, "4 <= 3"), false)
	wantBool(t, evalSrc(t, `"apple" < "banana"`), true)
	wantBool(t, evalSrc(t, "1 == 1"), true)
	wantBool(t, evalSrc(t, "1 != 2"), true)
	wantBool(t, evalSrc(t, "[1, 2] == [1, 2]"), true)
	wantBool(t, evalSrc(t, "(1, 2) == (1, 2)"), true)
	wantBool(t, evalSrc(t, `1 == "1"`), false)
}

func Test_Eval_Operators_Are_Ordinary_Bindings(t *testing.T) {
	// An operator reaches its primitive through plain name lookup, so a
	// local rebinding shadows it like any other name.
	src := `
plus = 1 + 2
plus
`
	wantNum(t, evalSrc(t, src), 3)

	ip := NewInterpreter()
	v, err := ip.Global.Get("+")
	if err != nil {
		t.Fatalf("operator lookup through Global: %v", err)
	}
	if v.Tag != VTPrimitive {
		t.Fatalf("want '+' bound to a primitive, got %#v", v)
	}
}

// --- boolean operators -----------------------------------------------------

func Test_Eval_AndOr_Return_Operands(t *testing.T) {
	wantNum(t, evalSrc(t, "0 and 1"), 0)
	wantNum(t, evalSrc(t, "2 and 3"), 3)
	wantNum(t, evalSrc(t, "0 or 5"), 5)
	wantStr(t, evalSrc(t, `"x" or "y"`), "x")
	wantNone(t, evalSrc(t, "None or None"))
}

func Test_Eval_AndOr_ShortCircuit(t *testing.T) {
	// The right operand must not evaluate when the left decides.
	wantBool(t, evalSrc(t, "True or undefined_name"), true)
	wantBool(t, evalSrc(t, "False and undefined_name"), false)
	// But a taken right operand is still type-checked.
	wantErrKind(t, "1 and print", ErrType, "unsupported operand type for 'and'")
	wantErrKind(t, "0 or print", ErrType, "unsupported operand type for 'or'")
}

func Test_Eval_Not(t *testing.T) {
	wantBool(t, evalSrc(t, "not True"), false)
	wantBool(t, evalSrc(t, "not 0"), true)
	wantBool(t, evalSrc(t, `not ""`), true)
	wantBool(t, evalSrc(t, "not []"), true)
	wantBool(t, evalSrc(t, "not [0]"), false)
	wantBool(t, evalSrc(t, "not None"), true)
	wantErrKind(t, "not print", ErrType, "unsupported operand type for 'not'")
}

// --- conditionals ----------------------------------------------------------

func Test_Eval_If_Requires_Bool(t *testing.T) {
	wantNum(t, evalSrc(t, "if True: 1"), 1)
	wantNone(t, evalSrc(t, "if False: 1"))
	wantErrKind(t, "if 1: 2", ErrType, "condition must be a bool")
	wantErrKind(t, `if "yes": 2`, ErrType, "condition must be a bool")
}

func Test_Eval_If_Elif_Else(t *testing.T) {
	src := `
def grade(n):
    if n >= 90:
        return "A"
    elif n >= 80:
        return "B"
    elif n >= 70:
        return "C"
    else:
        return "F"
grade(85)
`
	wantStr(t, evalSrc(t, src), "B")
	wantStr(t, evalSrc(t, strings.Replace(src, "grade(85)", "grade(95)", 1)), "A")
	wantStr(t, evalSrc(t, strings.Replace(src, "grade(85)", "grade(10)", 1)), "F")
}

// --- scoping ---------------------------------------------------------------

func Test_Scope_Closure_Reads_Defining_Frame(t *testing.T) {
	src := `
def outer():
    x = 10
    def inner():
        return x
    return inner
f = outer()
f()
`
	wantNum(t, evalSrc(t, src), 10)
}

func Test_Scope_Assignment_Shadows_Not_Mutates(t *testing.T) {
	// Definition always writes the current frame, so a function-local
	// assignment shadows and the outer binding survives.
	src := `
x = 1
def f():
    x = 99
    return x
f()
x
`
	wantNum(t, evalSrc(t, src), 1)
}

func Test_Scope_Call_Frame_Is_Discarded(t *testing.T) {
	src := `
def f():
    local = 42
    return local
f()
local
`
	wantErrKind(t, src, ErrName, `name "local" is not defined`)
}

func Test_Scope_For_Variable_Leaks_To_Enclosing_Frame(t *testing.T) {
	src := `
for i in [1, 2, 3]:
    last = i
i + last
`
	wantNum(t, evalSrc(t, src), 6)
}

func Test_Scope_EvalSource_Is_Sandboxed(t *testing.T) {
	ip := NewInterpreter()
	if _, err := ip.EvalSource("x = 1"); err != nil {
		t.Fatalf("first eval: %v", err)
	}
	if _, err := ip.EvalSource("x"); err == nil {
		t.Fatal("want NameError across sandboxed EvalSource calls, got success")
	}
}

func Test_Scope_EvalPersistentSource_Keeps_State(t *testing.T) {
	ip := NewInterpreter()
	mustEvalPersistent(t, ip, "x = 1")
	mustEvalPersistent(t, ip, "def bump(): x + 1")
	wantNum(t, mustEvalPersistent(t, ip, "bump()"), 2)
}

// --- loops and signals -----------------------------------------------------

func Test_Eval_While_Returns_Last_Body_Value(t *testing.T) {
	src := `
x = 0
while x < 3:
    x = x + 1
`
	wantNum(t, evalSrc(t, src), 3)
}

func Test_Eval_While_Break_Keeps_Previous_Value(t *testing.T) {
	src := `
x = 0
while True:
    x = x + 1
    if x == 5:
        break
x
`
	wantNum(t, evalSrc(t, src), 5)
}

func Test_Eval_For_Continue_Skips(t *testing.T) {
	src := `
total = 0
for n in [1, 2, 3, 4, 5]:
    if n % 2 == 0:
        continue
    total = total + n
total
`
	wantNum(t, evalSrc(t, src), 9)
}

func Test_Eval_For_Over_Tuple(t *testing.T) {
	src := `
total = 0
for n in (1, 2, 3):
    total = total + n
total
`
	wantNum(t, evalSrc(t, src), 6)
}

func Test_Eval_For_Rejects_Non_Sequence(t *testing.T) {
	wantErrKind(t, "for x in 5:\n    x", ErrType, "for expects a list or tuple")
}

func Test_Eval_Return_Unwinds_Nested_Loops(t *testing.T) {
	src := `
def find():
    for i in [1, 2, 3]:
        for j in [1, 2, 3]:
            if i * j == 4:
                return i + j
find()
`
	wantNum(t, evalSrc(t, src), 4)
}

func Test_Eval_Signals_Outside_Construct(t *testing.T) {
	wantErrKind(t, "break", ErrControl, "'break' outside loop")
	wantErrKind(t, "continue", ErrControl, "'continue' outside loop")
	wantErrKind(t, "return 1", ErrControl, "'return' outside function")
	// A break inside a function but outside any loop unwinds the call too.
	wantErrKind(t, "def f():\n    break\nf()", ErrControl, "'break' outside loop")
}

// --- functions -------------------------------------------------------------

func Test_Call_Implicit_Last_Value(t *testing.T) {
	wantNum(t, evalSrc(t, "def f():\n    1 + 2\nf()"), 3)
	wantNone(t, evalSrc(t, "def f():\n    x = 1\n    return\nf()"))
}

func Test_Call_Arity_Errors(t *testing.T) {
	wantErrKind(t, "def f(a, b): a\nf(1)", ErrArity, `missing argument "b" for f()`)
	wantErrKind(t, "def f(a): a\nf(1, 2)", ErrArity, "f() takes 1 arguments but 2 were given")
}

func Test_Call_Variadic_Tail(t *testing.T) {
	src := `
def f(first, *rest):
    return rest
len(f(1, 2, 3, 4))
`
	wantNum(t, evalSrc(t, src), 3)
	wantNum(t, evalSrc(t, "def f(*all):\n    return len(all)\nf()"), 0)
}

func Test_Call_Not_Callable(t *testing.T) {
	wantErrKind(t, "x = 5\nx()", ErrType, "value of type number is not callable")
	wantErrKind(t, `"s"()`, ErrType, "not callable")
}

func Test_Call_Recursion(t *testing.T) {
	src := `
def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)
fact(6)
`
	wantNum(t, evalSrc(t, src), 720)
}

func Test_Call_RegisterPrimitive(t *testing.T) {
	ip := NewInterpreter()
	ip.RegisterPrimitive("double", func(args []Value) (Value, error) {
		if err := wantArity("double", args, 1); err != nil {
			return Value{}, err
		}
		return Number(args[0].Data.(float64) * 2), nil
	})
	v, err := ip.EvalSource("double(21)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 42)
}

// --- classes and objects ---------------------------------------------------

const pointSrc = `
class Point:
    def __init__(self, x, y):
        self.x = x
        self.y = y
    def mag2(self):
        return self.x * self.x + self.y * self.y
    def shift(self, dx):
        self.x = self.x + dx
`

func Test_Class_Construct_And_Method(t *testing.T) {
	wantNum(t, evalSrc(t, pointSrc+"p = Point(3, 4)\np.mag2()"), 25)
	wantNum(t, evalSrc(t, pointSrc+"Point(3, 4).x"), 3)
}

func Test_Class_Method_Mutates_Receiver(t *testing.T) {
	src := pointSrc + `
p = Point(1, 0)
p.shift(9)
p.x
`
	wantNum(t, evalSrc(t, src), 10)
}

func Test_Class_Bound_Method_Is_A_Value(t *testing.T) {
	src := pointSrc + `
p = Point(3, 4)
m = p.mag2
m()
`
	wantNum(t, evalSrc(t, src), 25)
}

func Test_Class_Constructor_Ignores_Surplus_Args(t *testing.T) {
	wantNum(t, evalSrc(t, pointSrc+"Point(1, 2, 3, 4).y"), 2)
}

func Test_Class_Constructor_Missing_Args_Fatal(t *testing.T) {
	wantErrKind(t, pointSrc+"Point(1)", ErrArity, `missing argument "y" for Point.__init__()`)
}

func Test_Class_Constructor_Return_Is_Discarded(t *testing.T) {
	src := `
class C:
    def __init__(self):
        self.ok = True
        return 99
type(C())
`
	wantStr(t, evalSrc(t, src), "C")
}

func Test_Class_Without_Init(t *testing.T) {
	src := `
class Bag:
    def put(self, v):
        self.item = v
        return self
Bag().put(7).item
`
	wantNum(t, evalSrc(t, src), 7)
}

func Test_Class_Attribute_Shadows_Method(t *testing.T) {
	src := pointSrc + `
p = Point(0, 0)
p.mag2 = 123
p.mag2
`
	wantNum(t, evalSrc(t, src), 123)
}

func Test_Class_Missing_Attribute(t *testing.T) {
	wantErrKind(t, pointSrc+"Point(0, 0).z", ErrAttribute, `Point object has no attribute "z"`)
}

func Test_Class_Attr_On_Non_Object(t *testing.T) {
	wantErrKind(t, "x = 5\nx.y", ErrType, "cannot access attribute on value of type number")
	wantErrKind(t, "x = 5\nx.y = 1", ErrType, "cannot assign attribute on value of type number")
}

func Test_Class_Instances_Compare_By_Identity(t *testing.T) {
	src := pointSrc + `
a = Point(1, 2)
b = Point(1, 2)
(a == a, a == b)
`
	v := evalSrc(t, src)
	if v.Tag != VTTuple {
		t.Fatalf("want tuple, got %#v", v)
	}
	pair := v.Data.([]Value)
	wantBool(t, pair[0], true)
	wantBool(t, pair[1], false)
}

// --- lists, tuples, indexing, membership -----------------------------------

func Test_Lists_Share_By_Reference(t *testing.T) {
	ip := NewInterpreter()
	mustEvalPersistent(t, ip, "a = [1, 2]\nb = a")
	a, err := ip.Global.Get("a")
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	b, err := ip.Global.Get("b")
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if a.Data.(*ListObject) != b.Data.(*ListObject) {
		t.Fatal("want a and b to alias the same list storage")
	}
	// Concatenation builds fresh storage.
	mustEvalPersistent(t, ip, "c = a + [3]")
	c, _ := ip.Global.Get("c")
	if c.Data.(*ListObject) == a.Data.(*ListObject) {
		t.Fatal("want '+' to build a new list, not mutate the left operand")
	}
}

func Test_Index_Positive_And_Negative(t *testing.T) {
	wantNum(t, evalSrc(t, "[10, 20, 30][0]"), 10)
	wantNum(t, evalSrc(t, "[10, 20, 30][-1]"), 30)
	wantNum(t, evalSrc(t, "(4, 5)[1]"), 5)
	wantStr(t, evalSrc(t, `"abc"[1]`), "b")
	wantStr(t, evalSrc(t, `"abc"[-3]`), "a")
}

func Test_Index_Out_Of_Range(t *testing.T) {
	wantErrKind(t, "[1, 2][2]", ErrIndex, "list index out of range")
	wantErrKind(t, "[1, 2][-3]", ErrIndex, "list index out of range")
	wantErrKind(t, "(1,)[1]", ErrIndex, "tuple index out of range")
	wantErrKind(t, `""[0]`, ErrIndex, "string index out of range")
}

func Test_Index_Type_Errors(t *testing.T) {
	wantErrKind(t, `[1][  "0"  ]`, ErrType, "index must be a number")
	wantErrKind(t, "5[0]", ErrType, "value of type number is not subscriptable")
}

func Test_Membership(t *testing.T) {
	wantBool(t, evalSrc(t, "2 in [1, 2, 3]"), true)
	wantBool(t, evalSrc(t, "5 in (1, 2)"), false)
	wantBool(t, evalSrc(t, `"ell" in "hello"`), true)
	wantBool(t, evalSrc(t, `"z" in "hello"`), false)
	// A non-string element against a string container answers False.
	wantBool(t, evalSrc(t, `5 in "hello"`), false)
	wantErrKind(t, "1 in 2", ErrType, "'in' is only supported")
}

func Test_Tuples(t *testing.T) {
	wantNum(t, evalSrc(t, "len(())"), 0)
	wantNum(t, evalSrc(t, "len((1,))"), 1)
	wantNum(t, evalSrc(t, "len((1, 2) + (3,))"), 3)
}

// --- error positions -------------------------------------------------------

func Test_Errors_Carry_Positions(t *testing.T) {
	ip := NewInterpreter()
	_, err := ip.EvalSource("x = 1\nmissing")
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RuntimeError, got %T", err)
	}
	if re.Line != 2 || re.Col != 1 {
		t.Fatalf("want position 2:1, got %d:%d", re.Line, re.Col)
	}
}

func Test_Errors_Primitive_Failure_Pinned_To_Call_Site(t *testing.T) {
	ip := NewInterpreter()
	_, err := ip.EvalSource("\n\nlen(5)")
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("want *RuntimeError, got %T", err)
	}
	if re.Kind != ErrType {
		t.Fatalf("want TypeError, got %s", re.Kind.Label())
	}
	if re.Line != 3 {
		t.Fatalf("want line 3, got %d", re.Line)
	}
}
