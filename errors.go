// errors.go: error taxonomy and caret-snippet rendering.
//
// The library reports failures as structured values (*LexError, *ParseError,
// *RuntimeError) so hosts and tests can inspect them. WrapErrorWithName turns
// any of them into a readable, Python-style snippet with a caret pointing at
// the offending column:
//
//	RuntimeError in <repl> at 3:9: name "y" is not defined
//
//	   2 | x = 1
//	   3 | print(y)
//	     |         ^
//
// The snippet shows up to one line of context before and after, numbers the
// lines, and places the caret under the 1-based column; off-range positions
// are clamped so rendering never fails. Other error kinds pass through
// unchanged.
package pithon

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a runtime failure.
type ErrorKind int

const (
	ErrName      ErrorKind = iota // unresolved name lookup
	ErrType                       // operand/operation of the wrong variant
	ErrAttribute                  // undeclared attribute/method on an object
	ErrIndex                      // subscript beyond bounds
	ErrArity                      // argument count mismatch on a call
	ErrControl                    // break/continue/return outside its construct
)

// Label returns the Python-style name of the kind.
func (k ErrorKind) Label() string {
	switch k {
	case ErrName:
		return "NameError"
	case ErrType:
		return "TypeError"
	case ErrAttribute:
		return "AttributeError"
	case ErrIndex:
		return "IndexError"
	case ErrArity:
		return "ArityError"
	case ErrControl:
		return "ControlError"
	default:
		return "RuntimeError"
	}
}

// RuntimeError is an execution-time failure. Line/Col are 1-based; zero
// means the position is unknown (the evaluator pins call-site positions onto
// position-less errors coming out of primitives and environment lookups).
type RuntimeError struct {
	Kind ErrorKind
	Msg  string
	Line int
	Col  int
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind.Label(), e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Label(), e.Msg)
}

// LexError is a tokenization failure. Produced by lexer.go.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LexError at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError is a syntax failure. Incomplete marks input that ended in the
// middle of a construct (used by the REPL to keep reading).
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("SyntaxError at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// WrapErrorWithName renders err against src as a caret-annotated snippet.
// srcName labels where the source came from ("<repl>", a file path, ...).
// Errors that are not lex/parse/runtime failures are returned unchanged.
func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LexError", srcName, e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "SyntaxError", srcName, e.Line, e.Col, e.Msg))
	case *RuntimeError:
		return fmt.Errorf("%s", snippet(src, e.Kind.Label(), srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

// snippet builds the caret view. Coordinates are 1-based and clamped.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
