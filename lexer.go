// lexer.go — indentation-aware scanner for Pithon source.
package pithon

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	NEWLINE
	INDENT
	DEDENT

	// Literals & identifiers
	ID
	NUMBER
	STRING
	BOOLEAN
	NONE

	// Punctuation
	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	COMMA   // ","
	COLON   // ":"
	PERIOD  // "."

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	MOD
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Keywords
	AND
	OR
	NOT
	IF
	ELIF
	ELSE
	WHILE
	FOR
	IN
	BREAK
	CONTINUE
	RETURN
	DEF
	CLASS
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // float64 for NUMBER, string for STRING, bool for BOOLEAN
	Line    int         // 1-based
	Col     int         // 1-based
}

var keywords = map[string]TokenType{
	"True":     BOOLEAN,
	"False":    BOOLEAN,
	"None":     NONE,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"def":      DEF,
	"class":    CLASS,
}

// Lexer scans a Pithon source string into tokens. Indentation is
// significant: at the start of each logical line the scanner compares the
// leading whitespace against an indent stack and emits INDENT/DEDENT
// tokens; logical line ends emit NEWLINE. Inside brackets, newlines and
// indentation are not significant (implicit line joining).
type Lexer struct {
	src    string
	cur    int
	line   int // 1-based
	col    int // 0-based within line
	tokens []Token

	indents []int // indentation stack, always starts with 0
	depth   int   // open bracket nesting

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 0, indents: []int{0}}
}

// Tokenize scans the whole source. On failure it returns a *LexError.
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src).scan()
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekNext() byte {
	if l.cur+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.src[l.cur] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) add(tt TokenType, lexeme string, lit interface{}) {
	l.tokens = append(l.tokens, Token{
		Type: tt, Lexeme: lexeme, Literal: lit,
		Line: l.tokStartLine, Col: l.tokStartCol,
	})
}

func (l *Lexer) err(format string, args ...any) error {
	return &LexError{Line: l.line, Col: l.col + 1, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) scan() ([]Token, error) {
	for !l.isAtEnd() {
		if l.col == 0 && l.depth == 0 {
			if err := l.handleIndentation(); err != nil {
				return nil, err
			}
			if l.isAtEnd() {
				break
			}
		}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	// Close the last logical line and unwind the indent stack. With an
	// open bracket no NEWLINE is owed; the parser then hits EOF and marks
	// the input incomplete.
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Type != NEWLINE && l.depth == 0 {
		l.tokStartLine, l.tokStartCol = l.line, l.col+1
		l.add(NEWLINE, "", nil)
	}
	l.tokStartLine, l.tokStartCol = l.line, l.col+1
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.add(DEDENT, "", nil)
	}
	l.add(EOF, "", nil)
	return l.tokens, nil
}

// handleIndentation measures the leading whitespace of the line at l.cur and
// emits INDENT/DEDENT against the stack. Blank and comment-only lines are
// consumed whole and do not affect indentation; measurement happens on the
// next line that carries code, so the tokens owed there are still emitted.
func (l *Lexer) handleIndentation() error {
	for {
		width := 0
		for !l.isAtEnd() {
			switch l.peek() {
			case ' ':
				width++
				l.advance()
				continue
			case '\t':
				width += 8 - width%8 // tab stops every 8 columns
				l.advance()
				continue
			}
			break
		}
		if l.isAtEnd() {
			return nil
		}
		if ch := l.peek(); ch == '\n' || ch == '\r' || ch == '#' {
			// Blank or comment-only line: skip it and measure the next.
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
			if !l.isAtEnd() {
				l.advance() // the newline itself
			}
			continue
		}

		l.tokStartLine, l.tokStartCol = l.line, 1
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.add(INDENT, "", nil)
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.add(DEDENT, "", nil)
			}
			if l.indents[len(l.indents)-1] != width {
				return l.err("unindent does not match any outer indentation level")
			}
		}
		return nil
	}
}

func (l *Lexer) scanToken() error {
	l.tokStartLine, l.tokStartCol = l.line, l.col+1
	ch := l.advance()

	switch ch {
	case ' ', '\t', '\r':
		return nil
	case '#':
		for !l.isAtEnd() && l.peek() != '\n' {
			l.advance()
		}
		return nil
	case '\n':
		if l.depth == 0 {
			if n := len(l.tokens); n > 0 {
				switch l.tokens[n-1].Type {
				case NEWLINE, INDENT, DEDENT:
					// No empty logical line.
				default:
					l.add(NEWLINE, "\n", nil)
				}
			}
		}
		return nil

	case '(':
		l.depth++
		l.add(LROUND, "(", nil)
	case ')':
		l.depth--
		l.add(RROUND, ")", nil)
	case '[':
		l.depth++
		l.add(LSQUARE, "[", nil)
	case ']':
		l.depth--
		l.add(RSQUARE, "]", nil)
	case ',':
		l.add(COMMA, ",", nil)
	case ':':
		l.add(COLON, ":", nil)
	case '+':
		l.add(PLUS, "+", nil)
	case '-':
		l.add(MINUS, "-", nil)
	case '*':
		l.add(MULT, "*", nil)
	case '/':
		l.add(DIV, "/", nil)
	case '%':
		l.add(MOD, "%", nil)
	case '=':
		if l.match('=') {
			l.add(EQ, "==", nil)
		} else {
			l.add(ASSIGN, "=", nil)
		}
	case '!':
		if l.match('=') {
			l.add(NEQ, "!=", nil)
		} else {
			return l.err("unexpected character '!'")
		}
	case '<':
		if l.match('=') {
			l.add(LESS_EQ, "<=", nil)
		} else {
			l.add(LESS, "<", nil)
		}
	case '>':
		if l.match('=') {
			l.add(GREATER_EQ, ">=", nil)
		} else {
			l.add(GREATER, ">", nil)
		}
	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber(ch)
		}
		l.add(PERIOD, ".", nil)
	case '"', '\'':
		return l.scanString(ch)

	default:
		switch {
		case isDigit(ch):
			return l.scanNumber(ch)
		case isAlpha(ch):
			l.scanIdentifier(ch)
		default:
			return l.err("unexpected character %q", string(ch))
		}
	}
	return nil
}

func (l *Lexer) scanString(quote byte) error {
	var b []byte
	for {
		if l.isAtEnd() || l.peek() == '\n' {
			return l.err("unterminated string literal")
		}
		ch := l.advance()
		if ch == quote {
			break
		}
		if ch != '\\' {
			b = append(b, ch)
			continue
		}
		if l.isAtEnd() {
			return l.err("unterminated string literal")
		}
		esc := l.advance()
		switch esc {
		case 'n':
			b = append(b, '\n')
		case 't':
			b = append(b, '\t')
		case 'r':
			b = append(b, '\r')
		case '\\', '\'', '"':
			b = append(b, esc)
		default:
			return l.err("invalid escape sequence '\\%s'", string(esc))
		}
	}
	l.add(STRING, string(b), string(b))
	return nil
}

func (l *Lexer) scanNumber(first byte) error {
	start := l.cur - 1
	if first != '.' {
		for isDigit(l.peek()) {
			l.advance()
		}
		if l.peek() == '.' && l.peekNext() != '.' {
			l.advance()
		}
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekNext()
		if isDigit(next) || next == '+' || next == '-' {
			l.advance()
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	lexeme := l.src[start:l.cur]
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return l.err("invalid number literal %q", lexeme)
	}
	l.add(NUMBER, lexeme, f)
	return nil
}

func (l *Lexer) scanIdentifier(first byte) {
	start := l.cur - 1
	for isAlphaNum(l.peek()) {
		l.advance()
	}
	name := l.src[start:l.cur]
	if tt, ok := keywords[name]; ok {
		switch tt {
		case BOOLEAN:
			l.add(BOOLEAN, name, name == "True")
		default:
			l.add(tt, name, nil)
		}
		return
	}
	l.add(ID, name, nil)
}
