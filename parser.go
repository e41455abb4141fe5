// parser.go — recursive-descent parser for Pithon.
//
// Consumes the token stream produced by the indentation-aware lexer (see
// lexer.go) and builds the typed AST of ast.go. Statement structure follows
// the INDENT/DEDENT tokens; expressions use precedence climbing:
//
//	or  <  and  <  not  <  comparison / in  <  + -  <  * / %  <  unary -  <
//	postfix (call, subscript, attribute)
//
// Notes on how the grammar maps onto the closed node set:
//   - Assignment is parsed at statement level but is an expression node:
//     `x = y = 1` chains right-associatively and yields the assigned value.
//   - `elif` is sugar: it parses as a nested If in the else branch.
//   - Unary minus parses as the operator call `0 - x`, reusing the ordinary
//     `-` primitive; `not` is its own node.
//   - A suite is either an indented block or a single simple statement on
//     the same line (`if x: y = 1`).
//
// Parse errors carry an Incomplete flag when the input ended mid-construct,
// which the REPL uses to keep reading continuation lines.
package pithon

import "fmt"

// Parser consumes a token slice and produces a program.
type Parser struct {
	tokens []Token
	cur    int
}

// Parse tokenizes and parses src into a program (a statement sequence).
// Failures are *LexError or *ParseError.
func Parse(src string) ([]Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	var program []Node
	for !p.check(EOF) {
		if p.accept(NEWLINE) {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

// ----------------------------------------------------------------------------
// Token plumbing
// ----------------------------------------------------------------------------

func (p *Parser) peek() Token { return p.tokens[p.cur] }

func (p *Parser) advance() Token {
	tok := p.tokens[p.cur]
	if tok.Type != EOF {
		p.cur++
	}
	return tok
}

func (p *Parser) check(tt TokenType) bool { return p.tokens[p.cur].Type == tt }

func (p *Parser) accept(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.fail(p.peek(), "expected %s", what)
}

// fail builds a ParseError at tok; hitting EOF marks the input incomplete.
func (p *Parser) fail(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok.Type == EOF {
		return &ParseError{Line: tok.Line, Col: tok.Col, Msg: msg + ", got end of input", Incomplete: true}
	}
	got := tok.Lexeme
	if got == "" || tok.Type == NEWLINE {
		got = describeToken(tok.Type)
	}
	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf("%s, got %q", msg, got)}
}

func describeToken(tt TokenType) string {
	switch tt {
	case NEWLINE:
		return "end of line"
	case INDENT:
		return "indent"
	case DEDENT:
		return "dedent"
	default:
		return "token"
	}
}

func at(tok Token) pos { return pos{Line: tok.Line, Col: tok.Col} }

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseStatement() (Node, error) {
	switch p.peek().Type {
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case DEF:
		return p.parseDef()
	case CLASS:
		return p.parseClass()
	default:
		return p.parseSimpleLine()
	}
}

// parseSimpleLine parses a one-line statement and its trailing newline:
// break, continue, return, or an expression/assignment.
func (p *Parser) parseSimpleLine() (Node, error) {
	var stmt Node
	switch p.peek().Type {
	case BREAK:
		tok := p.advance()
		stmt = &Break{pos: at(tok)}
	case CONTINUE:
		tok := p.advance()
		stmt = &Continue{pos: at(tok)}
	case RETURN:
		tok := p.advance()
		value := Node(&NoneLit{pos: at(tok)})
		if !p.check(NEWLINE) && !p.check(EOF) {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			value = v
		}
		stmt = &Return{pos: at(tok), Value: value}
	default:
		s, err := p.parseExprOrAssign()
		if err != nil {
			return nil, err
		}
		stmt = s
	}
	if _, err := p.expect(NEWLINE, "end of statement"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSuite parses `:` followed by either an indented block or a single
// simple statement on the same line.
func (p *Parser) parseSuite() ([]Node, error) {
	if _, err := p.expect(COLON, "':'"); err != nil {
		return nil, err
	}
	if !p.accept(NEWLINE) {
		stmt, err := p.parseSimpleLine()
		if err != nil {
			return nil, err
		}
		return []Node{stmt}, nil
	}
	if _, err := p.expect(INDENT, "an indented block"); err != nil {
		return nil, err
	}
	var body []Node
	for !p.check(DEDENT) && !p.check(EOF) {
		if p.accept(NEWLINE) {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(DEDENT, "end of block"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseIf() (Node, error) {
	tok := p.advance() // if / elif
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	node := &If{pos: at(tok), Cond: cond, Then: then}
	switch {
	case p.check(ELIF):
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		node.Else = []Node{nested}
	case p.accept(ELSE):
		elseBody, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	return node, nil
}

func (p *Parser) parseWhile() (Node, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &While{pos: at(tok), Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (Node, error) {
	tok := p.advance()
	name, err := p.expect(ID, "a loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN, "'in'"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &For{pos: at(tok), Var: name.Lexeme, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseDef() (*FunctionDef, error) {
	tok := p.advance()
	name, err := p.expect(ID, "a function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LROUND, "'('"); err != nil {
		return nil, err
	}
	var params []string
	vararg := ""
	for !p.check(RROUND) {
		if p.accept(MULT) {
			rest, err := p.expect(ID, "a parameter name after '*'")
			if err != nil {
				return nil, err
			}
			vararg = rest.Lexeme
			break // the variadic tail must be last
		}
		param, err := p.expect(ID, "a parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, param.Lexeme)
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RROUND, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &FunctionDef{pos: at(tok), Name: name.Lexeme, Params: params, Vararg: vararg, Body: body}, nil
}

func (p *Parser) parseClass() (Node, error) {
	tok := p.advance()
	name, err := p.expect(ID, "a class name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "':'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(NEWLINE, "end of line"); err != nil {
		return nil, err
	}
	if _, err := p.expect(INDENT, "an indented class body"); err != nil {
		return nil, err
	}
	var methods []*FunctionDef
	for !p.check(DEDENT) && !p.check(EOF) {
		if p.accept(NEWLINE) {
			continue
		}
		if !p.check(DEF) {
			return nil, p.fail(p.peek(), "expected a method definition in class body")
		}
		m, err := p.parseDef()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if _, err := p.expect(DEDENT, "end of class body"); err != nil {
		return nil, err
	}
	return &ClassDef{pos: at(tok), Name: name.Lexeme, Methods: methods}, nil
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// parseExprOrAssign parses an expression and, on '=', turns it into an
// assignment node. Chains are right-associative.
func (p *Parser) parseExprOrAssign() (Node, error) {
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(ASSIGN) {
		return target, nil
	}
	eq := p.advance()
	value, err := p.parseExprOrAssign()
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *VarRef:
		return &Assign{pos: t.pos, Name: t.Name, Value: value}, nil
	case *AttrAccess:
		return &AttrAssign{pos: t.pos, Object: t.Object, Attr: t.Attr, Value: value}, nil
	default:
		return nil, p.fail(eq, "cannot assign to this expression")
	}
}

func (p *Parser) parseExpr() (Node, error) { return p.parseOr() }

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(OR) {
		tok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrOp{pos: at(tok), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.check(AND) {
		tok := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &AndOp{pos: at(tok), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Node, error) {
	if p.check(NOT) {
		tok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotOp{pos: at(tok), Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
			tok := p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{pos: at(tok), Op: tok.Lexeme, Left: left, Right: right}
		case IN:
			tok := p.advance()
			container, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &InOp{pos: at(tok), Element: left, Container: container}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		tok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{pos: at(tok), Op: tok.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(MULT) || p.check(DIV) || p.check(MOD) {
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{pos: at(tok), Op: tok.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.check(MINUS) {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Negation is the ordinary '-' operator applied to a zero left
		// operand, which keeps the node set closed.
		return &BinaryOp{pos: at(tok), Op: "-", Left: &NumberLit{pos: at(tok)}, Right: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LROUND:
			tok := p.advance()
			var args []Node
			for !p.check(RROUND) {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.accept(COMMA) {
					break
				}
			}
			if _, err := p.expect(RROUND, "')'"); err != nil {
				return nil, err
			}
			expr = &Call{pos: at(tok), Fn: expr, Args: args}
		case LSQUARE:
			tok := p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RSQUARE, "']'"); err != nil {
				return nil, err
			}
			expr = &Subscript{pos: at(tok), Collection: expr, Index: index}
		case PERIOD:
			tok := p.advance()
			attr, err := p.expect(ID, "an attribute name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &AttrAccess{pos: at(tok), Object: expr, Attr: attr.Lexeme}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &NumberLit{pos: at(tok), Value: tok.Literal.(float64)}, nil
	case STRING:
		p.advance()
		return &StringLit{pos: at(tok), Value: tok.Literal.(string)}, nil
	case BOOLEAN:
		p.advance()
		return &BoolLit{pos: at(tok), Value: tok.Literal.(bool)}, nil
	case NONE:
		p.advance()
		return &NoneLit{pos: at(tok)}, nil
	case ID:
		p.advance()
		return &VarRef{pos: at(tok), Name: tok.Lexeme}, nil
	case LSQUARE:
		p.advance()
		var elems []Node
		for !p.check(RSQUARE) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.accept(COMMA) {
				break
			}
		}
		if _, err := p.expect(RSQUARE, "']'"); err != nil {
			return nil, err
		}
		return &ListLit{pos: at(tok), Elems: elems}, nil
	case LROUND:
		p.advance()
		if p.accept(RROUND) {
			return &TupleLit{pos: at(tok)}, nil
		}
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.check(COMMA) {
			if _, err := p.expect(RROUND, "')'"); err != nil {
				return nil, err
			}
			return first, nil // plain grouping
		}
		elems := []Node{first}
		for p.accept(COMMA) {
			if p.check(RROUND) {
				break // trailing comma
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(RROUND, "')'"); err != nil {
			return nil, err
		}
		return &TupleLit{pos: at(tok), Elems: elems}, nil
	default:
		return nil, p.fail(tok, "expected an expression")
	}
}
