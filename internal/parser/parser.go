// Package parser turns a Conflake token stream into a typed AST.
//
// The grammar is parsed by recursive descent with precedence climbing for
// binary operators. Parsing is single-pass and allocates every expression
// node exactly once, stamping each with a dense, creation-ordered ID.
// The first error terminates parsing; no recovery is attempted.
package parser

import (
	"fmt"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/lexer"
)

// Error is a parse error carrying the offending token.
type Error struct {
	Message string
	Tok     lexer.Token
}

func (e *Error) Error() string { return e.Message }

// binopPrecedence is the fixed operator precedence table; 1 is lowest.
// Tokens not present terminate an expression.
var binopPrecedence = map[byte]int{
	'<': 10,
	'>': 10,
	'+': 20,
	'-': 20,
	'*': 40,
}

// logicalPrecedence gives the infix word operators. They bind looser than
// comparisons and parse into the call form the operator table dispatches
// on: a and b becomes and(a, b).
var logicalPrecedence = map[string]int{
	"or":  4,
	"and": 6,
}

// Parser consumes a finite token stream ending in EOF.
type Parser struct {
	tokens []lexer.Token
	pos    int
	nextID ast.ExprID
}

// New creates a parser over a token stream. The stream must end in EOF.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes nothing and recovers nothing: it consumes the stream and
// returns the ordered top-level units, or the first error.
//
//	top := (extern | definition | ';' | toplevel_expr)*
func (p *Parser) Parse() (ast.TopLevel, error) {
	var top ast.TopLevel
	for {
		tok := p.cur()
		switch {
		case tok.Type == lexer.EOF:
			return top, nil

		case tok.Type == lexer.DEF:
			fn, err := p.parseDefinition()
			if err != nil {
				return nil, err
			}
			top = append(top, fn)

		case tok.Type == lexer.EXTERN:
			sig, err := p.parseExtern()
			if err != nil {
				return nil, err
			}
			top = append(top, sig)

		case tok.IsOp(';'):
			p.advance()

		default:
			fn, err := p.parseTopLevelExpr()
			if err != nil {
				return nil, err
			}
			top = append(top, fn)
		}
	}
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) newID() ast.ExprID {
	id := p.nextID
	p.nextID++
	return id
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...), Tok: tok}
}

// parseExpression parses: primary (binop primary)*, resolved by precedence.
func (p *Parser) parseExpression() (ast.Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS folds operators of at least exprPrec precedence into lhs.
// Left-associative; a higher-precedence operator on the right takes the
// pending operand first.
func (p *Parser) parseBinOpRHS(exprPrec int, lhs ast.Expr) (ast.Expr, error) {
	for {
		tokPrec := p.tokPrecedence()
		if tokPrec < exprPrec {
			return lhs, nil
		}

		op := p.cur()
		p.advance()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		if nextPrec := p.tokPrecedence(); tokPrec < nextPrec {
			rhs, err = p.parseBinOpRHS(tokPrec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		if op.Type == lexer.IDENT {
			lhs = ast.NewCall(p.newID(), op.Literal, []ast.Expr{lhs, rhs})
		} else {
			lhs = ast.NewBinaryExpr(p.newID(), op.Op, lhs, rhs)
		}
	}
}

// tokPrecedence returns the precedence of the current token, or -1 when it
// is not a binary operator.
func (p *Parser) tokPrecedence() int {
	tok := p.cur()
	switch tok.Type {
	case lexer.OPERATOR:
		if prec, ok := binopPrecedence[tok.Op]; ok {
			return prec
		}
	case lexer.IDENT:
		if prec, ok := logicalPrecedence[tok.Literal]; ok {
			return prec
		}
	}
	return -1
}

// parsePrimary parses:
//
//	primary := '(' expression ')'
//	         | '[' expression* ']'
//	         | ident ['(' [expression (',' expression)*] ')']
//	         | ident '[' number ']'
//	         | ident
//	         | literal
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch {
	case tok.IsOp('('):
		return p.parseParenExpr()
	case tok.IsOp('['):
		return p.parseListExpr()
	case tok.Type == lexer.IDENT:
		return p.parseIdentifierExpr()
	case tok.Type == lexer.REAL:
		p.advance()
		return ast.NewRealLiteral(p.newID(), tok.Real), nil
	case tok.Type == lexer.INTEGER:
		p.advance()
		return ast.NewIntegerLiteral(p.newID(), tok.Int), nil
	case tok.Type == lexer.BOOLEAN:
		p.advance()
		return ast.NewBooleanLiteral(p.newID(), tok.Bool), nil
	}
	return nil, p.errorf(tok, "unknown token when expecting an expression: %v", tok)
}

// parseParenExpr parses: '(' expression ')'.
func (p *Parser) parseParenExpr() (ast.Expr, error) {
	p.advance() // eat (
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cur().IsOp(')') {
		return nil, p.errorf(p.cur(), "expected ')', found: %v", p.cur())
	}
	p.advance() // eat )
	return e, nil
}

// parseListExpr parses: '[' expression* ']'. Elements are juxtaposed; any
// token that cannot begin an expression before the closing bracket is an
// error.
func (p *Parser) parseListExpr() (ast.Expr, error) {
	p.advance() // eat [
	var elems []ast.Expr
	for !p.cur().IsOp(']') {
		if p.cur().Type == lexer.EOF {
			return nil, p.errorf(p.cur(), "expected ']', found: %v", p.cur())
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	p.advance() // eat ]
	return ast.NewListExpr(p.newID(), elems), nil
}

// parseIdentifierExpr parses a variable reference, subscript or call.
func (p *Parser) parseIdentifierExpr() (ast.Expr, error) {
	name := p.cur().Literal
	p.advance()

	switch {
	case p.cur().IsOp('('):
		p.advance() // eat (
		var args []ast.Expr
		if !p.cur().IsOp(')') {
			for {
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur().IsOp(')') {
					break
				}
				if !p.cur().IsOp(',') {
					return nil, p.errorf(p.cur(), "Expected ')' or ',' in argument list, found: %v", p.cur())
				}
				p.advance() // eat ,
			}
		}
		p.advance() // eat )
		return ast.NewCall(p.newID(), name, args), nil

	case p.cur().IsOp('['):
		p.advance() // eat [
		tok := p.cur()
		var idx int64
		switch tok.Type {
		case lexer.REAL:
			idx = int64(tok.Real)
		case lexer.INTEGER:
			idx = tok.Int
		default:
			return nil, p.errorf(tok, "expected number in subscript, found: %v", tok)
		}
		p.advance()
		if !p.cur().IsOp(']') {
			return nil, p.errorf(p.cur(), "expected ']', found: %v", p.cur())
		}
		p.advance() // eat ]
		return ast.NewVar(p.newID(), name, &idx), nil
	}

	return ast.NewVar(p.newID(), name, nil), nil
}
