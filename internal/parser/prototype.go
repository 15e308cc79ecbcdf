package parser

import (
	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/lexer"
)

// parseType parses: ident ['<' type (',' type)* '>'].
func (p *Parser) parseType() (*ast.TypeDesc, error) {
	tok := p.cur()
	if tok.Type != lexer.IDENT {
		return nil, p.errorf(tok, "expected type name, found: %v", tok)
	}
	desc := &ast.TypeDesc{Name: tok.Literal}
	p.advance()

	if !p.cur().IsOp('<') {
		return desc, nil
	}
	p.advance() // eat <
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		desc.TemplateArgs = append(desc.TemplateArgs, arg)
		if p.cur().IsOp('>') {
			break
		}
		if !p.cur().IsOp(',') {
			return nil, p.errorf(p.cur(), "expected '>', found: %v", p.cur())
		}
		p.advance() // eat ,
	}
	p.advance() // eat >
	return desc, nil
}

// parsePrototype parses: ident '(' [arg (',' arg)*] ')' [':' type], where
// arg := type ident.
func (p *Parser) parsePrototype() (*ast.Signature, error) {
	tok := p.cur()
	if tok.Type != lexer.IDENT {
		return nil, p.errorf(tok, "Expected function name in prototype, found: %v", tok)
	}
	sig := &ast.Signature{Name: tok.Literal}
	p.advance()

	if !p.cur().IsOp('(') {
		return nil, p.errorf(p.cur(), "Expected '(' in prototype, found: %v", p.cur())
	}
	p.advance() // eat (

	if !p.cur().IsOp(')') {
		for {
			argType, err := p.parseType()
			if err != nil {
				return nil, err
			}
			nameTok := p.cur()
			if nameTok.Type != lexer.IDENT {
				return nil, p.errorf(nameTok, "Expected argument name in prototype, found: %v", nameTok)
			}
			p.advance()
			sig.Args = append(sig.Args, ast.Arg{Type: argType, Name: nameTok.Literal})

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

	if p.cur().IsOp(':') {
		p.advance() // eat :
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		sig.RetType = ret
	}
	return sig, nil
}

// parseDefinition parses: 'def' prototype expression.
func (p *Parser) parseDefinition() (*ast.Function, error) {
	p.advance() // eat def
	sig, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Sig: sig, Body: body}, nil
}

// parseExtern parses: 'extern' prototype.
func (p *Parser) parseExtern() (*ast.Signature, error) {
	p.advance() // eat extern
	return p.parsePrototype()
}

// parseTopLevelExpr wraps a bare expression in an anonymous zero-argument
// function.
func (p *Parser) parseTopLevelExpr() (*ast.Function, error) {
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	sig := &ast.Signature{Name: ast.AnonExprName}
	return &ast.Function{Sig: sig, Body: body}, nil
}
