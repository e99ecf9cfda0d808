package parser

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/token"
)

// parseType parses a type name, an object type `{ a: T; b: U }` or a
// function type `(a: T) => U`.
func (p *Parser) parseType() (ast.NodeID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.node(ast.Node{Kind: ast.KindTypeName, Span: tok.Span, Name: tok.Text}), true
	case token.KwNull:
		p.advance()
		return p.node(ast.Node{Kind: ast.KindTypeName, Span: tok.Span, Name: "null"}), true
	case token.LBrace:
		return p.parseObjectType()
	case token.LParen:
		params, ok := p.parseParams()
		if !ok {
			return ast.NoNode, false
		}
		if _, ok := p.expect(token.FatArrow, diag.SynExpectType, "expected '=>' in function type"); !ok {
			return ast.NoNode, false
		}
		ret, ok := p.parseType()
		if !ok {
			return ast.NoNode, false
		}
		return p.node(ast.Node{Kind: ast.KindTypeFunc, Span: tok.Span.Cover(p.lastSpan), List: params, Type: ret}), true
	}
	p.err(diag.SynExpectType, "expected type")
	return ast.NoNode, false
}

func (p *Parser) parseObjectType() (ast.NodeID, bool) {
	open := p.advance()
	var fields []ast.NodeID
	for !p.at(token.RBrace) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name")
		if !ok {
			return ast.NoNode, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectType, "expected ':' after field name"); !ok {
			return ast.NoNode, false
		}
		typ, ok := p.parseType()
		if !ok {
			return ast.NoNode, false
		}
		fields = append(fields, p.node(ast.Node{Kind: ast.KindTypeField, Span: name.Span.Cover(p.lastSpan), Name: name.Text, Type: typ}))
		if !p.eat(token.Comma) && !p.eat(token.Semicolon) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after object type"); !ok {
		return ast.NoNode, false
	}
	return p.node(ast.Node{Kind: ast.KindTypeObject, Span: open.Span.Cover(p.lastSpan), List: fields}), true
}
