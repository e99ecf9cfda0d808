package parser

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/token"
)

func (p *Parser) parseStmt() (ast.NodeID, bool) {
	switch p.peek().Kind {
	case token.KwType:
		return p.parseTypeAlias()
	case token.KwDeclare:
		return p.parseDeclare()
	case token.KwFunction:
		return p.parseFuncDecl()
	case token.KwConst, token.KwLet, token.KwVar:
		return p.parseVarDecl()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		tok := p.advance()
		return p.node(ast.Node{Kind: ast.KindBlock, Span: tok.Span}), true
	}
	start := p.peek().Span
	x, ok := p.parseExpr()
	if !ok {
		return ast.NoNode, false
	}
	if !p.endStatement() {
		return ast.NoNode, false
	}
	return p.node(ast.Node{Kind: ast.KindExprStmt, Span: start.Cover(p.lastSpan), X: x}), true
}

func (p *Parser) parseBlock() (ast.NodeID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoNode, false
	}
	var stmts []ast.NodeID
	for !p.atOr(token.RBrace, token.EOF) && !p.opts.Enough() {
		before := p.pos
		if id, ok := p.parseStmt(); ok {
			stmts = append(stmts, id)
		} else {
			p.resync(before)
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'"); !ok {
		return ast.NoNode, false
	}
	return p.node(ast.Node{Kind: ast.KindBlock, Span: open.Span.Cover(p.lastSpan), List: stmts}), true
}

func (p *Parser) parseTypeAlias() (ast.NodeID, bool) {
	start := p.advance().Span
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected type name")
	if !ok {
		return ast.NoNode, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after type name"); !ok {
		return ast.NoNode, false
	}
	typ, ok := p.parseType()
	if !ok {
		return ast.NoNode, false
	}
	p.endStatement()
	return p.node(ast.Node{Kind: ast.KindTypeAlias, Span: start.Cover(p.lastSpan), Name: name.Text, Type: typ}), true
}

// parseDeclare handles `declare function name(params): type;`.
func (p *Parser) parseDeclare() (ast.NodeID, bool) {
	start := p.advance().Span
	if _, ok := p.expect(token.KwFunction, diag.SynUnsupported, "only 'declare function' is supported"); !ok {
		return ast.NoNode, false
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return ast.NoNode, false
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoNode, false
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectType, "declared function needs a result type"); !ok {
		return ast.NoNode, false
	}
	ret, ok := p.parseType()
	if !ok {
		return ast.NoNode, false
	}
	p.endStatement()
	return p.node(ast.Node{
		Kind: ast.KindDeclareFunc, Span: start.Cover(p.lastSpan),
		Name: name.Text, List: params, Type: ret,
	}), true
}

func (p *Parser) parseFuncDecl() (ast.NodeID, bool) {
	start := p.advance().Span
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return ast.NoNode, false
	}
	params, ok := p.parseParams()
	if !ok {
		return ast.NoNode, false
	}
	ret := ast.NoNode
	if p.eat(token.Colon) {
		if ret, ok = p.parseType(); !ok {
			return ast.NoNode, false
		}
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoNode, false
	}
	return p.node(ast.Node{
		Kind: ast.KindFuncDecl, Span: start.Cover(p.lastSpan),
		Name: name.Text, List: params, Type: ret, Body: body,
	}), true
}

// parseParams parses `(a: T, b)`; annotations are optional here and
// enforced during checking.
func (p *Parser) parseParams() ([]ast.NodeID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var params []ast.NodeID
	for !p.at(token.RParen) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
		if !ok {
			return nil, false
		}
		typ := ast.NoNode
		if p.eat(token.Colon) {
			if typ, ok = p.parseType(); !ok {
				return nil, false
			}
		}
		params = append(params, p.node(ast.Node{Kind: ast.KindParam, Span: name.Span.Cover(p.lastSpan), Name: name.Text, Type: typ}))
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseVarDecl() (ast.NodeID, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
	if !ok {
		return ast.NoNode, false
	}
	typ := ast.NoNode
	if p.eat(token.Colon) {
		if typ, ok = p.parseType(); !ok {
			return ast.NoNode, false
		}
	}
	if !p.eat(token.Assign) {
		p.errAt(diag.SynExpectInitializer, name.Span, "variable '"+name.Text+"' needs an initializer")
		return ast.NoNode, false
	}
	init, ok := p.parseExpr()
	if !ok {
		return ast.NoNode, false
	}
	p.endStatement()
	return p.node(ast.Node{
		Kind: ast.KindVarDecl, Span: kw.Span.Cover(p.lastSpan),
		Name: name.Text, Const: kw.Kind == token.KwConst, Type: typ, X: init,
	}), true
}

func (p *Parser) parseReturn() (ast.NodeID, bool) {
	start := p.advance().Span
	x := ast.NoNode
	if !p.atOr(token.Semicolon, token.RBrace, token.EOF) && !p.newlineBefore() {
		var ok bool
		if x, ok = p.parseExpr(); !ok {
			return ast.NoNode, false
		}
	}
	p.endStatement()
	return p.node(ast.Node{Kind: ast.KindReturn, Span: start.Cover(p.lastSpan), X: x}), true
}

func (p *Parser) parseCondition() (ast.NodeID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return ast.NoNode, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoNode, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
		return ast.NoNode, false
	}
	return cond, true
}

func (p *Parser) parseIf() (ast.NodeID, bool) {
	start := p.advance().Span
	cond, ok := p.parseCondition()
	if !ok {
		return ast.NoNode, false
	}
	then, ok := p.parseStmt()
	if !ok {
		return ast.NoNode, false
	}
	els := ast.NoNode
	if p.eat(token.KwElse) {
		if els, ok = p.parseStmt(); !ok {
			return ast.NoNode, false
		}
	}
	return p.node(ast.Node{Kind: ast.KindIf, Span: start.Cover(p.lastSpan), X: cond, Y: then, Z: els}), true
}

func (p *Parser) parseWhile() (ast.NodeID, bool) {
	start := p.advance().Span
	cond, ok := p.parseCondition()
	if !ok {
		return ast.NoNode, false
	}
	body, ok := p.parseStmt()
	if !ok {
		return ast.NoNode, false
	}
	return p.node(ast.Node{Kind: ast.KindWhile, Span: start.Cover(p.lastSpan), X: cond, Y: body}), true
}
