package parser

import (
	"strconv"
	"strings"

	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/token"
)

// binding powers for infix operators; higher binds tighter.
func infixPower(k token.Kind) int {
	switch k {
	case token.OrOr:
		return 1
	case token.AndAnd:
		return 2
	case token.EqEq, token.EqEqEq, token.BangEq, token.BangEqEq:
		return 3
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return 4
	case token.Plus, token.Minus:
		return 5
	case token.Star, token.Slash, token.Percent:
		return 6
	}
	return 0
}

func (p *Parser) parseExpr() (ast.NodeID, bool) {
	return p.parseAssign()
}

func (p *Parser) parseAssign() (ast.NodeID, bool) {
	lhs, ok := p.parseBinary(1)
	if !ok {
		return ast.NoNode, false
	}
	if !p.at(token.Assign) {
		return lhs, true
	}
	eq := p.advance()
	switch p.unit.Kind(lhs) {
	case ast.KindIdent, ast.KindMember:
	default:
		p.errAt(diag.SynUnexpectedToken, eq.Span, "invalid assignment target")
		return ast.NoNode, false
	}
	rhs, ok := p.parseAssign()
	if !ok {
		return ast.NoNode, false
	}
	sp := p.unit.Node(lhs).Span.Cover(p.lastSpan)
	return p.node(ast.Node{Kind: ast.KindAssign, Span: sp, X: lhs, Y: rhs}), true
}

func (p *Parser) parseBinary(minPower int) (ast.NodeID, bool) {
	lhs, ok := p.parseUnary()
	if !ok {
		return ast.NoNode, false
	}
	for {
		op := p.peek().Kind
		power := infixPower(op)
		if power == 0 || power < minPower {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(power + 1)
		if !ok {
			return ast.NoNode, false
		}
		sp := p.unit.Node(lhs).Span.Cover(p.lastSpan)
		lhs = p.node(ast.Node{Kind: ast.KindBinary, Span: sp, Op: op, X: lhs, Y: rhs})
	}
}

func (p *Parser) parseUnary() (ast.NodeID, bool) {
	if p.atOr(token.Minus, token.Bang, token.Plus) {
		op := p.advance()
		x, ok := p.parseUnary()
		if !ok {
			return ast.NoNode, false
		}
		if op.Kind == token.Plus {
			return x, true
		}
		return p.node(ast.Node{Kind: ast.KindUnary, Span: op.Span.Cover(p.lastSpan), Op: op.Kind, X: x}), true
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.NodeID, bool) {
	x, ok := p.parsePrimary()
	if !ok {
		return ast.NoNode, false
	}
	for {
		switch {
		case p.eat(token.Dot):
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected property name after '.'")
			if !ok {
				return ast.NoNode, false
			}
			sp := p.unit.Node(x).Span.Cover(name.Span)
			x = p.node(ast.Node{Kind: ast.KindMember, Span: sp, X: x, Name: name.Text})
		case p.at(token.LParen):
			p.advance()
			var args []ast.NodeID
			for !p.at(token.RParen) {
				arg, ok := p.parseExpr()
				if !ok {
					return ast.NoNode, false
				}
				args = append(args, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after arguments"); !ok {
				return ast.NoNode, false
			}
			sp := p.unit.Node(x).Span.Cover(p.lastSpan)
			x = p.node(ast.Node{Kind: ast.KindCall, Span: sp, X: x, List: args})
		default:
			return x, true
		}
	}
}

func (p *Parser) parsePrimary() (ast.NodeID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.NumberLit:
		p.advance()
		v, err := parseNumber(tok.Text)
		if err != nil {
			p.errAt(diag.LexBadNumber, tok.Span, "malformed number literal")
			return ast.NoNode, false
		}
		return p.node(ast.Node{Kind: ast.KindNumberLit, Span: tok.Span, Num: v}), true
	case token.StringLit:
		p.advance()
		return p.node(ast.Node{Kind: ast.KindStringLit, Span: tok.Span, Str: tok.Text}), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.node(ast.Node{Kind: ast.KindBoolLit, Span: tok.Span, Bool: tok.Kind == token.KwTrue}), true
	case token.KwNull:
		p.advance()
		return p.node(ast.Node{Kind: ast.KindNullLit, Span: tok.Span}), true
	case token.KwThis:
		p.advance()
		return p.node(ast.Node{Kind: ast.KindThis, Span: tok.Span}), true
	case token.Ident:
		if p.peekAt(1).Kind == token.FatArrow {
			return p.parseArrow()
		}
		p.advance()
		return p.node(ast.Node{Kind: ast.KindIdent, Span: tok.Span, Name: tok.Text}), true
	case token.LParen:
		if p.isArrowAhead() {
			return p.parseArrow()
		}
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return ast.NoNode, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
			return ast.NoNode, false
		}
		return x, true
	case token.LBrace:
		return p.parseObjectLit()
	case token.KwFunction:
		p.err(diag.SynUnsupported, "function expressions are not supported; use an arrow function")
		return ast.NoNode, false
	}
	p.err(diag.SynExpectExpression, "expected expression")
	return ast.NoNode, false
}

// isArrowAhead reports whether the '(' at the cursor opens an arrow
// function parameter list: the matching ')' is followed by '=>' or ':'.
func (p *Parser) isArrowAhead() bool {
	depth := 0
	for i := 0; p.pos+i < len(p.toks); i++ {
		switch p.peekAt(i).Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				next := p.peekAt(i + 1).Kind
				return next == token.FatArrow || next == token.Colon
			}
		case token.EOF, token.Semicolon:
			return false
		}
	}
	return false
}

func (p *Parser) parseArrow() (ast.NodeID, bool) {
	start := p.peek().Span
	var params []ast.NodeID
	if p.at(token.Ident) {
		name := p.advance()
		params = append(params, p.node(ast.Node{Kind: ast.KindParam, Span: name.Span, Name: name.Text}))
	} else {
		var ok bool
		if params, ok = p.parseParams(); !ok {
			return ast.NoNode, false
		}
	}
	ret := ast.NoNode
	if p.eat(token.Colon) {
		var ok bool
		if ret, ok = p.parseType(); !ok {
			return ast.NoNode, false
		}
	}
	if _, ok := p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>'"); !ok {
		return ast.NoNode, false
	}
	var body ast.NodeID
	var ok bool
	if p.at(token.LBrace) {
		body, ok = p.parseBlock()
	} else {
		body, ok = p.parseAssign()
	}
	if !ok {
		return ast.NoNode, false
	}
	return p.node(ast.Node{Kind: ast.KindArrowFunc, Span: start.Cover(p.lastSpan), List: params, Type: ret, Body: body}), true
}

func (p *Parser) parseObjectLit() (ast.NodeID, bool) {
	open := p.advance()
	var props []ast.NodeID
	seen := map[string]bool{}
	for !p.at(token.RBrace) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected property name")
		if !ok {
			return ast.NoNode, false
		}
		var value ast.NodeID
		if p.eat(token.Colon) {
			if value, ok = p.parseExpr(); !ok {
				return ast.NoNode, false
			}
		} else {
			value = p.node(ast.Node{Kind: ast.KindIdent, Span: name.Span, Name: name.Text})
		}
		if seen[name.Text] {
			p.errAt(diag.SemaDuplicateDecl, name.Span, "duplicate property '"+name.Text+"'")
		}
		seen[name.Text] = true
		props = append(props, p.node(ast.Node{Kind: ast.KindProperty, Span: name.Span.Cover(p.lastSpan), Name: name.Text, X: value}))
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after object literal"); !ok {
		return ast.NoNode, false
	}
	return p.node(ast.Node{Kind: ast.KindObjectLit, Span: open.Span.Cover(p.lastSpan), List: props}), true
}

func parseNumber(text string) (float64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err := strconv.ParseUint(text[2:], 16, 64)
		return float64(v), err
	}
	return strconv.ParseFloat(text, 64)
}
