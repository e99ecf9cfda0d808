package lexer

import (
	"scriptc/internal/diag"
	"scriptc/internal/token"
)

// scanOperatorOrPunct matches the longest operator at the cursor.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Bump()

	kind := token.Invalid
	switch b {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ',':
		kind = token.Comma
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case '.':
		kind = token.Dot
	case '=':
		switch {
		case lx.cursor.Eat('>'):
			kind = token.FatArrow
		case lx.cursor.Eat('='):
			kind = token.EqEq
			if lx.cursor.Eat('=') {
				kind = token.EqEqEq
			}
		default:
			kind = token.Assign
		}
	case '!':
		kind = token.Bang
		if lx.cursor.Eat('=') {
			kind = token.BangEq
			if lx.cursor.Eat('=') {
				kind = token.BangEqEq
			}
		}
	case '<':
		kind = token.Lt
		if lx.cursor.Eat('=') {
			kind = token.LtEq
		}
	case '>':
		kind = token.Gt
		if lx.cursor.Eat('=') {
			kind = token.GtEq
		}
	case '&':
		if lx.cursor.Eat('&') {
			kind = token.AndAnd
		}
	case '|':
		if lx.cursor.Eat('|') {
			kind = token.OrOr
		}
	}

	sp := lx.cursor.SpanFrom(start)
	if kind == token.Invalid {
		lx.report(diag.LexUnknownChar, sp, "unexpected character")
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	return token.Token{Kind: kind, Span: sp}
}
