package lexer

import (
	"strings"

	"scriptc/internal/diag"
	"scriptc/internal/token"
)

// scanString scans a single or double quoted literal. Token.Text holds the
// decoded value.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()

	var sb strings.Builder
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedString, sp, "string literal is not terminated")
			return token.Token{Kind: token.StringLit, Span: sp, Text: sb.String()}
		}
		b := lx.cursor.Peek()
		if b == quote {
			lx.cursor.Bump()
			break
		}
		if b != '\\' {
			r, _ := lx.peekRune()
			lx.bumpRune()
			sb.WriteRune(r)
			continue
		}
		escStart := lx.cursor.Mark()
		lx.cursor.Bump()
		switch e := lx.cursor.Bump(); e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '\'', '"':
			sb.WriteByte(e)
		default:
			lx.report(diag.LexUnknownChar, lx.cursor.SpanFrom(escStart), "unknown escape sequence")
		}
	}
	return token.Token{Kind: token.StringLit, Span: lx.cursor.SpanFrom(start), Text: sb.String()}
}
