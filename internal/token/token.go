package token

import (
	"scriptc/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	// Text holds the NFC-normalized identifier, the decoded string literal
	// or the raw number spelling. Empty for punctuation.
	Text string
}

// IsLiteral reports whether the token is a number, string, or boolean literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case NumberLit, StringLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwType && t.Kind <= KwNull
}

// IsBinaryOp reports whether the token can appear as an infix operator.
func (t Token) IsBinaryOp() bool {
	return t.Kind >= Plus && t.Kind <= OrOr && t.Kind != Bang && t.Kind != Assign
}
