package token

// Kind enumerates every lexical token the lexer can produce.
type Kind uint8

const (
	// Invalid marks a byte sequence the lexer could not classify.
	Invalid Kind = iota
	// EOF terminates every token stream.
	EOF

	Ident
	NumberLit
	StringLit

	// Keywords.
	KwType
	KwDeclare
	KwFunction
	KwConst
	KwLet
	KwVar
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwTrue
	KwFalse
	KwThis
	KwNull

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	EqEq
	EqEqEq
	BangEq
	BangEqEq
	Bang
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
	FatArrow

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Semicolon
	Dot
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Ident",
	NumberLit:  "NumberLit",
	StringLit:  "StringLit",
	KwType:     "type",
	KwDeclare:  "declare",
	KwFunction: "function",
	KwConst:    "const",
	KwLet:      "let",
	KwVar:      "var",
	KwReturn:   "return",
	KwIf:       "if",
	KwElse:     "else",
	KwWhile:    "while",
	KwTrue:     "true",
	KwFalse:    "false",
	KwThis:     "this",
	KwNull:     "null",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Assign:     "=",
	EqEq:       "==",
	EqEqEq:     "===",
	BangEq:     "!=",
	BangEqEq:   "!==",
	Bang:       "!",
	Lt:         "<",
	LtEq:       "<=",
	Gt:         ">",
	GtEq:       ">=",
	AndAnd:     "&&",
	OrOr:       "||",
	FatArrow:   "=>",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	Comma:      ",",
	Colon:      ":",
	Semicolon:  ";",
	Dot:        ".",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
