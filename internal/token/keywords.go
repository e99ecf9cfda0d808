package token

var keywords = map[string]Kind{
	"type":     KwType,
	"declare":  KwDeclare,
	"function": KwFunction,
	"const":    KwConst,
	"let":      KwLet,
	"var":      KwVar,
	"return":   KwReturn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"true":     KwTrue,
	"false":    KwFalse,
	"this":     KwThis,
	"null":     KwNull,
}

// LookupKeyword returns the keyword kind for ident, if any.
// Keywords are case sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
