package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Syntax
	SynUnexpectedToken   Code = 2001
	SynExpectSemicolon   Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectExpression  Code = 2004
	SynExpectType        Code = 2005
	SynUnclosedDelimiter Code = 2006
	SynExpectInitializer Code = 2007
	SynUnsupported       Code = 2008

	// Semantic
	SemaUnresolvedName   Code = 3001
	SemaDuplicateDecl    Code = 3002
	SemaTypeMismatch     Code = 3003
	SemaUnknownProperty  Code = 3004
	SemaNotCallable      Code = 3005
	SemaArgCount         Code = 3006
	SemaUnknownType      Code = 3007
	SemaMissingType      Code = 3008
	SemaAssignToConst    Code = 3009
	SemaReturnOutsideFn  Code = 3010
	SemaInvalidOperand   Code = 3011
	SemaMissingProperty  Code = 3012
	SemaExtraProperty    Code = 3013
	SemaNotAssignable    Code = 3014

	// Lowering
	LowUnresolvedReference Code = 4001
	LowRecursiveType       Code = 4002
	LowFieldNotFound       Code = 4003
	LowUnknownCallee       Code = 4004
	LowUnsupported         Code = 4005
	LowNotStructural       Code = 4006
	LowInternal            Code = 4099

	// Project and IO
	IOLoadFileError   Code = 5001
	ProjInvalidConfig Code = 5002
	ProjMissingEntry  Code = 5003
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",

	SynUnexpectedToken:   "Unexpected token",
	SynExpectSemicolon:   "Expected semicolon",
	SynExpectIdentifier:  "Expected identifier",
	SynExpectExpression:  "Expected expression",
	SynExpectType:        "Expected type",
	SynUnclosedDelimiter: "Unclosed delimiter",
	SynExpectInitializer: "Variable declaration requires an initializer",
	SynUnsupported:       "Construct outside the supported language subset",

	SemaUnresolvedName:  "Unresolved name",
	SemaDuplicateDecl:   "Duplicate declaration",
	SemaTypeMismatch:    "Type mismatch",
	SemaUnknownProperty: "Unknown property",
	SemaNotCallable:     "Value is not callable",
	SemaArgCount:        "Wrong number of arguments",
	SemaUnknownType:     "Unknown type",
	SemaMissingType:     "Missing type annotation",
	SemaAssignToConst:   "Assignment to constant",
	SemaReturnOutsideFn: "Return outside of function",
	SemaInvalidOperand:  "Invalid operand",
	SemaMissingProperty: "Missing property in object literal",
	SemaExtraProperty:   "Excess property in object literal",
	SemaNotAssignable:   "Expression is not assignable",

	LowUnresolvedReference: "Unresolved reference during lowering",
	LowRecursiveType:       "Recursive type has no finite layout",
	LowFieldNotFound:       "Field not found in layout",
	LowUnknownCallee:       "Callee has no known representation",
	LowUnsupported:         "Unsupported construct",
	LowNotStructural:       "Type has no structural layout",
	LowInternal:            "Internal lowering error",

	IOLoadFileError:   "Failed to load file",
	ProjInvalidConfig: "Invalid project configuration",
	ProjMissingEntry:  "Entry file not found",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
