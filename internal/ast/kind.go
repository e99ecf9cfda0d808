package ast

// Kind identifies the syntactic form of a Node. The comment on each kind
// lists which Node fields it uses.
type Kind uint8

const (
	KindInvalid Kind = iota

	// KindModule: List = top-level statements.
	KindModule
	// KindTypeAlias: Name, Type = aliased type.
	KindTypeAlias
	// KindDeclareFunc: Name, List = params, Type = result type.
	KindDeclareFunc
	// KindFuncDecl: Name, List = params, Type = result type (optional), Body = block.
	KindFuncDecl
	// KindArrowFunc: List = params, Type = result type (optional), Body = block or expression.
	KindArrowFunc
	// KindParam: Name, Type.
	KindParam
	// KindVarDecl: Name, Const, Type (optional), X = initializer.
	KindVarDecl
	// KindReturn: X = value (optional).
	KindReturn
	// KindIf: X = condition, Y = then branch, Z = else branch (optional).
	KindIf
	// KindWhile: X = condition, Y = body.
	KindWhile
	// KindBlock: List = statements.
	KindBlock
	// KindExprStmt: X = expression.
	KindExprStmt

	// KindIdent: Name.
	KindIdent
	// KindNumberLit: Num.
	KindNumberLit
	// KindStringLit: Str.
	KindStringLit
	// KindBoolLit: Bool.
	KindBoolLit
	KindNullLit
	KindThis
	// KindObjectLit: List = properties.
	KindObjectLit
	// KindProperty: Name, X = value.
	KindProperty
	// KindCall: X = callee, List = arguments.
	KindCall
	// KindMember: X = object, Name = property.
	KindMember
	// KindUnary: Op, X.
	KindUnary
	// KindBinary: Op, X, Y.
	KindBinary
	// KindAssign: X = target, Y = value.
	KindAssign

	// KindTypeName: Name.
	KindTypeName
	// KindTypeObject: List = fields.
	KindTypeObject
	// KindTypeField: Name, Type.
	KindTypeField
	// KindTypeFunc: List = params, Type = result type.
	KindTypeFunc
)

var kindNames = [...]string{
	KindInvalid:     "Invalid",
	KindModule:      "Module",
	KindTypeAlias:   "TypeAlias",
	KindDeclareFunc: "DeclareFunc",
	KindFuncDecl:    "FuncDecl",
	KindArrowFunc:   "ArrowFunc",
	KindParam:       "Param",
	KindVarDecl:     "VarDecl",
	KindReturn:      "Return",
	KindIf:          "If",
	KindWhile:       "While",
	KindBlock:       "Block",
	KindExprStmt:    "ExprStmt",
	KindIdent:       "Ident",
	KindNumberLit:   "NumberLit",
	KindStringLit:   "StringLit",
	KindBoolLit:     "BoolLit",
	KindNullLit:     "NullLit",
	KindThis:        "This",
	KindObjectLit:   "ObjectLit",
	KindProperty:    "Property",
	KindCall:        "Call",
	KindMember:      "Member",
	KindUnary:       "Unary",
	KindBinary:      "Binary",
	KindAssign:      "Assign",
	KindTypeName:    "TypeName",
	KindTypeObject:  "TypeObject",
	KindTypeField:   "TypeField",
	KindTypeFunc:    "TypeFunc",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsFunction reports whether the kind introduces a callable body.
func (k Kind) IsFunction() bool {
	return k == KindFuncDecl || k == KindArrowFunc
}

// IsType reports whether the kind is a type expression.
func (k Kind) IsType() bool {
	return k >= KindTypeName && k <= KindTypeFunc
}
