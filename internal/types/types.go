package types

import "strconv"

// TypeID is a stable handle to a type stored in an Interner.
type TypeID uint32

const NoTypeID TypeID = 0

// Kind enumerates the type constructors of the language subset.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindNumber
	KindString
	KindNull
	// KindInt is a fixed-width signed integer (i8/i16/i32/i64).
	KindInt
	// KindObject is a structural object type with a non-empty property set.
	KindObject
	// KindFunc is a call signature.
	KindFunc
	// KindAlias names another type. Target may refer back to the alias.
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindObject:
		return "object"
	case KindFunc:
		return "function"
	case KindAlias:
		return "alias"
	}
	return "invalid"
}

// Prop is one named property of an object type.
type Prop struct {
	Name string
	Type TypeID
}

// Type describes a single interned type.
type Type struct {
	Kind  Kind
	Width uint8 // bits, KindInt only

	Props  []Prop // KindObject, sorted by name
	Params []TypeID
	Result TypeID

	Name   string // KindAlias
	Target TypeID // KindAlias
}

func widthName(w uint8) string {
	return "i" + strconv.Itoa(int(w))
}
