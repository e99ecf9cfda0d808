// Package target defines the builder contract the lowering stage emits
// through. Backends implement Builder; the lowering never depends on a
// concrete IR library.
package target

import "strings"

// Type is a machine-level type of the target IR.
type Type interface {
	String() string
	isType()
}

// Basic enumerates scalar types.
type Basic uint8

const (
	Void Basic = iota
	I1
	I8
	I16
	I32
	I64
	F64
	// Ptr is an untyped pointer. Struct access goes through FieldAddr.
	Ptr
)

func (Basic) isType() {}

func (b Basic) String() string {
	switch b {
	case Void:
		return "void"
	case I1:
		return "i1"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F64:
		return "f64"
	case Ptr:
		return "ptr"
	}
	return "?"
}

// IsInt reports whether b is an integer type, i1 included.
func (b Basic) IsInt() bool {
	return b >= I1 && b <= I64
}

// Bits returns the width of an integer type.
func (b Basic) Bits() int {
	switch b {
	case I1:
		return 1
	case I8:
		return 8
	case I16:
		return 16
	case I32:
		return 32
	case I64, F64, Ptr:
		return 64
	}
	return 0
}

// IntType returns the integer type of the given width.
func IntType(bits int) Basic {
	switch bits {
	case 1:
		return I1
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	}
	return I64
}

// Struct is a named aggregate declared with DeclareStruct.
type Struct struct {
	Name   string
	Fields []Type
}

func (*Struct) isType() {}

func (s *Struct) String() string {
	return "%" + s.Name
}

// Sig is a function signature.
type Sig struct {
	Ret    Type
	Params []Type
}

func (*Sig) isType() {}

func (s *Sig) String() string {
	var sb strings.Builder
	sb.WriteString(s.Ret.String())
	sb.WriteString(" (")
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Op is an arithmetic operator.
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Div
	Rem
)

func (o Op) String() string {
	return [...]string{"add", "sub", "mul", "div", "rem"}[o]
}

// Pred is a comparison predicate. Integer comparisons are signed.
type Pred uint8

const (
	Eq Pred = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (p Pred) String() string {
	return [...]string{"eq", "ne", "lt", "le", "gt", "ge"}[p]
}

// Value is an SSA value produced by a Builder.
type Value interface {
	Type() Type
}

// Func is a declared function. Calls to a Func are direct.
type Func interface {
	Value
	Name() string
	Sig() *Sig
}

// Block is a basic block of the function being defined.
type Block interface {
	Name() string
}
