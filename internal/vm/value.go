// Package vm records target IR through the target.Builder contract and
// executes it on an instrumented heap. Generated programs run here in tests
// and under `scriptc run`.
package vm

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the runtime type of a Value.
type ValueKind uint8

const (
	VKInvalid ValueKind = iota
	VKInt
	VKBool
	VKFloat
	VKPtr
)

func (k ValueKind) String() string {
	switch k {
	case VKInt:
		return "int"
	case VKBool:
		return "bool"
	case VKFloat:
		return "float"
	case VKPtr:
		return "ptr"
	}
	return "invalid"
}

// PtrKind tells what a pointer points at.
type PtrKind uint8

const (
	PNull PtrKind = iota
	// PObject is the base address of a heap object.
	PObject
	// PField is the address of one slot of a heap object.
	PField
	// PStack is the address of a stack slot.
	PStack
	// PCode is the address of a function.
	PCode
	// PCodeField is a slot address computed from a code pointer. Only the
	// tag slot may be read through it and it reads as zero.
	PCodeField
	// PString points at immutable string bytes.
	PString
)

// Ptr is a machine pointer.
type Ptr struct {
	Kind PtrKind
	Obj  *Object
	Slot int
	Cell *Value
	Fn   *Func
	Str  string
}

// Value is one machine word.
type Value struct {
	Kind ValueKind
	I    int64
	F    float64
	P    Ptr
}

func IntValue(v int64) Value     { return Value{Kind: VKInt, I: v} }
func FloatValue(v float64) Value { return Value{Kind: VKFloat, F: v} }
func PtrValue(p Ptr) Value       { return Value{Kind: VKPtr, P: p} }
func NullValue() Value           { return Value{Kind: VKPtr} }

func BoolValue(v bool) Value {
	if v {
		return Value{Kind: VKBool, I: 1}
	}
	return Value{Kind: VKBool}
}

// IsNull reports whether v is the null pointer.
func (v Value) IsNull() bool {
	return v.Kind == VKPtr && v.P.Kind == PNull
}

// Bool returns the truth value of a boolean.
func (v Value) Bool() bool {
	return v.I != 0
}

// Equal compares two words for identity.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VKFloat:
		return v.F == o.F
	case VKPtr:
		return v.P == o.P
	}
	return v.I == o.I
}

// Format renders a value the way the host print functions show it.
func (v Value) Format() string {
	switch v.Kind {
	case VKInt:
		return strconv.FormatInt(v.I, 10)
	case VKBool:
		return strconv.FormatBool(v.Bool())
	case VKFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case VKPtr:
		return v.P.String()
	}
	return "<invalid>"
}

func (v Value) String() string {
	if v.Kind == VKPtr && v.P.Kind == PString {
		return strconv.Quote(v.P.Str)
	}
	return v.Format()
}

func (p Ptr) String() string {
	switch p.Kind {
	case PNull:
		return "null"
	case PObject:
		return fmt.Sprintf("obj#%d", p.Obj.ID)
	case PField:
		return fmt.Sprintf("obj#%d[%d]", p.Obj.ID, p.Slot)
	case PStack:
		return "stack"
	case PCode, PCodeField:
		return "@" + p.Fn.name
	case PString:
		return p.Str
	}
	return "?"
}
