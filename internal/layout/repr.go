package layout

import (
	"fmt"

	"scriptc/internal/types"
)

// ReprKind is the machine-level representation class of a value.
type ReprKind uint8

const (
	ReprVoid ReprKind = iota
	ReprBool
	ReprInt
	ReprFloat
	// ReprString points at immutable bytes and is never reference counted.
	ReprString
	// ReprObject points at a reference counted object with a known layout.
	ReprObject
	// ReprFunc is a function value: either a bare code pointer or a pointer
	// to a closure object. Which one is only known at run time.
	ReprFunc
	// ReprScope points at a reference counted scope object of any layout.
	ReprScope
	// ReprCode is a bare code pointer.
	ReprCode
)

// Repr is the resolved representation of a static type.
type Repr struct {
	Kind   ReprKind
	Bits   int          // ReprInt
	Layout *Descriptor  // ReprObject
	Type   types.TypeID // source type, when there is one
}

var (
	VoidRepr  = Repr{Kind: ReprVoid}
	BoolRepr  = Repr{Kind: ReprBool}
	FloatRepr = Repr{Kind: ReprFloat}
	ScopeRepr = Repr{Kind: ReprScope}
	CodeRepr  = Repr{Kind: ReprCode}
)

// IsPointer reports whether the representation is a machine pointer.
func (r Repr) IsPointer() bool {
	switch r.Kind {
	case ReprString, ReprObject, ReprFunc, ReprScope, ReprCode:
		return true
	}
	return false
}

// IsCounted reports whether holders of the value own a reference count.
// Function values are counted conditionally at run time.
func (r Repr) IsCounted() bool {
	switch r.Kind {
	case ReprObject, ReprFunc, ReprScope:
		return true
	}
	return false
}

// SizeAlign returns the byte size and alignment on target.
func (r Repr) SizeAlign(t Target) (size, align int) {
	switch r.Kind {
	case ReprVoid:
		return 0, 1
	case ReprBool:
		return 1, 1
	case ReprInt:
		n := r.Bits / 8
		return n, n
	case ReprFloat:
		return 8, 8
	default:
		return t.PtrSize, t.PtrAlign
	}
}

func (r Repr) String() string {
	switch r.Kind {
	case ReprVoid:
		return "void"
	case ReprBool:
		return "i1"
	case ReprInt:
		return fmt.Sprintf("i%d", r.Bits)
	case ReprFloat:
		return "f64"
	case ReprString:
		return "str"
	case ReprObject:
		if r.Layout != nil {
			return "ptr<" + r.Layout.Name + ">"
		}
		return "ptr<?>"
	case ReprFunc:
		return "fn"
	case ReprScope:
		return "ptr<scope>"
	case ReprCode:
		return "code"
	}
	return "?"
}

// fingerprint identifies a representation for shape sharing.
func (r Repr) fingerprint() string {
	if r.Kind == ReprObject && r.Layout != nil {
		return fmt.Sprintf("obj#%d", r.Layout.Tag)
	}
	if r.Kind == ReprFunc {
		return fmt.Sprintf("fn#%d", r.Type)
	}
	return r.String()
}
