package lower

import (
	"scriptc/internal/layout"
	"scriptc/internal/target"
)

// FunctionValue is the statically known representation of a callee.
type FunctionValue interface {
	isFunctionValue()
}

// PureFunction is a bare code pointer; it is called with a null env.
type PureFunction struct {
	Code target.Func
}

// ClosureFunction is code bundled with the scope object it closes over.
type ClosureFunction struct {
	Code  target.Func
	Scope target.Value
}

// DynamicFunction is a function value whose kind is only known at run
// time: either a code pointer or a closure object.
type DynamicFunction struct {
	Value target.Value
}

func (PureFunction) isFunctionValue()    {}
func (ClosureFunction) isFunctionValue() {}
func (DynamicFunction) isFunctionValue() {}

// valueHandle is the result of translating an expression. The value is
// borrowed: whoever keeps it must retain it.
type valueHandle interface {
	repr() layout.Repr
}

// scalarHandle is a non-pointer value or a string pointer.
type scalarHandle struct {
	v target.Value
	r layout.Repr
}

// heapHandle points at a counted object, or is null.
type heapHandle struct {
	v target.Value
	r layout.Repr
}

// funcHandle is a function value in one of its three shapes.
type funcHandle struct {
	fv FunctionValue
	r  layout.Repr
}

func (h scalarHandle) repr() layout.Repr { return h.r }
func (h heapHandle) repr() layout.Repr   { return h.r }
func (h funcHandle) repr() layout.Repr   { return h.r }

// voidHandle is the result of a call returning nothing.
var voidHandle = scalarHandle{r: layout.VoidRepr}
