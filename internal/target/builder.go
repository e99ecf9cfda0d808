package target

// Builder sequences target IR. It follows an insert-point model: every
// instruction method appends to the current block.
type Builder interface {
	// DeclareStruct registers a named struct type.
	DeclareStruct(s *Struct)
	// DeclareFunc declares a function symbol. Declaring the same name twice
	// returns the existing symbol.
	DeclareFunc(name string, sig *Sig) Func
	// DefineFunc starts the body of f and makes its entry block current.
	DefineFunc(f Func) (entry Block, params []Value)
	NewBlock(name string) Block
	SetInsert(b Block)
	Insert() Block
	// Terminated reports whether the current block already ends in a
	// branch or return.
	Terminated() bool

	// AllocStack reserves a stack slot in the entry block of the current
	// function and returns its address.
	AllocStack(t Type) Value
	FieldAddr(s *Struct, base Value, slot int) Value
	Load(t Type, addr Value) Value
	Store(addr, v Value)

	// Call calls callee with sig. A Func callee is called directly, any
	// other pointer value indirectly.
	Call(sig *Sig, callee Value, args ...Value) Value
	Binary(op Op, x, y Value) Value
	Compare(pred Pred, x, y Value) Value

	CondBr(cond Value, then, els Block)
	Br(b Block)
	// Ret returns v, or nothing when v is nil.
	Ret(v Value)

	ConstInt(t Basic, v int64) Value
	ConstFloat(v float64) Value
	ConstBool(v bool) Value
	Null() Value
	// StringConst returns a pointer to immutable NUL-terminated bytes.
	StringConst(s string) Value
}
