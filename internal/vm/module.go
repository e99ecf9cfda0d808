package vm

import (
	"fmt"
	"strings"

	"scriptc/internal/target"
)

// Module records a program through the target.Builder contract.
type Module struct {
	structs map[string]*target.Struct
	funcs   map[string]*Func
	order   []*Func

	cur   *Func
	block *Block
}

var _ target.Builder = (*Module)(nil)

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{
		structs: make(map[string]*target.Struct, 16),
		funcs:   make(map[string]*Func, 32),
	}
}

// Func is a declared function. It has a body once DefineFunc was called;
// otherwise calls to it are resolved against host functions by name.
type Func struct {
	name    string
	sig     *target.Sig
	entry   *Block
	blocks  []*Block
	allocas []int
	nregs   int
	defined bool
}

func (f *Func) Type() target.Type { return target.Ptr }
func (f *Func) Name() string      { return f.name }
func (f *Func) Sig() *target.Sig  { return f.sig }

// Defined reports whether the function has a recorded body.
func (f *Func) Defined() bool { return f.defined }

// Block is a recorded basic block.
type Block struct {
	name   string
	Instrs []Instr
}

func (b *Block) Name() string { return b.name }

func (b *Block) terminated() bool {
	return len(b.Instrs) > 0 && b.Instrs[len(b.Instrs)-1].Op.IsTerminator()
}

type reg struct {
	id int
	t  target.Type
}

func (r *reg) Type() target.Type { return r.t }

type konst struct {
	v Value
	t target.Type
}

func (k *konst) Type() target.Type { return k.t }

// Func returns a declared function by name.
func (m *Module) Func(name string) (*Func, bool) {
	f, ok := m.funcs[name]
	return f, ok
}

// Funcs lists functions in declaration order.
func (m *Module) Funcs() []*Func {
	return m.order
}

func (m *Module) DeclareStruct(s *target.Struct) {
	m.structs[s.Name] = s
}

func (m *Module) DeclareFunc(name string, sig *target.Sig) target.Func {
	if f, ok := m.funcs[name]; ok {
		return f
	}
	f := &Func{name: name, sig: sig}
	m.funcs[name] = f
	m.order = append(m.order, f)
	return f
}

func (m *Module) DefineFunc(fv target.Func) (target.Block, []target.Value) {
	f, ok := fv.(*Func)
	if !ok {
		panic(fmt.Sprintf("vm: foreign function %s", fv.Name()))
	}
	if f.defined {
		panic(fmt.Sprintf("vm: function %s defined twice", f.name))
	}
	f.defined = true
	m.cur = f
	f.entry = &Block{name: "entry"}
	f.blocks = append(f.blocks, f.entry)
	m.block = f.entry
	params := make([]target.Value, 0, len(f.sig.Params))
	for _, p := range f.sig.Params {
		params = append(params, m.newReg(p))
	}
	return f.entry, params
}

func (m *Module) NewBlock(name string) target.Block {
	f := m.mustFunc()
	b := &Block{name: fmt.Sprintf("%s.%d", name, len(f.blocks))}
	f.blocks = append(f.blocks, b)
	return b
}

func (m *Module) SetInsert(b target.Block) { m.block = b.(*Block) }
func (m *Module) Insert() target.Block     { return m.block }

func (m *Module) Terminated() bool {
	return m.block == nil || m.block.terminated()
}

func (m *Module) mustFunc() *Func {
	if m.cur == nil {
		panic("vm: no function is being defined")
	}
	return m.cur
}

func (m *Module) newReg(t target.Type) *reg {
	f := m.mustFunc()
	r := &reg{id: f.nregs, t: t}
	f.nregs++
	return r
}

func (m *Module) emit(in Instr) {
	if m.block.terminated() {
		panic(fmt.Sprintf("vm: instruction %s after terminator in %s", in.Op, m.block.name))
	}
	m.block.Instrs = append(m.block.Instrs, in)
}

func (m *Module) emitValue(t target.Type, in Instr) target.Value {
	r := m.newReg(t)
	in.Dst = r.id
	m.emit(in)
	return r
}

func (m *Module) AllocStack(t target.Type) target.Value {
	f := m.mustFunc()
	r := m.newReg(target.Ptr)
	f.allocas = append(f.allocas, r.id)
	return r
}

func (m *Module) FieldAddr(s *target.Struct, base target.Value, slot int) target.Value {
	if _, ok := m.structs[s.Name]; !ok {
		panic(fmt.Sprintf("vm: struct %s was not declared", s.Name))
	}
	return m.emitValue(target.Ptr, Instr{Op: OpFieldAddr, Struct: s, Slot: slot, Args: []target.Value{base}})
}

func (m *Module) Load(t target.Type, addr target.Value) target.Value {
	return m.emitValue(t, Instr{Op: OpLoad, Type: t, Args: []target.Value{addr}})
}

func (m *Module) Store(addr, v target.Value) {
	m.emit(Instr{Op: OpStore, Dst: -1, Args: []target.Value{addr, v}})
}

func (m *Module) Call(sig *target.Sig, callee target.Value, args ...target.Value) target.Value {
	all := make([]target.Value, 0, len(args)+1)
	all = append(all, callee)
	all = append(all, args...)
	return m.emitValue(sig.Ret, Instr{Op: OpCall, Sig: sig, Args: all})
}

func (m *Module) Binary(op target.Op, x, y target.Value) target.Value {
	return m.emitValue(x.Type(), Instr{Op: OpBinary, BinOp: op, Type: x.Type(), Args: []target.Value{x, y}})
}

func (m *Module) Compare(pred target.Pred, x, y target.Value) target.Value {
	return m.emitValue(target.I1, Instr{Op: OpCompare, Pred: pred, Type: x.Type(), Args: []target.Value{x, y}})
}

func (m *Module) CondBr(cond target.Value, then, els target.Block) {
	m.emit(Instr{Op: OpCondBr, Dst: -1, Args: []target.Value{cond}, Targets: [2]*Block{then.(*Block), els.(*Block)}})
}

func (m *Module) Br(b target.Block) {
	m.emit(Instr{Op: OpBr, Dst: -1, Targets: [2]*Block{b.(*Block)}})
}

func (m *Module) Ret(v target.Value) {
	in := Instr{Op: OpRet, Dst: -1}
	if v != nil {
		in.Args = []target.Value{v}
	}
	m.emit(in)
}

func (m *Module) ConstInt(t target.Basic, v int64) target.Value {
	if t == target.I1 {
		return &konst{v: BoolValue(v != 0), t: t}
	}
	return &konst{v: IntValue(v), t: t}
}

func (m *Module) ConstFloat(v float64) target.Value {
	return &konst{v: FloatValue(v), t: target.F64}
}

func (m *Module) ConstBool(v bool) target.Value {
	return &konst{v: BoolValue(v), t: target.I1}
}

func (m *Module) Null() target.Value {
	return &konst{v: NullValue(), t: target.Ptr}
}

func (m *Module) StringConst(s string) target.Value {
	return &konst{v: PtrValue(Ptr{Kind: PString, Str: s}), t: target.Ptr}
}

// Dump renders the recorded program, one instruction per line.
func (m *Module) Dump() string {
	var sb strings.Builder
	for _, f := range m.order {
		if !f.defined {
			fmt.Fprintf(&sb, "declare %s %s\n", f.name, f.sig)
			continue
		}
		fmt.Fprintf(&sb, "define %s %s {\n", f.name, f.sig)
		for _, b := range f.blocks {
			fmt.Fprintf(&sb, "%s:\n", b.name)
			for i := range b.Instrs {
				fmt.Fprintf(&sb, "  %s\n", b.Instrs[i].String())
			}
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
