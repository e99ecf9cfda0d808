package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"

	"scriptc/internal/target"
)

type function struct {
	fn      *ir.Func
	sig     *target.Sig
	entry   *block
	blocks  int
	defined bool
}

func (f *function) Type() target.Type { return target.Ptr }
func (f *function) Name() string      { return f.fn.Name() }
func (f *function) Sig() *target.Sig  { return f.sig }

type block struct {
	b    *ir.Block
	name string
}

func (b *block) Name() string { return b.name }

func (m *Module) DeclareFunc(name string, sig *target.Sig) target.Func {
	if f, ok := m.funcs[name]; ok {
		return f
	}
	params := make([]*ir.Param, 0, len(sig.Params))
	for i, p := range sig.Params {
		pname := fmt.Sprintf("a%d", i)
		if i == 0 && p == target.Ptr {
			pname = "env"
		}
		params = append(params, ir.NewParam(pname, m.llvmType(p)))
	}
	f := &function{fn: m.mod.NewFunc(name, m.llvmType(sig.Ret), params...), sig: sig}
	m.funcs[name] = f
	return f
}

func (m *Module) DefineFunc(fv target.Func) (target.Block, []target.Value) {
	f, ok := fv.(*function)
	if !ok {
		panic(fmt.Sprintf("llvm: foreign function %s", fv.Name()))
	}
	if f.defined {
		panic(fmt.Sprintf("llvm: function %s defined twice", f.Name()))
	}
	f.defined = true
	m.cur = f
	f.entry = &block{b: f.fn.NewBlock("entry"), name: "entry"}
	m.block = f.entry
	params := make([]target.Value, 0, len(f.fn.Params))
	for i, p := range f.fn.Params {
		params = append(params, &val{v: p, t: f.sig.Params[i]})
	}
	return f.entry, params
}

func (m *Module) NewBlock(name string) target.Block {
	f := m.mustFunc()
	f.blocks++
	unique := fmt.Sprintf("%s.%d", name, f.blocks)
	return &block{b: f.fn.NewBlock(unique), name: unique}
}

func (m *Module) SetInsert(b target.Block) {
	m.block = b.(*block)
}

func (m *Module) Insert() target.Block {
	return m.block
}

func (m *Module) Terminated() bool {
	return m.block == nil || m.block.b.Term != nil
}
