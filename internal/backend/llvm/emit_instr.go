package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"scriptc/internal/target"
)

type val struct {
	v value.Value
	t target.Type
}

func (v *val) Type() target.Type { return v.t }

func (m *Module) unwrap(v target.Value) value.Value {
	switch v := v.(type) {
	case *val:
		return v.v
	case *function:
		return constant.NewBitCast(v.fn, types.I8Ptr)
	}
	panic(fmt.Sprintf("llvm: foreign value %T", v))
}

// castPtr bitcasts a pointer value to typ unless it already has that type.
func (m *Module) castPtr(v value.Value, typ types.Type) value.Value {
	if v.Type().Equal(typ) {
		return v
	}
	if c, ok := v.(constant.Constant); ok {
		return constant.NewBitCast(c, typ)
	}
	return m.block.b.NewBitCast(v, typ)
}

func (m *Module) AllocStack(t target.Type) target.Value {
	f := m.mustFunc()
	slot := f.entry.b.NewAlloca(m.llvmType(t))
	return &val{v: slot, t: target.Ptr}
}

func (m *Module) FieldAddr(s *target.Struct, base target.Value, slot int) target.Value {
	def, err := m.structDef(s)
	if err != nil {
		panic("llvm: " + err.Error())
	}
	p := m.castPtr(m.unwrap(base), types.NewPointer(def))
	gep := m.block.b.NewGetElementPtr(def, p, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(slot)))
	return &val{v: gep, t: target.Ptr}
}

func (m *Module) Load(t target.Type, addr target.Value) target.Value {
	lt := m.llvmType(t)
	p := m.castPtr(m.unwrap(addr), types.NewPointer(lt))
	return &val{v: m.block.b.NewLoad(lt, p), t: t}
}

func (m *Module) Store(addr, v target.Value) {
	x := m.unwrap(v)
	p := m.castPtr(m.unwrap(addr), types.NewPointer(x.Type()))
	m.block.b.NewStore(x, p)
}

func (m *Module) Call(sig *target.Sig, callee target.Value, args ...target.Value) target.Value {
	in := make([]value.Value, 0, len(args))
	for i, a := range args {
		x := m.unwrap(a)
		if i < len(sig.Params) && types.IsPointer(x.Type()) {
			x = m.castPtr(x, m.llvmType(sig.Params[i]))
		}
		in = append(in, x)
	}
	if f, ok := callee.(*function); ok {
		return &val{v: m.block.b.NewCall(f.fn, in...), t: sig.Ret}
	}
	fp := m.castPtr(m.unwrap(callee), types.NewPointer(m.funcType(sig)))
	return &val{v: m.block.b.NewCall(fp, in...), t: sig.Ret}
}

func (m *Module) Binary(op target.Op, x, y target.Value) target.Value {
	a, b := m.unwrap(x), m.unwrap(y)
	blk := m.block.b
	var out value.Value
	if x.Type() == target.F64 {
		switch op {
		case target.Add:
			out = blk.NewFAdd(a, b)
		case target.Sub:
			out = blk.NewFSub(a, b)
		case target.Mul:
			out = blk.NewFMul(a, b)
		case target.Div:
			out = blk.NewFDiv(a, b)
		default:
			out = blk.NewFRem(a, b)
		}
		return &val{v: out, t: target.F64}
	}
	switch op {
	case target.Add:
		out = blk.NewAdd(a, b)
	case target.Sub:
		out = blk.NewSub(a, b)
	case target.Mul:
		out = blk.NewMul(a, b)
	case target.Div:
		out = blk.NewSDiv(a, b)
	default:
		out = blk.NewSRem(a, b)
	}
	return &val{v: out, t: x.Type()}
}

var floatPreds = [...]enum.FPred{
	target.Eq: enum.FPredOEQ,
	target.Ne: enum.FPredUNE,
	target.Lt: enum.FPredOLT,
	target.Le: enum.FPredOLE,
	target.Gt: enum.FPredOGT,
	target.Ge: enum.FPredOGE,
}

var intPreds = [...]enum.IPred{
	target.Eq: enum.IPredEQ,
	target.Ne: enum.IPredNE,
	target.Lt: enum.IPredSLT,
	target.Le: enum.IPredSLE,
	target.Gt: enum.IPredSGT,
	target.Ge: enum.IPredSGE,
}

func (m *Module) Compare(pred target.Pred, x, y target.Value) target.Value {
	a, b := m.unwrap(x), m.unwrap(y)
	if x.Type() == target.F64 {
		return &val{v: m.block.b.NewFCmp(floatPreds[pred], a, b), t: target.I1}
	}
	if types.IsPointer(a.Type()) {
		b = m.castPtr(b, a.Type())
	}
	return &val{v: m.block.b.NewICmp(intPreds[pred], a, b), t: target.I1}
}

func (m *Module) CondBr(cond target.Value, then, els target.Block) {
	m.block.b.NewCondBr(m.unwrap(cond), then.(*block).b, els.(*block).b)
}

func (m *Module) Br(b target.Block) {
	m.block.b.NewBr(b.(*block).b)
}

func (m *Module) Ret(v target.Value) {
	if v == nil {
		m.block.b.NewRet(nil)
		return
	}
	x := m.unwrap(v)
	if types.IsPointer(x.Type()) {
		x = m.castPtr(x, m.llvmType(m.mustFunc().sig.Ret))
	}
	m.block.b.NewRet(x)
}
