package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"scriptc/internal/target"
)

func (m *Module) ConstInt(t target.Basic, v int64) target.Value {
	it, ok := basicType(t).(*types.IntType)
	if !ok {
		panic(fmt.Sprintf("llvm: %s is not an integer type", t))
	}
	return &val{v: constant.NewInt(it, v), t: t}
}

func (m *Module) ConstFloat(v float64) target.Value {
	return &val{v: constant.NewFloat(types.Double, v), t: target.F64}
}

func (m *Module) ConstBool(v bool) target.Value {
	return &val{v: constant.NewBool(v), t: target.I1}
}

func (m *Module) Null() target.Value {
	return &val{v: constant.NewNull(types.I8Ptr), t: target.Ptr}
}

// StringConst interns s as a private NUL-terminated global.
func (m *Module) StringConst(s string) target.Value {
	g, ok := m.strs[s]
	if !ok {
		g = m.mod.NewGlobalDef(fmt.Sprintf(".str.%d", len(m.strs)), constant.NewCharArrayFromString(s+"\x00"))
		g.Immutable = true
		g.Linkage = enum.LinkagePrivate
		m.strs[s] = g
	}
	return &val{v: constant.NewBitCast(g, types.I8Ptr), t: target.Ptr}
}
