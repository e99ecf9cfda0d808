package llvm

import (
	"github.com/llir/llvm/ir/types"

	"scriptc/internal/target"
)

func (m *Module) llvmType(t target.Type) types.Type {
	switch t := t.(type) {
	case target.Basic:
		return basicType(t)
	case *target.Struct:
		if def, err := m.structDef(t); err == nil {
			return def
		}
		return types.I8Ptr
	case *target.Sig:
		return types.NewPointer(m.funcType(t))
	}
	return types.I8Ptr
}

func basicType(b target.Basic) types.Type {
	switch b {
	case target.Void:
		return types.Void
	case target.I1:
		return types.I1
	case target.I8:
		return types.I8
	case target.I16:
		return types.I16
	case target.I32:
		return types.I32
	case target.I64:
		return types.I64
	case target.F64:
		return types.Double
	}
	return types.I8Ptr
}

func (m *Module) funcType(sig *target.Sig) *types.FuncType {
	params := make([]types.Type, 0, len(sig.Params))
	for _, p := range sig.Params {
		params = append(params, m.llvmType(p))
	}
	return types.NewFunc(m.llvmType(sig.Ret), params...)
}
