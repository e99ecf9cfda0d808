// Package llvm implements target.Builder on top of github.com/llir/llvm and
// renders textual LLVM IR.
package llvm

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"scriptc/internal/target"
)

// Module is an LLVM module under construction.
type Module struct {
	mod     *ir.Module
	structs map[string]*structType
	funcs   map[string]*function
	strs    map[string]*ir.Global

	cur   *function
	block *block
}

type structType struct {
	src *target.Struct
	def types.Type
}

var _ target.Builder = (*Module)(nil)

// NewModule creates an empty module for triple.
func NewModule(name, triple string) *Module {
	m := ir.NewModule()
	m.SourceFilename = name
	m.TargetTriple = triple
	return &Module{
		mod:     m,
		structs: make(map[string]*structType, 16),
		funcs:   make(map[string]*function, 32),
		strs:    make(map[string]*ir.Global, 16),
	}
}

// IR exposes the underlying llir module.
func (m *Module) IR() *ir.Module {
	return m.mod
}

func (m *Module) String() string {
	return m.mod.String()
}

// WriteTo writes the textual IR to w.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, m.mod.String())
	return int64(n), err
}

func (m *Module) DeclareStruct(s *target.Struct) {
	if _, ok := m.structs[s.Name]; ok {
		return
	}
	fields := make([]types.Type, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, m.llvmType(f))
	}
	def := m.mod.NewTypeDef(s.Name, types.NewStruct(fields...))
	m.structs[s.Name] = &structType{src: s, def: def}
}

func (m *Module) structDef(s *target.Struct) (types.Type, error) {
	st, ok := m.structs[s.Name]
	if !ok {
		return nil, fmt.Errorf("struct %s was not declared", s.Name)
	}
	return st.def, nil
}

func (m *Module) mustFunc() *function {
	if m.cur == nil {
		panic("llvm: no function is being defined")
	}
	return m.cur
}
