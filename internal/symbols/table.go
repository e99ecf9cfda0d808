package symbols

import "scriptc/internal/ast"

// SymbolKind classifies a declaration.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolLet
	SymbolConst
	SymbolParam
	SymbolFunction
	SymbolExtern
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLet:
		return "let"
	case SymbolConst:
		return "const"
	case SymbolParam:
		return "param"
	case SymbolFunction:
		return "function"
	case SymbolExtern:
		return "extern"
	case SymbolType:
		return "type"
	}
	return "invalid"
}

// KindOf maps a declaration node to its symbol kind.
func KindOf(u *ast.Unit, decl ast.NodeID) SymbolKind {
	n := u.Node(decl)
	if n == nil {
		return SymbolInvalid
	}
	switch n.Kind {
	case ast.KindVarDecl:
		if n.Const {
			return SymbolConst
		}
		return SymbolLet
	case ast.KindParam:
		return SymbolParam
	case ast.KindFuncDecl:
		return SymbolFunction
	case ast.KindDeclareFunc:
		return SymbolExtern
	case ast.KindTypeAlias:
		return SymbolType
	}
	return SymbolInvalid
}

// Table maps every identifier use to its declaration node.
type Table struct {
	Refs     map[ast.NodeID]ast.NodeID
	TypeRefs map[ast.NodeID]ast.NodeID
}

func NewTable() *Table {
	return &Table{
		Refs:     make(map[ast.NodeID]ast.NodeID),
		TypeRefs: make(map[ast.NodeID]ast.NodeID),
	}
}

// Decl returns the declaration an identifier resolves to.
func (t *Table) Decl(ref ast.NodeID) (ast.NodeID, bool) {
	d, ok := t.Refs[ref]
	return d, ok
}

// TypeDecl returns the alias declaration a type name resolves to.
func (t *Table) TypeDecl(ref ast.NodeID) (ast.NodeID, bool) {
	d, ok := t.TypeRefs[ref]
	return d, ok
}
