package symbols

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
)

// primitiveTypes are resolved by the checker, not through declarations.
var primitiveTypes = map[string]bool{
	"number": true, "string": true, "boolean": true, "void": true, "null": true,
	"i8": true, "i16": true, "i32": true, "i64": true,
}

type scope struct {
	values map[string]ast.NodeID
	types  map[string]ast.NodeID
}

// Resolver binds identifiers lexically. Function declarations, externs and
// type aliases are hoisted to the top of their container; variables become
// visible at their declaration.
type Resolver struct {
	unit     *ast.Unit
	table    *Table
	reporter diag.Reporter
	stack    []scope
}

// Resolve walks the unit and returns the filled table. Problems are
// reported and resolution continues.
func Resolve(u *ast.Unit, reporter diag.Reporter) *Table {
	r := &Resolver{unit: u, table: NewTable(), reporter: reporter}
	r.walk(u.Root)
	return r.table
}

func (r *Resolver) push() {
	r.stack = append(r.stack, scope{values: map[string]ast.NodeID{}, types: map[string]ast.NodeID{}})
}

func (r *Resolver) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Resolver) declare(decl ast.NodeID) {
	n := r.unit.Node(decl)
	top := r.stack[len(r.stack)-1]
	names := top.values
	if n.Kind == ast.KindTypeAlias {
		names = top.types
		if primitiveTypes[n.Name] {
			diag.ReportError(r.reporter, diag.SemaDuplicateDecl, n.Span, "cannot redeclare built-in type '"+n.Name+"'").Emit()
			return
		}
	}
	if prev, ok := names[n.Name]; ok {
		diag.ReportError(r.reporter, diag.SemaDuplicateDecl, n.Span, "'"+n.Name+"' is already declared in this scope").
			WithNote(r.unit.Node(prev).Span, "previous declaration").
			Emit()
		return
	}
	names[n.Name] = decl
}

// hoist declares the functions, externs and aliases owned by container.
func (r *Resolver) hoist(container ast.NodeID) {
	for _, d := range r.unit.Decls(container) {
		switch r.unit.Kind(d) {
		case ast.KindFuncDecl, ast.KindDeclareFunc, ast.KindTypeAlias:
			r.declare(d)
		}
	}
}

func (r *Resolver) lookup(name string, types bool) (ast.NodeID, bool) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		m := r.stack[i].values
		if types {
			m = r.stack[i].types
		}
		if d, ok := m[name]; ok {
			return d, true
		}
	}
	return ast.NoNode, false
}

func (r *Resolver) walkAll(ids []ast.NodeID) {
	for _, id := range ids {
		r.walk(id)
	}
}

func (r *Resolver) walk(id ast.NodeID) {
	n := r.unit.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindModule:
		r.push()
		r.hoist(id)
		r.walkAll(n.List)
		r.pop()
	case ast.KindBlock:
		r.push()
		r.hoist(id)
		r.walkAll(n.List)
		r.pop()
	case ast.KindFuncDecl, ast.KindArrowFunc:
		r.walkFunc(id)
	case ast.KindDeclareFunc:
		for _, p := range n.List {
			r.walk(r.unit.Node(p).Type)
		}
		r.walk(n.Type)
	case ast.KindVarDecl:
		r.walk(n.Type)
		r.declare(id)
		r.walk(n.X)
	case ast.KindTypeAlias:
		r.walk(n.Type)
	case ast.KindIdent:
		r.resolveIdent(id)
	case ast.KindTypeName:
		if primitiveTypes[n.Name] {
			return
		}
		if d, ok := r.lookup(n.Name, true); ok {
			r.table.TypeRefs[id] = d
			return
		}
		diag.ReportError(r.reporter, diag.SemaUnknownType, n.Span, "unknown type '"+n.Name+"'").Emit()
	case ast.KindTypeFunc:
		for _, p := range n.List {
			r.walk(r.unit.Node(p).Type)
		}
		r.walk(n.Type)
	case ast.KindTypeField:
		r.walk(n.Type)
	case ast.KindMember:
		r.walk(n.X)
	case ast.KindProperty:
		r.walk(n.X)
	default:
		r.walkAll(r.unit.Children(id))
	}
}

func (r *Resolver) walkFunc(id ast.NodeID) {
	n := r.unit.Node(id)
	r.push()
	for _, p := range n.List {
		r.walk(r.unit.Node(p).Type)
		r.declare(p)
	}
	r.walk(n.Type)
	r.hoist(id)
	if body := r.unit.Node(n.Body); body != nil && body.Kind == ast.KindBlock {
		r.walkAll(body.List)
	} else {
		r.walk(n.Body)
	}
	r.pop()
}

func (r *Resolver) resolveIdent(id ast.NodeID) {
	n := r.unit.Node(id)
	d, ok := r.lookup(n.Name, false)
	if !ok {
		diag.ReportError(r.reporter, diag.SemaUnresolvedName, n.Span, "cannot find name '"+n.Name+"'").Emit()
		return
	}
	// A variable read inside its own initializer is only valid when the
	// read is deferred behind a function boundary.
	if r.unit.Kind(d) == ast.KindVarDecl && r.unit.IsAncestor(d, id) && !r.deferredWithin(d, id) {
		diag.ReportError(r.reporter, diag.SemaUnresolvedName, n.Span, "'"+n.Name+"' is used before its initialization").Emit()
		return
	}
	r.table.Refs[id] = d
}

func (r *Resolver) deferredWithin(outer, id ast.NodeID) bool {
	for p := r.unit.Node(id).Parent; p.IsValid() && p != outer; p = r.unit.Node(p).Parent {
		if r.unit.Kind(p).IsFunction() {
			return true
		}
	}
	return false
}
