package lower

import (
	"fmt"
	"strconv"

	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/scope"
	"scriptc/internal/target"
)

// scopeKey names the scope-object layout of a container.
func (t *Translator) scopeKey(container ast.NodeID) string {
	n := t.u.Node(container)
	switch n.Kind {
	case ast.KindModule:
		return "module"
	case ast.KindFuncDecl, ast.KindArrowFunc:
		return t.codeName(container)
	}
	return "block." + strconv.FormatUint(uint64(container), 10)
}

// fieldName maps a binding name to its scope-object field, keeping the
// parent link name free.
func fieldName(name string) string {
	if name == layout.ParentField {
		return name + "$"
	}
	return name
}

// enterContainer declares every binding of container in node, hoisting
// function declarations, and emits the container's entry code: the scope
// object when the container escapes, null stores for counted flat slots.
// An escaping container keeps every variable and parameter in its scope
// object; fields no nested function references are cleared on exit,
// before the container drops its own reference to the object.
func (t *Translator) enterContainer(node *scope.Node, container ast.NodeID) error {
	node.Escaping = t.cap.Escaping(container)
	var fields []layout.FieldSpec
	var locals []*scope.Binding
	for _, decl := range t.u.Decls(container) {
		n := t.u.Node(decl)
		switch n.Kind {
		case ast.KindTypeAlias:
			continue
		case ast.KindDeclareFunc:
			code, err := t.codeFor(decl)
			if err != nil {
				return err
			}
			r, err := t.reprOf(decl)
			if err != nil {
				return err
			}
			node.Declare(&scope.Binding{Name: n.Name, Decl: decl, Kind: scope.BindExtern, Repr: r, Code: code})
			continue
		case ast.KindFuncDecl:
			code, err := t.enqueue(decl, node)
			if err != nil {
				return err
			}
			r, err := t.reprOf(decl)
			if err != nil {
				return err
			}
			node.Declare(&scope.Binding{Name: n.Name, Decl: decl, Kind: scope.BindFunc, Repr: r, Code: code})
			continue
		}
		r, err := t.reprOf(decl)
		if err != nil {
			return err
		}
		kind := scope.BindVar
		if n.Kind == ast.KindParam {
			kind = scope.BindParam
		}
		b := &scope.Binding{Name: n.Name, Decl: decl, Kind: kind, Repr: r}
		if node.Escaping {
			b.InObject = true
			fields = append(fields, layout.FieldSpec{Name: fieldName(n.Name), Repr: r})
		}
		node.Declare(b)
		locals = append(locals, b)
	}

	if node.Escaping {
		node.Layout = t.reg.Scope(t.scopeKey(container), fields)
		node.Object = t.construct(node.Layout)
		parent, err := t.scopePointer(node, parentEnv(node))
		if err != nil {
			return t.at(t.u.Node(container).Span, err)
		}
		pf, err := node.Layout.Field(layout.ParentField)
		if err != nil {
			return err
		}
		t.retain(layout.ScopeRepr, parent)
		t.b.Store(t.fieldAddr(node.Layout, node.Object, pf), parent)
	}

	for _, b := range locals {
		if b.InObject {
			f, err := node.Layout.Field(fieldName(b.Name))
			if err != nil {
				return err
			}
			b.Field = f
			if b.Repr.IsCounted() && !t.cap.CapturedBinding(b.Decl) {
				node.Defer(scope.Deferred{Kind: scope.DeferField, Value: t.fieldAddr(node.Layout, node.Object, f), Repr: b.Repr})
			}
			continue
		}
		b.Slot = t.b.AllocStack(irType(b.Repr))
		if b.Repr.IsCounted() {
			t.b.Store(b.Slot, t.b.Null())
			node.Defer(scope.Deferred{Kind: scope.DeferSlot, Value: b.Slot, Repr: b.Repr})
		}
	}
	if node.Escaping {
		node.Defer(scope.Deferred{Kind: scope.DeferValue, Value: node.Object, Repr: layout.ScopeRepr})
	}
	return nil
}

// parentEnv is the scope object a new scope object of n links to.
func parentEnv(n *scope.Node) *scope.Node {
	if n.Parent == nil {
		return nil
	}
	return n.Parent.EnvAt()
}

// scopePointer returns a pointer to the scope object of to, as seen from
// cur. Scope objects of the current function are at hand; those of
// enclosing functions are reached from env through parent links.
func (t *Translator) scopePointer(cur, to *scope.Node) (target.Value, error) {
	if to == nil {
		return t.b.Null(), nil
	}
	if to.Function == cur.Function {
		return to.Object, nil
	}
	path, ok := cur.EnvPath(to)
	if !ok {
		return nil, fmt.Errorf("scope object of container %d is not reachable", to.Container)
	}
	v := t.fn.env
	for _, hop := range path[:len(path)-1] {
		pf, err := hop.Layout.Field(layout.ParentField)
		if err != nil {
			return nil, err
		}
		v = t.loadField(hop.Layout, v, pf)
	}
	return v, nil
}

// bindingAddr returns the address of a variable or parameter binding.
func (t *Translator) bindingAddr(cur *scope.Node, ref scope.Ref) (target.Value, error) {
	b := ref.Binding
	if !b.InObject {
		return b.Slot, nil
	}
	base, err := t.scopePointer(cur, ref.Node)
	if err != nil {
		return nil, err
	}
	return t.fieldAddr(ref.Node.Layout, base, b.Field), nil
}

// lookup resolves an identifier use through the scope chain.
func (t *Translator) lookup(cur *scope.Node, id ast.NodeID) (scope.Ref, error) {
	n := t.u.Node(id)
	if decl, ok := t.in.Symbols.Decl(id); ok {
		return cur.LookupDecl(decl, n.Name, n.Span)
	}
	ref, err := cur.Lookup(n.Name)
	if err != nil {
		return scope.Ref{}, &scope.UnresolvedReferenceError{Name: n.Name, Span: n.Span}
	}
	return ref, nil
}

// emitDeferred emits the release obligations of n in registration order.
// The list is kept: other exits of the scope emit it again.
func (t *Translator) emitDeferred(n *scope.Node) {
	for _, d := range n.Deferred {
		switch d.Kind {
		case scope.DeferValue:
			t.release(d.Repr, d.Value)
		case scope.DeferSlot:
			t.release(d.Repr, t.b.Load(target.Ptr, d.Value))
		case scope.DeferField:
			old := t.b.Load(target.Ptr, d.Value)
			t.b.Store(d.Value, t.b.Null())
			t.release(d.Repr, old)
		}
	}
}

// handleOf wraps a loaded value according to its representation.
func handleOf(v target.Value, r layout.Repr) valueHandle {
	switch r.Kind {
	case layout.ReprFunc:
		return funcHandle{fv: DynamicFunction{Value: v}, r: r}
	case layout.ReprObject, layout.ReprScope:
		return heapHandle{v: v, r: r}
	}
	return scalarHandle{v: v, r: r}
}
