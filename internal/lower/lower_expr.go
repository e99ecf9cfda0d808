package lower

import (
	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/scope"
	"scriptc/internal/target"
	"scriptc/internal/token"
)

// expr translates an expression evaluated in cur. Fresh values that need
// releasing are registered on cur; the returned handle is borrowed.
func (t *Translator) expr(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	switch n.Kind {
	case ast.KindIdent:
		return t.ident(cur, id)
	case ast.KindNumberLit:
		r, err := t.reprOf(id)
		if err != nil {
			return nil, err
		}
		if r.Kind == layout.ReprInt {
			return scalarHandle{v: t.b.ConstInt(target.IntType(r.Bits), int64(n.Num)), r: r}, nil
		}
		return scalarHandle{v: t.b.ConstFloat(n.Num), r: layout.FloatRepr}, nil
	case ast.KindStringLit:
		return scalarHandle{v: t.b.StringConst(n.Str), r: layout.Repr{Kind: layout.ReprString, Type: t.typeOf(id)}}, nil
	case ast.KindBoolLit:
		return scalarHandle{v: t.b.ConstBool(n.Bool), r: layout.BoolRepr}, nil
	case ast.KindNullLit:
		r, err := t.reprOf(id)
		if err != nil {
			return nil, err
		}
		return handleOf(t.b.Null(), r), nil
	case ast.KindObjectLit:
		return t.objectLit(cur, id)
	case ast.KindMember:
		return t.member(cur, id)
	case ast.KindCall:
		return t.call(cur, id)
	case ast.KindUnary:
		return t.unary(cur, id)
	case ast.KindBinary:
		if n.Op == token.AndAnd || n.Op == token.OrOr {
			return t.logical(cur, id)
		}
		return t.binary(cur, id)
	case ast.KindAssign:
		return t.assign(cur, id)
	case ast.KindArrowFunc:
		fv, err := t.arrowValue(cur, id)
		if err != nil {
			return nil, err
		}
		r, err := t.reprOf(id)
		if err != nil {
			return nil, err
		}
		return funcHandle{fv: fv, r: r}, nil
	case ast.KindThis:
		return nil, t.unsupported(n.Kind.String(), n.Span, "receivers are not supported")
	}
	return nil, t.unsupported(n.Kind.String(), n.Span, "not an expression")
}

// value returns the first-class value of h.
func (t *Translator) value(cur *scope.Node, h valueHandle) target.Value {
	switch h := h.(type) {
	case scalarHandle:
		return h.v
	case heapHandle:
		return h.v
	case funcHandle:
		return t.materialize(cur, h.fv)
	}
	panic("unreachable")
}

func (t *Translator) ident(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	ref, err := t.lookup(cur, id)
	if err != nil {
		return nil, err
	}
	b := ref.Binding
	switch b.Kind {
	case scope.BindFunc, scope.BindExtern:
		fv, err := t.functionValue(cur, ref)
		if err != nil {
			return nil, t.at(t.u.Node(id).Span, err)
		}
		return funcHandle{fv: fv, r: b.Repr}, nil
	}
	addr, err := t.bindingAddr(cur, ref)
	if err != nil {
		return nil, t.at(t.u.Node(id).Span, err)
	}
	return handleOf(t.b.Load(irType(b.Repr), addr), b.Repr), nil
}

// objectOperand evaluates the object of a property access.
func (t *Translator) objectOperand(cur *scope.Node, id ast.NodeID) (heapHandle, layout.Field, error) {
	n := t.u.Node(id)
	h, err := t.expr(cur, n.X)
	if err != nil {
		return heapHandle{}, layout.Field{}, err
	}
	obj, ok := h.(heapHandle)
	if !ok || obj.r.Layout == nil {
		return heapHandle{}, layout.Field{}, t.unsupported(n.Kind.String(), n.Span, "property access on a value without a layout")
	}
	f, err := obj.r.Layout.Field(n.Name)
	if err != nil {
		return heapHandle{}, layout.Field{}, t.at(n.Span, err)
	}
	return obj, f, nil
}

func (t *Translator) member(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	obj, f, err := t.objectOperand(cur, id)
	if err != nil {
		return nil, err
	}
	return handleOf(t.loadField(obj.r.Layout, obj.v, f), f.Repr), nil
}

// objectLit evaluates the properties in source order, then builds the
// object. The new object is owned by cur.
func (t *Translator) objectLit(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	r, err := t.reprOf(id)
	if err != nil {
		return nil, err
	}
	if r.Kind != layout.ReprObject || r.Layout == nil {
		return nil, t.unsupported(n.Kind.String(), n.Span, "object literal without a structural type")
	}
	d := r.Layout
	type fieldInit struct {
		f layout.Field
		v target.Value
	}
	inits := make([]fieldInit, 0, len(n.List))
	for _, p := range n.List {
		pn := t.u.Node(p)
		f, err := d.Field(pn.Name)
		if err != nil {
			return nil, t.at(pn.Span, err)
		}
		h, err := t.expr(cur, pn.X)
		if err != nil {
			return nil, err
		}
		inits = append(inits, fieldInit{f: f, v: t.value(cur, h)})
	}
	obj := t.construct(d)
	for _, in := range inits {
		t.retain(in.f.Repr, in.v)
		t.b.Store(t.fieldAddr(d, obj, in.f), in.v)
	}
	cur.Defer(scope.Deferred{Kind: scope.DeferValue, Value: obj, Repr: r})
	return heapHandle{v: obj, r: r}, nil
}

// assign evaluates the value before the target address. The target slot
// takes its own unit of the value and drops the previous occupant.
func (t *Translator) assign(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	h, err := t.expr(cur, n.Y)
	if err != nil {
		return nil, err
	}
	v := t.value(cur, h)

	var addr target.Value
	var r layout.Repr
	switch tn := t.u.Node(n.X); tn.Kind {
	case ast.KindIdent:
		ref, err := t.lookup(cur, n.X)
		if err != nil {
			return nil, err
		}
		if k := ref.Binding.Kind; k == scope.BindFunc || k == scope.BindExtern {
			return nil, t.unsupported(n.Kind.String(), n.Span, "cannot assign to function "+tn.Name)
		}
		if addr, err = t.bindingAddr(cur, ref); err != nil {
			return nil, t.at(tn.Span, err)
		}
		r = ref.Binding.Repr
	case ast.KindMember:
		obj, f, err := t.objectOperand(cur, n.X)
		if err != nil {
			return nil, err
		}
		addr = t.fieldAddr(obj.r.Layout, obj.v, f)
		r = f.Repr
	default:
		return nil, t.unsupported(n.Kind.String(), n.Span, "invalid assignment target "+tn.Kind.String())
	}
	t.storeOwned(addr, r, v)
	return handleOf(v, r), nil
}
