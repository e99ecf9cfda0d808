package lower

import (
	"strconv"
	"strings"

	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/scope"
	"scriptc/internal/target"
	"scriptc/internal/trace"
)

// lowerFunction emits the body of a function declaration or arrow
// function. The function's outermost scope hangs below the scope it was
// declared in, so outer bindings resolve through env.
func (t *Translator) lowerFunction(p pending) error {
	n := t.u.Node(p.node)
	span := trace.Begin(trace.FromContext(t.ctx), trace.ScopeFunc, p.code.Name(), t.span)
	defer span.End("")

	_, result, _, err := t.signature(t.typeOf(p.node), n.Span)
	if err != nil {
		return err
	}
	_, params := t.b.DefineFunc(p.code)
	t.fn = &fnState{node: p.node, code: p.code, env: params[0], result: result}
	pure := t.cap.IsPure(p.node)
	t.funcs = append(t.funcs, FuncInfo{Name: p.code.Name(), Node: p.node, Pure: pure})
	span.Attr("pure", strconv.FormatBool(pure))

	root := p.parent.Child(p.node, p.node)
	if err := t.enterContainer(root, p.node); err != nil {
		return err
	}
	if root.Layout != nil {
		span.Attr("scope", layoutFields(root.Layout))
	}
	for i, param := range n.List {
		ref, err := root.LookupDecl(param, t.u.Node(param).Name, t.u.Node(param).Span)
		if err != nil {
			return err
		}
		addr, err := t.bindingAddr(root, ref)
		if err != nil {
			return t.at(t.u.Node(param).Span, err)
		}
		in := params[i+1]
		t.storeOwned(addr, ref.Binding.Repr, in)
		if ref.Binding.Repr.IsCounted() {
			root.Defer(scope.Deferred{Kind: scope.DeferValue, Value: in, Repr: ref.Binding.Repr})
		}
	}

	body := t.u.Node(n.Body)
	if body.Kind == ast.KindBlock {
		if err := t.lowerStmts(root, body.List); err != nil {
			return err
		}
	} else {
		tn := root.Transient()
		h, err := t.expr(tn, n.Body)
		if err != nil {
			return err
		}
		if result.Kind == layout.ReprVoid {
			t.emitDeferred(tn)
		} else {
			t.emitReturn(tn, t.value(tn, h), result)
		}
	}
	if !t.b.Terminated() {
		t.emitDeferred(root)
		t.b.Ret(t.zero(result))
	}
	return nil
}

// emitReturn hands one unit of v to the caller and leaves every scope of
// the current function.
func (t *Translator) emitReturn(cur *scope.Node, v target.Value, r layout.Repr) {
	if r.Kind == layout.ReprVoid {
		v = nil
	}
	if v != nil {
		t.retain(r, v)
	}
	for _, n := range cur.Unwind() {
		t.emitDeferred(n)
	}
	t.b.Ret(v)
}

// zero is the value a non-void function returns when control falls off
// its end.
func (t *Translator) zero(r layout.Repr) target.Value {
	switch r.Kind {
	case layout.ReprVoid:
		return nil
	case layout.ReprBool:
		return t.b.ConstBool(false)
	case layout.ReprInt:
		return t.b.ConstInt(target.IntType(r.Bits), 0)
	case layout.ReprFloat:
		return t.b.ConstFloat(0)
	}
	return t.b.Null()
}

// layoutFields renders a scope-object layout as name{field,...}.
func layoutFields(d *layout.Descriptor) string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return d.Name + "{" + strings.Join(names, ",") + "}"
}

// functionValue builds the static function value of a named function or
// extern binding.
func (t *Translator) functionValue(cur *scope.Node, ref scope.Ref) (FunctionValue, error) {
	b := ref.Binding
	if b.Kind == scope.BindExtern || t.cap.IsPure(b.Decl) {
		return PureFunction{Code: b.Code}, nil
	}
	env, err := t.scopePointer(cur, ref.Node.EnvAt())
	if err != nil {
		return nil, err
	}
	return ClosureFunction{Code: b.Code, Scope: env}, nil
}

// arrowValue schedules an arrow function and returns its value at the
// point of definition.
func (t *Translator) arrowValue(cur *scope.Node, id ast.NodeID) (FunctionValue, error) {
	code, err := t.enqueue(id, cur)
	if err != nil {
		return nil, err
	}
	if t.cap.IsPure(id) {
		return PureFunction{Code: code}, nil
	}
	env, err := t.scopePointer(cur, cur.EnvAt())
	if err != nil {
		return nil, t.at(t.u.Node(id).Span, err)
	}
	return ClosureFunction{Code: code, Scope: env}, nil
}

// materialize turns a function value into a first-class pointer. A
// closure is boxed into a new closure object owned by cur.
func (t *Translator) materialize(cur *scope.Node, fv FunctionValue) target.Value {
	switch fv := fv.(type) {
	case PureFunction:
		return fv.Code
	case ClosureFunction:
		d := t.reg.Closure()
		obj := t.construct(d)
		code, _ := d.Field("code")
		env, _ := d.Field("env")
		t.b.Store(t.fieldAddr(d, obj, code), fv.Code)
		t.retain(layout.ScopeRepr, fv.Scope)
		t.b.Store(t.fieldAddr(d, obj, env), fv.Scope)
		cur.Defer(scope.Deferred{Kind: scope.DeferValue, Value: obj, Repr: layout.Repr{Kind: layout.ReprObject, Layout: d}})
		return obj
	case DynamicFunction:
		return fv.Value
	}
	panic("unreachable")
}

// callFunction calls fv with already owned arguments and returns the raw
// result, or nil for void.
func (t *Translator) callFunction(fv FunctionValue, sig *target.Sig, args []target.Value) target.Value {
	switch fv := fv.(type) {
	case PureFunction:
		return t.b.Call(sig, fv.Code, append([]target.Value{t.b.Null()}, args...)...)
	case ClosureFunction:
		return t.b.Call(sig, fv.Code, append([]target.Value{fv.Scope}, args...)...)
	case DynamicFunction:
		return t.dispatch(fv.Value, sig, args)
	}
	panic("unreachable")
}

// dispatch calls a function value whose shape is only known at run time.
// A closure object carries the closure tag in its header; anything else
// is a bare code pointer and gets a null env.
func (t *Translator) dispatch(callee target.Value, sig *target.Sig, args []target.Value) target.Value {
	var slot target.Value
	if sig.Ret != target.Void {
		slot = t.b.AllocStack(sig.Ret)
	}
	closure, bare, join := t.b.NewBlock("call.closure"), t.b.NewBlock("call.code"), t.b.NewBlock("call.join")
	tag := t.b.Load(target.I32, t.b.FieldAddr(headerStruct, callee, layout.TagSlot))
	t.b.CondBr(t.b.Compare(target.Eq, tag, t.b.ConstInt(target.I32, int64(layout.ClosureTag))), closure, bare)

	t.b.SetInsert(closure)
	d := t.reg.Closure()
	codeF, _ := d.Field("code")
	envF, _ := d.Field("env")
	code := t.loadField(d, callee, codeF)
	env := t.loadField(d, callee, envF)
	r := t.b.Call(sig, code, append([]target.Value{env}, args...)...)
	if slot != nil {
		t.b.Store(slot, r)
	}
	t.b.Br(join)

	t.b.SetInsert(bare)
	r = t.b.Call(sig, callee, append([]target.Value{t.b.Null()}, args...)...)
	if slot != nil {
		t.b.Store(slot, r)
	}
	t.b.Br(join)

	t.b.SetInsert(join)
	if slot == nil {
		return nil
	}
	return t.b.Load(sig.Ret, slot)
}
