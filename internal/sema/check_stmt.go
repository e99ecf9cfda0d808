package sema

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/types"
)

func (c *Checker) checkStmts(ids []ast.NodeID) {
	for _, id := range ids {
		c.checkStmt(id)
	}
}

func (c *Checker) checkStmt(id ast.NodeID) {
	n := c.unit.Node(id)
	switch n.Kind {
	case ast.KindTypeAlias:
	case ast.KindDeclareFunc:
		c.sigOf(id)
	case ast.KindFuncDecl:
		c.sigOf(id)
		c.checkBody(id)
	case ast.KindVarDecl:
		want := types.NoTypeID
		if n.Type.IsValid() {
			want = c.resolveType(n.Type)
		}
		got := c.checkExpr(n.X, want)
		if want != types.NoTypeID {
			c.expect(n.X, want, got)
			c.record(id, want)
			return
		}
		if c.types.Resolved(got).Kind == types.KindNull {
			c.errorf(diag.SemaMissingType, n.Span, "variable initialized with null needs a type annotation")
			return
		}
		c.record(id, got)
	case ast.KindReturn:
		c.checkReturn(id)
	case ast.KindIf:
		c.checkCondition(n.X)
		c.checkStmt(n.Y)
		if n.Z.IsValid() {
			c.checkStmt(n.Z)
		}
	case ast.KindWhile:
		c.checkCondition(n.X)
		c.checkStmt(n.Y)
	case ast.KindBlock:
		c.checkStmts(n.List)
	case ast.KindExprStmt:
		c.checkExpr(n.X, types.NoTypeID)
	}
}

func (c *Checker) checkCondition(id ast.NodeID) {
	t := c.checkExpr(id, c.types.Builtins().Bool)
	c.expect(id, c.types.Builtins().Bool, t)
}

func (c *Checker) checkReturn(id ast.NodeID) {
	n := c.unit.Node(id)
	if len(c.fns) == 0 {
		c.errorf(diag.SemaReturnOutsideFn, n.Span, "return outside of a function")
		return
	}
	fn := c.fns[len(c.fns)-1]
	void := c.types.Builtins().Void
	if !n.X.IsValid() {
		if fn.result != types.NoTypeID && fn.result != void {
			c.errorf(diag.SemaTypeMismatch, n.Span, "missing return value of type '"+c.typeName(fn.result)+"'")
		}
		if fn.result == types.NoTypeID && fn.inferred == types.NoTypeID {
			fn.inferred = void
		}
		return
	}
	if fn.result != types.NoTypeID {
		c.expect(n.X, fn.result, c.checkExpr(n.X, fn.result))
		return
	}
	got := c.checkExpr(n.X, fn.inferred)
	if fn.inferred == types.NoTypeID {
		fn.inferred = got
		return
	}
	c.expect(n.X, fn.inferred, got)
}

// sigOf returns the function type of a declared function or extern,
// inferring the result from the body when it is not annotated.
func (c *Checker) sigOf(id ast.NodeID) types.TypeID {
	if t, ok := c.sigs[id]; ok {
		return t
	}
	n := c.unit.Node(id)
	params, ok := c.paramTypes(id, types.NoTypeID)
	if !ok {
		return types.NoTypeID
	}
	var ret types.TypeID
	switch {
	case n.Type.IsValid():
		ret = c.resolveType(n.Type)
		if ret == types.NoTypeID {
			return types.NoTypeID
		}
	case c.busy[id]:
		c.errorf(diag.SemaMissingType, n.Span, "recursive function '"+n.Name+"' needs a return type annotation")
		return types.NoTypeID
	default:
		ret = c.checkBody(id)
	}
	sig := c.types.Func(params, ret)
	c.sigs[id] = sig
	c.record(id, sig)
	return sig
}

// paramTypes resolves the parameter annotations of a function, falling back
// to the contextual signature for arrow functions.
func (c *Checker) paramTypes(fn ast.NodeID, contextual types.TypeID) ([]types.TypeID, bool) {
	n := c.unit.Node(fn)
	ctx := c.types.Resolved(contextual)
	out := make([]types.TypeID, 0, len(n.List))
	ok := true
	for i, p := range n.List {
		pn := c.unit.Node(p)
		var t types.TypeID
		switch {
		case pn.Type.IsValid():
			t = c.resolveType(pn.Type)
		case ctx.Kind == types.KindFunc && i < len(ctx.Params):
			t = ctx.Params[i]
		default:
			c.errorf(diag.SemaMissingType, pn.Span, "parameter '"+pn.Name+"' needs a type annotation")
		}
		if t == types.NoTypeID {
			ok = false
			continue
		}
		c.record(p, t)
		out = append(out, t)
	}
	return out, ok
}

// checkBody checks a function body once and returns its result type.
func (c *Checker) checkBody(id ast.NodeID) types.TypeID {
	return c.checkBodyWith(id, types.NoTypeID)
}

func (c *Checker) checkBodyWith(id ast.NodeID, contextualResult types.TypeID) types.TypeID {
	n := c.unit.Node(id)
	if c.done[id] {
		return c.resultOf(id)
	}
	c.done[id] = true
	c.busy[id] = true
	defer delete(c.busy, id)

	ctx := &fnCtx{node: id, result: contextualResult}
	if n.Type.IsValid() {
		ctx.result = c.resolveType(n.Type)
	}
	c.fns = append(c.fns, ctx)
	if body := c.unit.Node(n.Body); body.Kind == ast.KindBlock {
		c.checkStmts(body.List)
	} else {
		got := c.checkExpr(n.Body, ctx.result)
		switch ctx.result {
		case types.NoTypeID:
			ctx.inferred = got
		case c.types.Builtins().Void:
		default:
			c.expect(n.Body, ctx.result, got)
		}
	}
	c.fns = c.fns[:len(c.fns)-1]

	ret := ctx.result
	if ret == types.NoTypeID {
		ret = ctx.inferred
	}
	if ret == types.NoTypeID {
		ret = c.types.Builtins().Void
	}
	c.results[id] = ret
	return ret
}

func (c *Checker) resultOf(id ast.NodeID) types.TypeID {
	return c.results[id]
}
