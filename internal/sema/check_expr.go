package sema

import (
	"strconv"

	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/symbols"
	"scriptc/internal/token"
	"scriptc/internal/types"
)

// checkExpr computes and records the type of an expression. want is the
// contextual type (NoTypeID when there is none); it drives the typing of
// numeric literals, object literals, null and arrow parameters.
func (c *Checker) checkExpr(id ast.NodeID, want types.TypeID) types.TypeID {
	return c.record(id, c.exprType(id, want))
}

func (c *Checker) exprType(id ast.NodeID, want types.TypeID) types.TypeID {
	n := c.unit.Node(id)
	b := c.types.Builtins()
	switch n.Kind {
	case ast.KindNumberLit:
		if c.types.Resolved(want).Kind == types.KindInt {
			return want
		}
		return b.Number
	case ast.KindStringLit:
		return b.String
	case ast.KindBoolLit:
		return b.Bool
	case ast.KindNullLit:
		switch c.types.Resolved(want).Kind {
		case types.KindObject, types.KindFunc:
			return want
		}
		return b.Null
	case ast.KindThis:
		// Receivers are rejected during lowering.
		return b.Void
	case ast.KindIdent:
		return c.identType(id)
	case ast.KindObjectLit:
		return c.objectLitType(id, want)
	case ast.KindMember:
		return c.memberType(id)
	case ast.KindCall:
		return c.callType(id)
	case ast.KindUnary:
		return c.unaryType(id, want)
	case ast.KindBinary:
		return c.binaryType(id, want)
	case ast.KindAssign:
		return c.assignType(id)
	case ast.KindArrowFunc:
		return c.arrowType(id, want)
	}
	c.errorf(diag.SemaInvalidOperand, n.Span, "unexpected "+n.Kind.String()+" in expression position")
	return types.NoTypeID
}

func (c *Checker) identType(id ast.NodeID) types.TypeID {
	d, ok := c.table.Decl(id)
	if !ok {
		return types.NoTypeID
	}
	switch c.unit.Kind(d) {
	case ast.KindFuncDecl, ast.KindDeclareFunc:
		return c.sigOf(d)
	}
	return c.info.TypeOf(d)
}

func (c *Checker) objectLitType(id ast.NodeID, want types.TypeID) types.TypeID {
	n := c.unit.Node(id)
	if len(n.List) == 0 {
		c.errorf(diag.SemaInvalidOperand, n.Span, "empty object literals are not supported")
		return types.NoTypeID
	}
	target := c.types.Resolved(want)
	if target.Kind == types.KindObject {
		ok := true
		present := map[string]bool{}
		for _, p := range n.List {
			pn := c.unit.Node(p)
			present[pn.Name] = true
			prop, found := c.types.Prop(want, pn.Name)
			if !found {
				c.errorf(diag.SemaExtraProperty, pn.Span, "property '"+pn.Name+"' does not exist in type '"+c.typeName(want)+"'")
				c.checkExpr(pn.X, types.NoTypeID)
				ok = false
				continue
			}
			got := c.checkExpr(pn.X, prop.Type)
			c.record(p, prop.Type)
			if got != types.NoTypeID && !c.types.Assignable(prop.Type, got) {
				c.mismatch(pn.X, prop.Type, got)
				ok = false
			}
		}
		for _, prop := range target.Props {
			if !present[prop.Name] {
				c.errorf(diag.SemaMissingProperty, n.Span, "property '"+prop.Name+"' is missing")
				ok = false
			}
		}
		if !ok {
			return types.NoTypeID
		}
		return want
	}
	props := make([]types.Prop, 0, len(n.List))
	for _, p := range n.List {
		pn := c.unit.Node(p)
		t := c.checkExpr(pn.X, types.NoTypeID)
		if t == types.NoTypeID {
			return types.NoTypeID
		}
		if c.types.Resolved(t).Kind == types.KindNull {
			c.errorf(diag.SemaMissingType, pn.Span, "property '"+pn.Name+"' initialized with null needs a contextual type")
			return types.NoTypeID
		}
		c.record(p, t)
		props = append(props, types.Prop{Name: pn.Name, Type: t})
	}
	return c.types.Object(props)
}

func (c *Checker) memberType(id ast.NodeID) types.TypeID {
	n := c.unit.Node(id)
	obj := c.checkExpr(n.X, types.NoTypeID)
	if obj == types.NoTypeID {
		return types.NoTypeID
	}
	if c.types.Resolved(obj).Kind != types.KindObject {
		c.errorf(diag.SemaUnknownProperty, n.Span, "type '"+c.typeName(obj)+"' has no properties")
		return types.NoTypeID
	}
	prop, ok := c.types.Prop(obj, n.Name)
	if !ok {
		c.errorf(diag.SemaUnknownProperty, n.Span, "property '"+n.Name+"' does not exist on type '"+c.typeName(obj)+"'")
		return types.NoTypeID
	}
	return prop.Type
}

func (c *Checker) callType(id ast.NodeID) types.TypeID {
	n := c.unit.Node(id)
	callee := c.checkExpr(n.X, types.NoTypeID)
	if callee == types.NoTypeID {
		for _, a := range n.List {
			c.checkExpr(a, types.NoTypeID)
		}
		return types.NoTypeID
	}
	sig := c.types.Resolved(callee)
	if sig.Kind != types.KindFunc {
		c.errorf(diag.SemaNotCallable, c.span(n.X), "type '"+c.typeName(callee)+"' is not callable")
		return types.NoTypeID
	}
	if len(n.List) != len(sig.Params) {
		c.errorf(diag.SemaArgCount, n.Span, "expected "+strconv.Itoa(len(sig.Params))+" arguments, got "+strconv.Itoa(len(n.List)))
	}
	for i, a := range n.List {
		want := types.NoTypeID
		if i < len(sig.Params) {
			want = sig.Params[i]
		}
		c.expect(a, want, c.checkExpr(a, want))
	}
	return sig.Result
}

func isNumeric(t types.Type) bool {
	return t.Kind == types.KindNumber || t.Kind == types.KindInt
}

func (c *Checker) unaryType(id ast.NodeID, want types.TypeID) types.TypeID {
	n := c.unit.Node(id)
	b := c.types.Builtins()
	switch n.Op {
	case token.Minus:
		t := c.checkExpr(n.X, want)
		if t != types.NoTypeID && !isNumeric(c.types.Resolved(t)) {
			c.errorf(diag.SemaInvalidOperand, n.Span, "operator '-' needs a numeric operand")
			return types.NoTypeID
		}
		return t
	case token.Bang:
		c.expect(n.X, b.Bool, c.checkExpr(n.X, b.Bool))
		return b.Bool
	}
	return types.NoTypeID
}

func (c *Checker) binaryType(id ast.NodeID, want types.TypeID) types.TypeID {
	n := c.unit.Node(id)
	b := c.types.Builtins()
	switch n.Op {
	case token.AndAnd, token.OrOr:
		c.expect(n.X, b.Bool, c.checkExpr(n.X, b.Bool))
		c.expect(n.Y, b.Bool, c.checkExpr(n.Y, b.Bool))
		return b.Bool
	}

	hint := types.NoTypeID
	if isArithmetic(n.Op) {
		hint = want
	}
	x := c.checkExpr(n.X, hint)
	if x == types.NoTypeID {
		c.checkExpr(n.Y, types.NoTypeID)
		return types.NoTypeID
	}
	y := c.checkExpr(n.Y, x)
	if y == types.NoTypeID {
		return types.NoTypeID
	}
	if c.unit.Kind(n.X) == ast.KindNumberLit && c.types.Resolved(y).Kind == types.KindInt {
		x = c.checkExpr(n.X, y)
	}
	tx := c.types.Resolved(x)

	switch n.Op {
	case token.EqEq, token.EqEqEq, token.BangEq, token.BangEqEq:
		if !c.types.Assignable(x, y) && !c.types.Assignable(y, x) {
			c.errorf(diag.SemaInvalidOperand, n.Span, "cannot compare '"+c.typeName(x)+"' with '"+c.typeName(y)+"'")
			return types.NoTypeID
		}
		if tx.Kind == types.KindString {
			c.errorf(diag.SemaInvalidOperand, n.Span, "string comparison is not supported")
			return types.NoTypeID
		}
		return b.Bool
	}
	if !isNumeric(tx) || !c.types.Identical(x, y) {
		c.errorf(diag.SemaInvalidOperand, n.Span, "operator '"+n.Op.String()+"' needs numeric operands of the same type, got '"+
			c.typeName(x)+"' and '"+c.typeName(y)+"'")
		return types.NoTypeID
	}
	if isArithmetic(n.Op) {
		return x
	}
	return b.Bool
}

func isArithmetic(op token.Kind) bool {
	switch op {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent:
		return true
	}
	return false
}

func (c *Checker) assignType(id ast.NodeID) types.TypeID {
	n := c.unit.Node(id)
	target := c.unit.Node(n.X)
	if target.Kind == ast.KindIdent {
		if d, ok := c.table.Decl(n.X); ok {
			switch symbols.KindOf(c.unit, d) {
			case symbols.SymbolConst:
				c.errorf(diag.SemaAssignToConst, target.Span, "cannot assign to '"+target.Name+"' because it is a constant")
			case symbols.SymbolFunction, symbols.SymbolExtern:
				c.errorf(diag.SemaNotAssignable, target.Span, "cannot assign to function '"+target.Name+"'")
			}
		}
	}
	want := c.checkExpr(n.X, types.NoTypeID)
	got := c.checkExpr(n.Y, want)
	c.expect(n.Y, want, got)
	return want
}

func (c *Checker) arrowType(id ast.NodeID, want types.TypeID) types.TypeID {
	params, ok := c.paramTypes(id, want)
	if !ok {
		return types.NoTypeID
	}
	ctxResult := types.NoTypeID
	if sig := c.types.Resolved(want); sig.Kind == types.KindFunc {
		ctxResult = sig.Result
	}
	ret := c.checkBodyWith(id, ctxResult)
	if ret == types.NoTypeID {
		return types.NoTypeID
	}
	return c.types.Func(params, ret)
}
