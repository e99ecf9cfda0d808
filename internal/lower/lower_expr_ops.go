package lower

import (
	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/scope"
	"scriptc/internal/target"
	"scriptc/internal/token"
)

var arith = map[token.Kind]target.Op{
	token.Plus:    target.Add,
	token.Minus:   target.Sub,
	token.Star:    target.Mul,
	token.Slash:   target.Div,
	token.Percent: target.Rem,
}

var preds = map[token.Kind]target.Pred{
	token.EqEq:     target.Eq,
	token.EqEqEq:   target.Eq,
	token.BangEq:   target.Ne,
	token.BangEqEq: target.Ne,
	token.Lt:       target.Lt,
	token.LtEq:     target.Le,
	token.Gt:       target.Gt,
	token.GtEq:     target.Ge,
}

func (t *Translator) unary(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	h, err := t.expr(cur, n.X)
	if err != nil {
		return nil, err
	}
	x, ok := h.(scalarHandle)
	if !ok {
		return nil, t.unsupported(n.Kind.String(), n.Span, "operand is not a scalar")
	}
	switch n.Op {
	case token.Minus:
		switch x.r.Kind {
		case layout.ReprFloat:
			return scalarHandle{v: t.b.Binary(target.Mul, x.v, t.b.ConstFloat(-1)), r: x.r}, nil
		case layout.ReprInt:
			return scalarHandle{v: t.b.Binary(target.Sub, t.b.ConstInt(target.IntType(x.r.Bits), 0), x.v), r: x.r}, nil
		}
	case token.Bang:
		if x.r.Kind == layout.ReprBool {
			return scalarHandle{v: t.b.Compare(target.Eq, x.v, t.b.ConstBool(false)), r: layout.BoolRepr}, nil
		}
	}
	return nil, t.unsupported(n.Kind.String(), n.Span, "operator "+n.Op.String()+" on "+x.r.String())
}

func (t *Translator) binary(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	xh, err := t.expr(cur, n.X)
	if err != nil {
		return nil, err
	}
	x := t.value(cur, xh)
	yh, err := t.expr(cur, n.Y)
	if err != nil {
		return nil, err
	}
	y := t.value(cur, yh)

	if op, ok := arith[n.Op]; ok {
		r := xh.repr()
		if r.Kind != layout.ReprInt && r.Kind != layout.ReprFloat {
			return nil, t.unsupported(n.Kind.String(), n.Span, "operator "+n.Op.String()+" on "+r.String())
		}
		return scalarHandle{v: t.b.Binary(op, x, y), r: r}, nil
	}
	if pred, ok := preds[n.Op]; ok {
		return scalarHandle{v: t.b.Compare(pred, x, y), r: layout.BoolRepr}, nil
	}
	return nil, t.unsupported(n.Kind.String(), n.Span, "operator "+n.Op.String())
}

// logical evaluates the right operand only when it decides the result.
// The right operand runs in its own transient scope so that its
// temporaries are released on the path that created them.
func (t *Translator) logical(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	result := t.b.AllocStack(target.I1)
	xh, err := t.expr(cur, n.X)
	if err != nil {
		return nil, err
	}
	x := t.value(cur, xh)
	t.b.Store(result, x)

	rhs, join := t.b.NewBlock("logic.rhs"), t.b.NewBlock("logic.join")
	if n.Op == token.AndAnd {
		t.b.CondBr(x, rhs, join)
	} else {
		t.b.CondBr(x, join, rhs)
	}

	t.b.SetInsert(rhs)
	tn := cur.Transient()
	yh, err := t.expr(tn, n.Y)
	if err != nil {
		return nil, err
	}
	t.b.Store(result, t.value(tn, yh))
	t.emitDeferred(tn)
	t.b.Br(join)

	t.b.SetInsert(join)
	return scalarHandle{v: t.b.Load(target.I1, result), r: layout.BoolRepr}, nil
}
