package lower

import (
	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/scope"
	"scriptc/internal/target"
)

// call evaluates the callee, then each argument, taking one unit of every
// counted argument for the callee. A counted result is owned by cur.
func (t *Translator) call(cur *scope.Node, id ast.NodeID) (valueHandle, error) {
	n := t.u.Node(id)
	sig, result, params, err := t.signature(t.typeOf(n.X), t.u.Node(n.X).Span)
	if err != nil {
		return nil, err
	}
	if len(params) != len(n.List) {
		return nil, t.unsupported(n.Kind.String(), n.Span, "argument count does not match the signature")
	}

	ch, err := t.expr(cur, n.X)
	if err != nil {
		return nil, err
	}
	callee, ok := ch.(funcHandle)
	if !ok {
		return nil, &UnknownCalleeRepresentationError{Span: t.u.Node(n.X).Span, Type: ch.repr().String()}
	}
	if dyn, ok := callee.fv.(DynamicFunction); ok {
		// Keep the callee alive while the arguments run.
		t.retain(callee.r, dyn.Value)
		cur.Defer(scope.Deferred{Kind: scope.DeferValue, Value: dyn.Value, Repr: callee.r})
	}

	args := make([]target.Value, 0, len(n.List))
	for i, a := range n.List {
		h, err := t.expr(cur, a)
		if err != nil {
			return nil, err
		}
		v := t.value(cur, h)
		t.retain(params[i], v)
		args = append(args, v)
	}

	r := t.callFunction(callee.fv, sig, args)
	if result.Kind == layout.ReprVoid {
		return voidHandle, nil
	}
	if result.IsCounted() {
		cur.Defer(scope.Deferred{Kind: scope.DeferValue, Value: r, Repr: result})
	}
	return handleOf(r, result), nil
}
