package lower

import (
	"scriptc/internal/ast"
	"scriptc/internal/scope"
	"scriptc/internal/target"
)

// lowerStmts translates a statement list. Statements after a return are
// unreachable and skipped; declarations among them were already hoisted.
func (t *Translator) lowerStmts(cur *scope.Node, ids []ast.NodeID) error {
	for _, id := range ids {
		if t.b.Terminated() {
			return nil
		}
		if err := t.stmt(cur, id); err != nil {
			return err
		}
	}
	return nil
}

// stmt translates one statement. Temporaries live in a transient scope
// that ends with the statement.
func (t *Translator) stmt(cur *scope.Node, id ast.NodeID) error {
	n := t.u.Node(id)
	switch n.Kind {
	case ast.KindFuncDecl, ast.KindDeclareFunc, ast.KindTypeAlias:
		return nil
	case ast.KindVarDecl:
		return t.varDecl(cur, id)
	case ast.KindExprStmt:
		tn := cur.Transient()
		if _, err := t.expr(tn, n.X); err != nil {
			return err
		}
		t.emitDeferred(tn)
		return nil
	case ast.KindReturn:
		return t.ret(cur, id)
	case ast.KindBlock:
		return t.block(cur, id)
	case ast.KindIf:
		return t.ifStmt(cur, id)
	case ast.KindWhile:
		return t.whileStmt(cur, id)
	}
	return t.unsupported(n.Kind.String(), n.Span, "not a statement")
}

func (t *Translator) varDecl(cur *scope.Node, id ast.NodeID) error {
	n := t.u.Node(id)
	if !n.X.IsValid() {
		return t.unsupported(n.Kind.String(), n.Span, "declaration without initializer")
	}
	ref, err := cur.LookupDecl(id, n.Name, n.Span)
	if err != nil {
		return err
	}
	tn := cur.Transient()
	h, err := t.expr(tn, n.X)
	if err != nil {
		return err
	}
	v := t.value(tn, h)
	addr, err := t.bindingAddr(cur, ref)
	if err != nil {
		return t.at(n.Span, err)
	}
	t.storeOwned(addr, ref.Binding.Repr, v)
	t.emitDeferred(tn)
	return nil
}

func (t *Translator) ret(cur *scope.Node, id ast.NodeID) error {
	n := t.u.Node(id)
	tn := cur.Transient()
	if !n.X.IsValid() {
		t.emitReturn(tn, nil, t.fn.result)
		return nil
	}
	h, err := t.expr(tn, n.X)
	if err != nil {
		return err
	}
	t.emitReturn(tn, t.value(tn, h), t.fn.result)
	return nil
}

func (t *Translator) block(cur *scope.Node, id ast.NodeID) error {
	child := cur.Child(id, cur.Function)
	if err := t.enterContainer(child, id); err != nil {
		return err
	}
	if err := t.lowerStmts(child, t.u.Node(id).List); err != nil {
		return err
	}
	if !t.b.Terminated() {
		t.emitDeferred(child)
	}
	return nil
}

// condition evaluates a branch condition and releases its temporaries
// before the branch.
func (t *Translator) condition(cur *scope.Node, id ast.NodeID) (target.Value, error) {
	tn := cur.Transient()
	h, err := t.expr(tn, id)
	if err != nil {
		return nil, err
	}
	v := t.value(tn, h)
	t.emitDeferred(tn)
	return v, nil
}

func (t *Translator) ifStmt(cur *scope.Node, id ast.NodeID) error {
	n := t.u.Node(id)
	c, err := t.condition(cur, n.X)
	if err != nil {
		return err
	}
	then, join := t.b.NewBlock("if.then"), t.b.NewBlock("if.end")
	els := join
	if n.Z.IsValid() {
		els = t.b.NewBlock("if.else")
	}
	t.b.CondBr(c, then, els)

	t.b.SetInsert(then)
	if err := t.stmt(cur, n.Y); err != nil {
		return err
	}
	if !t.b.Terminated() {
		t.b.Br(join)
	}
	if n.Z.IsValid() {
		t.b.SetInsert(els)
		if err := t.stmt(cur, n.Z); err != nil {
			return err
		}
		if !t.b.Terminated() {
			t.b.Br(join)
		}
	}
	t.b.SetInsert(join)
	return nil
}

func (t *Translator) whileStmt(cur *scope.Node, id ast.NodeID) error {
	n := t.u.Node(id)
	head, body, exit := t.b.NewBlock("while.head"), t.b.NewBlock("while.body"), t.b.NewBlock("while.end")
	t.b.Br(head)

	t.b.SetInsert(head)
	c, err := t.condition(cur, n.X)
	if err != nil {
		return err
	}
	t.b.CondBr(c, body, exit)

	t.b.SetInsert(body)
	if err := t.stmt(cur, n.Y); err != nil {
		return err
	}
	if !t.b.Terminated() {
		t.b.Br(head)
	}
	t.b.SetInsert(exit)
	return nil
}
