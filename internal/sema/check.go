package sema

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
	"scriptc/internal/types"
)

// Info carries the static type of every expression and declaration node.
type Info struct {
	Types map[ast.NodeID]types.TypeID
}

// TypeOf returns the recorded type for id, or NoTypeID.
func (i *Info) TypeOf(id ast.NodeID) types.TypeID {
	if i == nil {
		return types.NoTypeID
	}
	return i.Types[id]
}

type fnCtx struct {
	node     ast.NodeID
	result   types.TypeID // declared or contextual result; NoTypeID while inferring
	inferred types.TypeID
}

// Checker annotates a resolved unit with static types.
type Checker struct {
	unit     *ast.Unit
	table    *symbols.Table
	types    *types.Interner
	reporter diag.Reporter
	info     *Info

	aliases map[ast.NodeID]types.TypeID
	sigs    map[ast.NodeID]types.TypeID
	busy    map[ast.NodeID]bool
	done    map[ast.NodeID]bool
	results map[ast.NodeID]types.TypeID
	fns     []*fnCtx
}

// Check type-checks u. Errors go to reporter; Info is always returned so
// that tooling can inspect partial results.
func Check(u *ast.Unit, table *symbols.Table, in *types.Interner, reporter diag.Reporter) *Info {
	c := &Checker{
		unit:     u,
		table:    table,
		types:    in,
		reporter: reporter,
		info:     &Info{Types: make(map[ast.NodeID]types.TypeID)},
		aliases:  make(map[ast.NodeID]types.TypeID),
		sigs:     make(map[ast.NodeID]types.TypeID),
		busy:     make(map[ast.NodeID]bool),
		done:     make(map[ast.NodeID]bool),
		results:  make(map[ast.NodeID]types.TypeID),
	}
	c.declareAliases()
	c.checkStmts(u.Node(u.Root).List)
	return c.info
}

func (c *Checker) record(id ast.NodeID, t types.TypeID) types.TypeID {
	if t != types.NoTypeID {
		c.info.Types[id] = t
	}
	return t
}

func (c *Checker) errorf(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(c.reporter, code, sp, msg).Emit()
}

func (c *Checker) span(id ast.NodeID) source.Span {
	return c.unit.Node(id).Span
}

func (c *Checker) typeName(t types.TypeID) string {
	return c.types.String(t)
}

// mismatch reports that got cannot be used where want is expected.
func (c *Checker) mismatch(at ast.NodeID, want, got types.TypeID) {
	c.errorf(diag.SemaTypeMismatch, c.span(at), "type '"+c.typeName(got)+"' is not assignable to type '"+c.typeName(want)+"'")
}

// expect checks that got is assignable to want. Unknown types on either side
// are accepted silently, as an error was already reported for them.
func (c *Checker) expect(at ast.NodeID, want, got types.TypeID) {
	if want == types.NoTypeID || got == types.NoTypeID {
		return
	}
	if !c.types.Assignable(want, got) {
		c.mismatch(at, want, got)
	}
}
