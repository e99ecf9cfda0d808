// Package capture decides, before any code is emitted, which lexical
// containers must keep their bindings in a heap scope object and which
// functions need an environment pointer.
//
// A container escapes when a binding it declares is referenced from inside
// a function nested strictly below it. An escaping container keeps all of its
// variables and parameters in the scope object, captured or not; a
// non-escaping one keeps them in stack slots. A function captures when
// a reference inside it resolves to a binding outside it, either directly
// or through a named function that itself captures.
package capture

import (
	"slices"

	"scriptc/internal/ast"
	"scriptc/internal/symbols"
)

// Result is the outcome of Analyze. It is read-only once returned.
type Result struct {
	unit *ast.Unit

	escaping map[ast.NodeID]bool
	captured map[ast.NodeID][]ast.NodeID
	fields   map[ast.NodeID][]ast.NodeID
	inScope  map[ast.NodeID]bool
	nested   map[ast.NodeID]bool
	captures map[ast.NodeID]bool
	rounds   int
}

type funcRef struct {
	ref, fn ast.NodeID
}

// Analyze runs the capture analysis over the whole unit.
func Analyze(u *ast.Unit, table *symbols.Table) *Result {
	r := &Result{
		unit:     u,
		escaping: make(map[ast.NodeID]bool),
		captured: make(map[ast.NodeID][]ast.NodeID),
		fields:   make(map[ast.NodeID][]ast.NodeID),
		inScope:  make(map[ast.NodeID]bool),
		nested:   make(map[ast.NodeID]bool),
		captures: make(map[ast.NodeID]bool),
	}

	refs := make([]ast.NodeID, 0, len(table.Refs))
	for ref := range table.Refs {
		refs = append(refs, ref)
	}
	slices.Sort(refs)

	var pending []funcRef
	for _, ref := range refs {
		decl := table.Refs[ref]
		switch symbols.KindOf(u, decl) {
		case symbols.SymbolLet, symbols.SymbolConst, symbols.SymbolParam:
			r.bindingRef(ref, decl)
		case symbols.SymbolFunction:
			pending = append(pending, funcRef{ref: ref, fn: decl})
		}
	}

	// A named closure referenced from a nested function forces every
	// function in between to carry an environment. Repeat until stable.
	for changed := true; changed; {
		changed = false
		r.rounds++
		for _, p := range pending {
			if !r.captures[p.fn] {
				continue
			}
			for _, f := range r.crossed(p.ref, u.Container(p.fn)) {
				if !r.captures[f] {
					r.captures[f] = true
					changed = true
				}
			}
		}
	}

	for c, decls := range r.captured {
		slices.Sort(decls)
		r.captured[c] = slices.Compact(decls)
	}
	for c := range r.escaping {
		for _, decl := range u.Decls(c) {
			switch symbols.KindOf(u, decl) {
			case symbols.SymbolLet, symbols.SymbolConst, symbols.SymbolParam:
				r.fields[c] = append(r.fields[c], decl)
				r.inScope[decl] = true
			}
		}
	}
	return r
}

func (r *Result) bindingRef(ref, decl ast.NodeID) {
	owner := r.unit.Container(decl)
	crossed := r.crossed(ref, owner)
	if len(crossed) == 0 {
		return
	}
	r.escaping[owner] = true
	r.captured[owner] = append(r.captured[owner], decl)
	r.nested[decl] = true
	for _, f := range crossed {
		r.captures[f] = true
	}
}

// crossed lists the functions enclosing ref that lie strictly below owner,
// innermost first.
func (r *Result) crossed(ref, owner ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for f := r.unit.Function(ref); f.IsValid() && r.unit.IsAncestor(owner, f); f = r.unit.Function(f) {
		out = append(out, f)
	}
	return out
}

// Escaping reports whether container keeps its bindings in a heap scope
// object.
func (r *Result) Escaping(container ast.NodeID) bool {
	return r.escaping[container]
}

// Captured lists the bindings of container referenced from a nested
// function, in source order.
func (r *Result) Captured(container ast.NodeID) []ast.NodeID {
	return r.captured[container]
}

// Fields lists the bindings stored in container's scope object: every
// variable and parameter it declares when it escapes, none otherwise.
func (r *Result) Fields(container ast.NodeID) []ast.NodeID {
	return r.fields[container]
}

// CapturedBinding reports whether a function nested below the declaring
// container references decl.
func (r *Result) CapturedBinding(decl ast.NodeID) bool {
	return r.nested[decl]
}

// InScopeObject reports whether the binding declared by decl lives in a
// scope object rather than a stack slot.
func (r *Result) InScopeObject(decl ast.NodeID) bool {
	return r.inScope[decl]
}

// Captures reports whether fn references anything outside itself and
// therefore needs an environment pointer.
func (r *Result) Captures(fn ast.NodeID) bool {
	return r.captures[fn]
}

// IsPure reports whether fn can be called with a null environment.
func (r *Result) IsPure(fn ast.NodeID) bool {
	return !r.captures[fn]
}

// ScopeParent returns the innermost escaping container strictly enclosing
// container, or NoNode.
func (r *Result) ScopeParent(container ast.NodeID) ast.NodeID {
	for c := r.unit.Container(container); c.IsValid(); c = r.unit.Container(c) {
		if r.escaping[c] {
			return c
		}
	}
	return ast.NoNode
}

// EscapingContainers lists escaping containers in preorder.
func (r *Result) EscapingContainers() []ast.NodeID {
	var out []ast.NodeID
	for _, c := range r.unit.Containers() {
		if r.escaping[c] {
			out = append(out, c)
		}
	}
	return out
}

// Rounds is the number of fixpoint iterations the analysis needed.
func (r *Result) Rounds() int {
	return r.rounds
}
