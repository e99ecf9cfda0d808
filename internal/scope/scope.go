// Package scope models the chain of lexical scopes the lowering walks
// through. Each Node mirrors one container (or a transient statement
// scope), owns its bindings and the deferred release obligations that run
// when the scope is left.
package scope

import (
	"fmt"

	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/source"
	"scriptc/internal/target"
)

// BindingKind classifies a binding.
type BindingKind uint8

const (
	BindVar BindingKind = iota
	BindParam
	BindFunc
	BindExtern
)

// Binding is one named value visible in a scope.
type Binding struct {
	Name string
	Decl ast.NodeID
	Kind BindingKind
	Repr layout.Repr

	// InObject bindings live in the scope object of their node at Field.
	InObject bool
	Field    layout.Field
	// Slot is the stack address of a flat binding.
	Slot target.Value
	// Code is the code symbol of a named function or extern.
	Code target.Func
}

// Node is one scope of the chain.
type Node struct {
	Parent    *Node
	Container ast.NodeID // NoNode for transient scopes
	Function  ast.NodeID // owning function, NoNode at module level

	// Escaping nodes own a scope object allocated on entry.
	Escaping bool
	Layout   *layout.Descriptor
	Object   target.Value

	Deferred []Deferred

	bindings map[string]*Binding
	byDecl   map[ast.NodeID]*Binding
}

// NewRoot creates the module scope.
func NewRoot(module ast.NodeID) *Node {
	return &Node{
		Container: module,
		bindings:  make(map[string]*Binding),
		byDecl:    make(map[ast.NodeID]*Binding),
	}
}

// Child opens a scope for container below n. fn is the function the new
// scope belongs to.
func (n *Node) Child(container, fn ast.NodeID) *Node {
	return &Node{
		Parent:    n,
		Container: container,
		Function:  fn,
		bindings:  make(map[string]*Binding),
		byDecl:    make(map[ast.NodeID]*Binding),
	}
}

// Transient opens a scope that owns no bindings, only deferred releases.
func (n *Node) Transient() *Node {
	return n.Child(ast.NoNode, n.Function)
}

// IsTransient reports whether n mirrors no container.
func (n *Node) IsTransient() bool {
	return !n.Container.IsValid()
}

// Declare adds b to n. Redeclaring a name replaces the previous binding.
func (n *Node) Declare(b *Binding) {
	n.bindings[b.Name] = b
	if b.Decl.IsValid() {
		n.byDecl[b.Decl] = b
	}
}

// Bindings returns the number of bindings declared directly in n.
func (n *Node) Bindings() int {
	return len(n.bindings)
}

// Ref is the result of a lookup.
type Ref struct {
	Binding *Binding
	// Node declares the binding.
	Node *Node
	// Path lists the escaping nodes walked from the environment of the
	// current function to Node, inclusive. It is empty when the binding
	// belongs to the current function.
	Path []*Node
}

// Outer reports whether the binding belongs to an enclosing function.
func (r Ref) Outer() bool {
	return len(r.Path) > 0
}

// Hops is the number of parent links followed from the environment.
func (r Ref) Hops() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// Lookup finds name by walking outward through parents.
func (n *Node) Lookup(name string) (Ref, error) {
	for m := n; m != nil; m = m.Parent {
		if b, ok := m.bindings[name]; ok {
			return n.ref(b, m)
		}
	}
	return Ref{}, &UnresolvedReferenceError{Name: name}
}

// LookupDecl finds the binding introduced by decl.
func (n *Node) LookupDecl(decl ast.NodeID, name string, sp source.Span) (Ref, error) {
	for m := n; m != nil; m = m.Parent {
		if b, ok := m.byDecl[decl]; ok {
			return n.ref(b, m)
		}
	}
	return Ref{}, &UnresolvedReferenceError{Name: name, Span: sp}
}

func (n *Node) ref(b *Binding, owner *Node) (Ref, error) {
	r := Ref{Binding: b, Node: owner}
	if owner.Function == n.Function || b.Kind == BindFunc || b.Kind == BindExtern {
		return r, nil
	}
	if !b.InObject {
		return Ref{}, fmt.Errorf("binding %q of an enclosing function is not in a scope object", b.Name)
	}
	path, ok := n.EnvPath(owner)
	if !ok {
		return Ref{}, fmt.Errorf("scope of %q is not reachable from the environment", b.Name)
	}
	r.Path = path
	return r, nil
}

// EnvPath lists the escaping nodes outside the current function, from the
// innermost up to and including to.
func (n *Node) EnvPath(to *Node) ([]*Node, bool) {
	var path []*Node
	for m := n.boundary(); m != nil; m = m.Parent {
		if m.Escaping {
			path = append(path, m)
		}
		if m == to {
			return path, m.Escaping
		}
	}
	return nil, false
}

// Env returns the innermost escaping node outside the current function,
// which is the scope object the function receives as env.
func (n *Node) Env() *Node {
	for m := n.boundary(); m != nil; m = m.Parent {
		if m.Escaping {
			return m
		}
	}
	return nil
}

// EnvAt returns the innermost escaping node at or above n.
func (n *Node) EnvAt() *Node {
	for m := n; m != nil; m = m.Parent {
		if m.Escaping {
			return m
		}
	}
	return nil
}

// boundary returns the first ancestor that belongs to another function.
func (n *Node) boundary() *Node {
	m := n
	for m != nil && m.Function == n.Function {
		m = m.Parent
	}
	return m
}

// FunctionRoot returns the outermost node of the current function.
func (n *Node) FunctionRoot() *Node {
	m := n
	for m.Parent != nil && m.Parent.Function == n.Function {
		m = m.Parent
	}
	return m
}

// UnresolvedReferenceError reports a name no scope of the chain declares.
type UnresolvedReferenceError struct {
	Name string
	Span source.Span
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q", e.Name)
}
