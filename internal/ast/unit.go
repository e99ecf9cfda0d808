package ast

import (
	"scriptc/internal/source"
)

// Unit is one parsed source file: a node arena plus the module root.
type Unit struct {
	File  source.FileID
	Path  string
	Root  NodeID
	nodes *Arena[Node]

	decls map[NodeID][]NodeID
}

func NewUnit(file source.FileID, path string) *Unit {
	return &Unit{
		File:  file,
		Path:  path,
		nodes: NewArena[Node](256),
	}
}

// New appends n and returns its id.
func (u *Unit) New(n Node) NodeID {
	return NodeID(u.nodes.Allocate(n))
}

// Node returns the node for id, or nil for NoNode.
func (u *Unit) Node(id NodeID) *Node {
	return u.nodes.Get(uint32(id))
}

func (u *Unit) Kind(id NodeID) Kind {
	if n := u.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

func (u *Unit) Len() int {
	return int(u.nodes.Len())
}

// Children returns the direct children of id in source order.
func (u *Unit) Children(id NodeID) []NodeID {
	n := u.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	add := func(c NodeID) {
		if c.IsValid() {
			out = append(out, c)
		}
	}
	switch n.Kind {
	case KindFuncDecl, KindArrowFunc, KindDeclareFunc, KindTypeFunc:
		out = append(out, n.List...)
		add(n.Type)
		add(n.Body)
	case KindVarDecl, KindParam, KindTypeField, KindTypeAlias:
		add(n.Type)
		add(n.X)
	case KindCall:
		add(n.X)
		out = append(out, n.List...)
	default:
		add(n.X)
		add(n.Y)
		add(n.Z)
		out = append(out, n.List...)
	}
	return out
}

// Walk visits id and its subtree in preorder. Returning false from fn skips
// the children of the visited node.
func (u *Unit) Walk(id NodeID, fn func(NodeID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, c := range u.Children(id) {
		u.Walk(c, fn)
	}
}

// Finish links parents and indexes declarations per container. The parser
// calls it once the tree is complete.
func (u *Unit) Finish() {
	u.Walk(u.Root, func(id NodeID) bool {
		for _, c := range u.Children(id) {
			u.Node(c).Parent = id
		}
		return true
	})
	u.decls = make(map[NodeID][]NodeID)
	u.Walk(u.Root, func(id NodeID) bool {
		switch u.Kind(id) {
		case KindVarDecl, KindParam, KindFuncDecl, KindDeclareFunc, KindTypeAlias:
			if u.Kind(id) == KindParam && !u.Kind(u.Node(id).Parent).IsFunction() {
				return true
			}
			c := u.Container(id)
			u.decls[c] = append(u.decls[c], id)
		}
		return !u.Kind(id).IsType()
	})
}

// IsContainer reports whether id opens a lexical scope: the module, every
// function, and every block that is not a function body.
func (u *Unit) IsContainer(id NodeID) bool {
	n := u.Node(id)
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindModule, KindFuncDecl, KindArrowFunc:
		return true
	case KindBlock:
		return !u.IsFunctionBody(id)
	}
	return false
}

// IsFunctionBody reports whether id is the body block of a function.
func (u *Unit) IsFunctionBody(id NodeID) bool {
	n := u.Node(id)
	if n == nil || !n.Parent.IsValid() {
		return false
	}
	p := u.Node(n.Parent)
	return p.Kind.IsFunction() && p.Body == id
}

// Container returns the nearest container strictly enclosing id.
func (u *Unit) Container(id NodeID) NodeID {
	for p := u.Node(id).Parent; p.IsValid(); p = u.Node(p).Parent {
		if u.IsContainer(p) {
			return p
		}
	}
	return NoNode
}

// Function returns the nearest function strictly enclosing id, or NoNode
// at module level.
func (u *Unit) Function(id NodeID) NodeID {
	for p := u.Node(id).Parent; p.IsValid(); p = u.Node(p).Parent {
		if u.Kind(p).IsFunction() {
			return p
		}
	}
	return NoNode
}

// Decls lists the declarations owned by container, in source order.
func (u *Unit) Decls(container NodeID) []NodeID {
	return u.decls[container]
}

// Containers lists every container in preorder.
func (u *Unit) Containers() []NodeID {
	var out []NodeID
	u.Walk(u.Root, func(id NodeID) bool {
		if u.IsContainer(id) {
			out = append(out, id)
		}
		return !u.Kind(id).IsType()
	})
	return out
}

// IsAncestor reports whether a is a strict ancestor of b.
func (u *Unit) IsAncestor(a, b NodeID) bool {
	for p := u.Node(b).Parent; p.IsValid(); p = u.Node(p).Parent {
		if p == a {
			return true
		}
	}
	return false
}
