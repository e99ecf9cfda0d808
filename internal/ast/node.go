package ast

import (
	"scriptc/internal/source"
	"scriptc/internal/token"
)

// NodeID indexes a Node inside its Unit. Zero means "no node".
type NodeID uint32

const NoNode NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNode }

// Node is a single syntax tree node. Fields are shared between kinds;
// see Kind for the mapping.
type Node struct {
	Kind   Kind
	Span   source.Span
	Parent NodeID

	Name  string
	Op    token.Kind
	Num   float64
	Str   string
	Bool  bool
	Const bool

	Type NodeID
	X    NodeID
	Y    NodeID
	Z    NodeID
	Body NodeID
	List []NodeID
}
