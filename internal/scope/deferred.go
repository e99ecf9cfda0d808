package scope

import (
	"scriptc/internal/layout"
	"scriptc/internal/target"
)

// DeferKind tells how a deferred obligation is discharged.
type DeferKind uint8

const (
	// DeferValue releases a value that was owned when it was registered.
	DeferValue DeferKind = iota
	// DeferSlot releases whatever a flat slot holds when the scope exits.
	DeferSlot
	// DeferField releases a scope-object field and stores null in it. It
	// is used for fields no nested function reads, so the object may
	// outlive the scope without keeping their values alive.
	DeferField
)

// Deferred is one release obligation of a scope.
type Deferred struct {
	Kind  DeferKind
	Value target.Value // DeferValue: the owned value; otherwise the slot or field address
	Repr  layout.Repr
}

// Defer registers a release obligation. Obligations run in registration
// order.
func (n *Node) Defer(d Deferred) {
	n.Deferred = append(n.Deferred, d)
}

// Unwind returns the nodes whose obligations run on a return from n: n
// and every ancestor up to the function root.
func (n *Node) Unwind() []*Node {
	var out []*Node
	for m := n; m != nil && m.Function == n.Function; m = m.Parent {
		out = append(out, m)
	}
	return out
}
