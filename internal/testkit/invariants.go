// Package testkit holds checks shared by parser tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"scriptc/internal/ast"
	"scriptc/internal/source"
)

// CheckSpanInvariants runs a minimal set of invariants on a parsed unit:
// 1) every node span is ordered, belongs to sf and lies within its content
// 2) every child links back to the node that lists it
func CheckSpanInvariants(u *ast.Unit, sf *source.File) error {
	if u == nil || sf == nil {
		return fmt.Errorf("nil unit or file")
	}
	if !u.Root.IsValid() {
		return fmt.Errorf("unit has no root")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var firstErr error
	u.Walk(u.Root, func(id ast.NodeID) bool {
		if firstErr != nil {
			return false
		}
		n := u.Node(id)
		sp := n.Span
		switch {
		case sp.End < sp.Start:
			firstErr = fmt.Errorf("%s node %d has inverted span %v", n.Kind, id, sp)
		case sp.End > lenContent:
			firstErr = fmt.Errorf("%s node %d span %v ends beyond content (%d bytes)", n.Kind, id, sp, lenContent)
		case sp.File != sf.ID:
			firstErr = fmt.Errorf("%s node %d span points to file %d, want %d", n.Kind, id, sp.File, sf.ID)
		}
		for _, c := range u.Children(id) {
			if got := u.Node(c).Parent; got != id {
				firstErr = fmt.Errorf("%s node %d has parent %d, want %d", u.Kind(c), c, got, id)
				break
			}
		}
		return firstErr == nil
	})
	return firstErr
}

// CheckModuleSpan verifies that the module span covers the spans of its
// top-level statements. Error recovery may end a statement on a token it
// did not consume, so only error-free units are expected to pass.
func CheckModuleSpan(u *ast.Unit) error {
	root := u.Node(u.Root)
	for _, stmt := range root.List {
		sp := u.Node(stmt).Span
		if sp.Empty() {
			continue
		}
		if sp.Start < root.Span.Start || sp.End > root.Span.End {
			return fmt.Errorf("statement span %v is outside module span %v", sp, root.Span)
		}
	}
	return nil
}
