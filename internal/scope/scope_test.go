package scope

import (
	"errors"
	"testing"

	"scriptc/internal/ast"
	"scriptc/internal/layout"
	"scriptc/internal/source"
)

func TestLookupWalksOutward(t *testing.T) {
	root := NewRoot(1)
	root.Declare(&Binding{Name: "x", Decl: 10, Repr: layout.FloatRepr})
	block := root.Child(2, ast.NoNode)
	block.Declare(&Binding{Name: "y", Decl: 11, Repr: layout.FloatRepr})
	inner := block.Transient()

	ref, err := inner.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ref.Node != root || ref.Outer() {
		t.Fatalf("x should resolve to the module scope without crossing a function")
	}
	if _, err := inner.Lookup("missing"); err == nil {
		t.Fatalf("expected an error")
	} else {
		var ur *UnresolvedReferenceError
		if !errors.As(err, &ur) || ur.Name != "missing" {
			t.Fatalf("expected UnresolvedReferenceError, got %v", err)
		}
	}
}

func TestShadowingPrefersInnermost(t *testing.T) {
	root := NewRoot(1)
	root.Declare(&Binding{Name: "v", Decl: 10})
	child := root.Child(2, ast.NoNode)
	child.Declare(&Binding{Name: "v", Decl: 11})
	ref, err := child.Lookup("v")
	if err != nil || ref.Binding.Decl != 11 {
		t.Fatalf("expected inner v, got %+v %v", ref.Binding, err)
	}
	ref, err = child.LookupDecl(10, "v", source.Span{})
	if err != nil || ref.Node != root {
		t.Fatalf("LookupDecl should find the outer declaration, got %v", err)
	}
}

func TestEnvironmentPath(t *testing.T) {
	// module { let a (captured) ; function f { block { let b (captured); arrow g { a + b } } } }
	module := NewRoot(1)
	module.Escaping = true
	module.Declare(&Binding{Name: "a", Decl: 10, InObject: true})

	f := module.Child(20, 20)
	blk := f.Child(21, 20)
	blk.Escaping = true
	blk.Declare(&Binding{Name: "b", Decl: 11, InObject: true})
	g := blk.Child(30, 30)

	if env := g.Env(); env != blk {
		t.Fatalf("g's environment is the block scope object")
	}
	if env := f.Env(); env != module {
		t.Fatalf("f's environment is the module scope object")
	}

	ref, err := g.Lookup("b")
	if err != nil || !ref.Outer() || ref.Hops() != 0 {
		t.Fatalf("b is one load away from env: %+v %v", ref, err)
	}
	ref, err = g.Lookup("a")
	if err != nil || ref.Hops() != 1 || ref.Path[0] != blk || ref.Path[1] != module {
		t.Fatalf("a needs one parent hop: %+v %v", ref, err)
	}

	ref, err = blk.Lookup("b")
	if err != nil || ref.Outer() {
		t.Fatalf("b is local to f: %+v %v", ref, err)
	}
	if len(g.Unwind()) != 1 || len(blk.Transient().Unwind()) != 3 {
		t.Fatalf("unexpected unwind chains")
	}
	if blk.FunctionRoot() != f {
		t.Fatalf("function root of the block is f")
	}
}

func TestUncapturedOuterBindingIsAnError(t *testing.T) {
	module := NewRoot(1)
	module.Declare(&Binding{Name: "a", Decl: 10})
	f := module.Child(20, 20)
	if _, err := f.Lookup("a"); err == nil {
		t.Fatalf("a flat binding of another function cannot be reached")
	}
	module.Declare(&Binding{Name: "h", Decl: 12, Kind: BindFunc})
	if _, err := f.Lookup("h"); err != nil {
		t.Fatalf("named functions are reachable from anywhere: %v", err)
	}
}
