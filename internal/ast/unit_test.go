package ast

import (
	"testing"
)

// build: function f(a) { let x; { let y; } }
func buildSample(t *testing.T) (*Unit, map[string]NodeID) {
	t.Helper()
	u := NewUnit(0, "sample.ts")
	ids := map[string]NodeID{}
	ids["a"] = u.New(Node{Kind: KindParam, Name: "a"})
	ids["x"] = u.New(Node{Kind: KindVarDecl, Name: "x"})
	ids["y"] = u.New(Node{Kind: KindVarDecl, Name: "y"})
	ids["inner"] = u.New(Node{Kind: KindBlock, List: []NodeID{ids["y"]}})
	ids["body"] = u.New(Node{Kind: KindBlock, List: []NodeID{ids["x"], ids["inner"]}})
	ids["f"] = u.New(Node{Kind: KindFuncDecl, Name: "f", List: []NodeID{ids["a"]}, Body: ids["body"]})
	u.Root = u.New(Node{Kind: KindModule, List: []NodeID{ids["f"]}})
	u.Finish()
	return u, ids
}

func TestContainers(t *testing.T) {
	u, ids := buildSample(t)
	if u.IsContainer(ids["body"]) {
		t.Fatalf("function body must not be a separate container")
	}
	if !u.IsContainer(ids["inner"]) {
		t.Fatalf("nested block must be a container")
	}
	if got := u.Container(ids["x"]); got != ids["f"] {
		t.Fatalf("x should belong to f, got %d", got)
	}
	if got := u.Container(ids["y"]); got != ids["inner"] {
		t.Fatalf("y should belong to inner block, got %d", got)
	}
	if got := u.Container(ids["a"]); got != ids["f"] {
		t.Fatalf("param should belong to f, got %d", got)
	}
	want := []NodeID{u.Root, ids["f"], ids["inner"]}
	got := u.Containers()
	if len(got) != len(want) {
		t.Fatalf("containers: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("containers: want %v, got %v", want, got)
		}
	}
}

func TestDeclsAndAncestry(t *testing.T) {
	u, ids := buildSample(t)
	decls := u.Decls(ids["f"])
	if len(decls) != 2 || decls[0] != ids["a"] || decls[1] != ids["x"] {
		t.Fatalf("unexpected decls of f: %v", decls)
	}
	if root := u.Decls(u.Root); len(root) != 1 || root[0] != ids["f"] {
		t.Fatalf("unexpected module decls: %v", root)
	}
	if !u.IsAncestor(ids["f"], ids["y"]) || u.IsAncestor(ids["inner"], ids["x"]) {
		t.Fatalf("ancestry is wrong")
	}
	if u.Function(ids["y"]) != ids["f"] || u.Function(ids["f"]) != NoNode {
		t.Fatalf("enclosing function is wrong")
	}
}
