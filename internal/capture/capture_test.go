package capture_test

import (
	"testing"

	"scriptc/internal/ast"
	"scriptc/internal/capture"
	"scriptc/internal/diag"
	"scriptc/internal/parser"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

type analyzed struct {
	unit *ast.Unit
	res  *capture.Result
}

func analyze(t *testing.T, src string) analyzed {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ts", []byte(src))
	bag := diag.NewBag(50)
	rep := diag.BagReporter{Bag: bag}
	u := parser.ParseFile(fs.Get(id), parser.Options{Reporter: rep})
	tab := symbols.Resolve(u, rep)
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			t.Errorf("%s %s", d.Code.ID(), d.Message)
		}
		t.Fatalf("frontend errors")
	}
	return analyzed{unit: u, res: capture.Analyze(u, tab)}
}

// find returns the first node of kind named name, in preorder.
func (a analyzed) find(kind ast.Kind, name string) ast.NodeID {
	var found ast.NodeID
	a.unit.Walk(a.unit.Root, func(id ast.NodeID) bool {
		n := a.unit.Node(id)
		if !found.IsValid() && n.Kind == kind && n.Name == name {
			found = id
		}
		return true
	})
	return found
}

// arrows lists arrow functions in preorder.
func (a analyzed) arrows() []ast.NodeID {
	var out []ast.NodeID
	a.unit.Walk(a.unit.Root, func(id ast.NodeID) bool {
		if a.unit.Kind(id) == ast.KindArrowFunc {
			out = append(out, id)
		}
		return true
	})
	return out
}

func TestCaptureOuterLocal(t *testing.T) {
	a := analyze(t, `
function f() {
  let n = 0;
  const g = () => n;
  return g;
}
`)
	f := a.find(ast.KindFuncDecl, "f")
	n := a.find(ast.KindVarDecl, "n")
	g := a.find(ast.KindVarDecl, "g")
	arrow := a.arrows()[0]

	if !a.res.Escaping(f) {
		t.Fatalf("f declares a captured local and must escape")
	}
	if !a.res.InScopeObject(n) {
		t.Fatalf("n must live in the scope object")
	}
	if !a.res.InScopeObject(g) || a.res.CapturedBinding(g) {
		t.Fatalf("g lives in the escaping scope object without being captured")
	}
	if !a.res.CapturedBinding(n) {
		t.Fatalf("n is read by the arrow")
	}
	if got := a.res.Captured(f); len(got) != 1 || got[0] != n {
		t.Fatalf("expected only n captured, got %v", got)
	}
	if got := a.res.Fields(f); len(got) != 2 || got[0] != n || got[1] != g {
		t.Fatalf("expected fields n and g, got %v", got)
	}
	if !a.res.Captures(arrow) || a.res.IsPure(arrow) {
		t.Fatalf("the arrow reads n and must be a closure")
	}
	if a.res.Captures(f) {
		t.Fatalf("f references nothing outside itself")
	}
}

func TestPureFunctions(t *testing.T) {
	a := analyze(t, `
declare function print(n: number): void;
type P = { x: number };
function double(p: P): P { return { x: p.x * 2 }; }
function main() {
  const inc = (x: number) => x + 1;
  print(inc(double({ x: 1 }).x));
}
`)
	for _, name := range []string{"double", "main"} {
		fn := a.find(ast.KindFuncDecl, name)
		if !a.res.IsPure(fn) {
			t.Fatalf("%s should be pure", name)
		}
	}
	if !a.res.IsPure(a.arrows()[0]) {
		t.Fatalf("inc only uses its parameter")
	}
	if len(a.res.EscapingContainers()) != 0 {
		t.Fatalf("no container escapes: %v", a.res.EscapingContainers())
	}
}

func TestParamsCaptured(t *testing.T) {
	a := analyze(t, `
function adder(base: number) {
  return (x: number) => x + base;
}
`)
	adder := a.find(ast.KindFuncDecl, "adder")
	base := a.find(ast.KindParam, "base")
	if !a.res.Escaping(adder) || !a.res.InScopeObject(base) {
		t.Fatalf("captured parameter must move into the scope object")
	}
	x := a.find(ast.KindParam, "x")
	if a.res.InScopeObject(x) {
		t.Fatalf("x is local to the arrow")
	}
}

func TestNamedClosureFixpoint(t *testing.T) {
	a := analyze(t, `
let counter = 0;
function bump(): void { counter = counter + 1; }
function twice(): void { bump(); bump(); }
function thrice(): void { twice(); bump(); }
function alone(): number { return 1; }
`)
	for _, name := range []string{"bump", "twice", "thrice"} {
		if !a.res.Captures(a.find(ast.KindFuncDecl, name)) {
			t.Fatalf("%s must capture through the named closure chain", name)
		}
	}
	if a.res.Captures(a.find(ast.KindFuncDecl, "alone")) {
		t.Fatalf("alone is pure")
	}
	if !a.res.Escaping(a.unit.Root) {
		t.Fatalf("module scope holds counter and must escape")
	}
	if a.res.Rounds() < 2 {
		t.Fatalf("expected the fixpoint to iterate, rounds=%d", a.res.Rounds())
	}
}

func TestNestedBlocksAndScopeParent(t *testing.T) {
	a := analyze(t, `
function outer() {
  let a = 1;
  if (a > 0) {
    let b = 2;
    const get = () => a + b;
  }
}
`)
	outer := a.find(ast.KindFuncDecl, "outer")
	b := a.find(ast.KindVarDecl, "b")
	block := a.unit.Container(b)
	if !a.res.Escaping(outer) || !a.res.Escaping(block) {
		t.Fatalf("both the function and the inner block hold captured bindings")
	}
	if a.res.ScopeParent(block) != outer {
		t.Fatalf("block scope object should link to the function's scope object")
	}
	if a.res.ScopeParent(outer).IsValid() {
		t.Fatalf("module does not escape")
	}
}

func TestReferenceFromSameFunctionDoesNotEscape(t *testing.T) {
	a := analyze(t, `
function f(): number {
  let n = 1;
  {
    n = n + 1;
  }
  return n;
}
`)
	if a.res.Escaping(a.find(ast.KindFuncDecl, "f")) {
		t.Fatalf("block references inside the declaring function do not escape")
	}
}

func TestEscapingFunctionStoresParamsAndLocals(t *testing.T) {
	a := analyze(t, `
function f(p: number, q: number) {
  let used = p;
  let unused = q;
  {
    let inner = 1;
  }
  return () => used;
}
`)
	f := a.find(ast.KindFuncDecl, "f")
	for _, name := range []string{"p", "q"} {
		if !a.res.InScopeObject(a.find(ast.KindParam, name)) {
			t.Fatalf("parameter %s of an escaping function belongs in its scope object", name)
		}
	}
	unused := a.find(ast.KindVarDecl, "unused")
	if !a.res.InScopeObject(unused) || a.res.CapturedBinding(unused) {
		t.Fatalf("uncaptured local of an escaping function belongs in its scope object")
	}
	if len(a.res.Fields(f)) != 4 {
		t.Fatalf("expected p, q, used and unused as fields, got %v", a.res.Fields(f))
	}
	inner := a.find(ast.KindVarDecl, "inner")
	if a.res.Escaping(a.unit.Container(inner)) || a.res.InScopeObject(inner) {
		t.Fatalf("the inner block does not escape and keeps its local flat")
	}
}
