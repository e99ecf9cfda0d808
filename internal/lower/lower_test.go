package lower_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scriptc/internal/ast"
	"scriptc/internal/backend/llvm"
	"scriptc/internal/diag"
	"scriptc/internal/layout"
	"scriptc/internal/lower"
	"scriptc/internal/parser"
	"scriptc/internal/sema"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
	"scriptc/internal/target"
	"scriptc/internal/types"
	"scriptc/internal/vm"
)

func frontend(t *testing.T, src string) lower.Input {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ts", []byte(src))
	bag := diag.NewBag(50)
	rep := diag.BagReporter{Bag: bag}
	u := parser.ParseFile(fs.Get(id), parser.Options{Reporter: rep})
	tab := symbols.Resolve(u, rep)
	in := types.NewInterner()
	info := sema.Check(u, tab, in, rep)
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			t.Errorf("%s %s", d.Code.ID(), d.Message)
		}
		t.Fatalf("frontend errors")
	}
	return lower.Input{Unit: u, Symbols: tab, Info: info, Types: in}
}

func translate(t *testing.T, src string, b target.Builder) (*lower.Result, error) {
	t.Helper()
	return lower.Lower(context.Background(), frontend(t, src), b, lower.Options{})
}

type execution struct {
	res     *lower.Result
	machine *vm.VM
	prints  [][]vm.Value
}

// execute translates src, runs the entry routine and checks that every
// allocation was released exactly once.
func execute(t *testing.T, src string) execution {
	t.Helper()
	mod := vm.NewModule()
	res, err := translate(t, src, mod)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	var prints [][]vm.Value
	machine := vm.New(mod, vm.Options{MaxSteps: 1_000_000})
	machine.Bind("print", vm.Printer(nil, &prints))
	if _, err := machine.Run(res.Entry); err != nil {
		t.Fatalf("run: %v\n%s", err, mod.Dump())
	}
	if err := machine.CheckBalanced(); err != nil {
		t.Fatalf("refcounts: %v\n%s", err, mod.Dump())
	}
	return execution{res: res, machine: machine, prints: prints}
}

func (e execution) wantPrints(t *testing.T, want ...float64) {
	t.Helper()
	if len(e.prints) != len(want) {
		t.Fatalf("expected %d prints, got %v", len(want), e.prints)
	}
	for i, w := range want {
		got := e.prints[i][0]
		v := got.F
		if got.Kind == vm.VKInt {
			v = float64(got.I)
		}
		if v != w {
			t.Fatalf("print #%d: expected %v, got %s", i, w, got)
		}
	}
}

func (e execution) function(t *testing.T, prefix string) lower.FuncInfo {
	t.Helper()
	for _, f := range e.res.Functions {
		if strings.HasPrefix(f.Name, prefix) {
			return f
		}
	}
	t.Fatalf("no function %q in %+v", prefix, e.res.Functions)
	return lower.FuncInfo{}
}

func TestRoundTripDoublesPoint(t *testing.T) {
	e := execute(t, `
type Point = { x: number, y: number };
declare function print(v: number): void;
function double(p: Point): Point {
  return { x: p.x * 2, y: p.y * 2 };
}
const p = double({ x: 20, y: 40 });
print(p.x);
`)
	e.wantPrints(t, 40)
	if e.machine.Heap.Allocs != 2 || e.machine.Heap.Releases != 2 {
		t.Fatalf("allocs=%d releases=%d", e.machine.Heap.Allocs, e.machine.Heap.Releases)
	}
	if !e.function(t, "double.").Pure {
		t.Fatalf("double should be pure")
	}
}

func TestClosureKeepsCapturedState(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
function makeCounter() {
  let count = 0;
  return () => {
    count = count + 1;
    return count;
  };
}
const next = makeCounter();
next();
next();
print(next());
`)
	e.wantPrints(t, 3)
	if e.function(t, "makeCounter.").Pure != true {
		t.Fatalf("makeCounter references nothing outside itself")
	}
	if e.function(t, "arrow.").Pure {
		t.Fatalf("the counter arrow captures count")
	}
	// scope object of makeCounter plus the closure object
	if e.machine.Heap.Allocs != 2 {
		t.Fatalf("expected 2 allocations, got %d", e.machine.Heap.Allocs)
	}
}

func TestDynamicDispatchAcceptsBothShapes(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
function apply(f: (x: number) => number, v: number): number {
  return f(v);
}
function inc(x: number): number { return x + 1; }
function main(): void {
  const k = 10;
  print(apply(inc, 1));
  print(apply((x: number) => x + k, 1));
  print(apply(x => x * 3, 2));
}
main();
`)
	e.wantPrints(t, 2, 11, 6)
	if !e.function(t, "inc.").Pure || !e.function(t, "apply.").Pure {
		t.Fatalf("inc and apply should be pure")
	}
	if e.function(t, "main.").Pure != true {
		t.Fatalf("main only references module functions that are pure")
	}
}

func TestNestedClosuresFollowParentLinks(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
function adder(base: number) {
  return (x: number) => (y: number) => base + x + y;
}
print(adder(1)(2)(3));
`)
	e.wantPrints(t, 6)
	if e.machine.Heap.Allocs != 4 {
		t.Fatalf("expected two scope objects and two closures, got %d allocations", e.machine.Heap.Allocs)
	}
}

func TestNamedFunctionAsClosureValue(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
function counter() {
  let n = 0;
  function bump(): number {
    n = n + 1;
    return n;
  }
  bump();
  return bump;
}
const b = counter();
print(b());
`)
	e.wantPrints(t, 2)
	if e.function(t, "bump.").Pure {
		t.Fatalf("bump captures n")
	}
}

func TestModuleLevelCaptureThroughNamedFunctions(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
let counter = 0;
function bump(): void { counter = counter + 1; }
function twice(): void { bump(); bump(); }
twice();
bump();
print(counter);
`)
	e.wantPrints(t, 3)
	if e.function(t, "twice.").Pure {
		t.Fatalf("twice calls a closure and must receive an env")
	}
}

func TestLoopTemporariesAreReleasedEachIteration(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
type Box = { v: number };
function sum(n: number): number {
  let total = 0;
  let i = 0;
  while (i < n) {
    const b: Box = { v: i };
    total = total + b.v;
    i = i + 1;
  }
  return total;
}
print(sum(5));
`)
	e.wantPrints(t, 10)
	if e.machine.Heap.Allocs != 5 || len(e.machine.Heap.Live()) != 0 {
		t.Fatalf("allocs=%d live=%d", e.machine.Heap.Allocs, len(e.machine.Heap.Live()))
	}
}

func TestFieldOverwriteReleasesPreviousValue(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
type Inner = { v: number };
type Outer = { inner: Inner };
const o: Outer = { inner: { v: 1 } };
o.inner = { v: 2 };
print(o.inner.v);
`)
	e.wantPrints(t, 2)
	if e.machine.Heap.Allocs != 3 || e.machine.Heap.Releases != 3 {
		t.Fatalf("allocs=%d releases=%d", e.machine.Heap.Allocs, e.machine.Heap.Releases)
	}
}

func TestConditionalsAndEarlyReturn(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
type Tmp = { v: number };
function classify(x: number): number {
  const t: Tmp = { v: x };
  if (x < 0 && x > -10) {
    return 1;
  } else if (x >= 10 || x == 5) {
    return 2;
  }
  return 3;
}
print(classify(-5));
print(classify(5));
print(classify(20));
print(classify(-20));
`)
	e.wantPrints(t, 1, 2, 2, 3)
}

func TestIntegerArithmeticWraps(t *testing.T) {
	mod := vm.NewModule()
	res, err := translate(t, `
declare function show(v: i8): void;
const a: i8 = 127;
const b: i8 = a + 1;
show(b);
show(-a);
`, mod)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	var prints [][]vm.Value
	machine := vm.New(mod, vm.Options{})
	machine.Bind("show", vm.Printer(nil, &prints))
	if _, err := machine.Run(res.Entry); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(prints) != 2 || prints[0][0].I != -128 || prints[1][0].I != -127 {
		t.Fatalf("unexpected output %v", prints)
	}
}

func TestThisIsRejected(t *testing.T) {
	_, err := translate(t, `
function f(): void { this; }
f();
`, vm.NewModule())
	var te *lower.TranslationError
	if !errors.As(err, &te) {
		t.Fatalf("expected TranslationError, got %v", err)
	}
	if te.Kind != "This" {
		t.Fatalf("expected the This node kind, got %q", te.Kind)
	}
	if sp, ok := lower.ErrorSpan(err); !ok || sp.Empty() {
		t.Fatalf("error should carry a span, got %v %v", sp, ok)
	}
}

func TestRecursiveTypeAborts(t *testing.T) {
	res, err := translate(t, `
type Node = { value: number, next: Node };
declare function take(n: Node): void;
`, vm.NewModule())
	if res != nil {
		t.Fatalf("expected no result on error")
	}
	var rec *layout.RecursiveTypeError
	if !errors.As(err, &rec) {
		t.Fatalf("expected RecursiveTypeError, got %v", err)
	}
	if len(rec.Cycle) < 2 || rec.Cycle[0] != "Node" {
		t.Fatalf("unexpected cycle %v", rec.Cycle)
	}
}

func TestExternCollidingWithHookIsRejected(t *testing.T) {
	_, err := translate(t, `declare function allocate(n: number): void;`, vm.NewModule())
	var te *lower.TranslationError
	if !errors.As(err, &te) {
		t.Fatalf("expected TranslationError, got %v", err)
	}
}

func TestCustomHookNames(t *testing.T) {
	mod := vm.NewModule()
	opts := lower.Options{Entry: "start", AllocateHook: "gc_alloc", ReleaseHook: "gc_free"}
	res, err := lower.Lower(context.Background(), frontend(t, `
type P = { x: number };
declare function print(v: number): void;
const p: P = { x: 4 };
print(p.x);
`), mod, opts)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if res.Entry != "start" {
		t.Fatalf("entry %q", res.Entry)
	}
	var prints [][]vm.Value
	machine := vm.New(mod, vm.Options{AllocateHook: "gc_alloc", ReleaseHook: "gc_free"})
	machine.Bind("print", vm.Printer(nil, &prints))
	if _, err := machine.Run("start"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := machine.CheckBalanced(); err != nil {
		t.Fatalf("refcounts: %v", err)
	}
	if len(prints) != 1 || prints[0][0].F != 4 {
		t.Fatalf("unexpected output %v", prints)
	}
}

func TestLLVMOutput(t *testing.T) {
	mod := llvm.NewModule("test.ts", "x86_64-linux-gnu")
	_, err := translate(t, `
type Point = { x: number, y: number };
declare function print(v: number): void;
function apply(f: (p: Point) => number, p: Point): number { return f(p); }
function main(): void {
  const scale = 3;
  print(apply(p => p.x * scale, { x: 2, y: 1 }));
}
main();
`, mod)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	out := mod.String()
	for _, want := range []string{
		"define void @__scriptc_start()",
		"declare i8* @allocate(i8*",
		"declare void @release(i8*",
		"define void @__scriptc_retain(i8* %env",
		"define void @__scriptc_release(i8* %env",
		"define void @__scriptc_fn_release(i8* %env",
		"= type { i32, i32, double, double }",
		"fmul double",
		"icmp eq i32",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestEscapingScopeHoldsEveryLocal(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
type Box = { v: number };
function make(seed: number) {
  const box: Box = { v: seed };
  let n = box.v;
  const get = () => n;
  return get;
}
const g = make(4);
print(g());
`)
	e.wantPrints(t, 4)

	var scopeLayout *layout.Descriptor
	for _, d := range e.res.Registry.Descriptors() {
		if d.Kind == layout.DescScope && strings.HasPrefix(d.Name, "scope.make.") {
			scopeLayout = d
		}
	}
	if scopeLayout == nil {
		t.Fatalf("no scope object layout for make")
	}
	for _, name := range []string{layout.ParentField, "box", "get", "n", "seed"} {
		if _, err := scopeLayout.Field(name); err != nil {
			t.Fatalf("scope object of make lacks %q: %s", name, scopeLayout)
		}
	}
	// scope object, box and the closure; the closure stored in its own
	// scope object must not keep that object alive
	if e.machine.Heap.Allocs != 3 || e.machine.Heap.Releases != 3 {
		t.Fatalf("allocs=%d releases=%d", e.machine.Heap.Allocs, e.machine.Heap.Releases)
	}
}

func TestBlockLocalUsedInPlaceStaysFlat(t *testing.T) {
	e := execute(t, `
declare function print(v: number): void;
function f(): number {
  let x = 1;
  {
    let y = 2;
    x = x + y;
  }
  return x;
}
print(f());
`)
	e.wantPrints(t, 3)
	if got := e.res.Capture.EscapingContainers(); len(got) != 0 {
		t.Fatalf("no container should escape, got %v", got)
	}
	if e.machine.Heap.Allocs != 0 {
		t.Fatalf("expected no scope objects, got %d allocations", e.machine.Heap.Allocs)
	}
}

func TestCallOfNonFunctionType(t *testing.T) {
	in := frontend(t, `
declare function print(v: number): void;
print(1);
`)
	var callee ast.NodeID
	in.Unit.Walk(in.Unit.Root, func(id ast.NodeID) bool {
		if n := in.Unit.Node(id); n.Kind == ast.KindCall {
			callee = n.X
		}
		return true
	})
	if !callee.IsValid() {
		t.Fatalf("no call in the unit")
	}
	in.Info.Types[callee] = in.Types.Builtins().Number

	res, err := lower.Lower(context.Background(), in, vm.NewModule(), lower.Options{})
	if res != nil {
		t.Fatalf("expected no result on error")
	}
	var ue *lower.UnknownCalleeRepresentationError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnknownCalleeRepresentationError, got %v", err)
	}
	if ue.Type != "number" {
		t.Fatalf("unexpected callee type %q", ue.Type)
	}
	if sp, ok := lower.ErrorSpan(err); !ok || sp != in.Unit.Node(callee).Span {
		t.Fatalf("error should point at the callee, got %v %v", sp, ok)
	}
}
