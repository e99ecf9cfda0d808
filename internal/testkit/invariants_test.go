package testkit

import (
	"testing"

	"scriptc/internal/diag"
	"scriptc/internal/parser"
	"scriptc/internal/source"
)

func parse(t *testing.T, src string, clean bool) error {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("k.ts", []byte(src)))
	bag := diag.NewBag(32)
	u := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err := CheckSpanInvariants(u, file); err != nil {
		return err
	}
	if !clean {
		return nil
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected syntax errors: %+v", bag.Items())
	}
	return CheckModuleSpan(u)
}

func TestSpanInvariantsHoldForValidProgram(t *testing.T) {
	src := `
type P = { x: number };
declare function print(v: number): void;
function make(x: number): P { return { x }; }
let f = (p: P) => p.x * 2;
if (f(make(2)) > 3) { print(1); } else { print(0); }
while (false) {}
`
	if err := parse(t, src, true); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestSpanInvariantsHoldAfterRecovery(t *testing.T) {
	for _, src := range []string{"let = ;", "function (", "{ { {", "const x = 1 +;\nlet y = 2;"} {
		if err := parse(t, src, false); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
	}
}

func TestNilInputs(t *testing.T) {
	if err := CheckSpanInvariants(nil, nil); err == nil {
		t.Fatalf("expected an error")
	}
}
