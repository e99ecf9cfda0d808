package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptc/internal/diag"
	"scriptc/internal/lower"
	"scriptc/internal/trace"
)

const doublePoint = `
type Point = { x: number, y: number };
declare function print(v: number): void;
function double(p: Point): Point {
  return { x: p.x * 2, y: p.y * 2 };
}
const p = double({ x: 20, y: 40 });
print(p.x);
`

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestCompileSourceEmitsLLVM(t *testing.T) {
	unit, err := CompileSource(context.Background(), "point.ts", []byte(doublePoint), Options{EnableTimings: true})
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if unit.Failed() {
		t.Fatalf("unexpected diagnostics: %+v", unit.Bag.Items())
	}
	if !strings.Contains(unit.IR, "define void @__scriptc_start()") {
		t.Fatalf("missing entry routine in:\n%s", unit.IR)
	}
	var names []string
	for _, p := range unit.Timer.Report().Phases {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "parse,resolve,check,capture,lower,emit" {
		t.Fatalf("phases: %s", got)
	}
}

func TestCompileStopsOnFrontendErrors(t *testing.T) {
	unit, err := CompileSource(context.Background(), "bad.ts", []byte("declare function print(v: number): void;\nprint(missing);\n"), Options{})
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if !unit.Failed() || !hasCode(unit.Bag, diag.SemaUnresolvedName) {
		t.Fatalf("expected an unresolved name diagnostic, got %+v", unit.Bag.Items())
	}
	if unit.Capture != nil || unit.Lowered != nil || unit.IR != "" {
		t.Fatalf("later phases should not run")
	}
}

func TestLowerErrorsBecomeDiagnostics(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"receiver", "function f(): void { this; }\nf();\n", diag.LowUnsupported},
		{"recursive type", "type Node = { value: number, next: Node };\ndeclare function take(n: Node): void;\n", diag.LowRecursiveType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unit, err := CompileSource(context.Background(), "low.ts", []byte(tc.src), Options{})
			if err != nil {
				t.Fatalf("CompileSource: %v", err)
			}
			if !hasCode(unit.Bag, tc.code) {
				t.Fatalf("expected %s, got %+v", tc.code.ID(), unit.Bag.Items())
			}
			if unit.LLVM != nil || unit.Lowered != nil {
				t.Fatalf("a failed lowering must not leave a module behind")
			}
		})
	}
}

func TestObserverSeesCheckOnly(t *testing.T) {
	var events []PhaseEvent
	opts := Options{Stage: StageCheck, Observer: func(ev PhaseEvent) { events = append(events, ev) }}
	if _, err := CompileSource(context.Background(), "obs.ts", []byte(doublePoint), opts); err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if len(events) != 6 {
		t.Fatalf("expected start and end for three phases, got %+v", events)
	}
	if events[0].Name != "parse" || events[0].Status != PhaseStart || events[5].Name != "check" || events[5].Status != PhaseEnd {
		t.Fatalf("unexpected order %+v", events)
	}
}

func TestCompileHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CompileSource(ctx, "c.ts", []byte(doublePoint), Options{}); err == nil {
		t.Fatalf("expected a context error")
	}
}

func TestCompileFileMissing(t *testing.T) {
	if _, err := CompileFile(context.Background(), filepath.Join(t.TempDir(), "nope.ts"), Options{}); err == nil {
		t.Fatalf("expected a load error")
	}
}

func TestRunPrintsThroughInterpreter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ts")
	if err := os.WriteFile(path, []byte(doublePoint), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts := Options{
		Backend: BackendVM,
		Lower:   lower.Options{AllocateHook: "gc_alloc", ReleaseHook: "gc_free"},
	}
	unit, err := CompileFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if unit.Failed() {
		t.Fatalf("diagnostics: %+v", unit.Bag.Items())
	}
	var out bytes.Buffer
	res, err := Run(context.Background(), unit, RunOptions{Stdout: &out, MaxSteps: 100_000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "40\n" {
		t.Fatalf("stdout %q", out.String())
	}
	if res.Allocs != 2 || res.Releases != 2 || len(res.Calls) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunRejectsLLVMUnits(t *testing.T) {
	unit, err := CompileSource(context.Background(), "p.ts", []byte(doublePoint), Options{})
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if _, err := Run(context.Background(), unit, RunOptions{}); err == nil {
		t.Fatalf("expected an error for a unit without an interpreter module")
	}
}

// TestRunTestdata executes every program under testdata/run and compares
// its output with the "// want:" lines at the top of the file.
func TestRunTestdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "testdata", "run", "*.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("no testdata")
	}
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var want strings.Builder
			for _, line := range strings.Split(string(src), "\n") {
				if v, ok := strings.CutPrefix(line, "// want: "); ok {
					want.WriteString(v + "\n")
				}
			}
			unit, err := CompileFile(context.Background(), path, Options{Backend: BackendVM})
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if unit.Failed() {
				t.Fatalf("diagnostics: %+v", unit.Bag.Items())
			}
			var out bytes.Buffer
			if _, err := Run(context.Background(), unit, RunOptions{Stdout: &out, MaxSteps: 1_000_000}); err != nil {
				t.Fatalf("run: %v", err)
			}
			if out.String() != want.String() {
				t.Fatalf("output %q, want %q", out.String(), want.String())
			}
		})
	}
}

func TestCompileRecordsSpans(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "run", "counter.ts"))
	if err != nil {
		t.Fatal(err)
	}
	rec := trace.NewRecorder(trace.LevelFunc)
	ctx := trace.WithTracer(context.Background(), rec)
	unit, err := CompileSource(ctx, "counter.ts", src, Options{})
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if unit.Failed() {
		t.Fatalf("unexpected diagnostics: %+v", unit.Bag.Items())
	}

	units := rec.Ends(trace.ScopeUnit)
	if len(units) != 1 || units[0].Name != "counter.ts" {
		t.Fatalf("unit spans: %+v", units)
	}
	var phases []string
	for _, ev := range rec.Ends(trace.ScopePhase) {
		if ev.Parent != units[0].Span || ev.Track != units[0].Track {
			t.Fatalf("phase %s not below the unit span: %+v", ev.Name, ev)
		}
		phases = append(phases, ev.Name)
	}
	if got := strings.Join(phases, ","); got != "parse,resolve,check,capture,lower,emit" {
		t.Fatalf("phases: %s", got)
	}

	funcs := map[string]trace.Event{}
	for _, ev := range rec.Ends(trace.ScopeFunc) {
		funcs[strings.SplitN(ev.Name, ".", 2)[0]] = ev
	}
	mk, ok := funcs["makeCounter"]
	if !ok {
		t.Fatalf("no span for makeCounter in %+v", funcs)
	}
	if mk.Attr("pure") != "true" {
		t.Fatalf("makeCounter attrs: %+v", mk.Attrs)
	}
	if s := mk.Attr("scope"); !strings.HasPrefix(s, "scope.makeCounter.") || !strings.HasSuffix(s, "{$parent,count}") {
		t.Fatalf("makeCounter scope layout: %q", s)
	}
	arrow, ok := funcs["arrow"]
	if !ok {
		t.Fatalf("no span for the counter closure in %+v", funcs)
	}
	if arrow.Attr("pure") != "false" || arrow.Attr("scope") != "" {
		t.Fatalf("closure attrs: %+v", arrow.Attrs)
	}
}

func TestPhaseLevelSkipsFunctionSpans(t *testing.T) {
	rec := trace.NewRecorder(trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), rec)
	if _, err := CompileSource(ctx, "point.ts", []byte(doublePoint), Options{}); err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if got := rec.Ends(trace.ScopeFunc); len(got) != 0 {
		t.Fatalf("func spans recorded at phase level: %+v", got)
	}
	if got := rec.Ends(trace.ScopePhase); len(got) == 0 {
		t.Fatalf("no phase spans recorded")
	}
}
