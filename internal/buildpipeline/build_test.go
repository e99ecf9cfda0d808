package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"scriptc/internal/project"
)

const okSource = `
declare function print(v: number): void;
function counter(): () => number {
  let n = 0;
  return () => { n = n + 1; return n; };
}
const next = counter();
print(next());
`

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) statuses(file string) []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Status
	for _, ev := range r.events {
		if ev.File == file {
			out = append(out, ev.Status)
		}
	}
	return out
}

func TestBuildWritesModulesAndReportsFailures(t *testing.T) {
	src := t.TempDir()
	good := writeFile(t, src, "app/main.ts", okSource)
	bad := writeFile(t, src, "broken.ts", "print(missing);\n")
	out := t.TempDir()

	rec := &recorder{}
	res, err := Build(context.Background(), &BuildRequest{
		Files:     []string{good, bad},
		BaseDir:   src,
		OutputDir: out,
		Config:    project.DefaultConfig(),
		Jobs:      2,
		Progress:  rec,
	})
	if !errors.Is(err, ErrUnitsFailed) {
		t.Fatalf("expected ErrUnitsFailed, got %v", err)
	}
	if res.FailedCount() != 1 || res.Units[0].Failed() || !res.Units[1].Failed() {
		t.Fatalf("unexpected outcome %+v", res.Units)
	}
	if res.Units[0].Display != "app/main.ts" {
		t.Fatalf("display %q", res.Units[0].Display)
	}
	ir, err := os.ReadFile(filepath.Join(out, "app", "main.ll"))
	if err != nil {
		t.Fatalf("missing output: %v", err)
	}
	if !strings.Contains(string(ir), "@__scriptc_start()") {
		t.Fatalf("unexpected module:\n%s", ir)
	}
	if _, err := os.Stat(filepath.Join(out, "broken.ll")); !os.IsNotExist(err) {
		t.Fatalf("failed unit must not write output")
	}
	if !res.Timings.Has(StageLower) || !res.Timings.Has(StageWrite) {
		t.Fatalf("missing stage timings")
	}

	st := rec.statuses("app/main.ts")
	if len(st) == 0 || st[0] != StatusQueued || st[len(st)-1] != StatusDone {
		t.Fatalf("main.ts events %v", st)
	}
	st = rec.statuses("broken.ts")
	if st[len(st)-1] != StatusError {
		t.Fatalf("broken.ts events %v", st)
	}
}

func TestBuildReusesCache(t *testing.T) {
	src := t.TempDir()
	file := writeFile(t, src, "main.ts", okSource)
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	req := &BuildRequest{
		Files:     []string{file},
		BaseDir:   src,
		OutputDir: t.TempDir(),
		Config:    project.DefaultConfig(),
		Cache:     cache,
	}
	first, err := Build(context.Background(), req)
	if err != nil || first.Units[0].Cached {
		t.Fatalf("first build: %v cached=%v", err, first.Units[0].Cached)
	}
	second, err := Build(context.Background(), req)
	if err != nil || !second.Units[0].Cached || second.Units[0].Unit != nil {
		t.Fatalf("second build should hit the cache: %v %+v", err, second.Units[0])
	}

	// other hook names must miss
	req.Config.Runtime.Allocate = "gc_alloc"
	third, err := Build(context.Background(), req)
	if err != nil || third.Units[0].Cached {
		t.Fatalf("changed options should miss: %v %+v", err, third.Units[0])
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	req.Config = project.DefaultConfig()
	fourth, err := Build(context.Background(), req)
	if err != nil || fourth.Units[0].Cached {
		t.Fatalf("dropped cache should miss: %v", err)
	}
}

func TestDisplayNames(t *testing.T) {
	base := t.TempDir()
	got := DisplayNames([]string{filepath.Join(base, "a", "b.ts"), "/elsewhere/c.ts"}, base)
	if got[0] != "a/b.ts" || got[1] != "/elsewhere/c.ts" {
		t.Fatalf("display names %v", got)
	}
	if outputName("a/b.ts") != filepath.FromSlash("a/b.ll") {
		t.Fatalf("output name %q", outputName("a/b.ts"))
	}
}
