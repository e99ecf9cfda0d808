package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(`
[package]
name = "demo"

[build]
entry = "start"
jobs = 2

[runtime]
allocate = "gc_alloc"
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Package.Name != "demo" || cfg.Build.Entry != "start" || cfg.Build.Jobs != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Runtime.Allocate != "gc_alloc" || cfg.Runtime.Release != "release" {
		t.Fatalf("runtime hooks: %+v", cfg.Runtime)
	}
	def := DefaultConfig()
	if cfg.Build.Triple != def.Build.Triple || cfg.Build.Output != def.Build.Output || !cfg.Build.Cache {
		t.Fatalf("defaults lost: %+v", cfg.Build)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name, text, want string
	}{
		{"missing name", "[build]\nentry = \"x\"\n", "missing [package].name"},
		{"unknown key", "[package]\nname = \"d\"\ncolour = true\n", "unknown keys: package.colour"},
		{"bad symbol", "[package]\nname = \"d\"\n[build]\nentry = \"1st\"\n", "build.entry"},
		{"hook collision", "[package]\nname = \"d\"\n[runtime]\nallocate = \"release\"\n", "must differ"},
		{"entry collision", "[package]\nname = \"d\"\n[build]\nentry = \"allocate\"\n", "collides"},
		{"syntax", "[package\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}
	manifest := "[package]\nname = \"walk\"\n\n[build]\noutput = \"out\"\n"
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(manifest), 0o600); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	wantRoot, _ := filepath.Abs(root)
	if m.Root != wantRoot {
		t.Fatalf("root %q, want %q", m.Root, wantRoot)
	}
	if m.Config.Package.Name != "walk" {
		t.Fatalf("name %q", m.Config.Package.Name)
	}
	if got := m.OutputDir(); got != filepath.Join(wantRoot, "out") {
		t.Fatalf("output dir %q", got)
	}
}

func TestDiscoverWithoutManifest(t *testing.T) {
	_, ok, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if ok {
		t.Skip("a scriptc.toml exists above the temp directory")
	}
}

func TestCombineDependsOnOrder(t *testing.T) {
	a, b := HashString("a"), HashString("b")
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("Combine should be order sensitive")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Fatalf("Combine should be deterministic")
	}
}
