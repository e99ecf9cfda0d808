package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"scriptc/internal/project"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestListSourceFilesSkipsOutputAndHidden(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"main.ts", "lib/util.ts", "lib/types.d.ts", "build/old.ts", ".git/x.ts", "notes.md"} {
		touch(t, filepath.Join(root, rel))
	}
	files, err := listSourceFiles(root, filepath.Join(root, "build"))
	if err != nil {
		t.Fatalf("listSourceFiles: %v", err)
	}
	want := []string{filepath.Join(root, "lib", "util.ts"), filepath.Join(root, "main.ts")}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files %v, want %v", files, want)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, "tui": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("fancy"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestApplyCodegenFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addCodegenFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--entry=main", "--allocate-hook=gc_alloc"}); err != nil {
		t.Fatal(err)
	}
	cfg := project.DefaultConfig()
	if err := applyCodegenFlags(cmd, &cfg); err != nil {
		t.Fatalf("applyCodegenFlags: %v", err)
	}
	if cfg.Build.Entry != "main" || cfg.Runtime.Allocate != "gc_alloc" || cfg.Runtime.Release != "release" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	bad := &cobra.Command{Use: "y"}
	addCodegenFlags(bad)
	if err := bad.Flags().Parse([]string{"--release-hook=allocate"}); err != nil {
		t.Fatal(err)
	}
	cfg = project.DefaultConfig()
	if err := applyCodegenFlags(bad, &cfg); err == nil {
		t.Fatalf("expected hook collision to be rejected")
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Tool != "scriptc" || payload.Version == "" {
		t.Fatalf("payload %+v", payload)
	}
}

func TestProfilingFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addProfileFlags(cmd)
	mem := filepath.Join(t.TempDir(), "mem.pprof")
	if err := cmd.ParseFlags([]string{"--memprofile=" + mem}); err != nil {
		t.Fatal(err)
	}
	if err := startProfiling(cmd); err != nil {
		t.Fatalf("startProfiling: %v", err)
	}
	if profSession == nil {
		t.Fatalf("expected a profiling session")
	}
	if err := finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := os.Stat(mem); err != nil {
		t.Fatalf("heap profile not written: %v", err)
	}
}

func TestWriteHostRuntime(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := project.DefaultConfig()
	cfg.Runtime.Allocate = "gc_alloc"
	if err := writeHostRuntime(dir, cfg); err != nil {
		t.Fatalf("writeHostRuntime: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "scriptc_host.c"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("void *gc_alloc(")) || !bytes.Contains(data, []byte(cfg.Build.Entry+"();")) {
		t.Fatalf("unexpected host runtime:\n%s", data)
	}
}
