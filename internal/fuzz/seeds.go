package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addSnippetSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".ts" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
	f.Add([]byte{})
}

func addSnippetSeeds(f *testing.F) {
	for _, s := range []string{
		"declare function print(x: number): void;\nprint(1);\n",
		"type P = { x: number; y: number };\nconst p: P = { x: 1, y: 2 };\n",
		"function f(a: number): number { return a + 1; }\n",
		"let n = 0;\nconst inc = () => { n = n + 1; return n; };\ninc();\n",
		"class C { v: number; constructor(v: number) { this.v = v; } get(): number { return this.v; } }\n",
		"for (let i = 0; i < 3; i = i + 1) { if (i == 1) { continue; } }\n",
		"interface S { area(): number; }\n",
		"let s: string = \"h\\u00e9\";\n",
	} {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
