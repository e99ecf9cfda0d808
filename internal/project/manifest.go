// Package project locates and loads scriptc.toml.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file searched for by FindManifest.
const ManifestName = "scriptc.toml"

// Config mirrors scriptc.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Runtime RuntimeConfig `toml:"runtime"`
	Trace   TraceConfig   `toml:"trace"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig controls code generation.
type BuildConfig struct {
	Entry  string `toml:"entry"`
	Triple string `toml:"triple"`
	Output string `toml:"output"`
	Jobs   int    `toml:"jobs"`
	Cache  bool   `toml:"cache"`
}

// RuntimeConfig names the host hooks generated code imports.
type RuntimeConfig struct {
	Allocate string `toml:"allocate"`
	Release  string `toml:"release"`
}

type TraceConfig struct {
	Level string `toml:"level"`
}

// Manifest is a loaded scriptc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// DefaultConfig is used when no manifest exists; values missing from a
// manifest keep these defaults.
func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Entry:  "__scriptc_start",
			Triple: "x86_64-unknown-linux-gnu",
			Output: "build",
			Cache:  true,
		},
		Runtime: RuntimeConfig{
			Allocate: "allocate",
			Release:  "release",
		},
		Trace: TraceConfig{Level: "off"},
	}
}

// FindManifest walks up from startDir to locate scriptc.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest governing startDir. ok is false
// when there is none; the caller then uses DefaultConfig.
func Discover(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadFile parses the manifest at path over DefaultConfig.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from FindManifest or the command line
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes manifest text over DefaultConfig and validates it.
func Parse(text string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, errors.New("missing [package].name")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the symbol names and limits of cfg.
func (c Config) Validate() error {
	for _, sym := range []struct{ key, val string }{
		{"build.entry", c.Build.Entry},
		{"runtime.allocate", c.Runtime.Allocate},
		{"runtime.release", c.Runtime.Release},
	} {
		if !isSymbol(sym.val) {
			return fmt.Errorf("%s: %q is not a valid symbol name", sym.key, sym.val)
		}
	}
	if c.Runtime.Allocate == c.Runtime.Release {
		return fmt.Errorf("runtime.allocate and runtime.release must differ (both %q)", c.Runtime.Allocate)
	}
	if c.Build.Entry == c.Runtime.Allocate || c.Build.Entry == c.Runtime.Release {
		return fmt.Errorf("build.entry %q collides with a runtime hook", c.Build.Entry)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("build.jobs must not be negative, got %d", c.Build.Jobs)
	}
	if strings.TrimSpace(c.Build.Triple) == "" {
		return errors.New("build.triple must not be empty")
	}
	return nil
}

func isSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || r == '.':
		case unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// OutputDir resolves the build output directory of m.
func (m *Manifest) OutputDir() string {
	if filepath.IsAbs(m.Config.Build.Output) {
		return m.Config.Build.Output
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.Output))
}
