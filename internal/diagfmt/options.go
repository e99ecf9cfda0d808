package diagfmt

import (
	"path/filepath"
	"strings"

	"scriptc/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a relative path under BaseDir, the stored path otherwise.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // lines shown around the primary line
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int // truncates the output, not the bag
	IncludeNotes     bool
}

func formatPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return "<unknown>"
	}
	p := f.Path
	if f.Flags&source.FileVirtual != 0 {
		return p
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeBasename:
		return filepath.Base(p)
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return p
		}
		rel, err := filepath.Rel(base, p)
		if err == nil && (mode == PathModeRelative || !strings.HasPrefix(rel, "..")) {
			return filepath.ToSlash(rel)
		}
	}
	return p
}
