package version

import (
	"testing"

	"github.com/fatih/color"
)

func withPlain(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestVersion_DefaultValues(t *testing.T) {
	withPlain(t)
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
	if got := Colored(); got != Version {
		t.Fatalf("Colored() = %q without colours, want %q", got, Version)
	}
}

func TestVersion_StringIncludesBuildInfo(t *testing.T) {
	withPlain(t)
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version, GitCommit, BuildDate = "1.2.3-rc.1", "abc123", "2024-01-15T10:30:00Z"
	want := "scriptc 1.2.3-rc.1 (abc123) built 2024-01-15T10:30:00Z"
	if got := String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	GitCommit, BuildDate = "", ""
	if got := String(); got != "scriptc 1.2.3-rc.1" {
		t.Fatalf("String() = %q", got)
	}
}

func TestVersion_UnusualFormatIsKept(t *testing.T) {
	withPlain(t)
	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "nightly"
	if got := Colored(); got != "nightly" {
		t.Fatalf("Colored() = %q", got)
	}
}
