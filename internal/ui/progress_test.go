package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"scriptc/internal/buildpipeline"
)

func plainLadder(u *unit) string {
	var b strings.Builder
	for _, r := range u.ladder() {
		if strings.ContainsRune("=>x.", r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestProgressTracksStages(t *testing.T) {
	events := make(chan buildpipeline.Event)
	m := NewProgressModel("build", []string{"a.ts", "b.ts", "c.ts"}, events).(*progressModel)

	m.apply(buildpipeline.Event{File: "a.ts", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusWorking})
	m.apply(buildpipeline.Event{File: "b.ts", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusCached})
	m.apply(buildpipeline.Event{File: "c.ts", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusWorking})
	m.apply(buildpipeline.Event{File: "c.ts", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusError, Err: errors.New("type mismatch")})
	m.apply(buildpipeline.Event{File: "unknown.ts", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusError})

	if got := plainLadder(m.byPath["a.ts"]); got != "====>.." {
		t.Fatalf("a.ts ladder %q", got)
	}
	if got := plainLadder(m.byPath["b.ts"]); got != "=======" {
		t.Fatalf("b.ts ladder %q", got)
	}
	if got := plainLadder(m.byPath["c.ts"]); got != "==x...." {
		t.Fatalf("c.ts ladder %q", got)
	}
	if m.settled != 2 || m.failed != 1 {
		t.Fatalf("settled=%d failed=%d", m.settled, m.failed)
	}
	lowered := float64(4)
	want := (lowered/7 + 1 + 1) / 3
	if got := m.fraction(); got != want {
		t.Fatalf("fraction %v, want %v", got, want)
	}
	view := m.View()
	for _, s := range []string{"build 2/3", "1 failed", "a.ts", "type mismatch"} {
		if !strings.Contains(view, s) {
			t.Fatalf("view lacks %q:\n%s", s, view)
		}
	}
}

func TestFinishedUnitIgnoresLateEvents(t *testing.T) {
	m := NewProgressModel("build", []string{"a.ts"}, nil).(*progressModel)
	m.apply(buildpipeline.Event{File: "a.ts", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone})
	m.apply(buildpipeline.Event{File: "a.ts", Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone})
	m.apply(buildpipeline.Event{File: "a.ts", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})
	if m.settled != 1 || m.byPath["a.ts"].status != buildpipeline.StatusDone {
		t.Fatalf("settled=%d status=%s", m.settled, m.byPath["a.ts"].status)
	}
}

func TestTruncate(t *testing.T) {
	for _, in := range []string{"src/very/long/path.ts", "名前名前名前名前"} {
		got := truncate(in, 10)
		if !strings.HasSuffix(got, "...") || runewidth.StringWidth(got) > 10 {
			t.Fatalf("truncate(%q) = %q", in, got)
		}
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("short: %q", got)
	}
}
