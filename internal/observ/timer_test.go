package observ

import (
	"strings"
	"testing"
)

func TestTimerReportsPhasesInOrder(t *testing.T) {
	tm := NewTimer()
	tm.Begin("parse")("1 file")
	tm.Begin("lower")("")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "parse" || r.Phases[1].Name != "lower" {
		t.Fatalf("unexpected phases %+v", r.Phases)
	}
	if r.Phases[0].Note != "1 file" {
		t.Fatalf("note lost: %+v", r.Phases[0])
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Fatalf("total %v smaller than a phase", r.TotalMS)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "parse") || !strings.Contains(sum, "// 1 file") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestUnfinishedPhaseIsLeftOut(t *testing.T) {
	tm := NewTimer()
	end := tm.Begin("check")
	tm.Begin("hang")
	end("first")
	end("second")
	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Note != "first" {
		t.Fatalf("got %+v", r.Phases)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.Begin("x")("")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer recorded %+v", r)
	}
	if !strings.Contains(tm.Summary(), "total") {
		t.Fatalf("nil summary lacks total row")
	}
}
