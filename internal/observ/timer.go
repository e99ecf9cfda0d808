// Package observ measures the wall time of compile phases for --timings.
package observ

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

type phase struct {
	name    string
	note    string
	started time.Time
	took    time.Duration
	done    bool
}

// Timer accumulates phases in the order they start. A nil *Timer
// records nothing, so callers need no enabled check.
type Timer struct {
	phases []phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin starts a phase and returns the function that ends it with an
// optional note. Ending twice keeps the first measurement.
func (t *Timer) Begin(name string) (end func(note string)) {
	if t == nil {
		return func(string) {}
	}
	i := len(t.phases)
	t.phases = append(t.phases, phase{name: name, started: time.Now()})
	return func(note string) {
		p := &t.phases[i]
		if p.done {
			return
		}
		p.took, p.note, p.done = time.Since(p.started), note, true
	}
}

// PhaseReport is one finished phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists finished phases and their sum in milliseconds.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		ms := p.took.Seconds() * 1000
		r.TotalMS += ms
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
	}
	return r
}

// Summary renders the report as an aligned table.
func (t *Timer) Summary() string {
	r := t.Report()
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "phase\tms\t\t")
	for _, p := range r.Phases {
		note := ""
		if p.Note != "" {
			note = "// " + p.Note
		}
		fmt.Fprintf(w, "%s\t%.2f\t%s\t\n", p.Name, p.DurationMS, note)
	}
	fmt.Fprintf(w, "total\t%.2f\t\t\n", r.TotalMS)
	_ = w.Flush()
	return b.String()
}
