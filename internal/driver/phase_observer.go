package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary. Elapsed and Failed are set on
// PhaseEnd.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Failed  bool
}

// PhaseObserver receives phase events emitted during Compile.
type PhaseObserver func(PhaseEvent)
