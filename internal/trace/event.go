package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of an event.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of a span.
type Scope uint8

const (
	ScopeUnit Scope = iota + 1
	ScopePhase
	ScopeFunc
)

func (s Scope) String() string {
	switch s {
	case ScopeUnit:
		return "unit"
	case ScopePhase:
		return "phase"
	case ScopeFunc:
		return "func"
	}
	return "unknown"
}

// Level is the finest scope a tracer records.
type Level uint8

const (
	LevelOff Level = iota
	LevelUnit
	LevelPhase
	LevelFunc
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelUnit:
		return "unit"
	case LevelPhase:
		return "phase"
	case LevelFunc:
		return "func"
	}
	return "unknown"
}

// Includes reports whether spans of scope s are recorded at level l.
// Points without a scope are recorded at every level but off.
func (l Level) Includes(s Scope) bool {
	return l != LevelOff && uint8(s) <= uint8(l)
}

// ParseLevel converts a flag or manifest value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return LevelOff, nil
	case "unit":
		return LevelUnit, nil
	case "phase":
		return LevelPhase, nil
	case "func":
		return LevelFunc, nil
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected off|unit|phase|func)", s)
}

// Attr is one key/value annotation of an event.
type Attr struct {
	Key   string
	Value string
}

// Event is one record written by a tracer.
type Event struct {
	Time   time.Time
	Kind   Kind
	Scope  Scope
	Span   uint64
	Parent uint64
	// Track groups the spans of one unit.
	Track  uint64
	Name   string
	Detail string
	Attrs  []Attr
}

// Attr returns the value of key, or "" when absent.
func (ev Event) Attr(key string) string {
	for _, a := range ev.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}
