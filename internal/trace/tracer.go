package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

// Config selects where and how a tracer writes.
type Config struct {
	Level  Level
	Format Format
	// Output wins over Path; Path "-" or "" means stderr.
	Output    io.Writer
	Path      string
	Heartbeat time.Duration
}

// New builds the tracer described by cfg. A heartbeat, when requested, is
// stopped by Close.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatForPath(cfg.Path)
	}
	w, owned := cfg.Output, false
	if w == nil {
		if cfg.Path == "" || cfg.Path == "-" {
			w = os.Stderr
		} else {
			f, err := os.Create(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("open trace output: %w", err)
			}
			w, owned = f, true
		}
	}
	s := NewStream(w, cfg.Level, format)
	s.owned = owned
	if cfg.Heartbeat > 0 {
		s.stopBeat = StartHeartbeat(s, cfg.Heartbeat)
	}
	return s, nil
}

func formatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(path, ".json"):
		return FormatChrome
	}
	return FormatText
}

// Nop drops every event.
var Nop Tracer = nop{}

type nop struct{}

func (nop) Emit(Event)   {}
func (nop) Level() Level { return LevelOff }
func (nop) Close() error { return nil }
