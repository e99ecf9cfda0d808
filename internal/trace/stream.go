package trace

import (
	"io"
	"sync"
)

// Stream writes every event to w as it arrives. Write errors are dropped
// so a broken trace output never fails a build.
type Stream struct {
	mu       sync.Mutex
	w        io.Writer
	level    Level
	format   Format
	written  int
	owned    bool
	stopBeat func()
	closed   bool
}

// NewStream returns a tracer writing to w. The writer is not closed by
// Close unless New opened it.
func NewStream(w io.Writer, level Level, format Format) *Stream {
	s := &Stream{w: w, level: level, format: format}
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n")
	}
	return s
}

func (s *Stream) Emit(ev Event) {
	if ev.Kind != KindPoint && !s.level.Includes(ev.Scope) {
		return
	}
	data := FormatEvent(ev, s.format)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.format == FormatChrome && s.written > 0 {
		_, _ = io.WriteString(s.w, ",\n")
	}
	_, _ = s.w.Write(data)
	s.written++
}

func (s *Stream) Level() Level { return s.level }

// Close stops the heartbeat, terminates a Chrome array and closes an
// output file opened by New. Later events are dropped.
func (s *Stream) Close() error {
	if s.stopBeat != nil {
		s.stopBeat()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.format == FormatChrome {
		_, _ = io.WriteString(s.w, "\n]}\n")
	}
	if c, ok := s.w.(io.Closer); ok && s.owned {
		return c.Close()
	}
	return nil
}
