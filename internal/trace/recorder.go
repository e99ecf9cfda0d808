package trace

import "sync"

// Recorder keeps events in memory for later inspection.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	events []Event
}

func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

func (r *Recorder) Emit(ev Event) {
	if ev.Kind != KindPoint && !r.level.Includes(ev.Scope) {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *Recorder) Level() Level { return r.level }
func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Ends returns the end events of scope s in the order the spans closed.
func (r *Recorder) Ends(s Scope) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Kind == KindEnd && ev.Scope == s {
			out = append(out, ev)
		}
	}
	return out
}
