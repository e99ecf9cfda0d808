package trace

import (
	"sync/atomic"
	"time"
)

var lastSpanID atomic.Uint64

// SpanContext identifies a span for children started elsewhere.
type SpanContext struct {
	ID    uint64
	Track uint64
}

// Span is an open span. A nil or disabled span ignores every call.
type Span struct {
	t       Tracer
	ctx     SpanContext
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

// Begin opens a span below parent. A span without a parent starts a new
// track. Spans below the tracer's level are not recorded and return a
// disabled span.
func Begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	if t == nil || !t.Level().Includes(scope) {
		return &Span{ctx: parent}
	}
	id := lastSpanID.Add(1)
	track := parent.Track
	if track == 0 {
		track = id
	}
	s := &Span{
		t:       t,
		ctx:     SpanContext{ID: id, Track: track},
		parent:  parent.ID,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(Event{
		Time:   s.started,
		Kind:   KindBegin,
		Scope:  scope,
		Span:   id,
		Parent: parent.ID,
		Track:  track,
		Name:   name,
	})
	return s
}

// Context returns the identity children should use. A disabled span
// passes its parent's identity through.
func (s *Span) Context() SpanContext {
	if s == nil {
		return SpanContext{}
	}
	return s.ctx
}

// Enabled reports whether the span is recorded.
func (s *Span) Enabled() bool {
	return s != nil && s.t != nil
}

// Attr adds an attribute to the end event.
func (s *Span) Attr(key, value string) *Span {
	if s.Enabled() {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if !s.Enabled() {
		return 0
	}
	now := time.Now()
	s.t.Emit(Event{
		Time:   now,
		Kind:   KindEnd,
		Scope:  s.scope,
		Span:   s.ctx.ID,
		Parent: s.parent,
		Track:  s.ctx.Track,
		Name:   s.name,
		Detail: detail,
		Attrs:  s.attrs,
	})
	s.t = nil
	return now.Sub(s.started)
}
