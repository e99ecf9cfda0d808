// Package trace records spans of the compile pipeline.
//
// Spans come in three scopes, coarse to fine: one per compiled unit, one
// per phase of that unit (parse, resolve, check, capture, lower, emit) and
// one per function body the lowerer emits. The level picks how deep the
// tracer goes:
//
//	scriptc build --trace=- --trace-level=func main.ts
//
// Every span of a unit shares the unit's track, so parallel builds render
// as separate rows in chrome://tracing. Attributes are ordered key/value
// pairs; the lowerer uses them for purity, environment and scope-object
// layouts.
//
// The tracer travels in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "parse", trace.CurrentSpan(ctx))
//	defer span.End("")
package trace
