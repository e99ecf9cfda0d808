// Package fuzztests houses Go fuzz harnesses for the front half of the
// pipeline (source -> lexer -> parser) and for full compile-and-run cycles
// through the interpreter backend. The harnesses only look for panics, hangs
// and broken span invariants; diagnostics on malformed input are expected.
package fuzztests
