// Package diag defines the diagnostic model shared by all compiler phases.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form (LEX/SYN/SEM/LOW/PRJ prefixes), a short Message, the primary
// source.Span and optional Notes pointing at related locations.
//
// Phases emit through a Reporter so that storage stays decoupled from
// production. BagReporter collects into a Bag, which supports sorting and
// deduplication before the driver hands the result to internal/diagfmt.
//
// Package diag performs no formatting or IO.
package diag
