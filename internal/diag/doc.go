// Package diag defines the diagnostic model shared by every checking phase.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced by the
//     lexer, parser, semantic pass and ownership evaluator.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting layers.
//
// Package diag performs no formatting beyond the stable short form used by
// golden tests; rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier (see codes.go) with a stable ID such
//     as OWN4001 and, for checkable codes, a slug such as use_after_move.
//   - Message – short, actionable text.
//   - Primary – the source.Span pointing at the offending operation.
//   - Notes – secondary spans, e.g. “value moved here” or “previous borrow of
//     's' occurs here”.
//
// # Emitting diagnostics
//
// Phases use ReportError / ReportWarning to get a ReportBuilder, chain
// WithNote, and call Emit. BagReporter collects into a Bag, which supports
// sorting, deduplication and filtering.
package diag
