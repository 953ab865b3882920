// Package ownership evaluates ownership and borrowing rules over a Trace.
//
// A Trace is a program-ordered list of operations produced by internal/lower
// (or written by hand in tests): scope entry and exit, bindings, moves,
// clones, borrows, reads and writes. Check decides statically whether the
// trace satisfies the rules and stops at the first violation.
//
// # Rules
//
//   - Moving an Owning value invalidates its source; Copy values are
//     duplicated and both sides stay usable.
//   - A place may carry any number of live Shared borrows or exactly one
//     live Exclusive borrow.
//   - A borrow is live from its creation until the last operation that reads
//     a binding carrying it (non-lexical liveness). Copies of a shared handle
//     and references derived from it carry the same borrow.
//   - A Shared borrow whose final read is listed in the Reads of a borrowing
//     operation ends before the new borrow takes effect.
//   - Leaving a scope releases its unmoved Owning bindings in reverse
//     creation order and invalidates borrows of them.
//
// # Evaluation
//
// Check runs the same state machine twice. The first pass ignores rule
// checks and records the last use of every borrow; the second pass enforces
// the rules with that liveness information. Borrow IDs are allocated in the
// same order in both passes.
package ownership
