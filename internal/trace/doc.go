// Package trace records where the checker spends its time.
//
// Spans are emitted at four granularities: the driver run, a pipeline phase
// (lex, parse, sema, lower, check), a single function, and a single trace
// operation. The level decides which of them reach the output:
//
//	off     nothing
//	error   nothing unless the ring buffer is dumped after a failure
//	phase   driver and phases
//	detail  plus functions
//	debug   plus operations
//
// Tracers travel through the pipeline inside a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "parse", 0)
//	defer span.End("")
//
// Stream tracers write every event immediately (text or NDJSON); ring
// tracers keep the last N events in memory for a post-mortem dump.
package trace
