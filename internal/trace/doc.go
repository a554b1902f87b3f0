// Package trace records spans of a resolve run: CLI commands, passes over a
// bundle, single files and, at debug level, overload decisions.
//
//	pasres resolve --trace=run.ndjson --trace-level=detail app.pbundle
//
// Tracers:
//
//   - Nop: disabled tracing
//   - StreamTracer: writes each event at once (text, NDJSON or Chrome JSON)
//   - RingTracer: keeps the last N events and writes them on Close
//   - MultiTracer: fans out to several tracers
//
// Level picks the coarsest scopes emitted: phase keeps driver and pass
// spans, detail adds files, debug adds nodes.
//
// A span started with Start is the parent of spans started from the
// returned context:
//
//	ctx, span := trace.Start(ctx, trace.ScopePass, "resolve")
//	defer span.End("")
package trace
