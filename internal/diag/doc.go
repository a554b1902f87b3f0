// Package diag defines the diagnostic model shared by the resolver, the
// driver and the CLI.
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form (RES/TBL/IO/PRJ/OBS prefixes), a short Message, the
// Primary span and optional Notes. Notes should add context such as
// "candidate declared here" rather than repeat the message.
//
// Producers emit through a Reporter so that storage stays decoupled:
// BagReporter collects into a Bag (bounded, sortable, dedupable),
// DedupReporter drops repeats and LockedReporter lets parallel file workers
// share one sink. ReportBuilder chains notes before Emit.
//
// Package diag does no formatting or IO; rendering lives in cmd/pasres.
package diag
