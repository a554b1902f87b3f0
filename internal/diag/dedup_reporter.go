package diag

import "pasres/internal/source"

// occurrenceKey identifies one report at one source location. Severity is
// left out: a name reported once as a warning and again as an error while
// ranking a different candidate set is still the same problem.
type occurrenceKey struct {
	code Code
	span source.Span
	msg  string
}

// DedupReporter forwards the first report of each code, span and message.
// The resolver types an argument once per candidate it ranks, so an
// unresolved name inside an overloaded call is reported for every overload.
// Not safe for concurrent use; the driver keeps one per file.
type DedupReporter struct {
	next       Reporter
	seen       map[occurrenceKey]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[occurrenceKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := occurrenceKey{code: code, span: primary, msg: msg}
	if _, ok := r.seen[key]; ok {
		r.suppressed++
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed returns how many repeats were dropped.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}
