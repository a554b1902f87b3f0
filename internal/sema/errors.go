package sema

import (
	"fmt"
	"strings"

	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// AmbiguityError aborts resolution of a file: more than one declaration
// survived every filter for a single occurrence.
type AmbiguityError struct {
	Name       string
	Span       source.Span
	Candidates []symbols.SymbolID
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s: ambiguous name '%s' (%d candidates)", e.Span, e.Name, len(e.Candidates))
}

// ambiguous records the fatal error and reports it with one note per candidate.
func (r *resolver) ambiguous(occ Occurrence, cands []symbols.SymbolID, code diag.Code) {
	if r.err != nil {
		return
	}
	name := r.name(occ.Name)
	r.err = &AmbiguityError{Name: name, Span: occ.Span, Candidates: cands}
	if r.reporter == nil {
		return
	}
	b := diag.ReportFatal(r.reporter, code, occ.Span, fmt.Sprintf("ambiguous reference to '%s'", name))
	for _, id := range cands {
		if sym := r.table.Symbol(id); sym != nil {
			b.WithNote(sym.Span, "candidate: "+r.describe(id))
		}
	}
	b.Emit()
}

func (r *resolver) failed() bool { return r.err != nil }

func (r *resolver) warn(code diag.Code, sp source.Span, format string, args ...any) {
	if r.reporter == nil {
		return
	}
	diag.ReportWarning(r.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (r *resolver) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	if r.reporter == nil {
		return
	}
	diag.ReportError(r.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (r *resolver) name(id source.StringID) string {
	if s, ok := r.strings.Lookup(id); ok {
		return s
	}
	return "_"
}

// describe renders a symbol as `Owner.Name(T1, T2)` for notes.
func (r *resolver) describe(id symbols.SymbolID) string {
	sym := r.table.Symbol(id)
	if sym == nil {
		return "?"
	}
	var sb strings.Builder
	if sym.Owner.IsValid() {
		sb.WriteString(types.Label(r.types, sym.Owner))
		sb.WriteByte('.')
	}
	sb.WriteString(r.name(sym.Name))
	if sym.Invocable() {
		sb.WriteByte('(')
		for i, p := range sym.Params() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(types.Label(r.types, p.Type))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
