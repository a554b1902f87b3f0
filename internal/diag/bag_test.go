package diag

import (
	"testing"

	"pasres/internal/source"
)

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(8)
	late := source.Span{File: 1, Start: 20, End: 25}
	early := source.Span{File: 1, Start: 2, End: 4}
	bag.Add(New(SevWarning, ResUnresolvedName, late, "unresolved name 'Foo'"))
	bag.Add(NewError(ResAmbiguousName, early, "ambiguous name 'Bar'"))
	bag.Add(New(SevWarning, ResUnresolvedName, late, "unresolved name 'Foo'"))

	bag.Sort()
	bag.Dedup()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", bag.Len())
	}
	if bag.Items()[0].Code != ResAmbiguousName {
		t.Fatalf("expected earliest span first, got %v", bag.Items()[0].Code)
	}
	if !bag.HasErrors() || !bag.Has(ResUnresolvedName) {
		t.Fatalf("unexpected bag state: %v", bag.Codes())
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(New(SevInfo, ResInfo, source.Span{}, "first")) {
		t.Fatalf("first add must succeed")
	}
	if bag.Add(New(SevInfo, ResInfo, source.Span{}, "second")) {
		t.Fatalf("second add must hit the limit")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	b := ReportError(NewDedupReporter(BagReporter{Bag: bag}), ResAmbiguousOverload, source.Span{File: 1, Start: 1, End: 2}, "ambiguous overload for 'Foo'").
		WithNote(source.Span{File: 1, Start: 10, End: 13}, "candidate declared here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("note was lost")
	}
	if got := ResAmbiguousOverload.String(); got != "[RES3003]: ambiguous overload" {
		t.Fatalf("unexpected code string %q", got)
	}
}

func TestFatalSeverityStopsAndCountsAsError(t *testing.T) {
	if !SevFatal.Stops() || SevError.Stops() {
		t.Fatalf("only fatal diagnostics stop a file")
	}
	if SevFatal.String() != "FATAL" {
		t.Fatalf("SevFatal renders as %q", SevFatal.String())
	}
	bag := NewBag(4)
	bag.Add(New(SevFatal, ResAmbiguousOverload, source.Span{File: 1}, "ambiguous reference to 'Foo'"))
	if !bag.HasErrors() {
		t.Fatalf("a fatal diagnostic must count as an error")
	}
}

func TestDedupReporterIgnoresSeverityOnRepeat(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 4, End: 7}
	r.Report(ResUnresolvedName, SevWarning, sp, "undeclared identifier 'X'", nil)
	r.Report(ResUnresolvedName, SevError, sp, "undeclared identifier 'X'", nil)
	r.Report(ResUnresolvedName, SevWarning, source.Span{File: 1, Start: 9, End: 10}, "undeclared identifier 'X'", nil)

	if bag.Len() != 2 {
		t.Fatalf("expected 2 forwarded diagnostics, got %d", bag.Len())
	}
	if r.Suppressed() != 1 {
		t.Fatalf("suppressed = %d, want 1", r.Suppressed())
	}
	if bag.Items()[0].Severity != SevWarning {
		t.Fatalf("the first report must win, got %s", bag.Items()[0].Severity)
	}
}
