package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel(" DEBUG "); err != nil || l != LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if LevelDetail.String() != "detail" {
		t.Fatalf("unexpected name %q", LevelDetail.String())
	}
}

func TestShouldEmit(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeFile) {
		t.Fatalf("phase level must stop at pass scope")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail level must stop at file scope")
	}
	if LevelError.ShouldEmit(ScopeDriver) {
		t.Fatalf("error level records no spans")
	}
}

func point(name string) *Event {
	return &Event{Kind: KindPoint, Scope: ScopeDriver, Name: name}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, outer := Start(ctx, ScopeDriver, "outer")
	_, inner := Start(ctx, ScopeFile, "inner")
	inner.WithExtra("path", "main.pas")
	inner.End("")
	outer.End("ok")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].ParentID != events[0].SpanID || events[0].ParentID != 0 {
		t.Fatalf("inner span not nested: %+v", events[:2])
	}
	if events[2].Kind != KindSpanEnd || events[2].Extra["path"] != "main.pas" {
		t.Fatalf("inner end event lost extras: %+v", events[2])
	}
	if events[3].Detail != "ok" || events[3].SpanID != outer.ID() {
		t.Fatalf("unexpected outer end: %+v", events[3])
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}
}

func TestStartWithoutTracer(t *testing.T) {
	ctx := context.Background()
	got, span := Start(ctx, ScopeDriver, "noop")
	if got != ctx {
		t.Fatalf("disabled span must keep the context")
	}
	if span.ID() != 0 || span.WithExtra("k", "v").End("") != 0 {
		t.Fatalf("disabled span must be inert")
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelPhase)
	for _, name := range []string{"e1", "e2", "e3", "e4", "e5"} {
		ring.Emit(point(name))
	}
	ring.Emit(&Event{Kind: KindPoint, Scope: ScopeNode, Name: "filtered"})

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "e3,e4,e5" {
		t.Fatalf("unexpected ring contents %v", names)
	}
}

func TestRingWritesOnClose(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeRing, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.Emit(point("order"))
	tr.Emit(point("resolve"))
	if buf.Len() != 0 {
		t.Fatalf("ring must not write before Close")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "order") || !strings.Contains(out, "resolve") {
		t.Fatalf("missing events in %q", out)
	}
	if err := tr.Close(); err != nil || buf.String() != out {
		t.Fatalf("second Close must be a no-op")
	}
}

func TestStreamChromeIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	_, span := Start(WithTracer(context.Background(), st), ScopePass, "resolve")
	span.End("")
	st.Emit(point("mark"))
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Fatalf("expected 3 events, got %d", len(doc.TraceEvents))
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff must give a disabled tracer")
	}
}
