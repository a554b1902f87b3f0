package observ

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	order := tm.Begin("order")
	tm.End(order, "2 waves")
	tm.Measure("resolve", func() string { return "3 files" })
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %v, want 2", report.Phases)
	}
	if report.Phases[0].Name != "order" || report.Phases[0].Note != "2 waves" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.Phases[0].DurationMS != 1 || report.TotalMS != 2 {
		t.Fatalf("durations = %+v", report)
	}
	summary := tm.Summary()
	if !strings.Contains(summary, "resolve") || !strings.Contains(summary, "// 3 files") {
		t.Fatalf("summary = %q", summary)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("empty timer report = %+v", r)
	}
}
