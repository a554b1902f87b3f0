package ui

import (
	"strings"
	"testing"
	"time"

	"pasres/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("resolving", []string{"lib.pas", "main.pas"}, events).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "lib.pas", Stage: driver.StageResolve, Status: driver.StatusWorking}))
	if got := m.rows[0].status; got != "resolving" {
		t.Fatalf("lib.pas status = %q, want resolving", got)
	}
	m.Update(eventMsg(driver.Event{File: "main.pas", Stage: driver.StageResolve, Status: driver.StatusError, Elapsed: 2 * time.Millisecond}))
	m.Update(eventMsg(driver.Event{File: "unknown.pas", Stage: driver.StageResolve, Status: driver.StatusDone}))

	if p := m.percent(); p != 0.75 {
		t.Fatalf("percent = %v, want 0.75", p)
	}
	view := m.View()
	if !strings.Contains(view, "error") || !strings.Contains(view, "(2.0 ms)") {
		t.Fatalf("view = %q", view)
	}

	m.Update(eventMsg(driver.Event{Stage: driver.StageIndex, Status: driver.StatusWorking}))
	if m.stageLabel != "indexing" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: resolving") || !strings.Contains(m.View(), "1/2 files, 1 failed") {
		t.Fatalf("model must finish on doneMsg")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("short values stay: %q", got)
	}
}
