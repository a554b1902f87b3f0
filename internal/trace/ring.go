package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last events in memory. With an output it writes
// them there on Close, so a failed run leaves its recent history behind.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
	level  Level

	out    io.Writer
	format Format
	closed bool
}

// NewRingTracer creates a RingTracer keeping capacity events (4096 if <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// DumpOnClose makes Close write the buffered events to w.
func (t *RingTracer) DumpOnClose(w io.Writer, format Format) *RingTracer {
	t.mu.Lock()
	t.out, t.format = w, format
	t.mu.Unlock()
	return t
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	t.events[t.next] = *ev
	t.next++
	if t.next == len(t.events) {
		t.next = 0
		t.filled = true
	}
}

// Snapshot returns the buffered events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *RingTracer) snapshotLocked() []Event {
	if !t.filled {
		return append([]Event(nil), t.events[:t.next]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	return append(out, t.events[:t.next]...)
}

// Dump writes the buffered events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

// Close writes the buffer to the DumpOnClose output once and closes it.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	if t.closed || t.out == nil {
		t.closed = true
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	out, format := t.out, t.format
	events := t.snapshotLocked()
	t.mu.Unlock()

	stream := NewStreamTracer(out, LevelDebug, format)
	for i := range events {
		stream.Emit(&events[i])
	}
	return stream.Close()
}

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
