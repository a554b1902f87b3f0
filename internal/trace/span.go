package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID; zero is never returned.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// goroutineID parses the header of runtime.Stack: "goroutine 42 [running]:".
// Files of one wave resolve on different goroutines; the ID tells their
// spans apart.
func goroutineID() uint64 {
	var buf [64]byte
	header := buf[:runtime.Stack(buf[:], false)]
	header, ok := bytes.CutPrefix(header, []byte("goroutine "))
	if !ok {
		return 0
	}
	if end := bytes.IndexByte(header, ' '); end >= 0 {
		header = header[:end]
	}
	gid, err := strconv.ParseUint(string(header), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open begin/end pair. A disabled span is safe to use.
type Span struct {
	tracer  Tracer
	ev      Event
	started time.Time
}

var disabled = &Span{tracer: Nop}

// Begin emits the begin event of a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return disabled
	}
	s := &Span{
		tracer: t,
		ev: Event{
			Scope:    scope,
			SpanID:   NextSpanID(),
			ParentID: parent,
			GID:      goroutineID(),
			Name:     name,
		},
		started: time.Now(),
	}
	begin := s.ev
	begin.Time = s.started
	begin.Seq = NextSeq()
	begin.Kind = KindSpanBegin
	t.Emit(&begin)
	return s
}

// Start begins a span under the span of ctx and returns a context whose
// spans nest under the new one.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	span := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID)
	if span == disabled {
		return ctx, span
	}
	return WithSpanContext(ctx, SpanContext{SpanID: span.ev.SpanID, GID: span.ev.GID}), span
}

// End emits the end event with detail and the collected extras. It returns
// the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s == disabled || s.tracer == nil {
		return 0
	}
	now := time.Now()
	end := s.ev
	end.Time = now
	end.Seq = NextSeq()
	end.Kind = KindSpanEnd
	end.Detail = detail
	s.tracer.Emit(&end)
	return now.Sub(s.started)
}

// WithExtra attaches a key/value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s == disabled {
		return s
	}
	if s.ev.Extra == nil {
		s.ev.Extra = make(map[string]string, 2)
	}
	s.ev.Extra[key] = value
	return s
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ev.SpanID
}
