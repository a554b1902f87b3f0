package symbols

import (
	"slices"
	"sync"

	"pasres/internal/source"
)

// Usage is one committed occurrence recorded against a declaration.
type Usage struct {
	Symbol   SymbolID
	Span     source.Span
	Implicit bool
}

// Registry is a unit's append-only occurrence index. Files resolved in
// parallel append to the registries of the units they import.
type Registry struct {
	mu     sync.Mutex
	usages []Usage
}

// Add appends a usage.
func (r *Registry) Add(u Usage) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.usages = append(r.usages, u)
	r.mu.Unlock()
}

// Len reports the number of recorded usages.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.usages)
}

// Snapshot returns the usages sorted by symbol and position, so the result
// does not depend on the order files finished in.
func (r *Registry) Snapshot() []Usage {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := slices.Clone(r.usages)
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b Usage) int {
		if a.Symbol != b.Symbol {
			if a.Symbol < b.Symbol {
				return -1
			}
			return 1
		}
		if a.Span.Before(b.Span) {
			return -1
		}
		if b.Span.Before(a.Span) {
			return 1
		}
		return 0
	})
	return out
}

// For returns the sorted usages of one symbol.
func (r *Registry) For(sym SymbolID) []Usage {
	var out []Usage
	for _, u := range r.Snapshot() {
		if u.Symbol == sym {
			out = append(out, u)
		}
	}
	return out
}
