package symbols

import (
	"pasres/internal/source"
	"pasres/internal/types"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeUnit              // unit-level declarations
	ScopeType              // members of a structured type
	ScopeRoutine           // routine parameters and locals
	ScopeBlock             // nested block
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUnit:
		return "unit"
	case ScopeType:
		return "type"
	case ScopeRoutine:
		return "routine"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. NameIndex is
// keyed by case-folded names.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	Unit      SymbolID      // unit the scope belongs to
	Type      types.TypeID  // ScopeType: the struct whose members live here
	Routine   SymbolID      // ScopeRoutine: the routine owning the body
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
	// Imports lists UnitImport symbols in uses-clause order (unit scopes only).
	Imports []SymbolID
	// Helpers lists helper types declared in this unit, in declaration order.
	Helpers []types.TypeID
}

// Local returns the symbols declared directly in the scope under folded name.
func (s *Scope) Local(folded source.StringID) []SymbolID {
	if s == nil {
		return nil
	}
	return s.NameIndex[folded]
}
