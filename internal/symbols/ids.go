package symbols

import "strconv"

// ScopeID indexes Table.Scopes. Slot 0 is the sentinel every arena
// reserves, so the zero value never names a scope.
type ScopeID uint32

// NoScopeID is returned for a missing enclosing scope or member scope.
const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// String renders the id as validation errors and trace events print it.
func (id ScopeID) String() string { return tagged("scope", uint32(id)) }

// SymbolID indexes Table.Symbols. Every overload, unit import and implicit
// Result variable gets its own slot.
type SymbolID uint32

// NoSymbolID is the binding of an unresolved occurrence.
const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

func (id SymbolID) String() string { return tagged("sym", uint32(id)) }

func tagged(kind string, n uint32) string {
	if n == 0 {
		return kind + "#none"
	}
	return kind + "#" + strconv.FormatUint(uint64(n), 10)
}
