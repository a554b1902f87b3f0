package symbols

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/source"
	"pasres/internal/types"
)

// ErrAlreadyComplete is returned when a forward type parameter is completed twice.
var ErrAlreadyComplete = errors.New("type parameter already complete")

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources. It is built
// once and read concurrently afterwards; only the registries mutate.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	Types   *types.Interner

	units       map[source.StringID]SymbolID // folded unit name
	unitOrder   []SymbolID
	typeSymbols map[types.TypeID]SymbolID
	members     map[types.TypeID]ScopeID
	registries  map[SymbolID]*Registry
	system      SymbolID
	operators   ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings or typesIn is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner, typesIn *types.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	if typesIn == nil {
		typesIn = types.NewInterner(strings)
	}
	return &Table{
		Scopes:      NewScopes(scopeCap),
		Symbols:     NewSymbols(symCap),
		Strings:     strings,
		Types:       typesIn,
		units:       make(map[source.StringID]SymbolID),
		typeSymbols: make(map[types.TypeID]SymbolID),
		members:     make(map[types.TypeID]ScopeID),
		registries:  make(map[SymbolID]*Registry),
	}
}

// Symbol is a shorthand for Symbols.Get.
func (t *Table) Symbol(id SymbolID) *Symbol { return t.Symbols.Get(id) }

// Scope is a shorthand for Scopes.Get.
func (t *Table) Scope(id ScopeID) *Scope { return t.Scopes.Get(id) }

// Name returns the spelled name of a symbol.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "?"
	}
	name, ok := t.Strings.Lookup(sym.Name)
	if !ok {
		return "?"
	}
	return name
}

// Unit finds a unit by (case-insensitive) full name.
func (t *Table) Unit(name string) SymbolID {
	return t.units[t.Strings.FoldString(name)]
}

// Units lists units in creation order.
func (t *Table) Units() []SymbolID {
	return slices.Clone(t.unitOrder)
}

// System returns the System unit symbol, if installed.
func (t *Table) System() SymbolID { return t.system }

// Operators returns the scope holding the predefined operator signatures.
// Name lookup never reaches it; only operator typing consults it.
func (t *Table) Operators() ScopeID { return t.operators }

// UnitScope returns the top scope of a unit symbol.
func (t *Table) UnitScope(unit SymbolID) ScopeID {
	if sym := t.Symbols.Get(unit); sym != nil && sym.Kind == SymbolUnit {
		return sym.Members
	}
	return NoScopeID
}

// TypeSymbol returns the Type symbol declaring a nominal type; specializations
// map to their generic definition.
func (t *Table) TypeSymbol(typ types.TypeID) SymbolID {
	if id, ok := t.typeSymbols[typ]; ok {
		return id
	}
	return t.typeSymbols[t.Types.Origin(typ)]
}

// Members returns the member scope of a struct type.
func (t *Table) Members(typ types.TypeID) ScopeID {
	if id, ok := t.members[typ]; ok {
		return id
	}
	return t.members[t.Types.Origin(typ)]
}

// ScopeUnit returns the unit a scope belongs to.
func (t *Table) ScopeUnit(id ScopeID) SymbolID {
	if s := t.Scopes.Get(id); s != nil {
		return s.Unit
	}
	return NoSymbolID
}

// EnclosingType walks up from scope to the nearest type scope and returns its type.
func (t *Table) EnclosingType(id ScopeID) types.TypeID {
	for id.IsValid() {
		s := t.Scopes.Get(id)
		if s == nil {
			break
		}
		switch s.Kind {
		case ScopeType:
			return s.Type
		case ScopeRoutine:
			if r := t.Symbols.Get(s.Routine); r != nil && r.Owner.IsValid() {
				return r.Owner
			}
		}
		id = s.Parent
	}
	return types.NoTypeID
}

// EnclosingRoutine returns the routine symbol of the innermost routine scope.
func (t *Table) EnclosingRoutine(id ScopeID) SymbolID {
	for id.IsValid() {
		s := t.Scopes.Get(id)
		if s == nil {
			break
		}
		if s.Kind == ScopeRoutine {
			return s.Routine
		}
		id = s.Parent
	}
	return NoSymbolID
}

// HelperFor returns the helper applying to typ as seen from scope: helpers of
// the scope's own unit first (latest declaration wins), then those of its
// imports, latest import first.
func (t *Table) HelperFor(typ types.TypeID, from ScopeID) types.TypeID {
	if !typ.IsValid() {
		return types.NoTypeID
	}
	unit := t.Scopes.Get(t.UnitScope(t.ScopeUnit(from)))
	if unit == nil {
		return types.NoTypeID
	}
	if h := t.pickHelper(unit.Helpers, typ); h.IsValid() {
		return h
	}
	for i := len(unit.Imports) - 1; i >= 0; i-- {
		imp := t.Symbols.Get(unit.Imports[i])
		if imp == nil || imp.Import == nil {
			continue
		}
		if s := t.Scopes.Get(imp.Import.Scope); s != nil {
			if h := t.pickHelper(s.Helpers, typ); h.IsValid() {
				return h
			}
		}
	}
	return types.NoTypeID
}

func (t *Table) pickHelper(helpers []types.TypeID, typ types.TypeID) types.TypeID {
	for i := len(helpers) - 1; i >= 0; i-- {
		if t.Types.Extends(helpers[i], typ) {
			return helpers[i]
		}
	}
	return types.NoTypeID
}

// Registry returns the occurrence registry of the unit declaring sym.
func (t *Table) Registry(sym SymbolID) *Registry {
	s := t.Symbols.Get(sym)
	if s == nil {
		return nil
	}
	unit := s.Unit
	if s.Kind == SymbolUnit {
		unit = sym
	}
	return t.registries[unit]
}

// CompleteTypeParameter attaches constraints to a forward type parameter.
// A parameter completes exactly once.
func (t *Table) CompleteTypeParameter(id SymbolID, constraints []types.TypeID) error {
	sym := t.Symbols.Get(id)
	if sym == nil || sym.Kind != SymbolTypeParameter || sym.TypeParam == nil {
		return fmt.Errorf("symbol %d is not a type parameter", id)
	}
	if sym.TypeParam.Complete {
		return fmt.Errorf("%s: %w", t.Name(id), ErrAlreadyComplete)
	}
	t.Types.SetConstraints(sym.Type, constraints)
	sym.TypeParam.Complete = true
	sym.Flags &^= SymbolFlagForward
	return nil
}

func (t *Table) addUnit(id SymbolID, name source.StringID) {
	t.units[t.Strings.Fold(name)] = id
	t.unitOrder = append(t.unitOrder, id)
	t.registries[id] = &Registry{}
}

type tableSnapshot struct {
	Scopes      *Scopes
	Symbols     *Symbols
	Units       []SymbolID
	TypeSymbols map[types.TypeID]SymbolID
	Members     map[types.TypeID]ScopeID
	System      SymbolID
	Operators   ScopeID
}

// EncodeMsgpack writes arenas and indexes. Strings and types are encoded by
// their owners.
func (t *Table) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(tableSnapshot{
		Scopes:      t.Scopes,
		Symbols:     t.Symbols,
		Units:       t.unitOrder,
		TypeSymbols: t.typeSymbols,
		Members:     t.members,
		System:      t.system,
		Operators:   t.operators,
	})
}

// DecodeMsgpack restores the arenas. Call Attach before use.
func (t *Table) DecodeMsgpack(dec *msgpack.Decoder) error {
	snap := tableSnapshot{Scopes: NewScopes(0), Symbols: NewSymbols(0)}
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("decode symbol table: %w", err)
	}
	t.Scopes = snap.Scopes
	t.Symbols = snap.Symbols
	t.unitOrder = snap.Units
	t.typeSymbols = snap.TypeSymbols
	t.members = snap.Members
	t.system = snap.System
	t.operators = snap.Operators
	if t.typeSymbols == nil {
		t.typeSymbols = make(map[types.TypeID]SymbolID)
	}
	if t.members == nil {
		t.members = make(map[types.TypeID]ScopeID)
	}
	return nil
}

// Attach pairs a decoded table with its interners and rebuilds unit indexes.
func (t *Table) Attach(strs *source.Interner, typesIn *types.Interner) {
	t.Strings = strs
	t.Types = typesIn
	order := t.unitOrder
	t.unitOrder = nil
	t.units = make(map[source.StringID]SymbolID, len(order))
	t.registries = make(map[SymbolID]*Registry, len(order))
	for _, id := range order {
		if sym := t.Symbols.Get(id); sym != nil {
			t.addUnit(id, sym.Name)
		}
	}
}
