package sema

import (
	"slices"

	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// maxAncestors caps super-type walks; cycles are rejected by table validation.
const maxAncestors = 64

// Searcher performs case-insensitive scope-chain lookups. The nearest level
// holding any match wins; levels are never merged, except overloaded
// routines collected up the super-type chain.
type Searcher struct {
	table   *symbols.Table
	types   *types.Interner
	strings *source.Interner
}

// NewSearcher creates a searcher over table.
func NewSearcher(table *symbols.Table) *Searcher {
	return &Searcher{table: table, types: table.Types, strings: table.Strings}
}

// Search looks name up. Without a current type it walks the lexical scope
// chain from start; with one it searches the members of currentType as seen
// from start.
func (s *Searcher) Search(name source.StringID, start symbols.ScopeID, currentType types.TypeID) []symbols.SymbolID {
	folded := s.strings.Fold(name)
	if currentType.IsValid() {
		return s.members(folded, currentType, start, 0)
	}
	return s.lexical(folded, start)
}

// InUnit searches the exported declarations of a unit scope. Declarations of
// the implementation section are visible only from inside the unit.
func (s *Searcher) InUnit(name source.StringID, unitScope symbols.ScopeID, fromUnit symbols.SymbolID) []symbols.SymbolID {
	folded := s.strings.Fold(name)
	if s.table.ScopeUnit(unitScope) == fromUnit {
		return slices.Clone(s.table.Scope(unitScope).Local(folded))
	}
	return s.exported(folded, unitScope)
}

func (s *Searcher) lexical(folded source.StringID, start symbols.ScopeID) []symbols.SymbolID {
	for id := start; id.IsValid(); {
		sc := s.table.Scope(id)
		if sc == nil {
			return nil
		}
		if found := sc.Local(folded); len(found) > 0 {
			return slices.Clone(found)
		}
		switch sc.Kind {
		case symbols.ScopeType:
			if found := s.memberChain(folded, s.types.Super(sc.Type)); len(found) > 0 {
				return found
			}
		case symbols.ScopeRoutine:
			if owner := s.routineOwner(sc); owner.IsValid() {
				if found := s.ownMembers(folded, owner, id); len(found) > 0 {
					return found
				}
			}
		case symbols.ScopeUnit:
			return s.unitLevels(folded, sc, id)
		}
		id = sc.Parent
	}
	return nil
}

func (s *Searcher) routineOwner(sc *symbols.Scope) types.TypeID {
	if sym := s.table.Symbol(sc.Routine); sym != nil {
		return sym.Owner
	}
	return types.NoTypeID
}

// ownMembers searches the members visible inside a method of owner. Inside
// a helper method these are the helper's own members, then the extended
// type's, then the helper's ancestors.
func (s *Searcher) ownMembers(folded source.StringID, owner types.TypeID, from symbols.ScopeID) []symbols.SymbolID {
	if extended := s.types.Extended(owner); extended.IsValid() {
		return s.helperOrder(folded, owner, extended)
	}
	return s.members(folded, owner, from, 0)
}

// unitLevels searches the imports of a unit, latest first, then System.
func (s *Searcher) unitLevels(folded source.StringID, sc *symbols.Scope, self symbols.ScopeID) []symbols.SymbolID {
	sysScope := s.table.UnitScope(s.table.System())
	for i := len(sc.Imports) - 1; i >= 0; i-- {
		imp := s.table.Symbol(sc.Imports[i])
		if imp == nil || imp.Import == nil {
			continue
		}
		if found := s.exported(folded, imp.Import.Scope); len(found) > 0 {
			return found
		}
	}
	if sysScope.IsValid() && sysScope != self {
		return s.exported(folded, sysScope)
	}
	return nil
}

func (s *Searcher) exported(folded source.StringID, unitScope symbols.ScopeID) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, id := range s.table.Scope(unitScope).Local(folded) {
		sym := s.table.Symbol(id)
		if sym == nil || sym.Flags&symbols.SymbolFlagImplementation != 0 || sym.Kind == symbols.SymbolUnitImport {
			continue
		}
		out = append(out, id)
	}
	return out
}

// members searches the member scope of typ as seen from scope from.
func (s *Searcher) members(folded source.StringID, typ types.TypeID, from symbols.ScopeID, depth int) []symbols.SymbolID {
	if depth > maxAncestors {
		return nil
	}
	tt, ok := s.types.Lookup(typ)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case types.KindTypeParam:
		info, _ := s.types.TypeParamInfo(typ)
		for _, constraint := range info.Constraints {
			if found := s.members(folded, constraint, from, depth+1); len(found) > 0 {
				return found
			}
		}
		return nil
	case types.KindClassRef:
		return s.members(folded, tt.Elem, from, depth+1)
	}
	if sc := s.table.Scope(from); sc == nil || sc.Kind != symbols.ScopeType {
		if helper := s.table.HelperFor(typ, from); helper.IsValid() && helper != typ {
			return s.helperOrder(folded, helper, typ)
		}
	}
	return s.memberChain(folded, typ)
}

// helperOrder searches the helper scope, the extended type's members and
// then the helper's ancestors.
func (s *Searcher) helperOrder(folded source.StringID, helper, typ types.TypeID) []symbols.SymbolID {
	if found := s.local(folded, helper); len(found) > 0 {
		return found
	}
	if found := s.memberChain(folded, typ); len(found) > 0 {
		return found
	}
	return s.memberChain(folded, s.types.Super(helper))
}

// memberChain walks typ and its ancestors. The nearest type declaring the
// name wins unless every match there is an overload, in which case
// collection continues upwards.
func (s *Searcher) memberChain(folded source.StringID, typ types.TypeID) []symbols.SymbolID {
	var out []symbols.SymbolID
	for cur, n := typ, 0; cur.IsValid() && n < maxAncestors; cur, n = s.types.Super(cur), n+1 {
		found := s.local(folded, cur)
		if len(found) == 0 {
			continue
		}
		out = append(out, found...)
		if !s.allOverloads(found) {
			break
		}
	}
	return out
}

func (s *Searcher) local(folded source.StringID, typ types.TypeID) []symbols.SymbolID {
	return slices.Clone(s.table.Scope(s.table.Members(typ)).Local(folded))
}

func (s *Searcher) allOverloads(ids []symbols.SymbolID) bool {
	for _, id := range ids {
		sym := s.table.Symbol(id)
		if sym == nil || sym.Routine == nil || !sym.Routine.Has(symbols.DirOverload) {
			return false
		}
	}
	return true
}
