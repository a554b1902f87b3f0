package sema

import (
	"pasres/internal/diag"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// visible reports whether sym may be referenced from scope from.
func (r *resolver) visible(sym *symbols.Symbol, from symbols.ScopeID) bool {
	fromUnit := r.table.ScopeUnit(from)
	if sym.Flags&symbols.SymbolFlagImplementation != 0 && sym.Unit != fromUnit {
		return false
	}
	if !sym.Owner.IsValid() {
		return true
	}
	owner := r.types.Origin(sym.Owner)
	enclosing := r.types.Origin(r.table.EnclosingType(from))
	sameUnit := sym.Unit == fromUnit
	switch sym.Visibility {
	case symbols.VisStrictPrivate:
		return enclosing == owner
	case symbols.VisPrivate:
		return sameUnit || enclosing == owner
	case symbols.VisStrictProtected:
		return r.descends(enclosing, owner)
	case symbols.VisProtected:
		return sameUnit || r.descends(enclosing, owner)
	default:
		return true
	}
}

// descends reports whether code inside enclosing sees protected members of
// owner: enclosing is owner, one of its subtypes or a helper of one.
func (r *resolver) descends(enclosing, owner types.TypeID) bool {
	if !enclosing.IsValid() {
		return false
	}
	if r.types.IsSubtype(enclosing, owner) {
		return true
	}
	if extended := r.types.Extended(enclosing); extended.IsValid() {
		return r.types.IsSubtype(r.types.Origin(extended), owner)
	}
	return false
}

// filterVisible drops invisible declarations. When nothing would remain the
// set is kept and the occurrence reported.
func (r *resolver) filterVisible(set []entry, occ *Occurrence) []entry {
	out := make([]entry, 0, len(set))
	for _, e := range set {
		if sym := r.table.Symbol(e.sym); sym != nil && r.visible(sym, r.scope) {
			out = append(out, e)
		}
	}
	if len(out) == 0 && len(set) > 0 {
		r.warn(diag.ResNotVisible, occ.Span, "'%s' is not visible here", r.name(occ.Name))
		return set
	}
	return out
}
