package sema

import (
	"strings"

	"pasres/internal/ast"
	"pasres/internal/symbols"
)

// unitPrefix matches the longest leading fragments of parts against a unit
// reachable from the current file. The prefix is committed as one occurrence
// bound to the unit; k is the number of fragments consumed.
func (r *resolver) unitPrefix(id ast.ExprID, parts []ast.NameRef) (int, symbols.ScopeID) {
	for k := len(parts) - 1; k >= 1; k-- {
		names := make([]string, 0, k)
		for _, p := range parts[:k] {
			names = append(names, r.name(p.Name))
		}
		prefix := strings.Join(names, ".")
		for _, candidate := range r.unitCandidates(prefix) {
			unit := r.table.Unit(candidate)
			if !unit.IsValid() || !r.reachable(unit) {
				continue
			}
			occ := Occurrence{
				Name: r.strings.Intern(prefix),
				Span: parts[0].Span.Cover(parts[k-1].Span),
				Expr: id,
			}
			r.commit(occ, unit, nil)
			return k, r.table.UnitScope(unit)
		}
	}
	return 0, symbols.NoScopeID
}

// unitCandidates lists the unit names prefix may stand for: itself, an alias
// target and the prefix under every configured namespace.
func (r *resolver) unitCandidates(prefix string) []string {
	out := []string{prefix}
	if target, ok := r.aliases[r.strings.FoldString(prefix)]; ok {
		out = append(out, target)
	}
	for _, ns := range r.scopeNames {
		out = append(out, ns+"."+prefix)
	}
	return out
}

// reachable reports whether unit is the current unit, System or imported by
// the current unit.
func (r *resolver) reachable(unit symbols.SymbolID) bool {
	if unit == r.unit || unit == r.table.System() {
		return true
	}
	sc := r.table.Scope(r.table.UnitScope(r.unit))
	if sc == nil {
		return false
	}
	for _, imp := range sc.Imports {
		if sym := r.table.Symbol(imp); sym != nil && sym.Import != nil && sym.Import.Target == unit {
			return true
		}
	}
	return false
}
