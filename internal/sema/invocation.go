package sema

import (
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// InvocationResolver ranks invocation candidates against an argument list.
type InvocationResolver struct {
	table  *symbols.Table
	types  *types.Interner
	cmp    *Comparer
	bounds *BoundsChecker
}

// NewInvocationResolver wires the comparer and the literal bounds checker.
func NewInvocationResolver(table *symbols.Table, cmp *Comparer, bounds *BoundsChecker) *InvocationResolver {
	return &InvocationResolver{table: table, types: table.Types, cmp: cmp, bounds: bounds}
}

// Evaluate fills the counters of c for args.
func (r *InvocationResolver) Evaluate(c *Candidate, args []Argument) {
	c.reset()
	if c.VarArgs {
		return
	}
	if len(args) > len(c.Params) {
		c.Valid = false
		return
	}
	for i, arg := range args {
		param := c.Params[i]
		level := r.cmp.Compare(arg.Type, param.Type)
		if r.bounds != nil {
			level = r.bounds.adjust(level, arg.Expr, param.Type)
		}
		if param.Mode.ByReference() && level < Equal && r.types.Kind(param.Type) != types.KindUntyped {
			c.Valid = false
			return
		}
		c.record(level)
		if !c.Valid {
			return
		}
		c.Distance += ordinalDistance(r.types, arg.Type, param.Type)
	}
}

// ChooseBest evaluates cands and returns the survivors of the ranking. One
// survivor is a resolved call, none means no overload matched, several are
// an ambiguity. fromUnit is the unit of the call site.
func (r *InvocationResolver) ChooseBest(cands []*Candidate, args []Argument, fromUnit symbols.SymbolID) []*Candidate {
	live := make([]*Candidate, 0, len(cands))
	for _, c := range cands {
		r.Evaluate(c, args)
		if c.Valid {
			live = append(live, c)
		}
	}
	if len(live) <= 1 {
		return live
	}

	live = keepBest(live, func(c *Candidate) float64 { return float64(c.Operator) })
	for level := 6; level >= 1 && len(live) > 1; level-- {
		live = keepBest(live, func(c *Candidate) float64 { return float64(c.Convert[level]) })
	}
	live = keepBest(live, func(c *Candidate) float64 { return -float64(c.Exact) })
	live = keepBest(live, func(c *Candidate) float64 { return float64(c.Equal) })
	live = keepBest(live, func(c *Candidate) float64 { return c.Distance })

	if len(live) == 2 && live[0].Inferred != live[1].Inferred {
		if live[0].Inferred {
			live = live[1:]
		} else {
			live = live[:1]
		}
	}
	if len(live) > 1 && len(args) == 1 && r.types.Kind(args[0].Type) == types.KindVariant {
		live = keepBest(live, func(c *Candidate) float64 {
			if len(c.Params) == 0 {
				return 0
			}
			return -float64(r.cmp.variantClassOf(c.Params[0].Type))
		})
	}
	if len(live) > 1 {
		live = r.closest(live, fromUnit)
	}
	return live
}

// keepBest keeps the candidates with the lowest key, preserving order.
func keepBest(cs []*Candidate, key func(*Candidate) float64) []*Candidate {
	if len(cs) <= 1 {
		return cs
	}
	best := key(cs[0])
	for _, c := range cs[1:] {
		if k := key(c); k < best {
			best = k
		}
	}
	out := cs[:0:0]
	for _, c := range cs {
		if key(c) == best {
			out = append(out, c)
		}
	}
	return out
}

// closest prefers candidates declared in the calling unit, then those of the
// most derived declaring type.
func (r *InvocationResolver) closest(cs []*Candidate, fromUnit symbols.SymbolID) []*Candidate {
	same := make([]*Candidate, 0, len(cs))
	for _, c := range cs {
		if sym := r.table.Symbol(c.Symbol); sym != nil && sym.Unit == fromUnit {
			same = append(same, c)
		}
	}
	if len(same) > 0 && len(same) < len(cs) {
		cs = same
	}
	if len(cs) <= 1 {
		return cs
	}
	out := make([]*Candidate, 0, len(cs))
	for _, c := range cs {
		owner := r.owner(c)
		shadowed := false
		for _, d := range cs {
			if d != c && r.moreDerived(r.owner(d), owner) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, c)
		}
	}
	return out
}

func (r *InvocationResolver) owner(c *Candidate) types.TypeID {
	if sym := r.table.Symbol(c.Symbol); sym != nil {
		return r.types.Origin(sym.Owner)
	}
	return types.NoTypeID
}

// moreDerived reports whether a descends from b, directly or by extending it
// as a helper.
func (r *InvocationResolver) moreDerived(a, b types.TypeID) bool {
	if !a.IsValid() || !b.IsValid() || a == b {
		return false
	}
	if r.types.IsSubtype(a, b) {
		return true
	}
	return r.types.Extends(a, b)
}
