package sema

import (
	"pasres/internal/ast"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// Occurrence is one use of an identifier. Committed occurrences are bound to
// exactly one symbol and never rebound.
type Occurrence struct {
	Name source.StringID
	Span source.Span
	// Expr is the expression the occurrence belongs to.
	Expr ast.ExprID
	// Explicit is set when an argument list follows the name.
	Explicit     bool
	GenericArity int
	// Implicit marks synthesized occurrences: default array properties,
	// bare `inherited`, operator overloads.
	Implicit bool
	Symbol   symbols.SymbolID
	TypeArgs []types.TypeID
}

// entry is one declaration of an open candidate set together with its
// specialization.
type entry struct {
	sym      symbols.SymbolID
	typ      types.TypeID // specialized type of a generic type symbol
	typeArgs []types.TypeID
	subst    types.Subst // routine type parameters -> explicit arguments
}

func entrySymbols(set []entry) []symbols.SymbolID {
	out := make([]symbols.SymbolID, 0, len(set))
	for _, e := range set {
		out = append(out, e.sym)
	}
	return out
}

func candidateSymbols(cs []*Candidate) []symbols.SymbolID {
	out := make([]symbols.SymbolID, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Symbol)
	}
	return out
}

// commit binds occ to sym, records it in the result and appends it to the
// registry of sym's unit.
func (r *resolver) commit(occ Occurrence, sym symbols.SymbolID, typeArgs []types.TypeID) {
	occ.Symbol = sym
	occ.TypeArgs = typeArgs
	r.result.Occurrences = append(r.result.Occurrences, occ)
	if occ.Expr.IsValid() {
		r.result.Bindings[occ.Expr] = sym
	}
	if reg := r.table.Registry(sym); reg != nil {
		reg.Add(symbols.Usage{Symbol: sym, Span: occ.Span, Implicit: occ.Implicit})
	}
}
