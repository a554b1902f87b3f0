package sema

import (
	"pasres/internal/ast"
	"pasres/internal/diag"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// chain is the state of a name being folded fragment by fragment. An open
// chain still holds several declarations for its last fragment; settling it
// commits exactly one.
type chain struct {
	typ types.TypeID // type of the settled prefix
	ctx types.TypeID // type the open set was looked up in
	// unitScope is set after a unit prefix: the next fragment is searched
	// among the unit's declarations.
	unitScope symbols.ScopeID
	set       []entry
	occ       Occurrence
	bound     symbols.SymbolID // last committed declaration
	open      bool
	dead      bool
}

// nameChain resolves the fragments of a dotted name. The last fragment is
// left open so that a following call or index can pick among overloads.
func (r *resolver) nameChain(id ast.ExprID, parts []ast.NameRef, callFollows bool) *chain {
	c := &chain{}
	start := 0
	if len(parts) > 1 && len(r.search.Search(parts[0].Name, r.scope, types.NoTypeID)) == 0 {
		if k, scope := r.unitPrefix(id, parts); k > 0 {
			start = k
			c.unitScope = scope
			c.typ = r.b.Void
		}
	}
	for i := start; i < len(parts); i++ {
		last := i == len(parts)-1
		r.fragment(c, parts[i], id, i == 0, last && callFollows)
		if c.dead || r.failed() {
			break
		}
		if !last {
			r.settle(c)
		}
	}
	return c
}

// fragment looks one name up and narrows the declarations found.
func (r *resolver) fragment(c *chain, ref ast.NameRef, id ast.ExprID, first, callFollows bool) {
	occ := Occurrence{
		Name:         ref.Name,
		Span:         ref.Span,
		Expr:         id,
		Explicit:     callFollows,
		GenericArity: len(ref.TypeArgs),
	}
	typeArgs := r.typeArgs(ref.TypeArgs)

	var ids []symbols.SymbolID
	ctx := types.NoTypeID
	switch {
	case c.unitScope.IsValid():
		ids = r.search.InUnit(ref.Name, c.unitScope, r.unit)
	case first:
		ids = r.search.Search(ref.Name, r.scope, types.NoTypeID)
	default:
		ctx = r.scopedType(c.typ)
		if r.types.IsUnknown(ctx) {
			c.dead, c.typ = true, r.b.Unknown
			return
		}
		ids = r.search.Search(ref.Name, r.scope, ctx)
	}
	c.unitScope = symbols.NoScopeID
	if len(ids) == 0 {
		r.warn(diag.ResUnresolvedName, ref.Span, "undeclared identifier '%s'", r.name(ref.Name))
		c.dead, c.open, c.typ = true, false, r.b.Unknown
		return
	}

	set := make([]entry, 0, len(ids))
	for _, sid := range ids {
		set = append(set, entry{sym: sid})
	}
	if len(typeArgs) > 0 {
		set = r.specializeSet(set, typeArgs, &occ)
	} else {
		set = r.dropGenerics(set, callFollows)
	}
	if callFollows {
		set = r.preferCallable(set)
	}
	set = r.filterVisible(set, &occ)
	c.set, c.occ, c.ctx, c.open = set, occ, ctx, true
}

// typeArgs resolves explicit generic arguments to the types they denote.
func (r *resolver) typeArgs(exprs []ast.ExprID) []types.TypeID {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]types.TypeID, 0, len(exprs))
	for _, e := range exprs {
		r.expr(e)
		t, ok := r.denotes[e]
		if !ok {
			if ex := r.tree.Exprs.Get(e); ex != nil {
				r.warn(diag.ResTypeExpected, ex.Span, "type identifier expected")
			}
			t = r.b.Unknown
		}
		out = append(out, t)
	}
	return out
}

// specializeSet keeps the generic declarations whose type parameter count
// matches args and binds them.
func (r *resolver) specializeSet(set []entry, args []types.TypeID, occ *Occurrence) []entry {
	out := make([]entry, 0, len(set))
	for _, e := range set {
		sym := r.table.Symbol(e.sym)
		if sym == nil {
			continue
		}
		switch {
		case sym.Kind == symbols.SymbolType:
			info, ok := r.types.StructInfo(sym.Type)
			if !ok || len(info.TypeParams) != len(args) {
				continue
			}
			spec, err := r.types.Specialize(sym.Type, args)
			if err != nil {
				continue
			}
			out = append(out, entry{sym: e.sym, typ: spec, typeArgs: args})
		case sym.Generic() && len(sym.Routine.TypeParams) == len(args):
			out = append(out, entry{sym: e.sym, typeArgs: args, subst: r.routineSubst(sym, args)})
		}
	}
	if len(out) == 0 {
		r.warn(diag.ResGenericArity, occ.Span, "wrong number of type arguments for '%s'", r.name(occ.Name))
		return set
	}
	return out
}

func (r *resolver) routineSubst(sym *symbols.Symbol, args []types.TypeID) types.Subst {
	subst := make(types.Subst, len(args))
	for i, tp := range sym.Routine.TypeParams {
		if i >= len(args) {
			break
		}
		if ts := r.table.Symbol(tp); ts != nil {
			subst[ts.Type] = args[i]
		}
	}
	return subst
}

func (r *resolver) isGeneric(e entry) bool {
	sym := r.table.Symbol(e.sym)
	if sym == nil {
		return false
	}
	if sym.Generic() {
		return true
	}
	if sym.Kind == symbols.SymbolType && !e.typ.IsValid() {
		info, ok := r.types.StructInfo(sym.Type)
		return ok && len(info.TypeParams) > 0
	}
	return false
}

// dropGenerics removes generic declarations used without type arguments.
// Generic routines stay when a call follows: their arguments may be inferred.
func (r *resolver) dropGenerics(set []entry, callFollows bool) []entry {
	keep := make([]entry, 0, len(set))
	for _, e := range set {
		if r.isGeneric(e) {
			if sym := r.table.Symbol(e.sym); !callFollows || sym.Routine == nil {
				continue
			}
		}
		keep = append(keep, e)
	}
	if len(keep) == 0 {
		return set
	}
	return keep
}

// preferCallable drops declarations that cannot be followed by an argument
// list, unless nothing would remain.
func (r *resolver) preferCallable(set []entry) []entry {
	keep := make([]entry, 0, len(set))
	for _, e := range set {
		if r.callable(r.table.Symbol(e.sym)) {
			keep = append(keep, e)
		}
	}
	if len(keep) == 0 {
		return set
	}
	return keep
}

func (r *resolver) callable(sym *symbols.Symbol) bool {
	if sym == nil {
		return false
	}
	if sym.Invocable() {
		return true
	}
	switch sym.Kind {
	case symbols.SymbolType, symbols.SymbolTypeParameter:
		return true
	}
	if !sym.Typed() {
		return false
	}
	switch r.types.Kind(r.types.Underlying(sym.Type)) {
	case types.KindProcedural, types.KindClassRef:
		return true
	}
	return false
}

// settle commits the open set of c as an implicit zero-argument use.
func (r *resolver) settle(c *chain) types.TypeID {
	if !c.open {
		return c.typ
	}
	c.open = false
	if len(c.set) == 1 {
		c.typ = r.bind(c, c.set[0], nil)
		return c.typ
	}
	var rest []entry
	for _, e := range c.set {
		if !r.table.Symbol(e.sym).Invocable() {
			rest = append(rest, e)
		}
	}
	switch {
	case len(rest) == len(c.set):
		r.ambiguous(c.occ, entrySymbols(c.set), diag.ResAmbiguousName)
		c.typ, c.dead = r.b.Unknown, true
	case len(rest) == 0:
		c.typ = r.callSet(c, nil)
	default:
		c.typ = r.implicitCall(c, rest)
	}
	return c.typ
}

// implicitCall settles a set mixing routines with other declarations, such
// as an ancestor property next to an overloaded method. Only the routines
// are ranked for an empty argument list; a lone other declaration is the
// fallback when none of them accepts zero arguments.
func (r *resolver) implicitCall(c *chain, rest []entry) types.TypeID {
	cands, entries := r.candidates(c, nil)
	best := r.calls.ChooseBest(cands, nil, r.unit)
	switch {
	case len(best) == 1:
		return r.bind(c, entries[best[0]], best[0])
	case len(best) > 1:
		r.ambiguous(c.occ, candidateSymbols(best), diag.ResAmbiguousOverload)
	case len(rest) == 1:
		return r.bind(c, rest[0], nil)
	default:
		r.ambiguous(c.occ, entrySymbols(rest), diag.ResAmbiguousName)
	}
	c.dead = true
	return r.b.Unknown
}

// bind commits the occurrence of c to e and derives the type the fragment
// produces. cand carries the specialized signature of a chosen overload.
func (r *resolver) bind(c *chain, e entry, cand *Candidate) types.TypeID {
	sym := r.table.Symbol(e.sym)
	typeArgs := e.typeArgs
	if cand != nil && cand.TypeArgs != nil {
		typeArgs = cand.TypeArgs
	}
	r.commit(c.occ, e.sym, typeArgs)
	c.bound = e.sym
	c.open = false
	delete(r.denotes, c.occ.Expr)
	if sym == nil {
		return r.b.Unknown
	}
	msubst := r.memberSubst(c.ctx)

	switch sym.Kind {
	case symbols.SymbolUnitImport:
		if sym.Import != nil {
			c.unitScope = sym.Import.Scope
		}
		return r.b.Void
	case symbols.SymbolUnit:
		c.unitScope = sym.Members
		return r.b.Void
	case symbols.SymbolType:
		t := sym.Type
		if e.typ.IsValid() {
			t = e.typ
		}
		r.denotes[c.occ.Expr] = t
		if r.isClass(t) {
			return r.types.Intern(types.MakeClassRef(t))
		}
		return t
	case symbols.SymbolTypeParameter:
		r.denotes[c.occ.Expr] = sym.Type
		return r.types.Intern(types.MakeClassRef(sym.Type))
	case symbols.SymbolRoutine:
		if sym.Routine != nil && sym.Routine.Kind == symbols.RoutineConstructor {
			return r.constructed(c.ctx, sym)
		}
		if cand != nil {
			return cand.Result
		}
		return r.types.Substitute(r.types.Substitute(sym.Type, e.subst), msubst)
	default:
		if cand != nil && cand.Result.IsValid() {
			return cand.Result
		}
		return r.types.Substitute(sym.Type, msubst)
	}
}

func (r *resolver) isClass(t types.TypeID) bool {
	info, ok := r.types.StructInfo(t)
	return ok && info.Kind == types.StructClass
}

// constructed is the instance type a constructor call produces.
func (r *resolver) constructed(ctx types.TypeID, sym *symbols.Symbol) types.TypeID {
	if tt, ok := r.types.Lookup(ctx); ok {
		switch tt.Kind {
		case types.KindClassRef:
			return tt.Elem
		case types.KindStruct:
			return ctx
		}
	}
	if sym.Owner.IsValid() {
		return sym.Owner
	}
	return r.b.Unknown
}

// memberSubst collects the type arguments of ctx and its specialized
// ancestors.
func (r *resolver) memberSubst(ctx types.TypeID) types.Subst {
	if !ctx.IsValid() {
		return nil
	}
	if tt, ok := r.types.Lookup(ctx); ok && tt.Kind == types.KindClassRef {
		ctx = tt.Elem
	}
	var out types.Subst
	for cur, n := ctx, 0; cur.IsValid() && n < maxAncestors; cur, n = r.types.Super(cur), n+1 {
		for k, v := range r.types.SubstOf(cur) {
			if out == nil {
				out = make(types.Subst)
			}
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

// scopedType unwraps the layers that member access looks through:
// procedural results, pointers to structs and, unless a helper extends the
// collection itself, arrays and sets down to their element.
func (r *resolver) scopedType(t types.TypeID) types.TypeID {
	for range 4 {
		tt, ok := r.types.Lookup(t)
		if !ok {
			return r.b.Unknown
		}
		switch tt.Kind {
		case types.KindProcedural:
			info, ok := r.types.ProcInfo(t)
			if !ok || !info.Result.IsValid() {
				return t
			}
			t = info.Result
		case types.KindPointer:
			if !tt.Elem.IsValid() || r.types.Kind(tt.Elem) != types.KindStruct {
				return t
			}
			t = tt.Elem
		case types.KindArray, types.KindSet:
			if !tt.Elem.IsValid() || r.table.HelperFor(t, r.scope).IsValid() {
				return t
			}
			t = tt.Elem
		default:
			return t
		}
	}
	return t
}
