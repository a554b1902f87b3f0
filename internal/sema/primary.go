package sema

import (
	"fmt"

	"pasres/internal/ast"
	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/trace"
	"pasres/internal/types"
)

// primary folds a head expression and its call, index, member and deref
// parts from left to right.
func (r *resolver) primary(id ast.ExprID) types.TypeID {
	data, ok := r.tree.Exprs.Primary(id)
	if !ok {
		return r.record(id, r.b.Unknown)
	}
	callFollows := len(data.Parts) > 0 && data.Parts[0].Kind == ast.PartCall
	c := r.head(data.Head, callFollows)

	for i, part := range data.Parts {
		if r.failed() {
			return r.record(id, r.b.Unknown)
		}
		args := r.arguments(part.Args)
		if c.dead {
			continue
		}
		switch part.Kind {
		case ast.PartCall:
			if c.open {
				c.typ = r.callSet(c, args)
			} else {
				c.typ = r.callValue(c.typ, args, part.Span)
			}
		case ast.PartIndex:
			r.index(c, args, part, id)
		case ast.PartMember:
			r.settle(c)
			if c.dead {
				continue
			}
			next := i+1 < len(data.Parts) && data.Parts[i+1].Kind == ast.PartCall
			r.fragment(c, part.Name, id, false, next)
		case ast.PartDeref:
			c.typ = r.deref(r.settle(c), part.Span)
		}
	}
	if c.dead {
		return r.record(id, r.b.Unknown)
	}
	t := r.settle(c)
	if c.bound.IsValid() {
		r.result.Bindings[id] = c.bound
	}
	return r.record(id, t)
}

// head starts a chain from the head of a primary expression.
func (r *resolver) head(id ast.ExprID, callFollows bool) *chain {
	e := r.tree.Exprs.Get(id)
	if e == nil {
		return &chain{typ: r.b.Unknown, dead: true}
	}
	switch e.Kind {
	case ast.ExprName:
		data, _ := r.tree.Exprs.Name(id)
		c := r.nameChain(id, data.Parts, callFollows)
		if !c.open {
			r.record(id, c.typ)
		}
		return c
	case ast.ExprInherited:
		return r.inheritedChain(id, callFollows)
	default:
		t := r.expr(id)
		return &chain{typ: t, dead: r.types.IsUnknown(t)}
	}
}

// finish settles a chain that is not followed by any part.
func (r *resolver) finish(id ast.ExprID, c *chain) types.TypeID {
	if c.dead {
		return r.record(id, r.b.Unknown)
	}
	return r.record(id, r.settle(c))
}

// inheritedChain resolves `inherited [Name]` against the ancestors of the
// enclosing method's type. Helpers are skipped: a helper method continues
// from the super type of the extended type.
func (r *resolver) inheritedChain(id ast.ExprID, callFollows bool) *chain {
	data, _ := r.tree.Exprs.Inherited(id)
	expr := r.tree.Exprs.Get(id)
	c := &chain{}
	routine := r.table.Symbol(r.table.EnclosingRoutine(r.scope))
	if routine == nil || !routine.Owner.IsValid() {
		r.warn(diag.ResNoInherited, expr.Span, "'inherited' outside of a method")
		c.typ, c.dead = r.b.Unknown, true
		return c
	}
	owner := routine.Owner
	start := r.types.Super(owner)
	if extended := r.types.Extended(owner); extended.IsValid() {
		start = r.types.Super(extended)
	}

	bare := data.Name.Name == source.NoStringID
	name, span := data.Name.Name, data.Name.Span
	if bare {
		name, span = routine.Name, expr.Span
	}
	occ := Occurrence{Name: name, Span: span, Expr: id, Implicit: bare, Explicit: callFollows || bare}

	var ids []symbols.SymbolID
	if start.IsValid() {
		ids = r.search.memberChain(r.strings.Fold(name), start)
	}
	if len(ids) == 0 {
		r.warn(diag.ResNoInherited, span, "no inherited '%s' found", r.name(name))
		c.typ, c.dead = r.b.Void, true
		return c
	}
	set := make([]entry, 0, len(ids))
	for _, sid := range ids {
		set = append(set, entry{sym: sid})
	}
	if callFollows || bare {
		set = r.preferCallable(set)
	}
	c.set, c.occ, c.ctx, c.open = r.filterVisible(set, &occ), occ, start, true
	if bare {
		args := make([]Argument, 0, len(routine.Params()))
		for _, p := range routine.Params() {
			args = append(args, Argument{Type: p.Type})
		}
		c.typ = r.callSet(c, args)
	}
	return c
}

// arguments resolves the actual arguments of a call or index part.
func (r *resolver) arguments(exprs []ast.ExprID) []Argument {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]Argument, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, Argument{Expr: e, Type: r.expr(e)})
	}
	return out
}

// callSet resolves the open set of c against args and commits the winner.
func (r *resolver) callSet(c *chain, args []Argument) types.TypeID {
	c.open = false
	if len(c.set) == 1 {
		e := c.set[0]
		sym := r.table.Symbol(e.sym)
		switch {
		case sym == nil:
			return r.b.Unknown
		case (sym.Kind == symbols.SymbolType || sym.Kind == symbols.SymbolTypeParameter) && len(args) == 1:
			// hard cast
			r.bind(c, e, nil)
			return r.denotes[c.occ.Expr]
		case sym.Routine != nil && sym.Routine.Intrinsic != symbols.IntrinsicNone:
			r.bind(c, e, nil)
			return r.intrinsicResult(sym.Routine.Intrinsic, args)
		case !sym.Invocable() && sym.Typed():
			return r.callValue(r.bind(c, e, nil), args, c.occ.Span)
		}
	}

	cands, entries := r.candidates(c, args)

	// Трассировка выбора перегрузки
	var traceSpan *trace.Span
	if r.tracer != nil && r.tracer.Level() >= trace.LevelDebug {
		traceSpan = trace.Begin(r.tracer, trace.ScopeNode, "choose_best", 0)
		traceSpan.WithExtra("name", r.name(c.occ.Name))
		traceSpan.WithExtra("candidates", fmt.Sprintf("%d", len(cands)))
		traceSpan.WithExtra("args", fmt.Sprintf("%d", len(args)))
	}
	best := r.calls.ChooseBest(cands, args, r.unit)
	if traceSpan != nil {
		traceSpan.End(fmt.Sprintf("%d survivors", len(best)))
	}

	switch len(best) {
	case 1:
		return r.bind(c, entries[best[0]], best[0])
	case 0:
		r.errorf(diag.ResNoOverload, c.occ.Span, "no overloaded version of '%s' can be called with %d argument(s)", r.name(c.occ.Name), len(args))
		if len(c.set) == 1 {
			r.bind(c, c.set[0], nil)
		}
		return r.b.Unknown
	default:
		r.ambiguous(c.occ, candidateSymbols(best), diag.ResAmbiguousOverload)
		c.dead = true
		return r.b.Unknown
	}
}

// candidates builds one candidate per invocable entry that passes the arity
// gate. Generic routines without explicit type arguments are specialized by
// inference from args.
func (r *resolver) candidates(c *chain, args []Argument) ([]*Candidate, map[*Candidate]entry) {
	msubst := r.memberSubst(c.ctx)
	out := make([]*Candidate, 0, len(c.set))
	entries := make(map[*Candidate]entry, len(c.set))
	for _, e := range c.set {
		sym := r.table.Symbol(e.sym)
		if !sym.Invocable() {
			continue
		}
		params := r.substParams(sym.Params(), e.subst, msubst)
		varArgs := sym.Routine != nil && sym.Routine.Has(symbols.DirVarArgs)
		if !varArgs && !ArityAccepts(params, len(args)) {
			continue
		}
		cand := &Candidate{Symbol: e.sym, Params: params, TypeArgs: e.typeArgs, VarArgs: varArgs}
		if sym.Generic() && e.subst == nil {
			subst, typeArgs, ok := r.infer(sym, params, args)
			if !ok {
				continue
			}
			cand.Params = r.substParams(params, subst, nil)
			cand.TypeArgs = typeArgs
			cand.Inferred = true
			e.subst = subst
		}
		cand.Result = r.types.Substitute(r.types.Substitute(sym.Type, e.subst), msubst)
		out = append(out, cand)
		entries[cand] = e
	}
	return out, entries
}

func (r *resolver) substParams(params []symbols.Param, a, b types.Subst) []symbols.Param {
	if len(a) == 0 && len(b) == 0 {
		return params
	}
	out := make([]symbols.Param, len(params))
	for i, p := range params {
		p.Type = r.types.Substitute(r.types.Substitute(p.Type, a), b)
		out[i] = p
	}
	return out
}

// callValue applies an argument list to a value: procedural values are
// invoked, class references with one argument are casts.
func (r *resolver) callValue(t types.TypeID, args []Argument, sp source.Span) types.TypeID {
	tt, ok := r.types.Lookup(r.types.Underlying(t))
	if !ok {
		return r.b.Unknown
	}
	switch tt.Kind {
	case types.KindUnknown:
		return t
	case types.KindProcedural:
		info, _ := r.types.ProcInfo(r.types.Underlying(t))
		if info.Result.IsValid() {
			return info.Result
		}
		return r.b.Void
	case types.KindClassRef:
		if len(args) == 1 {
			return tt.Elem
		}
	}
	r.errorf(diag.ResNoOverload, sp, "expression of type %s is not callable", types.Label(r.types, t))
	return r.b.Unknown
}

// index handles a `[...]` part: an explicit array property, the default
// array property of the current type or element access.
func (r *resolver) index(c *chain, args []Argument, part ast.Part, id ast.ExprID) {
	if c.open {
		if props := r.indexedProperties(c.set); len(props) > 0 {
			c.set = props
			c.typ = r.callSet(c, args)
			return
		}
	}
	t := r.settle(c)
	if c.dead {
		return
	}
	if set, name := r.defaultProperty(t); len(set) > 0 {
		c.set, c.ctx, c.open = set, t, true
		c.occ = Occurrence{Name: name, Span: part.Span, Expr: id, Explicit: true, Implicit: true}
		c.typ = r.callSet(c, args)
		return
	}
	c.typ = r.elementType(t, len(args), part.Span)
	if r.types.IsUnknown(c.typ) {
		c.dead = true
	}
}

func (r *resolver) indexedProperties(set []entry) []entry {
	var out []entry
	for _, e := range set {
		if sym := r.table.Symbol(e.sym); sym != nil && sym.Kind == symbols.SymbolProperty && sym.Invocable() {
			out = append(out, e)
		}
	}
	return out
}

// defaultProperty finds the default array property of t, searching the
// nearest declaring ancestor.
func (r *resolver) defaultProperty(t types.TypeID) ([]entry, source.StringID) {
	if r.types.Kind(t) != types.KindStruct {
		return nil, source.NoStringID
	}
	for cur, n := t, 0; cur.IsValid() && n < maxAncestors; cur, n = r.types.Super(cur), n+1 {
		sc := r.table.Scope(r.table.Members(cur))
		if sc == nil {
			continue
		}
		for _, sid := range sc.Symbols {
			sym := r.table.Symbol(sid)
			if sym == nil || sym.Property == nil || !sym.Property.Default {
				continue
			}
			var set []entry
			for _, same := range sc.Local(r.strings.Fold(sym.Name)) {
				if p := r.table.Symbol(same); p != nil && p.Kind == symbols.SymbolProperty && p.Invocable() {
					set = append(set, entry{sym: same})
				}
			}
			return set, sym.Name
		}
	}
	return nil, source.NoStringID
}

// elementType indexes t once per argument.
func (r *resolver) elementType(t types.TypeID, n int, sp source.Span) types.TypeID {
	cur := t
	for range n {
		u := r.types.Underlying(cur)
		tt, ok := r.types.Lookup(u)
		if !ok {
			return r.b.Unknown
		}
		switch tt.Kind {
		case types.KindUnknown:
			return r.b.Unknown
		case types.KindArray:
			cur = tt.Elem
		case types.KindText:
			cur = r.cmp.textElement(tt)
		case types.KindVariant:
			cur = u
		case types.KindPointer:
			if !tt.Elem.IsValid() {
				r.warn(diag.ResNotIndexable, sp, "untyped pointer cannot be indexed")
				return r.b.Unknown
			}
			if tt.Has(types.FlagPointerMath) {
				cur = tt.Elem
				continue
			}
			et, _ := r.types.Lookup(r.types.Underlying(tt.Elem))
			if et.Kind != types.KindArray {
				r.warn(diag.ResNotIndexable, sp, "type %s is not indexable", types.Label(r.types, t))
				return r.b.Unknown
			}
			cur = et.Elem
		default:
			r.warn(diag.ResNotIndexable, sp, "type %s is not indexable", types.Label(r.types, t))
			return r.b.Unknown
		}
	}
	return cur
}

func (r *resolver) deref(t types.TypeID, sp source.Span) types.TypeID {
	tt, ok := r.types.Lookup(r.types.Underlying(t))
	if !ok || tt.Kind == types.KindUnknown {
		return r.b.Unknown
	}
	if tt.Kind == types.KindPointer {
		if tt.Elem.IsValid() {
			return tt.Elem
		}
		return r.b.Untyped
	}
	r.warn(diag.ResInvalidOperands, sp, "type %s cannot be dereferenced", types.Label(r.types, t))
	return r.b.Unknown
}
