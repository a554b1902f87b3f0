package sema

import (
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// maxUnifyDepth bounds the walk through nested parameter shapes.
const maxUnifyDepth = 16

// infer binds the type parameters of a generic routine from the argument
// types. Every type parameter must be bound and satisfy its constraints.
func (r *resolver) infer(sym *symbols.Symbol, params []symbols.Param, args []Argument) (types.Subst, []types.TypeID, bool) {
	tps := make([]types.TypeID, 0, len(sym.Routine.TypeParams))
	free := make(map[types.TypeID]bool, len(sym.Routine.TypeParams))
	for _, id := range sym.Routine.TypeParams {
		ts := r.table.Symbol(id)
		if ts == nil {
			return nil, nil, false
		}
		tps = append(tps, ts.Type)
		free[ts.Type] = true
	}
	subst := make(types.Subst, len(tps))
	for i, arg := range args {
		if i >= len(params) {
			break
		}
		if !r.unify(params[i].Type, arg.Type, free, subst, 0) {
			return nil, nil, false
		}
	}
	typeArgs := make([]types.TypeID, 0, len(tps))
	for _, tp := range tps {
		bound, ok := subst[tp]
		if !ok || !r.cmp.satisfies(bound, tp, 0) {
			return nil, nil, false
		}
		typeArgs = append(typeArgs, bound)
	}
	return subst, typeArgs, true
}

// unify matches a parameter shape against an argument type, binding free
// type parameters on first sight.
func (r *resolver) unify(param, arg types.TypeID, free map[types.TypeID]bool, subst types.Subst, depth int) bool {
	if depth > maxUnifyDepth {
		return false
	}
	if free[param] {
		if _, bound := subst[param]; bound {
			return true
		}
		t, ok := r.nonLiteral(arg)
		if !ok {
			return false
		}
		subst[param] = t
		return true
	}
	if !r.types.ContainsTypeParam(param) {
		return true
	}
	pt, ok := r.types.Lookup(param)
	if !ok {
		return false
	}
	at, ok := r.types.Lookup(arg)
	if !ok || at.Kind != pt.Kind {
		return false
	}
	switch pt.Kind {
	case types.KindArray, types.KindSet, types.KindPointer, types.KindClassRef, types.KindFile:
		return r.unify(pt.Elem, at.Elem, free, subst, depth+1)
	case types.KindStruct:
		pi, _ := r.types.StructInfo(param)
		ai, _ := r.types.StructInfo(arg)
		if !pi.Generic.IsValid() || pi.Generic != ai.Generic || len(pi.TypeArgs) != len(ai.TypeArgs) {
			return false
		}
		for i := range pi.TypeArgs {
			if !r.unify(pi.TypeArgs[i], ai.TypeArgs[i], free, subst, depth+1) {
				return false
			}
		}
		return true
	case types.KindProcedural:
		pi, _ := r.types.ProcInfo(param)
		ai, _ := r.types.ProcInfo(arg)
		if len(pi.Params) != len(ai.Params) {
			return false
		}
		for i := range pi.Params {
			if !r.unify(pi.Params[i].Type, ai.Params[i].Type, free, subst, depth+1) {
				return false
			}
		}
		if pi.Result.IsValid() && ai.Result.IsValid() {
			return r.unify(pi.Result, ai.Result, free, subst, depth+1)
		}
		return pi.Result.IsValid() == ai.Result.IsValid()
	}
	return false
}

// nonLiteral maps a literal type to the type a variable initialized from it
// would get. nil and unknown values bind nothing.
func (r *resolver) nonLiteral(t types.TypeID) (types.TypeID, bool) {
	switch t {
	case r.b.IntLiteral:
		return r.b.Integer, true
	case r.b.Int64Literal:
		return r.b.Int64, true
	case r.b.UInt64Literal:
		return r.b.UInt64, true
	case r.b.RealLiteral:
		return r.b.Extended, true
	case r.b.CharLiteral:
		return r.b.WideChar, true
	case r.b.StringLiteral:
		return r.b.UnicodeString, true
	}
	switch r.types.Kind(t) {
	case types.KindNil, types.KindUnknown, types.KindInvalid, types.KindUntyped, types.KindVoid:
		return types.NoTypeID, false
	}
	if tt, ok := r.types.Lookup(t); ok && tt.Kind == types.KindArray && types.ArrayKind(tt.Sub) == types.ArrayConstructor {
		elem, ok := r.nonLiteral(tt.Elem)
		if !ok {
			return types.NoTypeID, false
		}
		return r.types.Intern(types.MakeArray(elem, types.ArrayDynamic)), true
	}
	return t, true
}
