package sema

import (
	"slices"

	"pasres/internal/ast"
	"pasres/internal/diag"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// operatorNames maps binary operators to the names of overloadable class
// operators. Logical and bitwise forms share a token.
var operatorNames = map[ast.BinaryOp][]string{
	ast.OpAdd:    {"Add"},
	ast.OpSub:    {"Subtract"},
	ast.OpMul:    {"Multiply"},
	ast.OpDivide: {"Divide"},
	ast.OpDiv:    {"IntDivide"},
	ast.OpMod:    {"Modulus"},
	ast.OpAnd:    {"LogicalAnd", "BitwiseAnd"},
	ast.OpOr:     {"LogicalOr", "BitwiseOr"},
	ast.OpXor:    {"LogicalXor", "BitwiseXor"},
	ast.OpShl:    {"LeftShift"},
	ast.OpShr:    {"RightShift"},
	ast.OpEq:     {"Equal"},
	ast.OpNeq:    {"NotEqual"},
	ast.OpLt:     {"LessThan"},
	ast.OpGt:     {"GreaterThan"},
	ast.OpLe:     {"LessThanOrEqual"},
	ast.OpGe:     {"GreaterThanOrEqual"},
	ast.OpIn:     {"In"},
}

func (r *resolver) binary(id ast.ExprID) types.TypeID {
	data, _ := r.tree.Exprs.Binary(id)
	lt := r.expr(data.Left)
	rt := r.expr(data.Right)

	switch data.Op {
	case ast.OpIs:
		return r.b.Boolean
	case ast.OpAs:
		if d, ok := r.denotes[data.Right]; ok {
			return d
		}
		if tt, ok := r.types.Lookup(rt); ok && tt.Kind == types.KindClassRef {
			return tt.Elem
		}
		return rt
	}
	if r.types.IsUnknown(lt) || r.types.IsUnknown(rt) {
		return r.b.Unknown
	}
	args := []Argument{{Expr: data.Left, Type: lt}, {Expr: data.Right, Type: rt}}
	if res, ok := r.operator(id, operatorNames[data.Op], args); ok {
		return res
	}
	res := r.builtinBinary(data.Op, lt, rt)
	if !res.IsValid() {
		span := r.tree.Exprs.Get(id).Span
		r.warn(diag.ResInvalidOperands, span, "operator %s not applicable to %s and %s",
			data.Op, types.Label(r.types, lt), types.Label(r.types, rt))
		return r.b.Unknown
	}
	return res
}

// operator ranks the class operators named names declared on the struct
// operands together with the predefined signatures from System. A chosen
// class operator is recorded as an implicit occurrence of the expression.
// ok is false when nothing decides the type and the rule table applies.
func (r *resolver) operator(id ast.ExprID, names []string, args []Argument) (types.TypeID, bool) {
	cands := r.classOperators(names, args)
	if r.predefinedApplies(args) {
		cands = append(cands, r.predefinedOperators(names, len(args))...)
	}
	if len(cands) == 0 {
		return types.NoTypeID, false
	}
	best := r.calls.ChooseBest(cands, args, r.unit)
	if len(best) == 0 {
		return types.NoTypeID, false
	}
	span := r.tree.Exprs.Get(id).Span
	occ := Occurrence{Name: r.table.Symbol(best[0].Symbol).Name, Span: span, Expr: id, Explicit: true, Implicit: true}
	if len(best) == 1 {
		if !r.builtin(best[0].Symbol) {
			r.commit(occ, best[0].Symbol, nil)
		}
		return best[0].Result, true
	}
	for _, c := range best {
		if !r.builtin(c.Symbol) {
			r.ambiguous(occ, candidateSymbols(best), diag.ResAmbiguousOverload)
			return r.b.Unknown, true
		}
	}
	// a tie between predefined signatures falls back to the rule table
	return types.NoTypeID, false
}

func (r *resolver) builtin(id symbols.SymbolID) bool {
	sym := r.table.Symbol(id)
	return sym != nil && sym.Flags&symbols.SymbolFlagBuiltin != 0
}

// classOperators collects the operator members named names of every struct
// type among the operands.
func (r *resolver) classOperators(names []string, args []Argument) []*Candidate {
	var owners []types.TypeID
	for _, a := range args {
		t := r.types.Underlying(a.Type)
		if r.types.Kind(t) != types.KindStruct || slices.Contains(owners, t) {
			continue
		}
		owners = append(owners, t)
	}

	var cands []*Candidate
	for _, owner := range owners {
		msubst := r.memberSubst(owner)
		for _, n := range names {
			for _, sid := range r.search.memberChain(r.strings.FoldString(n), owner) {
				sym := r.table.Symbol(sid)
				if sym == nil || sym.Routine == nil || sym.Routine.Kind != symbols.RoutineOperator {
					continue
				}
				params := r.substParams(sym.Params(), nil, msubst)
				if !ArityAccepts(params, len(args)) {
					continue
				}
				cands = append(cands, &Candidate{
					Symbol: sid,
					Params: params,
					Result: r.types.Substitute(sym.Type, msubst),
				})
			}
		}
	}
	return cands
}

// predefinedApplies reports whether every operand is numeric or boolean,
// the only operand kinds the System signatures cover.
func (r *resolver) predefinedApplies(args []Argument) bool {
	for _, a := range args {
		switch r.types.Kind(r.types.Underlying(a.Type)) {
		case types.KindInteger, types.KindDecimal, types.KindBoolean:
		default:
			return false
		}
	}
	return len(args) > 0
}

func (r *resolver) predefinedOperators(names []string, arity int) []*Candidate {
	scope := r.table.Scope(r.table.Operators())
	if scope == nil {
		return nil
	}
	var cands []*Candidate
	for _, n := range names {
		for _, sid := range scope.Local(r.strings.FoldString(n)) {
			sym := r.table.Symbol(sid)
			if sym == nil || len(sym.Params()) != arity {
				continue
			}
			cands = append(cands, &Candidate{Symbol: sid, Params: sym.Params(), Result: sym.Type})
		}
	}
	return cands
}

// builtinBinary types the operand kinds the System signatures leave open:
// text, pointers, sets, variants and comparisons. NoTypeID means the
// operands are not applicable.
func (r *resolver) builtinBinary(op ast.BinaryOp, lt, rt types.TypeID) types.TypeID {
	l, _ := r.types.Lookup(r.types.Underlying(lt))
	rr, _ := r.types.Lookup(r.types.Underlying(rt))

	if op.IsComparison() || op == ast.OpIn {
		return r.b.Boolean
	}
	if l.Kind == types.KindVariant || rr.Kind == types.KindVariant {
		return r.b.Variant
	}

	switch op {
	case ast.OpAnd, ast.OpOr, ast.OpXor:
		switch {
		case l.Kind == types.KindBoolean && rr.Kind == types.KindBoolean:
			return r.b.Boolean
		case l.Kind == types.KindInteger && rr.Kind == types.KindInteger:
			return r.intResult(l, rr)
		}
		return types.NoTypeID
	case ast.OpShl, ast.OpShr, ast.OpDiv, ast.OpMod:
		if l.Kind == types.KindInteger && rr.Kind == types.KindInteger {
			return r.intResult(l, rr)
		}
		return types.NoTypeID
	case ast.OpDivide:
		if isNumeric(l.Kind) && isNumeric(rr.Kind) {
			if l.Kind == types.KindDecimal && types.DecimalKind(l.Sub) == types.DecCurrency ||
				rr.Kind == types.KindDecimal && types.DecimalKind(rr.Sub) == types.DecCurrency {
				return r.b.Currency
			}
			return r.b.Extended
		}
		return types.NoTypeID
	}

	// + - *
	switch {
	case op == ast.OpAdd && isTextual(l.Kind) && isTextual(rr.Kind):
		return r.concatResult(lt, rt)
	case l.Kind == types.KindPointer && rr.Kind == types.KindInteger && op != ast.OpMul:
		return lt
	case l.Kind == types.KindInteger && rr.Kind == types.KindPointer && op == ast.OpAdd:
		return rt
	case l.Kind == types.KindPointer && rr.Kind == types.KindPointer && op == ast.OpSub:
		return r.b.Integer
	case l.Kind == types.KindSet && rr.Kind == types.KindSet:
		return lt
	case l.Kind == types.KindSet && rr.Kind == types.KindArray && types.ArrayKind(rr.Sub) == types.ArrayConstructor:
		return lt
	case l.Kind == types.KindInteger && rr.Kind == types.KindInteger:
		return r.intResult(l, rr)
	case isNumeric(l.Kind) && isNumeric(rr.Kind):
		return r.decimalResult(lt, rt, l, rr)
	}
	return types.NoTypeID
}

func isNumeric(k types.Kind) bool {
	return k == types.KindInteger || k == types.KindDecimal
}

func isTextual(k types.Kind) bool {
	return k == types.KindText || k == types.KindChar
}

// intResult widens integer operands: UInt64 wins, any 8-byte operand gives
// Int64, everything else computes in Integer.
func (r *resolver) intResult(l, rr types.Type) types.TypeID {
	ut := r.types.MustLookup(r.b.UInt64)
	if l.Low == ut.Low && l.High == ut.High || rr.Low == ut.Low && rr.High == ut.High {
		return r.b.UInt64
	}
	if l.Size == 8 || rr.Size == 8 {
		return r.b.Int64
	}
	return r.b.Integer
}

func (r *resolver) decimalResult(lt, rt types.TypeID, l, rr types.Type) types.TypeID {
	if l.Kind == types.KindDecimal && types.DecimalKind(l.Sub) == types.DecCurrency ||
		rr.Kind == types.KindDecimal && types.DecimalKind(rr.Sub) == types.DecCurrency {
		return r.b.Currency
	}
	if lt == rt && !l.Has(types.FlagLiteral) {
		return lt
	}
	return r.b.Extended
}

// concatResult is AnsiString when every non-literal operand is ansi, and
// UnicodeString otherwise.
func (r *resolver) concatResult(lt, rt types.TypeID) types.TypeID {
	ansi, typed := true, false
	for _, t := range [2]types.TypeID{lt, rt} {
		tt := r.types.MustLookup(r.types.Underlying(t))
		if tt.Has(types.FlagLiteral) || t == r.b.CharLiteral || t == r.b.StringLiteral {
			continue
		}
		typed = true
		switch tt.Kind {
		case types.KindText:
			k := types.TextKind(tt.Sub)
			ansi = ansi && (k == types.TextShort || k == types.TextAnsi)
		case types.KindChar:
			ansi = ansi && types.CharKind(tt.Sub) == types.CharAnsi
		}
	}
	if typed && ansi {
		return r.b.AnsiString
	}
	return r.b.UnicodeString
}
