package sema

import (
	"math"
	"unicode/utf8"

	"pasres/internal/ast"
	"pasres/internal/diag"
	"pasres/internal/types"
)

var (
	minInt32 = types.Int(math.MinInt32)
	maxInt32 = types.Int(math.MaxInt32)
	minInt64 = types.Int(math.MinInt64)
	maxInt64 = types.Int(math.MaxInt64)
)

// expr computes and records the type of an expression, binding every name
// inside it.
func (r *resolver) expr(id ast.ExprID) types.TypeID {
	if !id.IsValid() || r.failed() {
		return r.b.Unknown
	}
	if t, ok := r.result.ExprTypes[id]; ok {
		return t
	}
	e := r.tree.Exprs.Get(id)
	if e == nil {
		return r.b.Unknown
	}
	switch e.Kind {
	case ast.ExprName:
		data, _ := r.tree.Exprs.Name(id)
		return r.finish(id, r.nameChain(id, data.Parts, false))
	case ast.ExprPrimary:
		return r.primary(id)
	case ast.ExprInherited:
		return r.finish(id, r.inheritedChain(id, false))
	case ast.ExprLiteral:
		return r.record(id, r.literal(id))
	case ast.ExprBinary:
		return r.record(id, r.binary(id))
	case ast.ExprUnary:
		return r.record(id, r.unary(id))
	case ast.ExprParen:
		data, _ := r.tree.Exprs.Paren(id)
		t := r.expr(data.Inner)
		if d, ok := r.denotes[data.Inner]; ok {
			r.denotes[id] = d
		}
		return r.record(id, t)
	case ast.ExprArrayCtor:
		data, _ := r.tree.Exprs.ArrayCtor(id)
		elem := r.b.Untyped
		for i, el := range data.Elems {
			t := r.expr(el)
			if i == 0 {
				elem = t
			}
		}
		return r.record(id, r.types.Intern(types.MakeArray(elem, types.ArrayConstructor)))
	case ast.ExprStringKeyword:
		r.denotes[id] = r.b.UnicodeString
		return r.record(id, r.b.StringClassRef)
	case ast.ExprFileKeyword:
		r.denotes[id] = r.b.File
		return r.record(id, r.b.FileClassRef)
	default:
		return r.record(id, r.b.Unknown)
	}
}

// literal types a constant by its text. Integers pick the narrowest of the
// 32-bit, 64-bit and unsigned 64-bit literal types.
func (r *resolver) literal(id ast.ExprID) types.TypeID {
	data, _ := r.tree.Exprs.Literal(id)
	switch data.Kind {
	case ast.LitInt:
		v, err := ParseIntLiteral(r.name(data.Value))
		if err != nil {
			r.warn(diag.ResLiteralRange, r.tree.Exprs.Get(id).Span, "invalid integer constant: %v", err)
			return r.b.Unknown
		}
		switch {
		case types.Within(v, minInt32, maxInt32):
			return r.b.IntLiteral
		case types.Within(v, minInt64, maxInt64):
			return r.b.Int64Literal
		default:
			return r.b.UInt64Literal
		}
	case ast.LitReal:
		return r.b.RealLiteral
	case ast.LitString:
		if utf8.RuneCountInString(r.name(data.Value)) == 1 {
			return r.b.CharLiteral
		}
		return r.b.StringLiteral
	case ast.LitNil:
		return r.b.Nil
	case ast.LitTrue, ast.LitFalse:
		return r.b.Boolean
	}
	return r.b.Unknown
}

func (r *resolver) unary(id ast.ExprID) types.TypeID {
	data, _ := r.tree.Exprs.Unary(id)
	t := r.expr(data.Operand)
	if data.Op == ast.OpAddr {
		return r.b.Pointer
	}
	if r.types.IsUnknown(t) {
		return t
	}
	name := map[ast.UnaryOp]string{ast.OpNeg: "Negative", ast.OpPlus: "Positive", ast.OpNot: "LogicalNot"}[data.Op]
	if res, ok := r.operator(id, []string{name}, []Argument{{Expr: data.Operand, Type: t}}); ok {
		return res
	}
	return t
}
