package sema

import (
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// intrinsicResult computes the result type of a compiler-magic routine from
// its arguments.
func (r *resolver) intrinsicResult(in symbols.Intrinsic, args []Argument) types.TypeID {
	switch in {
	case symbols.IntrinsicLength, symbols.IntrinsicSizeOf:
		return r.b.Integer
	case symbols.IntrinsicChr:
		return r.b.WideChar
	case symbols.IntrinsicAssigned:
		return r.b.Boolean
	case symbols.IntrinsicTypeInfo:
		return r.b.Pointer
	case symbols.IntrinsicTrunc, symbols.IntrinsicRound:
		return r.b.Int64
	case symbols.IntrinsicConcat:
		return r.b.UnicodeString
	case symbols.IntrinsicInc, symbols.IntrinsicDec, symbols.IntrinsicInclude, symbols.IntrinsicExclude,
		symbols.IntrinsicSetLength, symbols.IntrinsicExit, symbols.IntrinsicNew, symbols.IntrinsicDispose:
		return r.b.Void
	}

	if len(args) == 0 {
		return r.b.Unknown
	}
	arg := args[0]
	switch in {
	case symbols.IntrinsicOrd:
		if tt, ok := r.types.Lookup(r.types.Underlying(arg.Type)); ok && tt.Size == 8 {
			return r.b.Int64
		}
		return r.b.Integer
	case symbols.IntrinsicCopy:
		if arg.Type == r.b.StringLiteral || arg.Type == r.b.CharLiteral {
			return r.b.UnicodeString
		}
		return arg.Type
	case symbols.IntrinsicDefault:
		return r.argumentType(arg)
	case symbols.IntrinsicSucc, symbols.IntrinsicPred, symbols.IntrinsicAbs:
		if t, ok := r.nonLiteral(arg.Type); ok {
			return t
		}
		return arg.Type
	case symbols.IntrinsicHigh, symbols.IntrinsicLow:
		return r.boundType(r.argumentType(arg))
	}
	return r.b.Unknown
}

// argumentType is the type an argument denotes when it names a type, and
// its value type otherwise.
func (r *resolver) argumentType(arg Argument) types.TypeID {
	if d, ok := r.denotes[arg.Expr]; ok {
		return d
	}
	if tt, ok := r.types.Lookup(arg.Type); ok && tt.Kind == types.KindClassRef && arg.Type != r.b.StringClassRef {
		return tt.Elem
	}
	return arg.Type
}

// boundType is the result of High and Low.
func (r *resolver) boundType(t types.TypeID) types.TypeID {
	tt, ok := r.types.Lookup(t)
	if !ok {
		return r.b.Unknown
	}
	switch tt.Kind {
	case types.KindArray:
		if types.ArrayKind(tt.Sub) == types.ArrayFixed && tt.Index.IsValid() {
			return tt.Index
		}
		return r.b.Integer
	case types.KindText:
		return r.b.Integer
	}
	if tt.IsOrdinal() {
		if nl, ok := r.nonLiteral(t); ok {
			return nl
		}
		return t
	}
	return r.b.Unknown
}
