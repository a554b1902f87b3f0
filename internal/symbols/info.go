package symbols

import (
	"pasres/internal/source"
	"pasres/internal/types"
)

// Param describes one parameter of a routine or array property.
type Param struct {
	Name       source.StringID
	Span       source.Span
	Type       types.TypeID
	Mode       types.ParamMode
	HasDefault bool
}

// RoutineKind distinguishes the flavours of routine declarations.
type RoutineKind uint8

const (
	RoutineProcedure RoutineKind = iota
	RoutineFunction
	RoutineConstructor
	RoutineDestructor
	RoutineOperator
)

// Directive is a bit set of routine directives.
type Directive uint16

const (
	DirOverload Directive = 1 << iota
	DirVirtual
	DirOverride
	DirAbstract
	DirStatic
	DirInline
	DirReintroduce
	DirForward
	DirVarArgs
	DirDynamic
)

// Intrinsic identifies compiler-magic routines whose result type depends on
// their argument types.
type Intrinsic uint8

const (
	IntrinsicNone Intrinsic = iota
	IntrinsicLength
	IntrinsicHigh
	IntrinsicLow
	IntrinsicOrd
	IntrinsicChr
	IntrinsicSizeOf
	IntrinsicCopy
	IntrinsicDefault
	IntrinsicSucc
	IntrinsicPred
	IntrinsicAbs
	IntrinsicAssigned
	IntrinsicTypeInfo
	IntrinsicTrunc
	IntrinsicRound
	IntrinsicInc
	IntrinsicDec
	IntrinsicInclude
	IntrinsicExclude
	IntrinsicSetLength
	IntrinsicExit
	IntrinsicConcat
	IntrinsicNew
	IntrinsicDispose
)

// RoutineInfo stores the signature of a routine or method.
type RoutineInfo struct {
	Kind       RoutineKind
	Params     []Param
	Result     types.TypeID
	Directives Directive
	// TypeParams lists the routine's own TypeParameter symbols.
	TypeParams []SymbolID
	Intrinsic  Intrinsic
	// Body is the routine scope of the implementation, if any.
	Body ScopeID
}

// Has reports whether all directive bits of d are set.
func (r *RoutineInfo) Has(d Directive) bool {
	return r != nil && r.Directives&d == d
}

// RequiredParams counts the parameters without default values.
func RequiredParams(params []Param) int {
	n := 0
	for _, p := range params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// PropertyInfo stores property accessors and index parameters.
type PropertyInfo struct {
	Params  []Param
	Read    source.StringID
	Write   source.StringID
	Default bool
}

// ImportInfo links a uses-clause entry to the imported unit.
type ImportInfo struct {
	Target SymbolID // imported unit symbol
	Scope  ScopeID  // its top scope
}

// TypeParamInfo tracks completion of a type parameter declaration.
type TypeParamInfo struct {
	Complete bool
}
