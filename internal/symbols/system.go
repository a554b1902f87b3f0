package symbols

import (
	"pasres/internal/source"
	"pasres/internal/types"
)

// SystemUnitName is the implicitly used unit holding predeclared identifiers.
const SystemUnitName = "System"

type systemType struct {
	name string
	pick func(types.Builtins) types.TypeID
}

// Weak aliases map onto the same TypeID as their target.
var systemTypes = []systemType{
	{"ShortInt", func(b types.Builtins) types.TypeID { return b.ShortInt }},
	{"SmallInt", func(b types.Builtins) types.TypeID { return b.SmallInt }},
	{"Integer", func(b types.Builtins) types.TypeID { return b.Integer }},
	{"LongInt", func(b types.Builtins) types.TypeID { return b.Integer }},
	{"NativeInt", func(b types.Builtins) types.TypeID { return b.Integer }},
	{"Int64", func(b types.Builtins) types.TypeID { return b.Int64 }},
	{"Byte", func(b types.Builtins) types.TypeID { return b.Byte }},
	{"Word", func(b types.Builtins) types.TypeID { return b.Word }},
	{"Cardinal", func(b types.Builtins) types.TypeID { return b.Cardinal }},
	{"LongWord", func(b types.Builtins) types.TypeID { return b.Cardinal }},
	{"NativeUInt", func(b types.Builtins) types.TypeID { return b.Cardinal }},
	{"UInt64", func(b types.Builtins) types.TypeID { return b.UInt64 }},
	{"Single", func(b types.Builtins) types.TypeID { return b.Single }},
	{"Real48", func(b types.Builtins) types.TypeID { return b.Real48 }},
	{"Double", func(b types.Builtins) types.TypeID { return b.Double }},
	{"Real", func(b types.Builtins) types.TypeID { return b.Double }},
	{"Extended", func(b types.Builtins) types.TypeID { return b.Extended }},
	{"Comp", func(b types.Builtins) types.TypeID { return b.Comp }},
	{"Currency", func(b types.Builtins) types.TypeID { return b.Currency }},
	{"Boolean", func(b types.Builtins) types.TypeID { return b.Boolean }},
	{"ByteBool", func(b types.Builtins) types.TypeID { return b.ByteBool }},
	{"WordBool", func(b types.Builtins) types.TypeID { return b.WordBool }},
	{"LongBool", func(b types.Builtins) types.TypeID { return b.LongBool }},
	{"AnsiChar", func(b types.Builtins) types.TypeID { return b.AnsiChar }},
	{"WideChar", func(b types.Builtins) types.TypeID { return b.WideChar }},
	{"Char", func(b types.Builtins) types.TypeID { return b.WideChar }},
	{"ShortString", func(b types.Builtins) types.TypeID { return b.ShortString }},
	{"AnsiString", func(b types.Builtins) types.TypeID { return b.AnsiString }},
	{"WideString", func(b types.Builtins) types.TypeID { return b.WideString }},
	{"UnicodeString", func(b types.Builtins) types.TypeID { return b.UnicodeString }},
	{"PAnsiChar", func(b types.Builtins) types.TypeID { return b.PAnsiChar }},
	{"PWideChar", func(b types.Builtins) types.TypeID { return b.PWideChar }},
	{"PChar", func(b types.Builtins) types.TypeID { return b.PWideChar }},
	{"Pointer", func(b types.Builtins) types.TypeID { return b.Pointer }},
	{"Variant", func(b types.Builtins) types.TypeID { return b.Variant }},
	{"OleVariant", func(b types.Builtins) types.TypeID { return b.OleVariant }},
}

var systemIntrinsics = []struct {
	name string
	id   Intrinsic
}{
	{"Length", IntrinsicLength},
	{"High", IntrinsicHigh},
	{"Low", IntrinsicLow},
	{"Ord", IntrinsicOrd},
	{"Chr", IntrinsicChr},
	{"SizeOf", IntrinsicSizeOf},
	{"Copy", IntrinsicCopy},
	{"Default", IntrinsicDefault},
	{"Succ", IntrinsicSucc},
	{"Pred", IntrinsicPred},
	{"Abs", IntrinsicAbs},
	{"Assigned", IntrinsicAssigned},
	{"TypeInfo", IntrinsicTypeInfo},
	{"Trunc", IntrinsicTrunc},
	{"Round", IntrinsicRound},
	{"Inc", IntrinsicInc},
	{"Dec", IntrinsicDec},
	{"Include", IntrinsicInclude},
	{"Exclude", IntrinsicExclude},
	{"SetLength", IntrinsicSetLength},
	{"Exit", IntrinsicExit},
	{"Concat", IntrinsicConcat},
	{"New", IntrinsicNew},
	{"Dispose", IntrinsicDispose},
}

type operatorFamily struct {
	names    []string
	arity    int
	operands func(types.Builtins) []types.TypeID
}

// Predefined operator signatures. Each operand type T yields Op(T[, T]): T.
var systemOperators = []operatorFamily{
	{[]string{"Add", "Subtract", "Multiply"}, 2, func(b types.Builtins) []types.TypeID {
		return []types.TypeID{b.Integer, b.Int64, b.UInt64, b.Single, b.Double, b.Extended, b.Currency}
	}},
	{[]string{"Divide"}, 2, func(b types.Builtins) []types.TypeID {
		return []types.TypeID{b.Extended, b.Currency}
	}},
	{[]string{"IntDivide", "Modulus", "LeftShift", "RightShift", "BitwiseAnd", "BitwiseOr", "BitwiseXor"}, 2, func(b types.Builtins) []types.TypeID {
		return []types.TypeID{b.Integer, b.Int64, b.UInt64}
	}},
	{[]string{"LogicalAnd", "LogicalOr", "LogicalXor"}, 2, func(b types.Builtins) []types.TypeID {
		return []types.TypeID{b.Boolean}
	}},
	{[]string{"Negative", "Positive"}, 1, func(b types.Builtins) []types.TypeID {
		return []types.TypeID{b.Integer, b.Int64, b.Single, b.Double, b.Extended, b.Currency}
	}},
	{[]string{"LogicalNot"}, 1, func(b types.Builtins) []types.TypeID {
		return []types.TypeID{b.Boolean, b.Integer, b.Int64, b.UInt64}
	}},
}

// SystemTypes holds the classes System declares.
type SystemTypes struct {
	TObject    types.TypeID
	IInterface types.TypeID
	TClass     types.TypeID
}

// InstallSystem declares the System unit: predeclared types, TObject and the
// intrinsic routines. It must run before any unit that uses System.
func InstallSystem(table *Table) (SymbolID, SystemTypes) {
	b := NewBuilder(table, BuilderOptions{})
	builtins := table.Types.Builtins()
	unit := b.BeginUnit(SystemUnitName, source.Span{})
	table.system = unit

	for _, st := range systemTypes {
		id := b.DeclareType(st.name, source.Span{}, st.pick(builtins))
		markBuiltin(table, id)
	}

	var sys SystemTypes
	ifaceSym, iface := b.BeginStruct("IInterface", source.Span{}, types.StructInfo{Kind: types.StructInterface})
	markBuiltin(table, ifaceSym)
	b.EndStruct(iface)
	sys.IInterface = iface

	objSym, obj := b.BeginStruct("TObject", source.Span{}, types.StructInfo{Kind: types.StructClass})
	markBuiltin(table, objSym)
	declareBuiltinRoutine(b, "Create", RoutineInfo{Kind: RoutineConstructor, Result: obj}, 0)
	declareBuiltinRoutine(b, "Destroy", RoutineInfo{Kind: RoutineDestructor, Directives: DirVirtual}, 0)
	declareBuiltinRoutine(b, "Free", RoutineInfo{Kind: RoutineProcedure}, 0)
	declareBuiltinRoutine(b, "ClassName", RoutineInfo{Kind: RoutineFunction, Result: builtins.ShortString}, SymbolFlagClass)
	b.EndStruct(obj)
	sys.TObject = obj

	sys.TClass = table.Types.Intern(types.MakeClassRef(obj))
	markBuiltin(table, b.DeclareType("TClass", source.Span{}, sys.TClass))

	for _, in := range systemIntrinsics {
		declareBuiltinRoutine(b, in.name, RoutineInfo{
			Kind:       RoutineFunction,
			Directives: DirVarArgs,
			Intrinsic:  in.id,
			Result:     builtins.Unknown,
		}, 0)
	}
	table.operators = declareOperators(b, builtins)
	b.EndUnit()
	return unit, sys
}

// declareOperators fills a block scope under System with the predefined
// operator signatures.
func declareOperators(b *Builder, builtins types.Builtins) ScopeID {
	scope := b.BeginBlock(source.Span{})
	left := b.table.Strings.Intern("Left")
	right := b.table.Strings.Intern("Right")
	for _, fam := range systemOperators {
		for _, t := range fam.operands(builtins) {
			params := []Param{{Name: left, Type: t}}
			if fam.arity == 2 {
				params = append(params, Param{Name: right, Type: t})
			}
			for _, name := range fam.names {
				declareBuiltinRoutine(b, name, RoutineInfo{
					Kind:       RoutineOperator,
					Directives: DirOverload,
					Params:     params,
					Result:     t,
				}, SymbolFlagClass)
			}
		}
	}
	b.Leave(scope)
	return scope
}

func declareBuiltinRoutine(b *Builder, name string, info RoutineInfo, flags SymbolFlags) SymbolID {
	return b.DeclareRoutine(name, source.Span{}, info, flags|SymbolFlagBuiltin)
}

func markBuiltin(table *Table, id SymbolID) {
	if sym := table.Symbols.Get(id); sym != nil {
		sym.Flags |= SymbolFlagBuiltin
	}
}
