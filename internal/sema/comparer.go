package sema

import (
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// compareDepth bounds recursion through element, constraint and signature types.
const compareDepth = 16

// Comparer ranks type compatibility on the EqualityType ladder.
type Comparer struct {
	table    *symbols.Table
	types    *types.Interner
	b        types.Builtins
	implicit source.StringID // folded "Implicit"
}

// NewComparer creates a comparer over the table's type interner. The table
// is consulted for user `class operator Implicit` conversions.
func NewComparer(table *symbols.Table) *Comparer {
	return &Comparer{
		table:    table,
		types:    table.Types,
		b:        table.Types.Builtins(),
		implicit: table.Strings.FoldString("Implicit"),
	}
}

// Compare grades passing a value of type from where to is expected.
func (c *Comparer) Compare(from, to types.TypeID) EqualityType {
	return c.compare(from, to, 0)
}

// Equals reports Compare(a, b) >= Equal.
func (c *Comparer) Equals(a, b types.TypeID) bool {
	return c.compare(a, b, 0) >= Equal
}

func (c *Comparer) compare(from, to types.TypeID, depth int) EqualityType {
	if depth > compareDepth {
		return Incompatible
	}
	ft, ok := c.types.Lookup(from)
	if !ok {
		return Incompatible
	}
	tt, ok := c.types.Lookup(to)
	if !ok {
		return Incompatible
	}
	if ft.Kind == types.KindUnknown || tt.Kind == types.KindUnknown {
		return Incompatible
	}
	if from == to && tt.Kind != types.KindUntyped {
		return Exact
	}

	switch ft.Kind {
	case types.KindTypeParam:
		if tt.Kind != types.KindTypeParam {
			return c.fromTypeParam(from, to, depth)
		}
	case types.KindNil:
		return c.fromNil(to, tt)
	case types.KindVariant:
		if tt.Kind != types.KindVariant {
			return c.fromVariant(to, tt)
		}
	}

	var level EqualityType
	switch tt.Kind {
	case types.KindInteger:
		level = c.toInteger(ft, tt)
	case types.KindDecimal:
		level = c.toDecimal(ft, tt)
	case types.KindChar:
		level = c.toChar(ft, tt)
	case types.KindText:
		level = c.toText(ft, tt)
	case types.KindBoolean:
		level = c.toBoolean(ft, tt)
	case types.KindEnum:
		if ft.Kind == types.KindEnum && c.types.Underlying(from) == c.types.Underlying(to) {
			level = Equal
		}
	case types.KindArray:
		level = c.toArray(ft, tt, depth)
	case types.KindSet:
		level = c.toSet(ft, tt, depth)
	case types.KindProcedural:
		level = c.toProcedural(from, to, ft, tt, depth)
	case types.KindStruct:
		if ft.Kind == types.KindStruct {
			level = c.toStruct(from, to)
		}
	case types.KindClassRef:
		if ft.Kind == types.KindClassRef {
			level = c.toStruct(ft.Elem, tt.Elem)
		}
	case types.KindPointer:
		level = c.toPointer(ft, tt)
	case types.KindFile:
		level = c.toFile(ft, tt)
	case types.KindVariant:
		level = c.toVariant(ft, tt)
	case types.KindUntyped:
		level = ConvertLevel6
	case types.KindTypeParam:
		if c.satisfies(from, to, depth) {
			level = ConvertLevel5
		}
	}
	if level == Incompatible && depth == 0 {
		level = c.operatorConversion(from, to)
	}
	return level
}

func (c *Comparer) fromTypeParam(from, to types.TypeID, depth int) EqualityType {
	info, ok := c.types.TypeParamInfo(from)
	if !ok {
		return Incompatible
	}
	best := Incompatible
	for _, constraint := range info.Constraints {
		if lv := c.compare(constraint, to, depth+1); lv > best {
			best = lv
		}
	}
	// a constraint never makes the parameter identical to it
	return minLevel(best, ConvertLevel1)
}

// satisfies reports whether from meets every constraint of type parameter tp.
func (c *Comparer) satisfies(from, tp types.TypeID, depth int) bool {
	info, ok := c.types.TypeParamInfo(tp)
	if !ok {
		return false
	}
	for _, constraint := range info.Constraints {
		if c.types.IsSubtype(from, constraint) {
			continue
		}
		if c.compare(from, constraint, depth+1) < Equal {
			return false
		}
	}
	return true
}

func (c *Comparer) fromNil(to types.TypeID, tt types.Type) EqualityType {
	switch tt.Kind {
	case types.KindPointer, types.KindClassRef, types.KindProcedural:
		return ConvertLevel1
	case types.KindStruct:
		if info, ok := c.types.StructInfo(to); ok && info.Kind != types.StructRecord && info.Kind != types.StructObject {
			return ConvertLevel1
		}
	case types.KindArray:
		if types.ArrayKind(tt.Sub) == types.ArrayDynamic {
			return ConvertLevel1
		}
	case types.KindVariant:
		return ConvertLevel6
	}
	return Incompatible
}

// operatorConversion looks for `class operator Implicit(a: From): To` on
// either side. It ranks below every structural rule.
func (c *Comparer) operatorConversion(from, to types.TypeID) EqualityType {
	if c.table == nil {
		return Incompatible
	}
	for _, owner := range [2]types.TypeID{to, from} {
		if c.types.Kind(owner) != types.KindStruct {
			continue
		}
		scope := c.table.Scope(c.table.Members(owner))
		for _, id := range scope.Local(c.implicit) {
			sym := c.table.Symbol(id)
			if sym == nil || sym.Routine == nil || sym.Routine.Kind != symbols.RoutineOperator {
				continue
			}
			params := sym.Routine.Params
			if len(params) != 1 {
				continue
			}
			if c.compare(from, params[0].Type, 1) >= Equal && c.compare(sym.Type, to, 1) >= Equal {
				return ConvertLevel8
			}
		}
	}
	return Incompatible
}
