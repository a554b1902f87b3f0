package sema

import (
	"pasres/internal/types"
)

func isSimple(k types.Kind) bool {
	switch k {
	case types.KindInteger, types.KindDecimal, types.KindChar, types.KindText, types.KindBoolean, types.KindEnum:
		return true
	default:
		return false
	}
}

func (c *Comparer) fromVariant(to types.TypeID, tt types.Type) EqualityType {
	if isSimple(tt.Kind) {
		return ConvertLevel6
	}
	if tt.Kind == types.KindStruct {
		if info, ok := c.types.StructInfo(to); ok && info.Kind == types.StructInterface {
			return ConvertLevel6
		}
	}
	if tt.Kind == types.KindUntyped {
		return ConvertLevel6
	}
	return Incompatible
}

func (c *Comparer) toVariant(ft, tt types.Type) EqualityType {
	switch {
	case ft.Kind == types.KindVariant:
		if ft.Sub == tt.Sub {
			return Equal
		}
		return ConvertLevel1
	case isSimple(ft.Kind):
		return ConvertLevel6
	case ft.Kind == types.KindStruct, ft.Kind == types.KindPointer, ft.Kind == types.KindArray:
		return ConvertLevel7
	}
	return Incompatible
}

// variantClass orders the formal types a lone Variant argument may convert
// to. Higher is preferred; the order follows the reference compiler.
type variantClass uint8

const (
	vcNone variantClass = iota
	vcBoolFormal
	vcCharInt64
	vcUnicodeString
	vcWideString
	vcAnsiString
	vcShortString
	vcExtended
	vcDoubleCurrency
	vcSingle
	vcLongint
	vcCardinal
	vcSmallint
	vcWord
	vcShortint
	vcByte
)

func (c *Comparer) variantClassOf(id types.TypeID) variantClass {
	tt, ok := c.types.Lookup(id)
	if !ok {
		return vcNone
	}
	switch tt.Kind {
	case types.KindBoolean, types.KindUntyped:
		return vcBoolFormal
	case types.KindChar:
		return vcCharInt64
	case types.KindText:
		switch types.TextKind(tt.Sub) {
		case types.TextUnicode:
			return vcUnicodeString
		case types.TextWide:
			return vcWideString
		case types.TextAnsi:
			return vcAnsiString
		default:
			return vcShortString
		}
	case types.KindDecimal:
		switch types.DecimalKind(tt.Sub) {
		case types.DecExtended:
			return vcExtended
		case types.DecSingle:
			return vcSingle
		default:
			return vcDoubleCurrency
		}
	case types.KindInteger:
		signed := tt.Low.Neg
		switch {
		case tt.Size >= 8:
			return vcCharInt64
		case tt.Size == 4 && signed:
			return vcLongint
		case tt.Size == 4:
			return vcCardinal
		case tt.Size == 2 && signed:
			return vcSmallint
		case tt.Size == 2:
			return vcWord
		case signed:
			return vcShortint
		default:
			return vcByte
		}
	}
	return vcNone
}
