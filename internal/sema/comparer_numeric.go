package sema

import (
	"pasres/internal/types"
)

func (c *Comparer) toInteger(ft, tt types.Type) EqualityType {
	switch ft.Kind {
	case types.KindInteger:
		if ft.Low.Cmp(tt.Low) == 0 && ft.High.Cmp(tt.High) == 0 {
			return Equal
		}
		if types.Within(ft.Low, tt.Low, tt.High) && types.Within(ft.High, tt.Low, tt.High) {
			return ConvertLevel1
		}
		// narrowing or sign change
		return ConvertLevel3
	case types.KindDecimal:
		if types.DecimalKind(ft.Sub) == types.DecCurrency {
			return ConvertLevel5
		}
	}
	return Incompatible
}

func (c *Comparer) toDecimal(ft, tt types.Type) EqualityType {
	switch ft.Kind {
	case types.KindDecimal:
		from, to := types.DecimalKind(ft.Sub), types.DecimalKind(tt.Sub)
		if from == to {
			return Equal
		}
		if isFixedPoint(from) || isFixedPoint(to) {
			return ConvertLevel2
		}
		if ft.Size < tt.Size {
			return ConvertLevel1
		}
		return ConvertLevel2
	case types.KindInteger:
		return ConvertLevel4
	}
	return Incompatible
}

func isFixedPoint(k types.DecimalKind) bool {
	return k == types.DecCurrency || k == types.DecComp
}

func (c *Comparer) toChar(ft, tt types.Type) EqualityType {
	if ft.Kind != types.KindChar {
		return Incompatible
	}
	if ft.Sub == tt.Sub || ft.Has(types.FlagLiteral) {
		return Equal
	}
	if types.CharKind(ft.Sub) == types.CharAnsi {
		return ConvertLevel1
	}
	return ConvertLevel4
}

func (c *Comparer) toBoolean(ft, tt types.Type) EqualityType {
	if ft.Kind != types.KindBoolean {
		return Incompatible
	}
	if ft.Sub == tt.Sub {
		return Equal
	}
	return ConvertLevel1
}
