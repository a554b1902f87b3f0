package sema

import (
	"pasres/internal/types"
)

// textToText[from][to], indexed by types.TextKind.
var textToText = [4][4]EqualityType{
	types.TextShort:   {types.TextShort: Equal, types.TextAnsi: ConvertLevel1, types.TextWide: ConvertLevel3, types.TextUnicode: ConvertLevel2},
	types.TextAnsi:    {types.TextShort: ConvertLevel2, types.TextAnsi: Equal, types.TextWide: ConvertLevel3, types.TextUnicode: ConvertLevel2},
	types.TextWide:    {types.TextShort: ConvertLevel4, types.TextAnsi: ConvertLevel3, types.TextWide: Equal, types.TextUnicode: ConvertLevel1},
	types.TextUnicode: {types.TextShort: ConvertLevel4, types.TextAnsi: ConvertLevel3, types.TextWide: ConvertLevel1, types.TextUnicode: Equal},
}

// charToText[from][to], indexed by types.CharKind and types.TextKind.
var charToText = [2][4]EqualityType{
	types.CharAnsi: {types.TextShort: ConvertLevel2, types.TextAnsi: ConvertLevel3, types.TextWide: ConvertLevel5, types.TextUnicode: ConvertLevel4},
	types.CharWide: {types.TextShort: ConvertLevel6, types.TextAnsi: ConvertLevel5, types.TextWide: ConvertLevel3, types.TextUnicode: ConvertLevel2},
}

func (c *Comparer) toText(ft, tt types.Type) EqualityType {
	to := types.TextKind(tt.Sub)
	if int(to) >= len(textToText) {
		return Incompatible
	}
	switch ft.Kind {
	case types.KindText:
		from := types.TextKind(ft.Sub)
		if int(from) >= len(textToText) {
			return Incompatible
		}
		return textToText[from][to]
	case types.KindChar:
		from := types.CharKind(ft.Sub)
		if int(from) >= len(charToText) {
			return Incompatible
		}
		return charToText[from][to]
	case types.KindPointer:
		if c.types.Kind(ft.Elem) == types.KindChar {
			return ConvertLevel5
		}
	}
	return Incompatible
}

// textElement is the character type of indexing into a string.
func (c *Comparer) textElement(tt types.Type) types.TypeID {
	switch types.TextKind(tt.Sub) {
	case types.TextShort, types.TextAnsi:
		return c.b.AnsiChar
	default:
		return c.b.WideChar
	}
}
