package sema

import (
	"errors"
	"strconv"
	"strings"

	"pasres/internal/ast"
	"pasres/internal/source"
	"pasres/internal/types"
)

var errNotInteger = errors.New("not an integer literal")

// BoundsChecker checks integer literal arguments against target ranges.
type BoundsChecker struct {
	types   *types.Interner
	strings *source.Interner
	exprs   *ast.Exprs
}

// NewBoundsChecker binds the checker to an expression arena.
func NewBoundsChecker(typesIn *types.Interner, strs *source.Interner, exprs *ast.Exprs) *BoundsChecker {
	return &BoundsChecker{types: typesIn, strings: strs, exprs: exprs}
}

// ParseIntLiteral parses decimal, $hex, %binary and &octal literal text.
func ParseIntLiteral(text string) (types.Bound, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	if s != "" {
		switch s[0] {
		case '$':
			base, s = 16, s[1:]
		case '%':
			base, s = 2, s[1:]
		case '&':
			base, s = 8, s[1:]
		}
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return types.Bound{}, err
	}
	return types.Bound{Neg: neg && v != 0, Abs: v}, nil
}

// LiteralValue returns the value of an integer literal, looking through
// parentheses and unary minus/plus.
func (bc *BoundsChecker) LiteralValue(id ast.ExprID) (types.Bound, error) {
	expr := bc.exprs.Get(id)
	if expr == nil {
		return types.Bound{}, errNotInteger
	}
	switch expr.Kind {
	case ast.ExprLiteral:
		lit, _ := bc.exprs.Literal(id)
		if lit.Kind != ast.LitInt {
			return types.Bound{}, errNotInteger
		}
		return ParseIntLiteral(bc.strings.MustLookup(lit.Value))
	case ast.ExprParen:
		paren, _ := bc.exprs.Paren(id)
		return bc.LiteralValue(paren.Inner)
	case ast.ExprUnary:
		un, _ := bc.exprs.Unary(id)
		v, err := bc.LiteralValue(un.Operand)
		if err != nil {
			return v, err
		}
		switch un.Op {
		case ast.OpNeg:
			return types.Bound{Neg: !v.Neg && v.Abs != 0, Abs: v.Abs}, nil
		case ast.OpPlus:
			return v, nil
		}
	}
	return types.Bound{}, errNotInteger
}

// FitsInteger reports whether the integer literal lit lies in target's range.
// checked is false when lit is not an integer literal or target is not an
// integer type.
func (bc *BoundsChecker) FitsInteger(lit ast.ExprID, target types.TypeID) (fits, checked bool) {
	tt, ok := bc.types.Lookup(target)
	if !ok || tt.Kind != types.KindInteger {
		return false, false
	}
	v, err := bc.LiteralValue(lit)
	if err != nil {
		return false, false
	}
	return types.Within(v, tt.Low, tt.High), true
}

// FitsElements checks every integer literal of an array constructor against
// the element type of target (an array or set).
func (bc *BoundsChecker) FitsElements(ctor ast.ExprID, target types.TypeID) (fits, checked bool) {
	data, ok := bc.exprs.ArrayCtor(ctor)
	if !ok {
		return false, false
	}
	tt, ok := bc.types.Lookup(target)
	if !ok || (tt.Kind != types.KindArray && tt.Kind != types.KindSet) {
		return false, false
	}
	fits = true
	for _, el := range data.Elems {
		f, c := bc.FitsInteger(el, tt.Elem)
		if !c {
			continue
		}
		checked = true
		fits = fits && f
	}
	return fits, checked
}

// adjust applies literal range knowledge to a ladder value: a literal that
// fits is raised to at least ConvertLevel2, one that does not fit is capped
// at ConvertLevel4.
func (bc *BoundsChecker) adjust(level EqualityType, arg ast.ExprID, target types.TypeID) EqualityType {
	if level == Incompatible || level >= Equal || !arg.IsValid() {
		return level
	}
	fits, checked := bc.FitsInteger(arg, target)
	if !checked {
		fits, checked = bc.FitsElements(arg, target)
	}
	if !checked {
		return level
	}
	if fits {
		if level < ConvertLevel2 {
			return ConvertLevel2
		}
		return level
	}
	return minLevel(level, ConvertLevel4)
}
