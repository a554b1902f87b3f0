package sema

import (
	"testing"

	"pasres/internal/ast"
	"pasres/internal/types"
)

func TestParseIntLiteral(t *testing.T) {
	cases := []struct {
		text string
		want types.Bound
	}{
		{"42", types.Bound{Abs: 42}},
		{"$FF", types.Bound{Abs: 255}},
		{"%101", types.Bound{Abs: 5}},
		{"&17", types.Bound{Abs: 15}},
		{"1_000", types.Bound{Abs: 1000}},
		{"-5", types.Bound{Neg: true, Abs: 5}},
		{"-0", types.Bound{}},
		{"18446744073709551615", types.Bound{Abs: 18446744073709551615}},
	}
	for _, tc := range cases {
		got, err := ParseIntLiteral(tc.text)
		if err != nil {
			t.Fatalf("ParseIntLiteral(%q): %v", tc.text, err)
		}
		if got != tc.want {
			t.Errorf("ParseIntLiteral(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
	for _, bad := range []string{"", "$", "12a", "18446744073709551616"} {
		if _, err := ParseIntLiteral(bad); err == nil {
			t.Errorf("ParseIntLiteral(%q) must fail", bad)
		}
	}
}

func TestBoundsAdjust(t *testing.T) {
	f := newFixture(t)
	bc := NewBoundsChecker(f.table.Types, f.table.Strings, f.tree.Exprs)

	small := f.intLit("200")
	big := f.intLit("300")
	neg := f.tree.Exprs.NewUnary(f.span(), ast.OpNeg, f.intLit("1"))

	if fits, checked := bc.FitsInteger(small, f.bi.Byte); !checked || !fits {
		t.Fatalf("200 must fit Byte")
	}
	if fits, checked := bc.FitsInteger(neg, f.bi.Byte); !checked || fits {
		t.Fatalf("-1 must not fit Byte")
	}
	if _, checked := bc.FitsInteger(small, f.bi.Double); checked {
		t.Fatalf("non-integer targets are not checked")
	}

	if got := bc.adjust(ConvertLevel3, small, f.bi.Byte); got != ConvertLevel2 {
		t.Fatalf("fitting literal = %s, want CONVERT_LEVEL_2", got)
	}
	if got := bc.adjust(ConvertLevel3, big, f.bi.Byte); got != ConvertLevel4 {
		t.Fatalf("overflowing literal = %s, want CONVERT_LEVEL_4", got)
	}
	if got := bc.adjust(Equal, big, f.bi.Byte); got != Equal {
		t.Fatalf("Equal must stay Equal, got %s", got)
	}
	if got := bc.adjust(ConvertLevel3, ast.NoExprID, f.bi.Byte); got != ConvertLevel3 {
		t.Fatalf("synthesized argument must stay unchanged, got %s", got)
	}
}
