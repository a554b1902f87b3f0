package sema

import (
	"testing"

	"pasres/internal/symbols"
	"pasres/internal/types"
)

func TestCompareLadder(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	_, base := f.class("TBase", 0)
	_, derived := f.class("TDerived", base)
	_, rec := f.b.BeginStruct("TRec", f.span(), types.StructInfo{Kind: types.StructRecord})
	f.b.EndStruct(rec)
	_, other := f.b.BeginStruct("TOther", f.span(), types.StructInfo{Kind: types.StructRecord})
	f.b.EndStruct(other)
	f.b.EndUnit()

	cmp := NewComparer(f.table)
	b := f.bi
	cases := []struct {
		name     string
		from, to types.TypeID
		want     EqualityType
	}{
		{"same type", b.Integer, b.Integer, Exact},
		{"literal to integer", b.IntLiteral, b.Integer, Equal},
		{"widening", b.Byte, b.Word, ConvertLevel1},
		{"narrowing", b.Integer, b.Byte, ConvertLevel3},
		{"integer to float", b.Integer, b.Double, ConvertLevel4},
		{"float to integer", b.Double, b.Integer, Incompatible},
		{"single to double", b.Single, b.Double, ConvertLevel1},
		{"unicode to ansi", b.UnicodeString, b.AnsiString, ConvertLevel3},
		{"ansi to unicode", b.AnsiString, b.UnicodeString, ConvertLevel2},
		{"wide char to unicode", b.WideChar, b.UnicodeString, ConvertLevel2},
		{"nil to class", b.Nil, f.sys.TObject, ConvertLevel1},
		{"nil to record", b.Nil, rec, Incompatible},
		{"variant to integer", b.Variant, b.Integer, ConvertLevel6},
		{"integer to variant", b.Integer, b.Variant, ConvertLevel6},
		{"one step up", derived, base, ConvertLevel1},
		{"two steps up", derived, f.sys.TObject, ConvertLevel2},
		{"down cast", base, derived, Incompatible},
		{"distinct records", rec, other, Incompatible},
		{"unknown", b.Unknown, b.Integer, Incompatible},
	}
	for _, tc := range cases {
		if got := cmp.Compare(tc.from, tc.to); got != tc.want {
			t.Errorf("%s: Compare = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestCompareLadderIsMonotonic(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	_, base := f.class("TBase", 0)
	_, derived := f.class("TDerived", base)
	f.b.EndUnit()

	cmp := NewComparer(f.table)
	b := f.bi
	cases := []struct {
		name            string
		from            types.TypeID
		nearer, farther types.TypeID
	}{
		{"byte widens to word before cardinal", b.Byte, b.Word, b.Cardinal},
		{"byte stays integral before float", b.Byte, b.Integer, b.Double},
		{"widening before narrowing", b.Integer, b.Int64, b.Byte},
		{"float before variant", b.Integer, b.Double, b.Variant},
		{"single widens before fixed point", b.Single, b.Double, b.Currency},
		{"parent before grandparent", derived, base, f.sys.TObject},
	}
	for _, tc := range cases {
		near, far := cmp.Compare(tc.from, tc.nearer), cmp.Compare(tc.from, tc.farther)
		if near < far {
			t.Errorf("%s: %s ranks below %s", tc.name, near, far)
		}
	}
	for _, typ := range []types.TypeID{b.Byte, b.Integer, b.Int64, b.Double, b.Currency, b.AnsiString, b.Boolean, base} {
		if got := cmp.Compare(typ, typ); got != Exact {
			t.Errorf("Compare(%s, itself) = %s, want EXACT", types.Label(f.table.Types, typ), got)
		}
	}
}

func TestChooseBestPrefersNearestRange(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	f.b.EndUnit()
	calls := NewInvocationResolver(f.table, NewComparer(f.table), nil)

	cand := func(typ types.TypeID) *Candidate {
		return &Candidate{Params: []symbols.Param{{Type: typ}}}
	}
	integer, cardinal, word := cand(f.bi.Integer), cand(f.bi.Cardinal), cand(f.bi.Word)
	best := calls.ChooseBest([]*Candidate{integer, cardinal, word}, []Argument{{Type: f.bi.Byte}}, f.unit)
	if len(best) != 1 || best[0] != word {
		t.Fatalf("Byte argument must pick the Word overload, got %d survivors", len(best))
	}
	if !(word.Distance < cardinal.Distance && cardinal.Distance < integer.Distance) {
		t.Fatalf("distances out of order: word %g, cardinal %g, integer %g", word.Distance, cardinal.Distance, integer.Distance)
	}
}

func TestCompareTypeParamConstraint(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	_, base := f.class("TBase", 0)
	_, derived := f.class("TDerived", base)
	_, tp := f.b.DeclareTypeParameter("T", f.span(), []types.TypeID{base}, false)
	f.b.EndUnit()

	cmp := NewComparer(f.table)
	if got := cmp.Compare(derived, tp); got != ConvertLevel5 {
		t.Fatalf("subclass into constrained parameter = %s, want CONVERT_LEVEL_5", got)
	}
	if got := cmp.Compare(f.bi.Integer, tp); got != Incompatible {
		t.Fatalf("integer into class-constrained parameter = %s, want INCOMPATIBLE", got)
	}
	if got := cmp.Compare(tp, base); got != ConvertLevel1 {
		t.Fatalf("parameter to its constraint = %s, want CONVERT_LEVEL_1", got)
	}
}

func TestEqualityTypeOrder(t *testing.T) {
	order := []EqualityType{
		Incompatible, ConvertLevel8, ConvertLevel7, ConvertLevel6, ConvertLevel5,
		ConvertLevel4, ConvertLevel3, ConvertLevel2, ConvertLevel1, Equal, Exact,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("%s must rank below %s", order[i-1], order[i])
		}
	}
	if ConvertLevel3.Level() != 3 || Equal.Level() != 0 {
		t.Fatalf("unexpected levels: %d %d", ConvertLevel3.Level(), Equal.Level())
	}
	if !ConvertLevel7.IsOperator() || ConvertLevel6.IsOperator() {
		t.Fatalf("operator levels are 7 and 8 only")
	}
	if got := convertLevel(9); got != Incompatible {
		t.Fatalf("convertLevel(9) = %s", got)
	}
}
