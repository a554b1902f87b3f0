package types

import (
	"bytes"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Integer == NoTypeID || b.UnicodeString == NoTypeID || b.Unknown == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	integer := in.MustLookup(b.Integer)
	if integer.Kind != KindInteger || integer.Size != 4 {
		t.Fatalf("unexpected Integer descriptor %+v", integer)
	}
	if Label(in, b.Cardinal) != "Cardinal" {
		t.Fatalf("expected Cardinal label, got %q", Label(in, b.Cardinal))
	}
	if b.IntLiteral == b.Integer {
		t.Fatalf("literal type must differ from Integer")
	}
	if !in.IsUnknown(b.Unknown) || in.IsUnknown(b.Integer) {
		t.Fatalf("unknown sentinel misclassified")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner(nil)
	elem := in.Builtins().Integer
	arr1 := in.Intern(MakeArray(elem, ArrayDynamic))
	arr2 := in.Intern(MakeArray(elem, ArrayDynamic))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	open := in.Intern(MakeArray(elem, ArrayOpen))
	if open == arr1 {
		t.Fatalf("open and dynamic arrays must differ")
	}
}

func TestStrongAliasIsDistinct(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	b := in.Builtins()
	alias := in.StrongAlias(b.Integer, strs.Intern("TAge"))
	if alias == b.Integer {
		t.Fatalf("strong alias must be a distinct type")
	}
	if in.MustLookup(alias).Kind != KindInteger {
		t.Fatalf("strong alias must keep its shape")
	}
	if Label(in, alias) != "TAge" {
		t.Fatalf("unexpected label %q", Label(in, alias))
	}
}

func TestStructsAreNominal(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	a := in.RegisterStruct(StructInfo{Name: strs.Intern("TA"), Kind: StructClass})
	b := in.RegisterStruct(StructInfo{Name: strs.Intern("TA"), Kind: StructClass})
	if a == b {
		t.Fatalf("struct registrations must not be merged")
	}
}

func TestProcTypesAreStructural(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	info := ProcInfo{Kind: ProcOfObject, Params: []Param{{Type: b.Integer}}, Result: b.Boolean}
	p1 := in.RegisterProc(info)
	p2 := in.RegisterProc(info)
	if p1 != p2 {
		t.Fatalf("procedural types should be deduplicated")
	}
	info.Kind = ProcPlain
	if in.RegisterProc(info) == p1 {
		t.Fatalf("of-object flag must participate in identity")
	}
	if got := Label(in, p1); got != "function(Integer): Boolean of object" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestSubrange(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	sub := in.Subrange(b.Integer, Int(1), Int(10))
	tt := in.MustLookup(sub)
	if !tt.Has(FlagSubrange) || tt.Elem != b.Integer || tt.Size != 1 {
		t.Fatalf("unexpected subrange %+v", tt)
	}
	if in.Underlying(sub) != b.Integer {
		t.Fatalf("underlying of subrange must be its base")
	}
}

func TestBoundOrdering(t *testing.T) {
	cases := []struct {
		a, b Bound
		want int
	}{
		{Int(-1), Int(1), -1},
		{Int(0), Uint(0), 0},
		{MinInt64, Int(-5), -1},
		{MaxUint64, MaxInt64, 1},
		{Int(-3), Int(-3), 0},
	}
	for _, tc := range cases {
		if got := tc.a.Cmp(tc.b); got != tc.want {
			t.Fatalf("%v cmp %v = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
	if MinInt64.String() != "-9223372036854775808" {
		t.Fatalf("unexpected MinInt64 rendering %s", MinInt64)
	}
}

func TestInternerConcurrentIntern(t *testing.T) {
	in := NewInterner(nil)
	elem := in.Builtins().Word
	var wg sync.WaitGroup
	ids := make([]TypeID, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = in.Intern(MakeSet(elem))
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent interning produced different ids")
		}
	}
}

func TestInternerMsgpackRoundTrip(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	b := in.Builtins()
	cls := in.RegisterStruct(StructInfo{Name: strs.Intern("TFoo"), Kind: StructClass})
	proc := in.RegisterProc(ProcInfo{Params: []Param{{Type: cls, Mode: ParamVar}}})

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := &Interner{}
	if err := msgpack.NewDecoder(&buf).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out.AttachStrings(strs)
	if out.Builtins() != b {
		t.Fatalf("builtins differ after round trip")
	}
	if out.Intern(MakeArray(b.Integer, ArrayDynamic)) != in.Intern(MakeArray(b.Integer, ArrayDynamic)) {
		t.Fatalf("index not rebuilt")
	}
	if out.RegisterProc(ProcInfo{Params: []Param{{Type: cls, Mode: ParamVar}}}) != proc {
		t.Fatalf("proc index not rebuilt")
	}
	if Label(out, cls) != "TFoo" {
		t.Fatalf("unexpected label %q", Label(out, cls))
	}
}
