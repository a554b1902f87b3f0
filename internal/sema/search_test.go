package sema

import (
	"slices"
	"testing"

	"pasres/internal/symbols"
	"pasres/internal/types"
)

func TestSearchCaseInsensitiveNearestScope(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	outer := f.b.DeclareVariable("Count", f.span(), f.bi.Integer)
	routine := f.procedure("Run")
	scope := f.b.BeginRoutine(routine, f.span())
	inner := f.b.DeclareVariable("COUNT", f.span(), f.bi.Int64)
	f.b.EndRoutine(scope)
	f.b.EndUnit()

	s := NewSearcher(f.table)
	if got := s.Search(f.str("count"), scope, types.NoTypeID); !slices.Equal(got, []symbols.SymbolID{inner}) {
		t.Fatalf("inner scope must shadow outer, got %v", got)
	}
	if got := s.Search(f.str("cOuNt"), f.table.UnitScope(f.unit), types.NoTypeID); !slices.Equal(got, []symbols.SymbolID{outer}) {
		t.Fatalf("unit scope lookup = %v", got)
	}
	if got := s.Search(f.str("integer"), scope, types.NoTypeID); len(got) != 1 {
		t.Fatalf("System declarations must be reachable, got %v", got)
	}
}

func TestSearchCollectsOverloadsUpTheChain(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	_, base := f.class("TBase", 0)
	up := f.procedure("Put", f.param("v", f.bi.Integer))
	f.b.EndStruct(base)
	_, derived := f.class("TDerived", base)
	down := f.procedure("Put", f.param("v", f.bi.UnicodeString))
	f.b.EndStruct(derived)
	_, hidden := f.class("THidden", base)
	f.b.DeclareRoutine("Put", f.span(), symbols.RoutineInfo{Kind: symbols.RoutineProcedure}, 0)
	f.b.EndStruct(hidden)
	f.b.EndUnit()

	s := NewSearcher(f.table)
	unitScope := f.table.UnitScope(f.unit)
	if got := s.Search(f.str("put"), unitScope, derived); !slices.Equal(got, []symbols.SymbolID{down, up}) {
		t.Fatalf("overloads must be collected nearest first, got %v", got)
	}
	if got := s.Search(f.str("put"), unitScope, hidden); len(got) != 1 {
		t.Fatalf("a non-overload declaration hides the ancestors, got %v", got)
	}
}

func TestSearchTypeParamConstraint(t *testing.T) {
	f := newFixture(t)
	f.main("Main")
	_, base := f.class("TBase", 0)
	show := f.procedure("Show")
	f.b.EndStruct(base)
	_, tp := f.b.DeclareTypeParameter("T", f.span(), []types.TypeID{f.bi.Integer, base}, false)
	f.b.EndUnit()

	s := NewSearcher(f.table)
	got := s.Search(f.str("Show"), f.table.UnitScope(f.unit), tp)
	if !slices.Equal(got, []symbols.SymbolID{show}) {
		t.Fatalf("members of a type parameter come from its constraints, got %v", got)
	}
	if got := s.Search(f.str("Missing"), f.table.UnitScope(f.unit), tp); len(got) != 0 {
		t.Fatalf("unexpected hit %v", got)
	}
}

func TestSearchInUnitHidesImplementation(t *testing.T) {
	f := newFixture(t)
	lib := f.b.BeginUnit("Lib", f.span())
	public := f.b.DeclareVariable("Shared", f.span(), f.bi.Integer)
	f.b.Implementation()
	f.b.DeclareVariable("Private", f.span(), f.bi.Integer)
	f.b.EndUnit()
	f.main("Main")
	f.b.EndUnit()

	s := NewSearcher(f.table)
	libScope := f.table.UnitScope(lib)
	if got := s.InUnit(f.str("shared"), libScope, f.unit); !slices.Equal(got, []symbols.SymbolID{public}) {
		t.Fatalf("interface declaration = %v", got)
	}
	if got := s.InUnit(f.str("private"), libScope, f.unit); len(got) != 0 {
		t.Fatalf("implementation declaration leaked: %v", got)
	}
	if got := s.InUnit(f.str("private"), libScope, lib); len(got) != 1 {
		t.Fatalf("unit must see its own implementation, got %v", got)
	}
}
