package symbols

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/types"
)

func newTestTable(t *testing.T) (*Table, SystemTypes) {
	t.Helper()
	table := NewTable(Hints{}, nil, nil)
	_, sys := InstallSystem(table)
	if err := table.Validate(); err != nil {
		t.Fatalf("validate system: %v", err)
	}
	return table, sys
}

func TestSystemDeclaresBuiltins(t *testing.T) {
	table, sys := newTestTable(t)
	systemScope := table.Scope(table.UnitScope(table.System()))
	if systemScope == nil {
		t.Fatalf("system unit has no scope")
	}
	b := table.Types.Builtins()
	ids := systemScope.Local(table.Strings.FoldString("longint"))
	if len(ids) != 1 || table.Symbol(ids[0]).Type != b.Integer {
		t.Fatalf("LongInt must be a weak alias of Integer, got %v", ids)
	}
	if table.TypeSymbol(b.Integer) != systemScope.Local(table.Strings.FoldString("Integer"))[0] {
		t.Fatalf("Integer must be its own declaring symbol")
	}
	if !table.Members(sys.TObject).IsValid() {
		t.Fatalf("TObject has no member scope")
	}
	length := systemScope.Local(table.Strings.FoldString("LENGTH"))
	if len(length) != 1 || table.Symbol(length[0]).Routine.Intrinsic != IntrinsicLength {
		t.Fatalf("Length intrinsic missing")
	}
}

func TestSystemOperatorsStayOutOfNameLookup(t *testing.T) {
	table, _ := newTestTable(t)
	systemScope := table.Scope(table.UnitScope(table.System()))
	if ids := systemScope.Local(table.Strings.FoldString("Negative")); len(ids) != 0 {
		t.Fatalf("operator signatures leaked into System: %v", ids)
	}
	ops := table.Scope(table.Operators())
	if ops == nil {
		t.Fatalf("operator scope missing")
	}
	b := table.Types.Builtins()
	var results []types.TypeID
	for _, id := range ops.Local(table.Strings.FoldString("negative")) {
		sym := table.Symbol(id)
		if sym.Routine.Kind != RoutineOperator || len(sym.Params()) != 1 {
			t.Fatalf("Negative must be a unary operator, got %+v", sym.Routine)
		}
		results = append(results, sym.Type)
	}
	want := []types.TypeID{b.Integer, b.Int64, b.Single, b.Double, b.Extended, b.Currency}
	if len(results) != len(want) {
		t.Fatalf("Negative signatures = %v, want %v", results, want)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("Negative signature %d = %v, want %v", i, results[i], want[i])
		}
	}
}

func TestBuilderDuplicateReported(t *testing.T) {
	table, _ := newTestTable(t)
	bag := diag.NewBag(8)
	b := NewBuilder(table, BuilderOptions{Reporter: diag.BagReporter{Bag: bag}})
	b.BeginUnit("Main", source.Span{File: 1})
	integer := table.Types.Builtins().Integer
	if !b.DeclareVariable("Value", source.Span{File: 1, Start: 1, End: 6}, integer).IsValid() {
		t.Fatalf("first declaration must succeed")
	}
	if b.DeclareVariable("VALUE", source.Span{File: 1, Start: 10, End: 15}, integer).IsValid() {
		t.Fatalf("case-insensitive duplicate must be rejected")
	}
	if !bag.Has(diag.TblDuplicateSymbol) {
		t.Fatalf("expected duplicate diagnostic")
	}
	// overloads share a name
	r1 := b.DeclareRoutine("Foo", source.Span{File: 1}, RoutineInfo{Params: []Param{{Type: integer}}}, 0)
	r2 := b.DeclareRoutine("foo", source.Span{File: 1}, RoutineInfo{}, 0)
	if !r1.IsValid() || !r2.IsValid() {
		t.Fatalf("overloaded routines must both be declared")
	}
	b.EndUnit()
}

func TestBuilderStructMembersAndHelpers(t *testing.T) {
	table, sys := newTestTable(t)
	b := NewBuilder(table, BuilderOptions{})
	b.BeginUnit("Shapes", source.Span{File: 2})
	b.Uses("System", source.Span{File: 2})
	_, shape := b.BeginStruct("TShape", source.Span{File: 2}, types.StructInfo{Kind: types.StructClass, Super: sys.TObject})
	b.SetVisibility(VisPrivate)
	field := b.DeclareVariable("FArea", source.Span{File: 2}, table.Types.Builtins().Double)
	b.EndStruct(shape)
	_, helper := b.BeginStruct("TShapeHelper", source.Span{File: 2}, types.StructInfo{Kind: types.StructClassHelper, Extended: shape})
	b.EndStruct(helper)
	b.EndUnit()

	sym := table.Symbol(field)
	if sym.Owner != shape || sym.Visibility != VisPrivate || sym.Flags&SymbolFlagField == 0 {
		t.Fatalf("unexpected field symbol %+v", sym)
	}
	unitScope := table.UnitScope(table.Unit("shapes"))
	if got := table.HelperFor(shape, unitScope); got != helper {
		t.Fatalf("HelperFor = %d, want %d", got, helper)
	}
	if table.HelperFor(sys.TObject, unitScope).IsValid() {
		t.Fatalf("helper must not apply to the ancestor")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRoutineBodyScope(t *testing.T) {
	table, _ := newTestTable(t)
	b := NewBuilder(table, BuilderOptions{})
	b.BeginUnit("Main", source.Span{File: 1})
	integer := table.Types.Builtins().Integer
	fn := b.DeclareRoutine("Twice", source.Span{File: 1}, RoutineInfo{
		Kind:   RoutineFunction,
		Params: []Param{{Name: table.Strings.Intern("X"), Type: integer}},
		Result: integer,
	}, 0)
	body := b.BeginRoutine(fn, source.Span{File: 1})
	b.EndRoutine(body)
	b.EndUnit()

	scope := table.Scope(body)
	if scope.Routine != fn || table.EnclosingRoutine(body) != fn {
		t.Fatalf("routine scope must link to its routine")
	}
	if len(scope.Local(table.Strings.FoldString("x"))) != 1 || len(scope.Local(table.Strings.FoldString("result"))) != 1 {
		t.Fatalf("parameters and Result must be declared in the body scope")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestCompleteTypeParameterOnce(t *testing.T) {
	table, sys := newTestTable(t)
	b := NewBuilder(table, BuilderOptions{})
	b.BeginUnit("Generics", source.Span{File: 3})
	param, typ := b.DeclareTypeParameter("T", source.Span{File: 3}, nil, true)
	b.EndUnit()

	if table.Symbol(param).TypeParam.Complete {
		t.Fatalf("forward parameter must start incomplete")
	}
	if err := table.CompleteTypeParameter(param, []types.TypeID{sys.TObject}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	info, _ := table.Types.TypeParamInfo(typ)
	if len(info.Constraints) != 1 || info.Constraints[0] != sys.TObject {
		t.Fatalf("constraints not recorded: %+v", info)
	}
	if err := table.CompleteTypeParameter(param, nil); !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("second completion must fail, got %v", err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestUsesUnknownUnit(t *testing.T) {
	table, _ := newTestTable(t)
	bag := diag.NewBag(4)
	b := NewBuilder(table, BuilderOptions{Reporter: diag.BagReporter{Bag: bag}})
	b.BeginUnit("Main", source.Span{File: 1})
	if b.Uses("Missing", source.Span{File: 1}).IsValid() {
		t.Fatalf("unknown unit must not produce an import")
	}
	b.EndUnit()
	if !bag.Has(diag.TblUnknownUnitImport) {
		t.Fatalf("expected unknown unit diagnostic")
	}
}

func TestTableMsgpackRoundTrip(t *testing.T) {
	table, sys := newTestTable(t)
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(table); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := &Table{}
	if err := msgpack.NewDecoder(&buf).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out.Attach(table.Strings, table.Types)
	if out.System() != table.System() || out.Unit("system") != table.System() {
		t.Fatalf("system unit lost in round trip")
	}
	if out.Members(sys.TObject) != table.Members(sys.TObject) {
		t.Fatalf("member scopes lost in round trip")
	}
	if out.Registry(out.System()) == nil {
		t.Fatalf("registries must be rebuilt")
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("validate decoded: %v", err)
	}
}

func TestRegistrySnapshotIsSorted(t *testing.T) {
	var r Registry
	r.Add(Usage{Symbol: 2, Span: source.Span{File: 1, Start: 5}})
	r.Add(Usage{Symbol: 1, Span: source.Span{File: 2, Start: 1}})
	r.Add(Usage{Symbol: 1, Span: source.Span{File: 1, Start: 9}})
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Span.File != 1 || snap[0].Symbol != 1 || snap[2].Symbol != 2 {
		t.Fatalf("unexpected order %+v", snap)
	}
	if len(r.For(1)) != 2 {
		t.Fatalf("expected two usages of symbol 1")
	}
}

func TestValidateNamesBrokenSymbol(t *testing.T) {
	table, _ := newTestTable(t)
	id := table.TypeSymbol(table.Types.Builtins().Integer)
	table.Symbol(id).Scope = NoScopeID

	err := table.Validate()
	if err == nil {
		t.Fatalf("a symbol without scope must fail validation")
	}
	want := id.String() + " has invalid scope scope#none"
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not mention %q", err, want)
	}
	if NoSymbolID.String() != "sym#none" || ScopeID(7).String() != "scope#7" {
		t.Fatalf("unexpected id rendering: %s %s", NoSymbolID, ScopeID(7))
	}
}
