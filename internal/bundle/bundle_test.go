package bundle_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/ast"
	"pasres/internal/bundle"
	"pasres/internal/diag"
	"pasres/internal/sema"
	"pasres/internal/source"
	"pasres/internal/symbols"
)

// buildProgram declares `var Total: Int64;` and `procedure Put(v: Int64)` in
// unit Main and calls Put(Total).
func buildProgram(t *testing.T) (*bundle.Program, ast.ExprID) {
	t.Helper()
	table := symbols.NewTable(symbols.Hints{}, nil, nil)
	symbols.InstallSystem(table)
	b := symbols.NewBuilder(table, symbols.BuilderOptions{})
	bi := table.Types.Builtins()
	sp := source.Span{File: 1, Start: 0, End: 4}

	unit := b.BeginUnit("Main", sp)
	b.DeclareVariable("Total", sp, bi.Int64)
	b.DeclareRoutine("Put", sp, symbols.RoutineInfo{
		Kind:   symbols.RoutineProcedure,
		Params: []symbols.Param{{Name: table.Strings.Intern("v"), Type: bi.Int64}},
	}, 0)
	b.EndUnit()

	tree := ast.NewBuilder(ast.Hints{})
	scope := table.UnitScope(unit)
	file := tree.NewFile(sp, "main.pas", unit, scope)
	call := tree.Call(sp, tree.Ident(sp, table.Strings.Intern("Put")), tree.Ident(sp, table.Strings.Intern("Total")))
	tree.PushStmt(file, tree.Stmts.NewBlock(sp, scope, symbols.NoSymbolID, tree.Stmts.NewExpr(sp, call)))
	return bundle.New(table, tree), call
}

func TestRoundTripResolves(t *testing.T) {
	prog, call := buildProgram(t)
	var buf bytes.Buffer
	if err := bundle.Encode(&buf, prog); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := bundle.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	files := got.Files()
	if len(files) != 1 || got.Path(files[0]) != "main.pas" {
		t.Fatalf("files = %v", files)
	}
	if got.Table.Unit("main") == symbols.NoSymbolID {
		t.Fatalf("unit index must be rebuilt after decode")
	}

	bag := diag.NewBag(16)
	res, err := sema.Resolve(context.Background(), got.Table, got.Tree, files[0], sema.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Bindings[call].IsValid() {
		t.Fatalf("Put(Total) is unbound after round trip; diagnostics: %v", bag.Items())
	}
	if res.TypeOf(call) != got.Types.Builtins().Void {
		t.Fatalf("procedure call must be Void")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	prog, _ := buildProgram(t)
	path := filepath.Join(t.TempDir(), "out", "main.pbundle")
	if err := bundle.WriteFile(path, prog); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := bundle.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Strings.Len() != prog.Strings.Len() {
		t.Fatalf("strings: %d, want %d", got.Strings.Len(), prog.Strings.Len())
	}
	if got.Types.Len() != prog.Types.Len() {
		t.Fatalf("types: %d, want %d", got.Types.Len(), prog.Types.Len())
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	raw, err := msgpack.Marshal(map[string]any{"Schema": 99})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := bundle.Decode(bytes.NewReader(raw)); !errors.Is(err, bundle.ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
}
