package sema

import (
	"context"
	"testing"

	"pasres/internal/ast"
	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// fixture builds a small program in memory: units and declarations through
// the symbols builder, statements through the ast builder.
type fixture struct {
	t     *testing.T
	table *symbols.Table
	sys   symbols.SystemTypes
	b     *symbols.Builder
	tree  *ast.Builder
	bag   *diag.Bag
	bi    types.Builtins
	unit  symbols.SymbolID
	file  ast.FileID
	pos   uint32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	table := symbols.NewTable(symbols.Hints{}, nil, nil)
	_, sys := symbols.InstallSystem(table)
	bag := diag.NewBag(64)
	return &fixture{
		t:     t,
		table: table,
		sys:   sys,
		b:     symbols.NewBuilder(table, symbols.BuilderOptions{Reporter: diag.BagReporter{Bag: bag}}),
		tree:  ast.NewBuilder(ast.Hints{}),
		bag:   bag,
		bi:    table.Types.Builtins(),
	}
}

// span returns a fresh non-overlapping span.
func (f *fixture) span() source.Span {
	f.pos += 10
	return source.Span{File: 1, Start: f.pos, End: f.pos + 5}
}

func (f *fixture) str(s string) source.StringID { return f.table.Strings.Intern(s) }

// main opens the unit whose body gets resolved.
func (f *fixture) main(name string) {
	f.unit = f.b.BeginUnit(name, f.span())
	f.file = f.tree.NewFile(f.span(), name+".pas", f.unit, f.table.UnitScope(f.unit))
}

func (f *fixture) ident(name string) ast.ExprID {
	return f.tree.Ident(f.span(), f.str(name))
}

func (f *fixture) dotted(names ...string) ast.ExprID {
	parts := make([]ast.NameRef, 0, len(names))
	for _, n := range names {
		parts = append(parts, ast.NameRef{Name: f.str(n), Span: f.span()})
	}
	return f.tree.Exprs.NewName(f.span(), parts...)
}

func (f *fixture) call(name string, args ...ast.ExprID) ast.ExprID {
	return f.tree.Call(f.span(), f.ident(name), args...)
}

func (f *fixture) member(head ast.ExprID, name string) ast.ExprID {
	return f.tree.Exprs.NewPrimary(f.span(), head, ast.Part{
		Kind: ast.PartMember,
		Span: f.span(),
		Name: ast.NameRef{Name: f.str(name), Span: f.span()},
	})
}

func (f *fixture) lit(kind ast.LitKind, text string) ast.ExprID {
	return f.tree.Exprs.NewLiteral(f.span(), kind, f.str(text))
}

func (f *fixture) intLit(text string) ast.ExprID { return f.lit(ast.LitInt, text) }

// block appends a begin..end block of expression statements to the file.
func (f *fixture) block(scope symbols.ScopeID, routine symbols.SymbolID, exprs ...ast.ExprID) {
	body := make([]ast.StmtID, 0, len(exprs))
	for _, e := range exprs {
		body = append(body, f.tree.Stmts.NewExpr(f.span(), e))
	}
	if !scope.IsValid() {
		scope = f.table.UnitScope(f.unit)
	}
	f.tree.PushStmt(f.file, f.tree.Stmts.NewBlock(f.span(), scope, routine, body...))
}

func (f *fixture) resolve(opts Options) (*Result, error) {
	f.t.Helper()
	if opts.Reporter == nil {
		opts.Reporter = diag.BagReporter{Bag: f.bag}
	}
	return Resolve(context.Background(), f.table, f.tree, f.file, opts)
}

func (f *fixture) mustResolve() *Result {
	f.t.Helper()
	res, err := f.resolve(Options{})
	if err != nil {
		f.t.Fatalf("resolve: %v", err)
	}
	return res
}

func (f *fixture) param(name string, typ types.TypeID) symbols.Param {
	return symbols.Param{Name: f.str(name), Span: f.span(), Type: typ}
}

func (f *fixture) function(name string, result types.TypeID, params ...symbols.Param) symbols.SymbolID {
	return f.b.DeclareRoutine(name, f.span(), symbols.RoutineInfo{
		Kind:       symbols.RoutineFunction,
		Params:     params,
		Result:     result,
		Directives: symbols.DirOverload,
	}, 0)
}

func (f *fixture) procedure(name string, params ...symbols.Param) symbols.SymbolID {
	return f.b.DeclareRoutine(name, f.span(), symbols.RoutineInfo{
		Kind:       symbols.RoutineProcedure,
		Params:     params,
		Directives: symbols.DirOverload,
	}, 0)
}

func (f *fixture) class(name string, super types.TypeID) (symbols.SymbolID, types.TypeID) {
	if !super.IsValid() {
		super = f.sys.TObject
	}
	return f.b.BeginStruct(name, f.span(), types.StructInfo{Kind: types.StructClass, Super: super})
}

// occurrenceOf returns the last occurrence committed for expr.
func occurrenceOf(t *testing.T, res *Result, expr ast.ExprID) Occurrence {
	t.Helper()
	var found []Occurrence
	for _, occ := range res.Occurrences {
		if occ.Expr == expr {
			found = append(found, occ)
		}
	}
	if len(found) == 0 {
		t.Fatalf("no occurrence recorded for expr %d", expr)
	}
	return found[len(found)-1]
}
