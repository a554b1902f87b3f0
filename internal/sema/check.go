package sema

import (
	"context"
	"fmt"
	"strings"

	"pasres/internal/ast"
	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/trace"
	"pasres/internal/types"
)

// DefaultUnitScopeNames are the namespace prefixes tried for partially
// qualified unit names when none are configured.
var DefaultUnitScopeNames = []string{"System", "SysUtils"}

// Options configures a resolution pass.
type Options struct {
	Reporter diag.Reporter
	// UnitScopeNames are prepended to a unit prefix: `Classes` may stand for
	// `System.Classes`.
	UnitScopeNames []string
	// UnitAliases maps an alias to a real unit name.
	UnitAliases map[string]string
}

// Result carries the outcome of resolving one file.
type Result struct {
	File        ast.FileID
	ExprTypes   map[ast.ExprID]types.TypeID
	Bindings    map[ast.ExprID]symbols.SymbolID
	Occurrences []Occurrence
}

// TypeOf returns the recorded type of an expression, or NoTypeID.
func (r *Result) TypeOf(id ast.ExprID) types.TypeID {
	if r == nil {
		return types.NoTypeID
	}
	return r.ExprTypes[id]
}

type resolver struct {
	ctx      context.Context
	table    *symbols.Table
	tree     *ast.Builder
	types    *types.Interner
	strings  *source.Interner
	b        types.Builtins
	cmp      *Comparer
	bounds   *BoundsChecker
	search   *Searcher
	calls    *InvocationResolver
	reporter diag.Reporter
	tracer   trace.Tracer
	result   *Result
	// denotes maps type expressions to the type they name.
	denotes  map[ast.ExprID]types.TypeID

	unit  symbols.SymbolID
	scope symbols.ScopeID
	err   error

	scopeNames []string
	aliases    map[source.StringID]string // folded alias -> unit name
}

// Resolve binds every identifier occurrence of file and computes the type of
// every expression. Statements are walked in order; an ambiguity stops the
// walk and is returned as *AmbiguityError. Other problems are reported and
// resolution continues with Unknown types.
func Resolve(ctx context.Context, table *symbols.Table, tree *ast.Builder, file ast.FileID, opts Options) (*Result, error) {
	f := tree.Files.Get(file)
	if f == nil {
		return nil, fmt.Errorf("resolve: unknown file %d", file)
	}
	r := newResolver(ctx, table, tree, opts)
	r.result.File = file
	r.unit = f.Unit
	r.scope = f.Scope

	span := trace.Begin(r.tracer, trace.ScopeFile, "resolve:"+f.Path, trace.CurrentSpan(r.ctx).SpanID)
	defer func() {
		span.WithExtra("occurrences", fmt.Sprintf("%d", len(r.result.Occurrences)))
		span.End("")
	}()

	for _, stmt := range f.Body {
		if err := r.ctx.Err(); err != nil {
			return r.result, err
		}
		r.stmt(stmt)
		if r.failed() {
			break
		}
	}
	return r.result, r.err
}

func newResolver(ctx context.Context, table *symbols.Table, tree *ast.Builder, opts Options) *resolver {
	if ctx == nil {
		ctx = context.Background()
	}
	cmp := NewComparer(table)
	bounds := NewBoundsChecker(table.Types, table.Strings, tree.Exprs)
	r := &resolver{
		ctx:      ctx,
		table:    table,
		tree:     tree,
		types:    table.Types,
		strings:  table.Strings,
		b:        table.Types.Builtins(),
		cmp:      cmp,
		bounds:   bounds,
		search:   NewSearcher(table),
		calls:    NewInvocationResolver(table, cmp, bounds),
		reporter: opts.Reporter,
		tracer:   trace.FromContext(ctx),
		result: &Result{
			ExprTypes: make(map[ast.ExprID]types.TypeID),
			Bindings:  make(map[ast.ExprID]symbols.SymbolID),
		},
		denotes:    make(map[ast.ExprID]types.TypeID),
		scopeNames: opts.UnitScopeNames,
		aliases:    make(map[source.StringID]string, len(opts.UnitAliases)),
	}
	if r.scopeNames == nil {
		r.scopeNames = DefaultUnitScopeNames
	}
	for alias, target := range opts.UnitAliases {
		r.aliases[table.Strings.FoldString(strings.TrimSpace(alias))] = target
	}
	return r
}

func (r *resolver) stmt(id ast.StmtID) {
	if !id.IsValid() || r.failed() {
		return
	}
	st := r.tree.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		data, _ := r.tree.Stmts.Block(id)
		saved := r.scope
		if data.Scope.IsValid() {
			r.scope = data.Scope
		}
		for _, s := range data.Body {
			r.stmt(s)
			if r.failed() {
				break
			}
		}
		r.scope = saved
	case ast.StmtExpr:
		data, _ := r.tree.Stmts.Expr(id)
		r.expr(data.Expr)
	case ast.StmtAssign:
		data, _ := r.tree.Stmts.Assign(id)
		r.expr(data.Target)
		r.expr(data.Value)
	case ast.StmtIf:
		data, _ := r.tree.Stmts.If(id)
		r.expr(data.Cond)
		r.stmt(data.Then)
		r.stmt(data.Else)
	case ast.StmtWhile:
		data, _ := r.tree.Stmts.While(id)
		r.expr(data.Cond)
		r.stmt(data.Body)
	case ast.StmtFor:
		data, _ := r.tree.Stmts.For(id)
		r.expr(data.Var)
		r.expr(data.From)
		r.expr(data.To)
		r.stmt(data.Body)
	}
}

// record stores the type of an expression and returns it.
func (r *resolver) record(id ast.ExprID, typ types.TypeID) types.TypeID {
	if !typ.IsValid() {
		typ = r.b.Unknown
	}
	if id.IsValid() {
		r.result.ExprTypes[id] = typ
	}
	return typ
}
