package ast

import (
	"pasres/internal/source"
	"pasres/internal/symbols"
)

type Hints struct{ Files, Stmts, Exprs uint }

type Builder struct {
	Files *Files
	Stmts *Stmts
	Exprs *Exprs
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
	}
}

func (b *Builder) NewFile(sp source.Span, path string, unit symbols.SymbolID, scope symbols.ScopeID) FileID {
	return b.Files.New(sp, path, unit, scope)
}

func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	f := b.Files.Get(file)
	if f == nil {
		return
	}
	f.Body = append(f.Body, stmt)
}

// Convenience constructors used by front ends and tests.

// Ident creates a single-fragment name.
func (b *Builder) Ident(sp source.Span, name source.StringID) ExprID {
	return b.Exprs.NewName(sp, NameRef{Name: name, Span: sp})
}

// Call creates `head(args...)`.
func (b *Builder) Call(sp source.Span, head ExprID, args ...ExprID) ExprID {
	return b.Exprs.NewPrimary(sp, head, Part{Kind: PartCall, Span: sp, Args: args})
}

// Index creates `head[args...]`.
func (b *Builder) Index(sp source.Span, head ExprID, args ...ExprID) ExprID {
	return b.Exprs.NewPrimary(sp, head, Part{Kind: PartIndex, Span: sp, Args: args})
}

// Walk visits every expression reachable from stmt, parents before children.
func (b *Builder) Walk(stmt StmtID, visit func(ExprID)) {
	st := b.Stmts.Get(stmt)
	if st == nil {
		return
	}
	switch st.Kind {
	case StmtBlock:
		data, _ := b.Stmts.Block(stmt)
		for _, s := range data.Body {
			b.Walk(s, visit)
		}
	case StmtExpr:
		data, _ := b.Stmts.Expr(stmt)
		b.WalkExpr(data.Expr, visit)
	case StmtAssign:
		data, _ := b.Stmts.Assign(stmt)
		b.WalkExpr(data.Target, visit)
		b.WalkExpr(data.Value, visit)
	case StmtIf:
		data, _ := b.Stmts.If(stmt)
		b.WalkExpr(data.Cond, visit)
		b.Walk(data.Then, visit)
		b.Walk(data.Else, visit)
	case StmtWhile:
		data, _ := b.Stmts.While(stmt)
		b.WalkExpr(data.Cond, visit)
		b.Walk(data.Body, visit)
	case StmtFor:
		data, _ := b.Stmts.For(stmt)
		b.WalkExpr(data.Var, visit)
		b.WalkExpr(data.From, visit)
		b.WalkExpr(data.To, visit)
		b.Walk(data.Body, visit)
	}
}

// WalkExpr visits id and its sub-expressions, parents before children.
func (b *Builder) WalkExpr(id ExprID, visit func(ExprID)) {
	expr := b.Exprs.Get(id)
	if expr == nil {
		return
	}
	visit(id)
	switch expr.Kind {
	case ExprName:
		data, _ := b.Exprs.Name(id)
		for _, part := range data.Parts {
			for _, arg := range part.TypeArgs {
				b.WalkExpr(arg, visit)
			}
		}
	case ExprPrimary:
		data, _ := b.Exprs.Primary(id)
		b.WalkExpr(data.Head, visit)
		for _, part := range data.Parts {
			for _, arg := range part.Name.TypeArgs {
				b.WalkExpr(arg, visit)
			}
			for _, arg := range part.Args {
				b.WalkExpr(arg, visit)
			}
		}
	case ExprBinary:
		data, _ := b.Exprs.Binary(id)
		b.WalkExpr(data.Left, visit)
		b.WalkExpr(data.Right, visit)
	case ExprUnary:
		data, _ := b.Exprs.Unary(id)
		b.WalkExpr(data.Operand, visit)
	case ExprParen:
		data, _ := b.Exprs.Paren(id)
		b.WalkExpr(data.Inner, visit)
	case ExprArrayCtor:
		data, _ := b.Exprs.ArrayCtor(id)
		for _, el := range data.Elems {
			b.WalkExpr(el, visit)
		}
	}
}
