package ast

import (
	"slices"

	"pasres/internal/source"
	"pasres/internal/symbols"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtExpr
	StmtAssign
	StmtIf
	StmtWhile
	StmtFor
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// StmtBlockData is a begin..end block. Routine bodies carry the routine scope
// built by the declaration pass and the routine they implement.
type StmtBlockData struct {
	Scope   symbols.ScopeID
	Routine symbols.SymbolID
	Body    []StmtID
}

type StmtExprData struct {
	Expr ExprID
}

type StmtAssignData struct {
	Target ExprID
	Value  ExprID
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

type StmtWhileData struct {
	Cond ExprID
	Body StmtID
}

type StmtForData struct {
	Var  ExprID
	From ExprID
	To   ExprID
	Body StmtID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[StmtBlockData]
	Exprs   *Arena[StmtExprData]
	Assigns *Arena[StmtAssignData]
	Ifs     *Arena[StmtIfData]
	Whiles  *Arena[StmtWhileData]
	Fors    *Arena[StmtForData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[StmtBlockData](capHint / 4),
		Exprs:   NewArena[StmtExprData](capHint),
		Assigns: NewArena[StmtAssignData](capHint),
		Ifs:     NewArena[StmtIfData](capHint / 4),
		Whiles:  NewArena[StmtWhileData](capHint / 4),
		Fors:    NewArena[StmtForData](capHint / 4),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewBlock(span source.Span, scope symbols.ScopeID, routine symbols.SymbolID, body ...StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(StmtBlockData{Scope: scope, Routine: routine, Body: slices.Clone(body)}))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	p, ok := s.payload(id, StmtBlock)
	if !ok {
		return nil, false
	}
	return s.Blocks.Get(p), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(StmtExprData{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}

func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(StmtAssignData{Target: target, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(StmtWhileData{Cond: cond, Body: body}))
}

func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	p, ok := s.payload(id, StmtWhile)
	if !ok {
		return nil, false
	}
	return s.Whiles.Get(p), true
}

func (s *Stmts) NewFor(span source.Span, v, from, to ExprID, body StmtID) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(StmtForData{Var: v, From: from, To: to, Body: body}))
}

func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	p, ok := s.payload(id, StmtFor)
	if !ok {
		return nil, false
	}
	return s.Fors.Get(p), true
}
