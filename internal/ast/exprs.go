package ast

import (
	"slices"

	"pasres/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena      *Arena[Expr]
	Names      *Arena[ExprNameData]
	Primaries  *Arena[ExprPrimaryData]
	Literals   *Arena[ExprLiteralData]
	Binaries   *Arena[ExprBinaryData]
	Unaries    *Arena[ExprUnaryData]
	Parens     *Arena[ExprParenData]
	ArrayCtors *Arena[ExprArrayCtorData]
	Inherits   *Arena[ExprInheritedData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Names:      NewArena[ExprNameData](capHint),
		Primaries:  NewArena[ExprPrimaryData](capHint),
		Literals:   NewArena[ExprLiteralData](capHint),
		Binaries:   NewArena[ExprBinaryData](capHint),
		Unaries:    NewArena[ExprUnaryData](capHint),
		Parens:     NewArena[ExprParenData](capHint / 4),
		ArrayCtors: NewArena[ExprArrayCtorData](capHint / 4),
		Inherits:   NewArena[ExprInheritedData](capHint / 4),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

func cloneNameRefs(parts []NameRef) []NameRef {
	out := make([]NameRef, len(parts))
	for i, p := range parts {
		out[i] = NameRef{Name: p.Name, Span: p.Span, TypeArgs: slices.Clone(p.TypeArgs)}
	}
	return out
}

// NewName creates a dotted name chain.
func (e *Exprs) NewName(span source.Span, parts ...NameRef) ExprID {
	payload := e.Names.Allocate(ExprNameData{Parts: cloneNameRefs(parts)})
	return e.new(ExprName, span, PayloadID(payload))
}

// Name returns the name chain data for the given expression ID.
func (e *Exprs) Name(id ExprID) (*ExprNameData, bool) {
	p, ok := e.payload(id, ExprName)
	if !ok {
		return nil, false
	}
	return e.Names.Get(p), true
}

// NewPrimary creates a primary expression from a head and trailing parts.
func (e *Exprs) NewPrimary(span source.Span, head ExprID, parts ...Part) ExprID {
	cloned := make([]Part, len(parts))
	for i, p := range parts {
		cloned[i] = p
		cloned[i].Args = slices.Clone(p.Args)
		cloned[i].Name.TypeArgs = slices.Clone(p.Name.TypeArgs)
	}
	payload := e.Primaries.Allocate(ExprPrimaryData{Head: head, Parts: cloned})
	return e.new(ExprPrimary, span, PayloadID(payload))
}

// Primary returns the primary expression data for the given expression ID.
func (e *Exprs) Primary(id ExprID) (*ExprPrimaryData, bool) {
	p, ok := e.payload(id, ExprPrimary)
	if !ok {
		return nil, false
	}
	return e.Primaries.Get(p), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind LitKind, value source.StringID) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value})
	return e.new(ExprLiteral, span, PayloadID(payload))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLiteral)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

// Binary returns the binary data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

// Unary returns the unary data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

// NewParen wraps inner in parentheses.
func (e *Exprs) NewParen(span source.Span, inner ExprID) ExprID {
	payload := e.Parens.Allocate(ExprParenData{Inner: inner})
	return e.new(ExprParen, span, PayloadID(payload))
}

// Paren returns the parenthesized expression data.
func (e *Exprs) Paren(id ExprID) (*ExprParenData, bool) {
	p, ok := e.payload(id, ExprParen)
	if !ok {
		return nil, false
	}
	return e.Parens.Get(p), true
}

// NewArrayCtor creates an array constructor `[a, b, c]`.
func (e *Exprs) NewArrayCtor(span source.Span, elems ...ExprID) ExprID {
	payload := e.ArrayCtors.Allocate(ExprArrayCtorData{Elems: slices.Clone(elems)})
	return e.new(ExprArrayCtor, span, PayloadID(payload))
}

// ArrayCtor returns the array constructor data.
func (e *Exprs) ArrayCtor(id ExprID) (*ExprArrayCtorData, bool) {
	p, ok := e.payload(id, ExprArrayCtor)
	if !ok {
		return nil, false
	}
	return e.ArrayCtors.Get(p), true
}

// NewInherited creates `inherited` or `inherited Name`.
func (e *Exprs) NewInherited(span source.Span, name NameRef) ExprID {
	name.TypeArgs = slices.Clone(name.TypeArgs)
	payload := e.Inherits.Allocate(ExprInheritedData{Name: name})
	return e.new(ExprInherited, span, PayloadID(payload))
}

// Inherited returns the inherited expression data.
func (e *Exprs) Inherited(id ExprID) (*ExprInheritedData, bool) {
	p, ok := e.payload(id, ExprInherited)
	if !ok {
		return nil, false
	}
	return e.Inherits.Get(p), true
}

// NewKeyword creates the `string` or `file` keyword expression.
func (e *Exprs) NewKeyword(span source.Span, kind ExprKind) ExprID {
	if kind != ExprStringKeyword && kind != ExprFileKeyword {
		return NoExprID
	}
	return e.new(kind, span, NoPayloadID)
}
