package ast

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/source"
)

func TestBuilderPrimaryChain(t *testing.T) {
	strs := source.NewInterner()
	b := NewBuilder(Hints{})
	sp := source.Span{File: 1, Start: 0, End: 10}
	obj := b.Ident(sp, strs.Intern("obj"))
	one := b.Exprs.NewLiteral(sp, LitInt, strs.Intern("1"))
	call := b.Exprs.NewPrimary(sp, obj,
		Part{Kind: PartMember, Span: sp, Name: NameRef{Name: strs.Intern("Items"), Span: sp}},
		Part{Kind: PartIndex, Span: sp, Args: []ExprID{one}},
		Part{Kind: PartDeref, Span: sp},
	)
	data, ok := b.Exprs.Primary(call)
	if !ok || data.Head != obj || len(data.Parts) != 3 {
		t.Fatalf("unexpected primary %+v", data)
	}
	if _, ok := b.Exprs.Name(call); ok {
		t.Fatalf("primary must not decode as a name")
	}

	file := b.NewFile(sp, "main.pas", 0, 0)
	b.PushStmt(file, b.Stmts.NewExpr(sp, call))
	var seen []ExprKind
	for _, st := range b.Files.Get(file).Body {
		b.Walk(st, func(id ExprID) { seen = append(seen, b.Exprs.Get(id).Kind) })
	}
	want := []ExprKind{ExprPrimary, ExprName, ExprLiteral}
	if len(seen) != len(want) {
		t.Fatalf("walk visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("walk visited %v, want %v", seen, want)
		}
	}
}

func TestArenaGetOutOfRange(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(1) != nil || a.Get(0) != nil {
		t.Fatalf("empty arena must not return elements")
	}
	id := a.Allocate(7)
	if id != 1 || *a.Get(id) != 7 {
		t.Fatalf("unexpected allocation %d", id)
	}
}

func TestBuilderMsgpackRoundTrip(t *testing.T) {
	strs := source.NewInterner()
	b := NewBuilder(Hints{})
	sp := source.Span{File: 1, Start: 3, End: 9}
	lhs := b.Ident(sp, strs.Intern("x"))
	rhs := b.Exprs.NewBinary(sp, OpAdd, b.Ident(sp, strs.Intern("y")), b.Exprs.NewLiteral(sp, LitInt, strs.Intern("2")))
	file := b.NewFile(sp, "unit1.pas", 4, 5)
	b.PushStmt(file, b.Stmts.NewBlock(sp, 5, 0, b.Stmts.NewAssign(sp, lhs, rhs)))

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(b); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out Builder
	if err := msgpack.NewDecoder(&buf).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	f := out.Files.Get(file)
	if f == nil || f.Path != "unit1.pas" || f.Unit != 4 || len(f.Body) != 1 {
		t.Fatalf("file lost in round trip: %+v", f)
	}
	block, ok := out.Stmts.Block(f.Body[0])
	if !ok || block.Scope != 5 || len(block.Body) != 1 {
		t.Fatalf("block lost in round trip")
	}
	assign, ok := out.Stmts.Assign(block.Body[0])
	if !ok {
		t.Fatalf("assignment lost in round trip")
	}
	bin, ok := out.Exprs.Binary(assign.Value)
	if !ok || bin.Op != OpAdd {
		t.Fatalf("binary lost in round trip")
	}
}
