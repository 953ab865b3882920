package ast

import (
	"testing"

	"borrowck/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[string](0)
	if a.Get(0) != nil {
		t.Fatal("index 0 must be nil")
	}
	first := a.Allocate("a")
	second := a.Allocate("b")
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", first, second)
	}
	if *a.Get(second) != "b" || a.Len() != 2 {
		t.Fatalf("unexpected arena state %v", a.Slice())
	}
	if a.Get(3) != nil {
		t.Fatal("out of range must be nil")
	}
}

func TestExprAccessorsCheckKind(t *testing.T) {
	b := NewBuilder(Hints{})
	sp := source.Span{Start: 0, End: 1}
	id := b.Exprs.NewIdent(sp, "s")
	ref := b.Exprs.NewUnary(sp, UnaryRefMut, id)
	grp := b.Exprs.NewGroup(sp, ref)

	if _, ok := b.Exprs.Call(id); ok {
		t.Fatal("ident is not a call")
	}
	u, ok := b.Exprs.Unary(b.Exprs.Unparen(grp))
	if !ok || u.Op != UnaryRefMut || u.Operand != id {
		t.Fatalf("unexpected unary %+v", u)
	}
	if d, ok := b.Exprs.Ident(id); !ok || d.Name != "s" {
		t.Fatalf("unexpected ident %+v", d)
	}
}

func TestItemsAndStmts(t *testing.T) {
	b := NewBuilder(Hints{})
	body := b.Stmts.NewBlock(source.Span{}, nil)
	fnID := b.Items.NewFn(FnItem{Name: "main", Body: body})
	stID := b.Items.NewStruct(StructItem{Name: "P", Attrs: []Attr{{Name: "copy"}}})

	if fn, ok := b.Items.Fn(fnID); !ok || fn.Name != "main" {
		t.Fatalf("unexpected fn %+v", fn)
	}
	if _, ok := b.Items.Fn(stID); ok {
		t.Fatal("struct is not a fn")
	}
	st, ok := b.Items.Struct(stID)
	if !ok || !st.HasAttr("copy") || st.HasAttr("other") {
		t.Fatalf("unexpected struct %+v", st)
	}
	if blk, ok := b.Stmts.Block(body); !ok || len(blk.Stmts) != 0 {
		t.Fatalf("unexpected block %+v", blk)
	}
}
