package ownership

import (
	"testing"

	"borrowck/internal/source"
)

func at(n uint32) source.Span {
	return source.Span{Start: n, End: n + 1}
}

func mustPass(t *testing.T, tr *Trace) Result {
	t.Helper()
	res := Check(tr, Options{})
	if res.Violation != nil {
		t.Fatalf("unexpected violation: %v\n%s", res.Violation, tr.Format())
	}
	return res
}

func mustFail(t *testing.T, tr *Trace, kind ViolationKind, op int) *Violation {
	t.Helper()
	res := Check(tr, Options{})
	if res.Violation == nil {
		t.Fatalf("expected %s at op %d, trace accepted\n%s", kind, op, tr.Format())
	}
	if res.Violation.Kind != kind || res.Violation.Op != op {
		t.Fatalf("expected %s at op %d, got %v\n%s", kind, op, res.Violation, tr.Format())
	}
	return res.Violation
}

func findBinding(res Result, name string) *Binding {
	for i := len(res.Bindings) - 1; i >= 0; i-- {
		if res.Bindings[i].Name == name {
			return &res.Bindings[i]
		}
	}
	return nil
}

func TestCopyMoveKeepsBothValid(t *testing.T) {
	tr := NewTrace("copy")
	tr.Enter(ScopeFunction, "main", at(0))
	tr.Bind(Let("x"), Scalar(), at(1))
	tr.Move(P("x"), LetMut("y"), at(2))
	tr.Assign(P("y"), Scalar(), at(3))
	tr.Use(at(4), P("x"), P("y"))
	res := mustPass(t, tr)

	x, y := findBinding(res, "x"), findBinding(res, "y")
	if x == nil || y == nil {
		t.Fatal("bindings missing")
	}
	if x.State != StateValid || y.State != StateValid {
		t.Fatalf("x=%s y=%s, want both valid", x.State, y.State)
	}
	if x.Class() != Copy || y.Class() != Copy {
		t.Fatalf("classes %s/%s, want Copy", x.Class(), y.Class())
	}
}

func TestOwningMoveInvalidatesSource(t *testing.T) {
	tr := NewTrace("move")
	tr.Enter(ScopeFunction, "main", at(0))
	tr.Bind(Let("s1"), OwnedText("hello"), at(1))
	tr.Move(P("s1"), Let("s2"), at(2))
	tr.Use(at(3), P("s1"))
	v := mustFail(t, tr, UseAfterMove, 3)
	if v.Message != "use of moved value 's1'" {
		t.Fatalf("message = %q", v.Message)
	}
	if len(v.Notes) != 1 || v.Notes[0].Span != at(2) {
		t.Fatalf("expected move note at op 2 span, got %+v", v.Notes)
	}
}

func TestExclusiveBorrowExcludesOthers(t *testing.T) {
	for _, mode := range []Mode{Shared, Exclusive} {
		t.Run(mode.String(), func(t *testing.T) {
			tr := NewTrace("excl")
			tr.Enter(ScopeFunction, "main", at(0))
			tr.Bind(LetMut("s"), OwnedText("hello"), at(1))
			tr.Borrow(P("s"), Exclusive, Let("r1"), at(2))
			tr.Borrow(P("s"), mode, Let("r2"), at(3))
			tr.Use(at(4), P("r1"), P("r2"))
			v := mustFail(t, tr, AliasConflict, 3)
			if len(v.Notes) != 2 {
				t.Fatalf("expected borrow and later-use notes, got %+v", v.Notes)
			}
			if v.Notes[0].Span != at(2) || v.Notes[1].Span != at(4) {
				t.Fatalf("unexpected note spans %+v", v.Notes)
			}
		})
	}
}

func TestManySharedBorrowsAccepted(t *testing.T) {
	tr := NewTrace("shared")
	tr.Enter(ScopeFunction, "main", at(0))
	tr.Bind(Let("s"), OwnedText("hello"), at(1))
	tr.Borrow(P("s"), Shared, Let("r1"), at(2))
	tr.Borrow(P("s"), Shared, Let("r2"), at(3))
	tr.Borrow(P("s"), Shared, Let("r3"), at(4))
	tr.Use(at(5), P("r1"), P("r2"), P("r3"), P("s"))
	tr.Exit(at(6))
	res := mustPass(t, tr)
	if len(res.Borrows) != 3 {
		t.Fatalf("expected 3 borrows, got %d", len(res.Borrows))
	}
	for _, br := range res.Borrows {
		if br.LastUse != 5 {
			t.Fatalf("borrow #%d last use = %d, want 5", br.ID, br.LastUse)
		}
	}
}

func TestNonLexicalLivenessAccepted(t *testing.T) {
	tr := NewTrace("nll")
	tr.Enter(ScopeFunction, "main", at(0))
	tr.Bind(LetMut("s"), OwnedText("hello"), at(1))
	tr.Borrow(P("s"), Shared, Let("r1"), at(2))
	tr.Use(at(3), P("r1"))
	tr.Borrow(P("s"), Shared, Let("r2"), at(4))
	tr.Use(at(5), P("r2"))
	tr.Borrow(P("s"), Exclusive, Let("r3"), at(6))
	tr.Use(at(7), P("r3"))
	tr.Exit(at(8))
	mustPass(t, tr)
}

func TestLiveSharedBlocksExclusive(t *testing.T) {
	tr := NewTrace("nll-reject")
	tr.Enter(ScopeFunction, "main", at(0))
	tr.Bind(LetMut("s"), OwnedText("hello"), at(1))
	tr.Borrow(P("s"), Shared, Let("r1"), at(2))
	tr.Borrow(P("s"), Exclusive, Let("r2"), at(3))
	tr.Use(at(4), P("r1"))
	v := mustFail(t, tr, AliasConflict, 3)
	want := "cannot borrow 's' as mutable because it is also borrowed as immutable"
	if v.Message != want {
		t.Fatalf("message = %q, want %q", v.Message, want)
	}
}

func TestScopeEndReleasesOnce(t *testing.T) {
	tr := NewTrace("release")
	tr.Enter(ScopeFunction, "main", at(0))
	tr.Bind(Let("s1"), OwnedText("a"), at(1))
	tr.Bind(Let("gone"), OwnedText("b"), at(2))
	tr.Enter(ScopeBlock, "", at(3))
	tr.Bind(Let("s2"), OwnedText("c"), at(4))
	tr.Bind(Let("s3"), OwnedText("d"), at(5))
	tr.Move(P("s2"), Let("s4"), at(6))
	tr.Exit(at(7))
	tr.Move(P("gone"), Consumed(), at(8))
	tr.Exit(at(9))
	res := mustPass(t, tr)

	var order []string
	seen := make(map[ResourceID]bool)
	for _, rel := range res.Releases {
		if seen[rel.Resource] {
			t.Fatalf("resource %d released twice", rel.Resource)
		}
		seen[rel.Resource] = true
		order = append(order, res.Bindings[rel.Binding-1].Name)
	}
	want := []string{"s4", "s3", "s1"}
	if len(order) != len(want) {
		t.Fatalf("release order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("release order %v, want %v", order, want)
		}
	}
}

func TestTruncateWhileSliceLive(t *testing.T) {
	build := func(useBefore bool) *Trace {
		tr := NewTrace("slice")
		tr.Enter(ScopeFunction, "main", at(0))
		tr.Bind(LetMut("s"), OwnedText("hello world"), at(1))
		tr.Borrow(P("s"), Shared, Let("word"), at(2)).WithRange(Range{Start: 0, End: 5, HasStart: true, HasEnd: true})
		if useBefore {
			tr.Use(at(3), P("word"))
		}
		tr.Borrow(P("s"), Exclusive, Let("$t1"), at(4))
		tr.Write(D("$t1"), Effect{Kind: EffectTruncate, N: 0}, at(5))
		if !useBefore {
			tr.Use(at(6), P("word"))
		}
		tr.Exit(at(7))
		return tr
	}
	mustFail(t, build(false), AliasConflict, 3)
	mustPass(t, build(true))
}
