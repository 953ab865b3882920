package diag

import (
	"strings"
	"testing"

	"borrowck/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/moves.own", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     OwnUseAfterMove,
			Message:  "use of moved value 's1'\nsecond",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
			Notes: []Note{
				{Span: source.Span{File: userFile, Start: 0, End: 1}, Msg: "value moved here"},
			},
		},
		{
			Severity: SevWarning,
			Code:     SemaError,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
		},
	}

	expected := "warning SEM3001 testdata/moves.own:1:1 another\n" +
		"error OWN4001 testdata/moves.own:2:1 use of moved value 's1' second\n" +
		"note OWN4001 testdata/moves.own:1:1 value moved here"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortNotesFollowTheirDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	// десять строк по 10 байт
	file := fs.Add("/workspace/slices.own", []byte(strings.Repeat("xxxxxxxxx\n", 10)), 0)
	at := func(line uint32) source.Span {
		return source.Span{File: file, Start: (line - 1) * 10, End: (line-1)*10 + 1}
	}

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     OwnAliasConflict,
			Message:  "cannot borrow 's' as mutable because it is also borrowed as immutable",
			Primary:  at(9),
			Notes: []Note{
				{Span: at(8), Msg: "immutable borrow occurs here"},
				{Span: at(10), Msg: "immutable borrow later used here"},
			},
		},
		{
			Severity: SevError,
			Code:     OwnUseAfterMove,
			Message:  "use of moved value 'a'",
			Primary:  at(3),
			Notes:    []Note{{Span: at(2), Msg: "value moved here"}},
		},
	}

	expected := "error OWN4001 slices.own:3:1 use of moved value 'a'\n" +
		"note OWN4001 slices.own:2:1 value moved here\n" +
		"error OWN4002 slices.own:9:1 cannot borrow 's' as mutable because it is also borrowed as immutable\n" +
		"note OWN4002 slices.own:8:1 immutable borrow occurs here\n" +
		"note OWN4002 slices.own:10:1 immutable borrow later used here"
	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestCodeIDsAndSlugs(t *testing.T) {
	tests := []struct {
		code Code
		id   string
		slug string
	}{
		{LexUnknownChar, "LEX1001", "LEX1001"},
		{SynExpectSemicolon, "SYN2012", "SYN2012"},
		{SemaTypeMismatch, "SEM3015", "type_mismatch"},
		{OwnUseAfterMove, "OWN4001", "use_after_move"},
		{OwnAliasConflict, "OWN4002", "alias_conflict"},
		{OwnDanglingReference, "OWN4003", "dangling_reference"},
		{IOLoadFileError, "IO5001", "IO5001"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.id)
		}
		if got := tt.code.Slug(); got != tt.slug {
			t.Errorf("%d.Slug() = %q, want %q", tt.code, got, tt.slug)
		}
		if c, ok := LookupCode(tt.id); !ok || c != tt.code {
			t.Errorf("LookupCode(%q) = %v, %v", tt.id, c, ok)
		}
		if c, ok := LookupCode(tt.slug); !ok || c != tt.code {
			t.Errorf("LookupCode(%q) = %v, %v", tt.slug, c, ok)
		}
	}
	if _, ok := LookupCode("no_such_code"); ok {
		t.Fatal("unexpected lookup success")
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	sp := func(start uint32) source.Span { return source.Span{File: 0, Start: start, End: start + 1} }

	bag.Add(NewError(OwnAliasConflict, sp(10), "b"))
	bag.Add(NewError(OwnUseAfterMove, sp(2), "a"))
	bag.Add(NewError(OwnUseAfterMove, sp(2), "a"))
	if bag.Add(NewError(OwnNotMutable, sp(1), "dropped")) {
		t.Fatal("expected the bag limit to reject the fourth diagnostic")
	}

	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Code != OwnUseAfterMove || items[1].Code != OwnAliasConflict {
		t.Fatalf("unexpected order: %v, %v", items[0].Code, items[1].Code)
	}
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	rep := NewDedupReporter(BagReporter{Bag: bag})

	b := ReportError(rep, OwnAliasConflict, source.Span{Start: 4, End: 6}, "cannot borrow 's' as mutable").
		WithNote(source.Span{Start: 1, End: 2}, "previous borrow of 's' occurs here")
	b.Emit()
	b.Emit()
	ReportError(rep, OwnAliasConflict, source.Span{Start: 4, End: 6}, "cannot borrow 's' as mutable").Emit()

	if bag.Len() != 1 {
		t.Fatalf("expected a single diagnostic, got %d", bag.Len())
	}
	if got := bag.Items()[0].Notes; len(got) != 1 || got[0].Msg != "previous borrow of 's' occurs here" {
		t.Fatalf("unexpected notes: %+v", got)
	}
}
