package parser

import (
	"fmt"
	"strings"
	"testing"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/lexer"
	"borrowck/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.own", []byte(input)))
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	builder := ast.NewBuilder(ast.Hints{})
	res := ParseFile(lx, builder, Options{Reporter: rep, MaxErrors: 100})
	return builder, res.File, bag
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

// mainBody разбирает `fn main() { <body> }` и возвращает операторы тела.
func mainBody(t *testing.T, body string) (*ast.Builder, []ast.StmtID) {
	t.Helper()
	b, file, bag := parseSource(t, "fn main() {\n"+body+"\n}")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	items := b.Files.Get(file).Items
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	_, stmts := mainBodyOf(t, b, items[0])
	return b, stmts
}

func mainBodyOf(t *testing.T, b *ast.Builder, item ast.ItemID) (*ast.FnItem, []ast.StmtID) {
	t.Helper()
	fn, ok := b.Items.Fn(item)
	if !ok {
		t.Fatal("expected fn item")
	}
	blk, ok := b.Stmts.Block(fn.Body)
	if !ok {
		t.Fatal("expected block body")
	}
	return fn, blk.Stmts
}
