package symbols

import (
	"testing"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/source"
)

func TestTableFileRootReuse(t *testing.T) {
	table := NewTable(Hints{})
	file := source.FileID(1)
	span := source.Span{File: file}

	first := table.FileRoot(file, span)
	second := table.FileRoot(file, span)

	if !first.IsValid() {
		t.Fatalf("expected valid scope ID")
	}
	if first != second {
		t.Fatalf("expected FileRoot to reuse existing scope, got %v and %v", first, second)
	}

	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestResolverLifecycle(t *testing.T) {
	table := NewTable(Hints{})
	file := source.FileID(10)
	root := table.FileRoot(file, source.Span{File: file})

	res := NewResolver(table, root, ResolverOptions{})
	scope := res.Enter(ScopeFunction, ScopeOwner{
		Kind:       ScopeOwnerItem,
		SourceFile: file,
		Item:       ast.ItemID(42),
	}, source.Span{File: file})

	id, ok := res.Declare(Symbol{Name: "value", Kind: SymbolLet, Span: source.Span{File: file}})
	if !ok {
		t.Fatalf("declare returned false")
	}
	if got, found := res.Lookup("value"); !found || got != id {
		t.Fatalf("lookup = %v/%v, want %v", got, found, id)
	}

	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	res.Leave(scope)
	if _, found := res.Lookup("value"); found {
		t.Fatalf("local still visible after leaving its scope")
	}

	if err := table.Validate(); err != nil {
		t.Fatalf("validate after leave: %v", err)
	}
}

func TestResolverShadowingAndDuplicates(t *testing.T) {
	table := NewTable(Hints{})
	file := source.FileID(2)
	root := table.FileRoot(file, source.Span{File: file})
	bag := diag.NewBag(8)
	res := NewResolver(table, root, ResolverOptions{Reporter: &diag.BagReporter{Bag: bag}})

	first := source.Span{File: file, Start: 0, End: 3}
	second := source.Span{File: file, Start: 10, End: 13}
	if _, ok := res.Declare(Symbol{Name: "foo", Kind: SymbolFunction, Span: first}); !ok {
		t.Fatalf("first fn rejected")
	}
	if _, ok := res.Declare(Symbol{Name: "foo", Kind: SymbolFunction, Span: second}); ok {
		t.Fatalf("duplicate fn accepted")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaDuplicateSymbol {
		t.Fatalf("expected one duplicate diagnostic, got %d", bag.Len())
	}
	if notes := bag.Items()[0].Notes; len(notes) != 1 || notes[0].Span != first {
		t.Fatalf("expected note at previous declaration, got %+v", notes)
	}

	// struct and fn share a name unless the struct is a tuple constructor
	if _, ok := res.Declare(Symbol{Name: "foo", Kind: SymbolStruct, Span: second}); !ok {
		t.Fatalf("struct next to fn rejected")
	}
	if _, ok := res.Declare(Symbol{Name: "Pair", Kind: SymbolStruct, Flags: SymbolFlagTupleCtor}); !ok {
		t.Fatalf("tuple struct rejected")
	}
	if _, ok := res.Declare(Symbol{Name: "Pair", Kind: SymbolFunction}); ok {
		t.Fatalf("fn clashing with tuple constructor accepted")
	}

	res.Enter(ScopeBlock, ScopeOwner{}, source.Span{File: file})
	a, _ := res.Declare(Symbol{Name: "x", Kind: SymbolLet})
	b, ok := res.Declare(Symbol{Name: "x", Kind: SymbolLet, Flags: SymbolFlagMutable})
	if !ok {
		t.Fatalf("shadowing let rejected")
	}
	got, _ := res.LookupOne("x", SymbolLet.Mask()|SymbolParam.Mask())
	if got != b || got == a {
		t.Fatalf("lookup returned %v, want the shadowing binding %v", got, b)
	}
	if !table.Symbols.Get(got).Mutable() {
		t.Fatalf("shadowing binding lost its flags")
	}
	if _, ok := res.LookupOne("foo", SymbolStruct.Mask()); !ok {
		t.Fatalf("kind-masked lookup missed the struct")
	}
	if _, ok := res.LookupOne("x", KindMaskNone); ok {
		t.Fatalf("empty mask matched")
	}
}
