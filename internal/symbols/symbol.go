package symbols

import (
	"borrowck/internal/ast"
	"borrowck/internal/source"
	"borrowck/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolStruct
	SymbolLet
	SymbolParam
)

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagMutable SymbolFlags = 1 << iota
	// SymbolFlagPending marks `let r;` whose type is fixed by the first assignment.
	SymbolFlagPending
	// SymbolFlagTupleCtor marks a tuple struct usable as a constructor call.
	SymbolFlagTupleCtor
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "param"
	default:
		return "invalid"
	}
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 3)
	if f&SymbolFlagMutable != 0 {
		labels = append(labels, "mutable")
	}
	if f&SymbolFlagPending != 0 {
		labels = append(labels, "pending")
	}
	if f&SymbolFlagTupleCtor != 0 {
		labels = append(labels, "tuple-ctor")
	}
	return labels
}

// SymbolDecl focuses on the AST origin for diagnostics.
type SymbolDecl struct {
	SourceFile source.FileID
	ASTFile    ast.FileID
	Item       ast.ItemID
	Stmt       ast.StmtID
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Decl  SymbolDecl
	// Type is the binding type for lets and params, or the nominal type of a struct.
	Type types.TypeID
}

// Mutable reports whether the binding was declared `mut`.
func (s *Symbol) Mutable() bool {
	return s.Flags&SymbolFlagMutable != 0
}
