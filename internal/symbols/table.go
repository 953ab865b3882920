package symbols

import (
	"borrowck/internal/ast"
	"borrowck/internal/source"
)

// ScopeID and SymbolID are 1-based indexes into the table arenas; zero means
// "none".
type (
	ScopeID  uint32
	SymbolID uint32
)

const (
	NoScopeID  ScopeID  = 0
	NoSymbolID SymbolID = 0
)

func (id ScopeID) IsValid() bool  { return id != NoScopeID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Scopes is the scope arena of a table.
type Scopes struct{ arena *ast.Arena[Scope] }

// New allocates a scope and links it under parent.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner ScopeOwner, span source.Span) ScopeID {
	id := ScopeID(s.arena.Allocate(Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		Span:      span,
		NameIndex: make(map[string][]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns nil for NoScopeID and out-of-range IDs.
func (s *Scopes) Get(id ScopeID) *Scope { return s.arena.Get(uint32(id)) }

func (s *Scopes) Len() int { return int(s.arena.Len()) }

// Symbols is the symbol arena of a table.
type Symbols struct{ arena *ast.Arena[Symbol] }

func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols: nil symbol")
	}
	return SymbolID(s.arena.Allocate(*sym))
}

func (s *Symbols) Get(id SymbolID) *Symbol { return s.arena.Get(uint32(id)) }

func (s *Symbols) Len() int { return int(s.arena.Len()) }

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table holds every scope and binding of the checked files.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	fileRoot map[source.FileID]ScopeID
}

func NewTable(h Hints) *Table {
	if h.Scopes == 0 {
		h.Scopes = 32
	}
	if h.Symbols == 0 {
		h.Symbols = 64
	}
	return &Table{
		Scopes:   &Scopes{arena: ast.NewArena[Scope](h.Scopes)},
		Symbols:  &Symbols{arena: ast.NewArena[Symbol](h.Symbols)},
		fileRoot: make(map[source.FileID]ScopeID),
	}
}

// FileRoot returns the file-level scope, creating it on first use.
func (t *Table) FileRoot(file source.FileID, span source.Span) ScopeID {
	if scope, ok := t.fileRoot[file]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopeFile, NoScopeID, ScopeOwner{
		Kind:       ScopeOwnerFile,
		SourceFile: file,
	}, span)
	t.fileRoot[file] = scope
	return scope
}
