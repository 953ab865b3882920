package symbols

import (
	"fmt"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

// ResolverOptions configures resolver construction.
type ResolverOptions struct {
	Reporter diag.Reporter
}

// KindMask restricts lookup to specific symbol kinds.
type KindMask uint32

const (
	// KindMaskNone filters out all kinds.
	KindMaskNone KindMask = 0
	// KindMaskAny allows all kinds.
	KindMaskAny KindMask = ^KindMask(0)
)

// Mask converts a symbol kind into a KindMask bit.
func (k SymbolKind) Mask() KindMask {
	return KindMask(1 << uint(k))
}

func matchKind(mask KindMask, kind SymbolKind) bool {
	return mask == KindMaskAny || mask&kind.Mask() != 0
}

// canShareName reports whether next may be declared next to existing in one
// scope. Locals shadow freely; a function and a non-tuple struct live in
// different namespaces.
func canShareName(existing, next *Symbol) bool {
	switch {
	case isLocal(existing.Kind) && isLocal(next.Kind):
		return true
	case existing.Kind == SymbolFunction && next.Kind == SymbolStruct:
		return next.Flags&SymbolFlagTupleCtor == 0
	case existing.Kind == SymbolStruct && next.Kind == SymbolFunction:
		return existing.Flags&SymbolFlagTupleCtor == 0
	default:
		return false
	}
}

func isLocal(k SymbolKind) bool {
	return k == SymbolLet || k == SymbolParam
}

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver wires a resolver to an existing scope stack. If root is valid it
// becomes the current scope; otherwise scope-sensitive operations are no-ops.
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: opts.Reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

// Table returns the underlying symbol table.
func (r *Resolver) Table() *Table {
	return r.table
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner ScopeOwner, span source.Span) ScopeID {
	parent := r.CurrentScope()
	scope := r.table.Scopes.New(kind, parent, owner, span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. A mismatch with expected is a programming
// error of the caller.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic(fmt.Sprintf("symbols: leaving scope %d while %d is current", expected, top))
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. Returns false if there is
// no active scope or the declaration conflicts with an existing entry.
func (r *Resolver) Declare(sym Symbol) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	if !scopeID.IsValid() {
		return NoSymbolID, false
	}
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	for _, symID := range scope.NameIndex[sym.Name] {
		prev := r.table.Symbols.Get(symID)
		if prev == nil || canShareName(prev, &sym) {
			continue
		}
		r.reportDuplicateSymbol(sym.Name, sym.Span, prev.Span)
		return NoSymbolID, false
	}
	sym.Scope = scopeID
	id := r.table.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
	return id, true
}

// Lookup walks the scope chain searching for a symbol with the given name.
func (r *Resolver) Lookup(name string) (SymbolID, bool) {
	return r.LookupOne(name, KindMaskAny)
}

// LookupOne finds the most recent symbol with matching name and kind mask.
func (r *Resolver) LookupOne(name string, mask KindMask) (SymbolID, bool) {
	if mask == KindMaskNone {
		return NoSymbolID, false
	}
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		ids := scope.NameIndex[name]
		for i := len(ids) - 1; i >= 0; i-- {
			if sym := r.table.Symbols.Get(ids[i]); sym != nil && matchKind(mask, sym.Kind) {
				return ids[i], true
			}
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

func (r *Resolver) reportDuplicateSymbol(name string, span, prevSpan source.Span) {
	if r.reporter == nil {
		return
	}
	msg := fmt.Sprintf("the name '%s' is defined multiple times", name)
	builder := diag.ReportError(r.reporter, diag.SemaDuplicateSymbol, span, msg)
	if prevSpan != (source.Span{}) {
		builder.WithNote(prevSpan, "previous definition of '"+name+"' here")
	}
	builder.Emit()
}
