package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks that parent/child links, per-scope name indexes and symbol
// owners agree with each other. All problems are reported at once.
func (t *Table) Validate() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for i := 1; i <= t.Scopes.Len(); i++ {
		id := ScopeID(i) // #nosec G115 -- bounded by arena length
		scope := t.Scopes.Get(id)
		if scope.Kind == ScopeInvalid {
			report("scope %d: invalid kind", id)
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			switch {
			case parent == nil || scope.Parent == id:
				report("scope %d: bad parent %d", id, scope.Parent)
			case !slices.Contains(parent.Children, id):
				report("scope %d: parent %d does not list it", id, scope.Parent)
			}
		}
		for _, child := range scope.Children {
			if c := t.Scopes.Get(child); c == nil || c.Parent != id {
				report("scope %d: child %d points elsewhere", id, child)
			}
		}

		indexed := 0
		for name, bucket := range scope.NameIndex {
			for _, sym := range bucket {
				if !slices.Contains(scope.Symbols, sym) {
					report("scope %d: %q indexes foreign symbol %d", id, name, sym)
					continue
				}
				indexed++
			}
		}
		if indexed != len(scope.Symbols) {
			report("scope %d: %d symbols but %d indexed", id, len(scope.Symbols), indexed)
		}
	}

	for i := 1; i <= t.Symbols.Len(); i++ {
		id := SymbolID(i) // #nosec G115 -- bounded by arena length
		sym := t.Symbols.Get(id)
		scope := t.Scopes.Get(sym.Scope)
		if scope == nil {
			report("symbol %d (%s): bad scope %d", id, sym.Name, sym.Scope)
			continue
		}
		if !slices.Contains(scope.Symbols, id) {
			report("symbol %d (%s): missing from scope %d", id, sym.Name, sym.Scope)
		}
	}
	return errors.Join(errs...)
}
