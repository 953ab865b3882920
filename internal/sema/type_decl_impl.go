package sema

import (
	"fmt"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/symbols"
	"borrowck/internal/types"
)

// collectImpls registers methods and associated functions under their type.
// A type may be extended by several impl blocks.
func (tc *typeChecker) collectImpls(items []ast.ItemID) {
	for _, id := range items {
		impl, ok := tc.builder.Items.Impl(id)
		if !ok {
			continue
		}
		owner := tc.implOwner(impl)
		if owner == types.NoTypeID {
			for _, m := range impl.Methods {
				tc.result.Invalid[m] = true
			}
			continue
		}
		table := tc.result.Assoc[owner]
		if table == nil {
			table = make(map[string]*FnSig)
			tc.result.Assoc[owner] = table
		}

		tc.selfType = owner
		for _, m := range impl.Methods {
			fn, _ := tc.builder.Items.Fn(m)
			tc.checkAttrs(fn.Attrs, false)
			if prev, dup := table[fn.Name]; dup {
				diag.ReportError(tc.reporter, diag.SemaDuplicateSymbol, fn.NameSpan,
					fmt.Sprintf("duplicate definitions with name '%s'", fn.Name)).
					WithNote(prev.Span, fmt.Sprintf("other definition for '%s'", fn.Name)).
					Emit()
				tc.result.Invalid[m] = true
				continue
			}
			table[fn.Name] = tc.signature(m, fn, impl.TypeName+"::"+fn.Name)
		}
		tc.selfType = types.NoTypeID
	}
}

func (tc *typeChecker) implOwner(impl *ast.ImplItem) types.TypeID {
	if symID, ok := tc.resolver.LookupOne(impl.TypeName, symbols.SymbolStruct.Mask()); ok {
		return tc.result.Symbols.Symbols.Get(symID).Type
	}
	if _, builtin := tc.types.LookupName(impl.TypeName); builtin {
		tc.report(diag.SemaError, impl.NameSpan, "cannot define inherent impl for builtin type '%s'", impl.TypeName)
		return types.NoTypeID
	}
	tc.report(diag.SemaUnknownType, impl.NameSpan, "cannot find type '%s' in this scope", impl.TypeName)
	return types.NoTypeID
}

// receiverKind classifies `self`, `&self` and `&mut self`. Any other type
// of `self` is rejected.
func (tc *typeChecker) receiverKind(p Param) ReceiverKind {
	if p.Type == types.NoTypeID {
		return ReceiverNone
	}
	if p.Type == tc.selfType {
		return ReceiverValue
	}
	if tt, ok := tc.types.Lookup(p.Type); ok && tt.Kind == types.KindReference && tt.Elem == tc.selfType {
		if tt.Mutable {
			return ReceiverRefMut
		}
		return ReceiverRef
	}
	diag.ReportError(tc.reporter, diag.SemaInvalidReceiver, p.Span,
		fmt.Sprintf("invalid 'self' parameter type: '%s'", tc.typeLabel(p.Type))).
		WithNote(p.Span, fmt.Sprintf("type of 'self' must be 'Self', '&Self' or '&mut Self' ('%s')", tc.typeLabel(tc.selfType))).
		Emit()
	return ReceiverNone
}
