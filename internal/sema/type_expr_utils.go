package sema

import (
	"fmt"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/source"
	"borrowck/internal/types"
)

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...interface{}) {
	if tc.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportError(tc.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

func (tc *typeChecker) exprSpan(id ast.ExprID) source.Span {
	if !id.IsValid() || tc.builder == nil || tc.builder.Exprs == nil {
		return source.Span{}
	}
	expr := tc.builder.Exprs.Get(id)
	if expr == nil {
		return source.Span{}
	}
	return expr.Span
}

func (tc *typeChecker) typeLabel(id types.TypeID) string {
	return types.Label(tc.types, id)
}

func (tc *typeChecker) reportMissingLifetime(span source.Span, note string) {
	diag.ReportError(tc.reporter, diag.SemaMissingLifetime, span, "missing lifetime specifier").
		WithNote(span, note).
		Emit()
}

// reportMismatch reports a type mismatch at expr, with a hint when the
// value differs from the expected type only by a borrow.
func (tc *typeChecker) reportMismatch(expected, found types.TypeID, expr ast.ExprID) {
	span := tc.exprSpan(expr)
	b := diag.ReportError(tc.reporter, diag.SemaTypeMismatch, span,
		fmt.Sprintf("mismatched types: expected '%s', found '%s'", tc.typeLabel(expected), tc.typeLabel(found)))
	switch {
	case tc.types.IsReference(found) && tc.types.Assignable(expected, tc.types.Deref(found)):
		b.WithNote(span, "consider removing the borrow")
	case tc.types.IsReference(expected) && !tc.types.IsReference(found):
		prefix := "&"
		if tt, _ := tc.types.Lookup(expected); tt.Mutable {
			prefix = "&mut "
		}
		b.WithNote(span, "consider borrowing here: '"+prefix+"...'")
	}
	b.Emit()
}

// expectAssignable checks that the value of expr (of type found) may be
// stored into a slot of type expected.
func (tc *typeChecker) expectAssignable(expected, found types.TypeID, expr ast.ExprID) bool {
	if expected == types.NoTypeID || found == types.NoTypeID {
		return true
	}
	if tc.types.Assignable(expected, found) {
		return true
	}
	tc.reportMismatch(expected, found, expr)
	return false
}

// resolveType turns a syntactic type into an interned TypeID. Unknown names
// are reported and yield NoTypeID.
func (tc *typeChecker) resolveType(id ast.TypeID) types.TypeID {
	te := tc.builder.Types.Get(id)
	if te == nil {
		return types.NoTypeID
	}
	switch te.Kind {
	case ast.TypePath:
		if te.Name == "Self" && tc.selfType != types.NoTypeID {
			return tc.selfType
		}
		if t, ok := tc.types.LookupName(te.Name); ok {
			return t
		}
		tc.report(diag.SemaUnknownType, te.Span, "cannot find type '%s' in this scope", te.Name)
		return types.NoTypeID
	case ast.TypeRef:
		elem := tc.resolveType(te.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return tc.types.Intern(types.MakeReference(elem, te.Mut))
	case ast.TypeTuple:
		elems := make([]types.TypeID, 0, len(te.Elems))
		for _, e := range te.Elems {
			et := tc.resolveType(e)
			if et == types.NoTypeID {
				return types.NoTypeID
			}
			tc.checkSized(et, tc.builder.Types.Get(e).Span)
			elems = append(elems, et)
		}
		return tc.types.RegisterTuple(elems)
	case ast.TypeArray, ast.TypeSlice:
		elem := tc.resolveType(te.Elem)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		tc.checkSized(elem, tc.builder.Types.Get(te.Elem).Span)
		count := te.Len
		if te.Kind == ast.TypeSlice {
			count = types.ArrayDynamicLength
		}
		return tc.types.Intern(types.MakeArray(elem, count))
	}
	return types.NoTypeID
}

// checkSized rejects `str` and `[T]` outside of references.
func (tc *typeChecker) checkSized(id types.TypeID, span source.Span) {
	tt, ok := tc.types.Lookup(id)
	if !ok {
		return
	}
	if tt.Kind == types.KindStr || tt.IsSlice() {
		tc.report(diag.SemaError, span, "the size for values of type '%s' cannot be known at compilation time", tc.typeLabel(id))
	}
}

// isIntegerType accepts signed/unsigned integers and `{integer}` literals.
func (tc *typeChecker) isIntegerType(id types.TypeID) bool {
	tt, ok := tc.types.Lookup(id)
	return ok && (tt.Kind == types.KindInt || tt.Kind == types.KindUint)
}

func (tc *typeChecker) isNumeric(id types.TypeID) bool {
	tt, ok := tc.types.Lookup(id)
	return ok && tt.IsNumeric()
}

func (tc *typeChecker) kindOf(id types.TypeID) types.Kind {
	tt, ok := tc.types.Lookup(id)
	if !ok {
		return types.KindInvalid
	}
	return tt.Kind
}

// isTextual reports whether id, after auto-deref, is String or str.
func (tc *typeChecker) isTextual(id types.TypeID) bool {
	switch tc.kindOf(tc.types.Deref(id)) {
	case types.KindString, types.KindStr:
		return true
	default:
		return false
	}
}
