package sema

import (
	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/types"
)

// isPlaceExpr reports whether the expression denotes a memory location that
// can be assigned to: a local, a field or element of a place, or a deref.
func (tc *typeChecker) isPlaceExpr(id ast.ExprID) bool {
	id = tc.builder.Exprs.Unparen(id)
	expr := tc.builder.Exprs.Get(id)
	if expr == nil {
		return false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		return true
	case ast.ExprField:
		data, _ := tc.builder.Exprs.Field(id)
		return tc.isPlaceExpr(data.Target) || tc.types.IsReference(tc.typeExpr(data.Target))
	case ast.ExprIndex:
		data, _ := tc.builder.Exprs.Index(id)
		return !data.IsRange && tc.isPlaceExpr(data.Target)
	case ast.ExprUnary:
		data, _ := tc.builder.Exprs.Unary(id)
		return data.Op == ast.UnaryDeref
	default:
		return false
	}
}

// checkMovable rejects moving a non-Copy element out of an array by index.
func (tc *typeChecker) checkMovable(id ast.ExprID) {
	id = tc.builder.Exprs.Unparen(id)
	data, ok := tc.builder.Exprs.Index(id)
	if !ok || data.IsRange {
		return
	}
	elem := tc.typeExpr(id)
	if elem == types.NoTypeID || tc.types.IsCopy(elem) {
		return
	}
	container := tc.types.Deref(tc.typeExpr(data.Target))
	diag.ReportError(tc.reporter, diag.SemaError, tc.exprSpan(id),
		"cannot move out of type '"+tc.typeLabel(container)+"', a non-copy array").
		WithNote(tc.exprSpan(id), "consider borrowing here: '&...'").
		Emit()
}
