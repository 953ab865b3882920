package sema

import (
	"fmt"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
)

// checkReturns requires a function with a non-unit result to end every
// path in a return statement. Bodies have no branches, so it is enough that
// some statement of the body, possibly nested in blocks, returns.
func (tc *typeChecker) checkReturns(fn *ast.FnItem, sig *FnSig) {
	if sig.Result == tc.types.Builtins().Unit || tc.stmtReturns(fn.Body) {
		return
	}
	b := diag.ReportError(tc.reporter, diag.SemaMissingReturn, fn.NameSpan,
		fmt.Sprintf("function '%s' must return a value of type '%s'", sig.Name, tc.typeLabel(sig.Result)))
	if fn.Result.IsValid() {
		b.WithNote(tc.builder.Types.Get(fn.Result).Span, "expected because of this return type")
	}
	b.Emit()
}

func (tc *typeChecker) stmtReturns(id ast.StmtID) bool {
	stmt := tc.builder.Stmts.Get(id)
	if stmt == nil {
		return false
	}
	switch stmt.Kind {
	case ast.StmtReturn:
		return true
	case ast.StmtBlock:
		blk, _ := tc.builder.Stmts.Block(id)
		for _, s := range blk.Stmts {
			if tc.stmtReturns(s) {
				return true
			}
		}
	}
	return false
}
