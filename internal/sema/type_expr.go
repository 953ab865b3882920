package sema

import (
	"strconv"

	"fortio.org/safecast"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/symbols"
	"borrowck/internal/types"
)

// typeExpr computes and records the type of an expression. NoTypeID means
// the type is unknown; errors have already been reported.
func (tc *typeChecker) typeExpr(id ast.ExprID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	if t, ok := tc.result.ExprTypes[id]; ok {
		return t
	}
	t := tc.computeExprType(id)
	tc.result.ExprTypes[id] = t
	return t
}

func (tc *typeChecker) computeExprType(id ast.ExprID) types.TypeID {
	expr := tc.builder.Exprs.Get(id)
	if expr == nil {
		return types.NoTypeID
	}
	b := tc.types.Builtins()
	switch expr.Kind {
	case ast.ExprLit:
		lit, _ := tc.builder.Exprs.Literal(id)
		switch lit.Kind {
		case ast.LitInt:
			return b.IntLit
		case ast.LitFloat:
			return b.FloatLit
		case ast.LitBool:
			return b.Bool
		case ast.LitChar:
			return b.Char
		default:
			return b.StrRef
		}
	case ast.ExprIdent:
		return tc.typeIdent(id)
	case ast.ExprUnary:
		return tc.typeUnary(id)
	case ast.ExprBinary:
		return tc.typeBinary(id)
	case ast.ExprField:
		return tc.typeField(id)
	case ast.ExprIndex:
		return tc.typeIndex(id)
	case ast.ExprCall:
		return tc.typeCall(id)
	case ast.ExprMethodCall:
		return tc.typeMethodCall(id)
	case ast.ExprStruct:
		return tc.typeStructLit(id)
	case ast.ExprTuple:
		data, _ := tc.builder.Exprs.Tuple(id)
		elems := make([]types.TypeID, 0, len(data.Elems))
		for _, e := range data.Elems {
			et := tc.typeExpr(e)
			if et == types.NoTypeID {
				return types.NoTypeID
			}
			elems = append(elems, et)
		}
		return tc.types.RegisterTuple(elems)
	case ast.ExprArray:
		return tc.typeArray(id)
	case ast.ExprGroup:
		g, _ := tc.builder.Exprs.Group(id)
		return tc.typeExpr(g.Inner)
	case ast.ExprPath:
		return tc.typePath(id)
	}
	return types.NoTypeID
}

func (tc *typeChecker) typeIdent(id ast.ExprID) types.TypeID {
	ident, _ := tc.builder.Exprs.Ident(id)
	span := tc.exprSpan(id)
	symID, ok := tc.resolver.LookupOne(ident.Name, symbols.SymbolLet.Mask()|symbols.SymbolParam.Mask())
	if ok {
		tc.result.ExprSymbols[id] = symID
		return tc.result.Symbols.Symbols.Get(symID).Type
	}
	if symID, ok := tc.resolver.LookupOne(ident.Name, symbols.SymbolStruct.Mask()); ok {
		sym := tc.result.Symbols.Symbols.Get(symID)
		info, ok := tc.types.StructInfo(sym.Type)
		if ok && len(info.Fields) == 0 && !info.Tuple && !info.Enum {
			tc.result.Calls[id] = CallTarget{Kind: CallUnitStruct, Struct: sym.Type}
			return sym.Type
		}
		tc.report(diag.SemaError, span, "expected value, found %s '%s'", nominalWord(info), ident.Name)
		return types.NoTypeID
	}
	if _, ok := tc.resolver.LookupOne(ident.Name, symbols.SymbolFunction.Mask()); ok {
		tc.report(diag.SemaError, span, "expected value, found function '%s'", ident.Name)
		return types.NoTypeID
	}
	tc.report(diag.SemaUnresolvedSymbol, span, "cannot find value '%s' in this scope", ident.Name)
	return types.NoTypeID
}

func (tc *typeChecker) typeUnary(id ast.ExprID) types.TypeID {
	data, _ := tc.builder.Exprs.Unary(id)
	operand := tc.typeExpr(data.Operand)
	if operand == types.NoTypeID {
		return types.NoTypeID
	}
	switch data.Op {
	case ast.UnaryRef, ast.UnaryRefMut:
		return tc.types.Intern(types.MakeReference(tc.types.Default(operand), data.Op == ast.UnaryRefMut))
	case ast.UnaryDeref:
		tt, _ := tc.types.Lookup(operand)
		if tt.Kind != types.KindReference {
			tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "type '%s' cannot be dereferenced", tc.typeLabel(operand))
			return types.NoTypeID
		}
		return tt.Elem
	default:
		if !tc.isNumeric(operand) {
			tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "cannot apply unary operator '-' to type '%s'", tc.typeLabel(operand))
			return types.NoTypeID
		}
		return operand
	}
}

func (tc *typeChecker) typeBinary(id ast.ExprID) types.TypeID {
	data, _ := tc.builder.Exprs.Binary(id)
	left := tc.typeExpr(data.Left)
	right := tc.typeExpr(data.Right)
	if left == types.NoTypeID || right == types.NoTypeID {
		return types.NoTypeID
	}
	op := "+"
	switch data.Op {
	case ast.BinarySub:
		op = "-"
	case ast.BinaryMul:
		op = "*"
	}
	if !tc.isNumeric(left) || !tc.isNumeric(right) {
		tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "cannot apply '%s' to '%s' and '%s'", op, tc.typeLabel(left), tc.typeLabel(right))
		return types.NoTypeID
	}
	switch {
	case left == right:
		return left
	case tc.types.Assignable(left, right):
		return left
	case tc.types.Assignable(right, left):
		return right
	}
	tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "cannot apply '%s' to '%s' and '%s'", op, tc.typeLabel(left), tc.typeLabel(right))
	return types.NoTypeID
}

func (tc *typeChecker) typeField(id ast.ExprID) types.TypeID {
	data, _ := tc.builder.Exprs.Field(id)
	target := tc.typeExpr(data.Target)
	if target == types.NoTypeID {
		return types.NoTypeID
	}
	base := tc.types.Deref(target)
	switch tc.kindOf(base) {
	case types.KindTuple:
		info, _ := tc.types.TupleInfo(base)
		idx, err := strconv.Atoi(data.Name)
		if !data.TupleIndex || err != nil || idx < 0 || idx >= len(info.Elems) {
			tc.report(diag.SemaInvalidTupleAccess, data.NameSpan, "no field '%s' on type '%s'", data.Name, tc.typeLabel(base))
			return types.NoTypeID
		}
		return info.Elems[idx]
	case types.KindStruct:
		info, _ := tc.types.StructInfo(base)
		if f, _, ok := info.Field(data.Name); ok {
			return f.Type
		}
		code := diag.SemaUnknownField
		if data.TupleIndex {
			code = diag.SemaInvalidTupleAccess
		}
		tc.report(code, data.NameSpan, "no field '%s' on type '%s'", data.Name, tc.typeLabel(base))
		return types.NoTypeID
	}
	if data.TupleIndex {
		tc.report(diag.SemaInvalidTupleAccess, data.NameSpan, "no field '%s' on type '%s'", data.Name, tc.typeLabel(base))
	} else {
		tc.report(diag.SemaUnknownField, data.NameSpan, "no field '%s' on type '%s'", data.Name, tc.typeLabel(base))
	}
	return types.NoTypeID
}

// typeIndex handles `a[i]`, `s[lo..hi]` and their open-ended forms.
// Range bounds must be integer literals so slices can be checked statically.
func (tc *typeChecker) typeIndex(id ast.ExprID) types.TypeID {
	data, _ := tc.builder.Exprs.Index(id)
	target := tc.typeExpr(data.Target)
	if target == types.NoTypeID {
		return types.NoTypeID
	}
	base := tc.types.Deref(target)
	tt, _ := tc.types.Lookup(base)

	if !data.IsRange {
		it := tc.typeExpr(data.Index)
		switch {
		case it == types.NoTypeID:
			return types.NoTypeID
		case tt.Kind == types.KindArray && tc.isIntegerType(it):
			return tt.Elem
		case tt.Kind == types.KindString || tt.Kind == types.KindStr:
			tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "the type '%s' cannot be indexed by '%s'", tc.typeLabel(base), tc.typeLabel(it))
			return types.NoTypeID
		case tt.Kind == types.KindArray:
			tc.report(diag.SemaTypeMismatch, tc.exprSpan(data.Index), "the type '%s' cannot be indexed by '%s'", tc.typeLabel(base), tc.typeLabel(it))
			return types.NoTypeID
		}
		tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "cannot index into a value of type '%s'", tc.typeLabel(target))
		return types.NoTypeID
	}

	for _, bound := range []ast.ExprID{data.Start, data.End} {
		if !bound.IsValid() {
			continue
		}
		bt := tc.typeExpr(bound)
		if bt == types.NoTypeID {
			return types.NoTypeID
		}
		if lit, ok := tc.builder.Exprs.Literal(tc.builder.Exprs.Unparen(bound)); ok && lit.Kind == ast.LitInt {
			if _, ok := tc.literalIndex(bound); !ok {
				tc.report(diag.SemaLiteralOutOfRange, tc.exprSpan(bound), "literal out of range for 'usize': '%s'", lit.Raw)
				return types.NoTypeID
			}
		}
		if _, ok := tc.literalIndex(bound); !ok || !tc.isIntegerType(bt) {
			tc.report(diag.SemaError, tc.exprSpan(bound), "slice bounds must be integer literals")
			return types.NoTypeID
		}
	}
	switch tt.Kind {
	case types.KindString, types.KindStr:
		return tc.types.Builtins().Str
	case types.KindArray:
		return tc.types.Intern(types.MakeArray(tt.Elem, types.ArrayDynamicLength))
	}
	tc.report(diag.SemaTypeMismatch, tc.exprSpan(id), "cannot slice a value of type '%s'", tc.typeLabel(target))
	return types.NoTypeID
}

// literalIndex returns the value of an unsigned integer literal.
func (tc *typeChecker) literalIndex(id ast.ExprID) (int, bool) {
	lit, ok := tc.builder.Exprs.Literal(tc.builder.Exprs.Unparen(id))
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Value)
	return n, err == nil && n >= 0
}

func (tc *typeChecker) typeArray(id ast.ExprID) types.TypeID {
	data, _ := tc.builder.Exprs.Array(id)
	if len(data.Elems) == 0 {
		tc.report(diag.SemaError, tc.exprSpan(id), "type annotations needed for empty array")
		return types.NoTypeID
	}
	elem := types.NoTypeID
	for _, e := range data.Elems {
		et := tc.typeExpr(e)
		switch {
		case et == types.NoTypeID:
			return types.NoTypeID
		case elem == types.NoTypeID, tc.types.Assignable(et, elem):
			elem = et
		case !tc.types.Assignable(elem, et):
			tc.reportMismatch(elem, et, e)
			return types.NoTypeID
		}
	}
	n, err := safecast.Conv[uint32](len(data.Elems))
	if err != nil || n == types.ArrayDynamicLength {
		tc.report(diag.SemaError, tc.exprSpan(id), "array literal is too long")
		return types.NoTypeID
	}
	return tc.types.Intern(types.MakeArray(elem, n))
}
