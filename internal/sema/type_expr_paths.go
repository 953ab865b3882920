package sema

import (
	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/source"
	"borrowck/internal/symbols"
	"borrowck/internal/types"
)

// lookupNominal resolves a struct or enum name; `Self` names the impl type.
func (tc *typeChecker) lookupNominal(name string) (types.TypeID, bool) {
	if name == "Self" && tc.selfType != types.NoTypeID {
		return tc.selfType, true
	}
	symID, ok := tc.resolver.LookupOne(name, symbols.SymbolStruct.Mask())
	if !ok {
		return types.NoTypeID, false
	}
	return tc.result.Symbols.Symbols.Get(symID).Type, true
}

func (tc *typeChecker) variant(info *types.StructInfo, name string, span source.Span) (*types.Variant, bool) {
	if !info.Enum {
		tc.report(diag.SemaUnresolvedSymbol, span, "'%s' is not an enum, it has no variant '%s'", info.Name, name)
		return nil, false
	}
	v, ok := info.Variant(name)
	if !ok {
		tc.report(diag.SemaUnresolvedSymbol, span, "no variant named '%s' found for enum '%s'", name, info.Name)
	}
	return v, ok
}

func nominalWord(info *types.StructInfo) string {
	if info != nil && info.Enum {
		return "enum"
	}
	return "struct"
}

// typeQualifiedCall handles `Type::f(args)`: associated functions and
// methods called with an explicit receiver, tuple variants, and String::from.
func (tc *typeChecker) typeQualifiedCall(id ast.ExprID, call *ast.ExprCallData, argTypes []types.TypeID) types.TypeID {
	if call.Qualifier == "String" && call.Callee == "from" {
		b := tc.types.Builtins()
		tc.result.Calls[id] = CallTarget{Kind: CallString}
		if tc.checkArity(id, "function", 1, len(call.Args)) {
			tc.expectAssignable(b.StrRef, argTypes[0], call.Args[0])
		}
		return b.String
	}
	owner, ok := tc.lookupNominal(call.Qualifier)
	if !ok {
		tc.report(diag.SemaUnknownType, call.QualifierSpan, "failed to resolve: use of undeclared type '%s'", call.Qualifier)
		return types.NoTypeID
	}
	info, _ := tc.types.StructInfo(owner)

	if info.Enum {
		if v, ok := info.Variant(call.Callee); ok {
			if !v.Tuple {
				tc.report(diag.SemaError, tc.exprSpan(id), "expected function, found %s variant '%s::%s'", variantWord(v), info.Name, v.Name)
				return types.NoTypeID
			}
			tc.result.Calls[id] = CallTarget{Kind: CallVariant, Struct: owner, Variant: v.Name}
			if !tc.checkArity(id, "enum variant", len(v.Fields), len(call.Args)) {
				return owner
			}
			for i, a := range call.Args {
				tc.expectAssignable(v.Fields[i].Type, argTypes[i], a)
			}
			return owner
		}
	}

	sig, ok := tc.result.Assoc[owner][call.Callee]
	if !ok {
		tc.report(diag.SemaUnresolvedSymbol, call.NameSpan, "no function or associated item named '%s' found for %s '%s'", call.Callee, nominalWord(info), info.Name)
		return types.NoTypeID
	}
	tc.result.Calls[id] = CallTarget{Kind: CallFn, Fn: sig}
	if !tc.checkArity(id, "function", len(sig.Params), len(call.Args)) {
		return sig.Result
	}
	for i, a := range call.Args {
		tc.expectAssignable(sig.Params[i].Type, argTypes[i], a)
	}
	return sig.Result
}

// typePath handles `Enum::Variant` used as a value.
func (tc *typeChecker) typePath(id ast.ExprID) types.TypeID {
	path, _ := tc.builder.Exprs.Path(id)
	owner, ok := tc.lookupNominal(path.Type)
	if !ok {
		tc.report(diag.SemaUnknownType, path.TypeSpan, "failed to resolve: use of undeclared type '%s'", path.Type)
		return types.NoTypeID
	}
	info, _ := tc.types.StructInfo(owner)
	if _, ok := tc.result.Assoc[owner][path.Name]; ok && !info.Enum {
		tc.report(diag.SemaError, tc.exprSpan(id), "expected value, found associated function '%s::%s'", info.Name, path.Name)
		return types.NoTypeID
	}
	v, ok := tc.variant(info, path.Name, path.NameSpan)
	if !ok {
		return types.NoTypeID
	}
	if !v.Unit() {
		tc.report(diag.SemaError, tc.exprSpan(id), "expected value, found %s variant '%s::%s'", variantWord(v), info.Name, v.Name)
		return types.NoTypeID
	}
	tc.result.Calls[id] = CallTarget{Kind: CallVariant, Struct: owner, Variant: v.Name}
	return owner
}

func variantWord(v *types.Variant) string {
	switch {
	case v.Tuple:
		return "tuple"
	case len(v.Fields) > 0:
		return "struct"
	default:
		return "unit"
	}
}
