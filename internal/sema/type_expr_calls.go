package sema

import (
	"strings"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/symbols"
	"borrowck/internal/types"
)

func (tc *typeChecker) typeCall(id ast.ExprID) types.TypeID {
	call, _ := tc.builder.Exprs.Call(id)
	argTypes := make([]types.TypeID, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = tc.typeExpr(a)
	}

	if call.Qualifier != "" {
		return tc.typeQualifiedCall(id, call, argTypes)
	}
	if call.Callee == "String" {
		return tc.typeStringCtor(id, call, argTypes)
	}
	if _, ok := tc.resolver.LookupOne(call.Callee, symbols.SymbolLet.Mask()|symbols.SymbolParam.Mask()); ok {
		tc.report(diag.SemaError, call.NameSpan, "'%s' is a value, not a function", call.Callee)
		return types.NoTypeID
	}
	sig, ok := tc.result.Fns[call.Callee]
	if !ok {
		if symID, ok := tc.resolver.LookupOne(call.Callee, symbols.SymbolStruct.Mask()); ok {
			return tc.typeTupleCtor(id, call, argTypes, tc.result.Symbols.Symbols.Get(symID))
		}
		tc.report(diag.SemaUnresolvedSymbol, call.NameSpan, "cannot find function '%s' in this scope", call.Callee)
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

// typeStringCtor handles `String()` and `String("text")`.
func (tc *typeChecker) typeStringCtor(id ast.ExprID, call *ast.ExprCallData, argTypes []types.TypeID) types.TypeID {
	b := tc.types.Builtins()
	tc.result.Calls[id] = CallTarget{Kind: CallString}
	if len(call.Args) > 1 {
		tc.checkArity(id, "constructor", 1, len(call.Args))
		return b.String
	}
	if len(call.Args) == 1 {
		tc.expectAssignable(b.StrRef, argTypes[0], call.Args[0])
	}
	return b.String
}

func (tc *typeChecker) typeTupleCtor(id ast.ExprID, call *ast.ExprCallData, argTypes []types.TypeID, sym *symbols.Symbol) types.TypeID {
	info, ok := tc.types.StructInfo(sym.Type)
	if !ok {
		return types.NoTypeID
	}
	if !info.Tuple {
		tc.report(diag.SemaError, call.NameSpan, "expected function, found %s '%s'", nominalWord(info), call.Callee)
		return types.NoTypeID
	}
	tc.result.Calls[id] = CallTarget{Kind: CallTupleStruct, Struct: sym.Type}
	if !tc.checkArity(id, "struct", len(info.Fields), len(call.Args)) {
		return sym.Type
	}
	for i, a := range call.Args {
		tc.expectAssignable(info.Fields[i].Type, argTypes[i], a)
	}
	return sym.Type
}

func (tc *typeChecker) checkArity(id ast.ExprID, what string, want, got int) bool {
	if want == got {
		return true
	}
	plural := "s"
	if want == 1 {
		plural = ""
	}
	was := "were"
	if got == 1 {
		was = "was"
	}
	tc.report(diag.SemaArgCount, tc.exprSpan(id), "this %s takes %d argument%s but %d %s supplied", what, want, plural, got, was)
	return false
}

// typeStructLit checks `Name { field: value, ..base }` and the enum form
// `Enum::Variant { field: value }`.
func (tc *typeChecker) typeStructLit(id ast.ExprID) types.TypeID {
	data, _ := tc.builder.Exprs.Struct(id)
	span := tc.exprSpan(id)
	structType, ok := tc.lookupNominal(data.Name)
	if !ok {
		for _, f := range data.Fields {
			tc.typeExpr(f.Value)
		}
		tc.report(diag.SemaUnknownType, span, "cannot find struct '%s' in this scope", data.Name)
		return types.NoTypeID
	}
	info, _ := tc.types.StructInfo(structType)
	fields, kind, what := info.Fields, "struct", "'"+info.Name+"'"
	switch {
	case data.Variant != "":
		v, ok := tc.variant(info, data.Variant, data.VariantSpan)
		if !ok {
			for _, f := range data.Fields {
				tc.typeExpr(f.Value)
			}
			return types.NoTypeID
		}
		fields, kind, what = v.Fields, "variant", "'"+info.Name+"::"+v.Name+"'"
		tc.result.Calls[id] = CallTarget{Kind: CallVariant, Struct: structType, Variant: v.Name}
		if data.Base.IsValid() {
			tc.typeExpr(data.Base)
			tc.report(diag.SemaError, tc.exprSpan(data.Base), "functional update syntax requires a struct")
		}
	case info.Enum:
		tc.report(diag.SemaError, span, "expected struct, found enum '%s'", info.Name)
		return types.NoTypeID
	}

	seen := make(map[string]bool, len(data.Fields))
	for _, f := range data.Fields {
		vt := tc.typeExpr(f.Value)
		if seen[f.Name] {
			tc.report(diag.SemaError, f.Span, "field '%s' specified more than once", f.Name)
			continue
		}
		seen[f.Name] = true
		field, ok := findField(fields, f.Name)
		if !ok {
			tc.report(diag.SemaUnknownField, f.Span, "%s %s has no field named '%s'", kind, what, f.Name)
			continue
		}
		tc.expectAssignable(field.Type, vt, f.Value)
	}

	if data.Base.IsValid() && data.Variant == "" {
		bt := tc.typeExpr(data.Base)
		if bt != types.NoTypeID && bt != structType {
			tc.reportMismatch(structType, bt, data.Base)
		}
		return structType
	}
	var missing []string
	for _, f := range fields {
		if !seen[f.Name] {
			missing = append(missing, "'"+f.Name+"'")
		}
	}
	if len(missing) > 0 {
		word := "field"
		if len(missing) > 1 {
			word = "fields"
		}
		tc.report(diag.SemaError, span, "missing %s %s in initializer of %s", word, strings.Join(missing, ", "), what)
	}
	return structType
}

func findField(fields []types.StructField, name string) (types.StructField, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return types.StructField{}, false
}
