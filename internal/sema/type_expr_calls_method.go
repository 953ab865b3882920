package sema

import (
	"fmt"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/types"
)

// typeMethodCall resolves a method declared in an impl block or one of the
// built-in methods. Receivers auto-deref.
func (tc *typeChecker) typeMethodCall(id ast.ExprID) types.TypeID {
	call, _ := tc.builder.Exprs.MethodCall(id)
	recv := tc.typeExpr(call.Receiver)
	argTypes := make([]types.TypeID, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = tc.typeExpr(a)
	}
	if recv == types.NoTypeID {
		return types.NoTypeID
	}
	b := tc.types.Builtins()
	base := tc.types.Deref(recv)
	baseKind := tc.kindOf(base)
	if sig, ok := tc.result.Assoc[base][call.Name]; ok {
		return tc.typeUserMethod(id, call, recv, argTypes, sig)
	}
	sequence := baseKind == types.KindString || baseKind == types.KindStr || baseKind == types.KindArray

	kind := methodNames[call.Name]
	var result types.TypeID
	var params []types.TypeID
	switch kind {
	case MethodLen:
		if !sequence {
			kind = MethodInvalid
		}
		result = b.Usize
	case MethodIsEmpty:
		if !sequence {
			kind = MethodInvalid
		}
		result = b.Bool
	case MethodClone:
		result = base
		if baseKind == types.KindStr || tc.isUnsizedSlice(base) {
			// клон &str - та же ссылка
			result = recv
		}
	case MethodToString:
		if !tc.isTextual(recv) {
			kind = MethodInvalid
		}
		result = b.String
	case MethodAsStr:
		if baseKind != types.KindString {
			kind = MethodInvalid
		}
		result = b.StrRef
	case MethodPushStr:
		params = []types.TypeID{b.StrRef}
	case MethodPush:
		params = []types.TypeID{b.Char}
	case MethodClear:
	case MethodTruncate:
		params = []types.TypeID{b.Usize}
	}
	if kind.Mutates() && baseKind != types.KindString {
		kind = MethodInvalid
	}
	if kind == MethodInvalid {
		tc.report(diag.SemaUnknownMethod, call.NameSpan, "no method named '%s' found for type '%s'", call.Name, tc.typeLabel(recv))
		return types.NoTypeID
	}
	if result == types.NoTypeID {
		result = b.Unit
	}
	tc.result.Methods[id] = MethodInfo{Kind: kind, Receiver: recv, Result: result}

	if !tc.checkArity(id, "method", len(params), len(call.Args)) {
		return result
	}
	for i, a := range call.Args {
		tc.expectAssignable(params[i], argTypes[i], a)
	}
	return result
}

// typeUserMethod checks `recv.name(args)` against a method signature whose
// Params[0] is the receiver.
func (tc *typeChecker) typeUserMethod(id ast.ExprID, call *ast.ExprMethodCallData, recv types.TypeID, argTypes []types.TypeID, sig *FnSig) types.TypeID {
	if !sig.IsMethod() {
		diag.ReportError(tc.reporter, diag.SemaUnknownMethod, call.NameSpan,
			fmt.Sprintf("no method named '%s' found for type '%s'", call.Name, tc.typeLabel(recv))).
			WithNote(sig.Span, fmt.Sprintf("this is an associated function, not a method; call it as '%s(...)'", sig.Name)).
			Emit()
		return types.NoTypeID
	}
	tc.result.Methods[id] = MethodInfo{Kind: MethodUser, Receiver: recv, Result: sig.Result, Fn: sig}
	params := sig.Params[1:]
	if !tc.checkArity(id, "method", len(params), len(call.Args)) {
		return sig.Result
	}
	for i, a := range call.Args {
		tc.expectAssignable(params[i].Type, argTypes[i], a)
	}
	return sig.Result
}

func (tc *typeChecker) isUnsizedSlice(id types.TypeID) bool {
	tt, ok := tc.types.Lookup(id)
	return ok && tt.IsSlice()
}
