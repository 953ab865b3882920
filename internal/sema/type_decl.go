package sema

import (
	"fmt"
	"strings"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/source"
	"borrowck/internal/symbols"
	"borrowck/internal/types"
)

// nominal is a struct or enum declaration registered in the type namespace.
type nominal struct {
	item     ast.ItemID
	name     string
	nameSpan source.Span
	copy     bool
	typ      types.TypeID
}

// collectTypes registers every struct and enum name first so fields may
// refer to types declared later in the file, then resolves fields, rejects
// infinitely sized types and settles Copy-ness.
func (tc *typeChecker) collectTypes(items []ast.ItemID) {
	var order []nominal
	for _, id := range items {
		var n nominal
		var tuple bool
		switch item := tc.builder.Items.Get(id); item.Kind {
		case ast.ItemStruct:
			st, _ := tc.builder.Items.Struct(id)
			tc.checkAttrs(st.Attrs, true)
			n = nominal{item: id, name: st.Name, nameSpan: st.NameSpan, copy: st.HasAttr("copy")}
			tuple = st.Tuple
		case ast.ItemEnum:
			en, _ := tc.builder.Items.Enum(id)
			tc.checkAttrs(en.Attrs, true)
			n = nominal{item: id, name: en.Name, nameSpan: en.NameSpan, copy: en.HasAttr("copy")}
		default:
			continue
		}
		_, declared := tc.structs[n.name]
		if _, builtin := tc.types.LookupName(n.name); (builtin && !declared) || n.name == "Self" {
			tc.report(diag.SemaDuplicateSymbol, n.nameSpan, "the name '%s' is reserved for a builtin type", n.name)
			continue
		}
		var flags symbols.SymbolFlags
		if tuple {
			flags |= symbols.SymbolFlagTupleCtor
		}
		symID, ok := tc.resolver.Declare(symbols.Symbol{
			Name:  n.name,
			Kind:  symbols.SymbolStruct,
			Span:  n.nameSpan,
			Flags: flags,
			Decl:  symbols.SymbolDecl{SourceFile: n.nameSpan.File, ASTFile: tc.fileID, Item: id},
		})
		if !ok {
			continue
		}
		if tc.builder.Items.Get(id).Kind == ast.ItemEnum {
			n.typ = tc.types.RegisterEnum(n.name, n.nameSpan)
		} else {
			n.typ = tc.types.RegisterStruct(n.name, n.nameSpan, tuple)
		}
		tc.result.Symbols.Symbols.Get(symID).Type = n.typ
		tc.structs[n.name] = id
		order = append(order, n)
	}

	for _, n := range order {
		if st, ok := tc.builder.Items.Struct(n.item); ok {
			tc.types.SetStructFields(n.typ, tc.resolveFields(st.Fields))
			continue
		}
		en, _ := tc.builder.Items.Enum(n.item)
		variants := make([]types.Variant, 0, len(en.Variants))
		seen := make(map[string]bool, len(en.Variants))
		for _, v := range en.Variants {
			if seen[v.Name] {
				tc.report(diag.SemaDuplicateSymbol, v.NameSpan, "variant '%s' is already declared", v.Name)
				continue
			}
			seen[v.Name] = true
			variants = append(variants, types.Variant{
				Name:   v.Name,
				Decl:   v.NameSpan,
				Fields: tc.resolveFields(v.Fields),
				Tuple:  v.Tuple,
			})
		}
		tc.types.SetEnumVariants(n.typ, variants)
	}

	tc.checkRecursive(order)
	tc.resolveCopyTypes(order)
}

func (tc *typeChecker) resolveFields(decl []ast.StructField) []types.StructField {
	fields := make([]types.StructField, 0, len(decl))
	seen := make(map[string]bool, len(decl))
	for _, f := range decl {
		if seen[f.Name] {
			tc.report(diag.SemaDuplicateSymbol, f.Span, "field '%s' is already declared", f.Name)
			continue
		}
		seen[f.Name] = true
		ft := tc.resolveType(f.Type)
		if ft != types.NoTypeID && tc.types.ContainsReference(ft) {
			tc.reportMissingLifetime(f.Span, "struct fields cannot hold references; use an owned type such as 'String'")
		}
		tc.checkSized(ft, f.Span)
		fields = append(fields, types.StructField{Name: f.Name, Type: ft, Decl: f.Span})
	}
	return fields
}

// checkRecursive rejects types that hold themselves by value. The offending
// field is dropped so later passes see a finite type.
func (tc *typeChecker) checkRecursive(order []nominal) {
	for _, n := range order {
		if !tc.types.Embeds(n.typ, n.typ) {
			continue
		}
		info, _ := tc.types.StructInfo(n.typ)
		for _, f := range payloadFields(info) {
			if f.Type != n.typ && !tc.types.Embeds(f.Type, n.typ) {
				continue
			}
			diag.ReportError(tc.reporter, diag.SemaRecursiveType, n.nameSpan,
				fmt.Sprintf("recursive type '%s' has infinite size", n.name)).
				WithNote(f.Decl, "recursive without indirection; insert a reference or restructure the type").
				Emit()
			f.Type = types.NoTypeID
			break
		}
	}
}

// payloadFields returns pointers to every field stored by a struct or enum.
func payloadFields(info *types.StructInfo) []*types.StructField {
	var out []*types.StructField
	for i := range info.Fields {
		out = append(out, &info.Fields[i])
	}
	for i := range info.Variants {
		for j := range info.Variants[i].Fields {
			out = append(out, &info.Variants[i].Fields[j])
		}
	}
	return out
}

// resolveCopyTypes marks @copy types as Copy until a fixpoint is reached;
// a type may only be Copy when every field is.
func (tc *typeChecker) resolveCopyTypes(order []nominal) {
	pending := make([]nominal, 0, len(order))
	for _, n := range order {
		if n.copy {
			pending = append(pending, n)
		}
	}
	for changed := true; changed; {
		changed = false
		rest := pending[:0]
		for _, n := range pending {
			info, _ := tc.types.StructInfo(n.typ)
			if tc.firstNonCopyField(info) == nil {
				tc.types.MarkCopy(n.typ)
				changed = true
				continue
			}
			rest = append(rest, n)
		}
		pending = rest
	}
	for _, n := range pending {
		info, _ := tc.types.StructInfo(n.typ)
		field := tc.firstNonCopyField(info)
		diag.ReportError(tc.reporter, diag.SemaCopyNonCopyField, n.nameSpan,
			fmt.Sprintf("the trait 'Copy' cannot be implemented for type '%s'", n.name)).
			WithNote(field.Decl, fmt.Sprintf("this field does not implement 'Copy' ('%s')", tc.typeLabel(field.Type))).
			Emit()
	}
}

func (tc *typeChecker) firstNonCopyField(info *types.StructInfo) *types.StructField {
	for _, f := range payloadFields(info) {
		if f.Type != types.NoTypeID && !tc.types.IsCopy(f.Type) {
			return f
		}
	}
	return nil
}

func (tc *typeChecker) collectFns(items []ast.ItemID) {
	for _, id := range items {
		fn, ok := tc.builder.Items.Fn(id)
		if !ok {
			continue
		}
		tc.checkAttrs(fn.Attrs, false)
		if _, ok := tc.resolver.Declare(symbols.Symbol{
			Name: fn.Name,
			Kind: symbols.SymbolFunction,
			Span: fn.NameSpan,
			Decl: symbols.SymbolDecl{SourceFile: fn.Span.File, ASTFile: tc.fileID, Item: id},
		}); !ok {
			tc.result.Invalid[id] = true
			continue
		}
		if fn.SelfParam {
			tc.report(diag.SemaInvalidReceiver, fn.Params[0].Span, "'self' parameter is only allowed in associated functions")
			tc.result.Invalid[id] = true
		}
		sig := tc.signature(id, fn, fn.Name)
		tc.result.Fns[fn.Name] = sig
	}
}

// signature resolves parameter and result types and registers the function
// for checking. Inside an impl tc.selfType must already be set.
func (tc *typeChecker) signature(id ast.ItemID, fn *ast.FnItem, name string) *FnSig {
	sig := &FnSig{Name: name, Item: id, Owner: tc.selfType, Result: tc.types.Builtins().Unit, Span: fn.NameSpan}
	for i, p := range fn.Params {
		pt := types.NoTypeID
		// `self` вне impl уже отмечен, Self там не разрешается
		if i > 0 || !fn.SelfParam || tc.selfType != types.NoTypeID {
			pt = tc.resolveType(p.Type)
			tc.checkSized(pt, p.Span)
		}
		sig.Params = append(sig.Params, Param{Name: p.Name, Type: pt, Mut: p.Mut, Span: p.Span})
	}
	if fn.SelfParam && tc.selfType != types.NoTypeID {
		if sig.Receiver = tc.receiverKind(sig.Params[0]); sig.Receiver == ReceiverNone {
			tc.result.Invalid[id] = true
		}
	}
	if fn.Result.IsValid() {
		sig.Result = tc.resolveType(fn.Result)
		tc.checkSized(sig.Result, tc.builder.Types.Get(fn.Result).Span)
	}
	if tc.types.ContainsReference(sig.Result) {
		tc.checkElision(fn, sig)
	}
	tc.sigs[id] = sig
	tc.result.FnOrder = append(tc.result.FnOrder, sig)
	return sig
}

// checkElision requires a returned reference to have at most one source
// among the parameters; a `&self` receiver is always that source. With none, a borrow of a local can only dangle,
// which the ownership rules report at the return.
func (tc *typeChecker) checkElision(fn *ast.FnItem, sig *FnSig) {
	refs := sig.ResultSources(tc.types)
	if len(refs) < 2 {
		return
	}
	names := make([]string, len(refs))
	for i, idx := range refs {
		names[i] = "'" + sig.Params[idx].Name + "'"
	}
	span := fn.NameSpan
	if fn.Result.IsValid() {
		span = tc.builder.Types.Get(fn.Result).Span
	}
	diag.ReportError(tc.reporter, diag.SemaAmbiguousLifetime, span, "missing lifetime specifier").
		WithNote(fn.NameSpan, fmt.Sprintf("this function's return type contains a borrowed value, but the signature does not say whether it is borrowed from %s", strings.Join(names, " or "))).
		Emit()
	tc.result.Invalid[sig.Item] = true
}

func (tc *typeChecker) checkAttrs(attrs []ast.Attr, isStruct bool) {
	for _, a := range attrs {
		switch {
		case a.Name == "copy" && isStruct:
		case a.Name == "copy":
			tc.report(diag.SemaError, a.Span, "attribute '@copy' is only allowed on structs and enums")
		default:
			tc.report(diag.SemaError, a.Span, "unknown attribute '@%s'", a.Name)
		}
	}
}
