package sema

import (
	"cmp"
	"slices"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/source"
	"borrowck/internal/symbols"
	"borrowck/internal/trace"
	"borrowck/internal/types"
)

// Options configure a semantic pass over a file.
type Options struct {
	Reporter diag.Reporter
	Types    *types.Interner
	Tracer   trace.Tracer
}

// Param is a resolved function parameter.
type Param struct {
	Name string
	Type types.TypeID
	Mut  bool
	Span source.Span
}

// ReceiverKind is the form of the `self` parameter of a method.
type ReceiverKind uint8

const (
	// ReceiverNone marks free functions and associated functions.
	ReceiverNone ReceiverKind = iota
	ReceiverValue
	ReceiverRef
	ReceiverRefMut
)

// FnSig is the resolved signature of a function. Methods and associated
// functions carry their impl type in Owner, are named "Type::name" and, for
// methods, keep the receiver as Params[0].
type FnSig struct {
	Name     string
	Item     ast.ItemID
	Owner    types.TypeID
	Receiver ReceiverKind
	Params   []Param
	Result   types.TypeID
	Span     source.Span
}

// IsMethod reports whether the function takes a `self` receiver.
func (sig *FnSig) IsMethod() bool {
	return sig.Receiver != ReceiverNone
}

// ResultSources returns the parameters a returned reference may borrow from.
// A reference receiver is the only source, as with lifetime elision.
func (sig *FnSig) ResultSources(in *types.Interner) []int {
	if sig.Receiver == ReceiverRef || sig.Receiver == ReceiverRefMut {
		return []int{0}
	}
	return sig.RefParams(in)
}

// RefParams returns the indices of parameters whose type carries a borrow.
func (sig *FnSig) RefParams(in *types.Interner) []int {
	var out []int
	for i, p := range sig.Params {
		if in.ContainsReference(p.Type) {
			out = append(out, i)
		}
	}
	return out
}

// CallKind tells what a call expression constructs.
type CallKind uint8

const (
	CallInvalid CallKind = iota
	CallFn
	// CallString is `String("...")`.
	CallString
	// CallTupleStruct is `Color(0, 0, 0)`.
	CallTupleStruct
	// CallUnitStruct is a bare `AlwaysEqual` used as a value.
	CallUnitStruct
	// CallVariant is an enum variant: `IpAddr::V4(..)` or a unit `IpAddrKind::V6`.
	CallVariant
)

// CallTarget describes the resolved callee of a call expression.
type CallTarget struct {
	Kind   CallKind
	Fn     *FnSig
	Struct types.TypeID
	// Variant names the enum variant for CallVariant.
	Variant string
}

// MethodKind enumerates the built-in methods of the script language.
type MethodKind uint8

const (
	MethodInvalid MethodKind = iota
	MethodLen
	MethodIsEmpty
	MethodClone
	MethodToString
	MethodAsStr
	MethodPushStr
	MethodPush
	MethodClear
	MethodTruncate
	// MethodUser is a method declared in an impl block; see MethodInfo.Fn.
	MethodUser
)

var methodNames = map[string]MethodKind{
	"len":       MethodLen,
	"is_empty":  MethodIsEmpty,
	"clone":     MethodClone,
	"to_string": MethodToString,
	"as_str":    MethodAsStr,
	"push_str":  MethodPushStr,
	"push":      MethodPush,
	"clear":     MethodClear,
	"truncate":  MethodTruncate,
}

func (k MethodKind) String() string {
	for name, kind := range methodNames {
		if kind == k {
			return name
		}
	}
	return "?"
}

// Mutates reports whether the method needs an exclusive borrow of the receiver.
func (k MethodKind) Mutates() bool {
	switch k {
	case MethodPushStr, MethodPush, MethodClear, MethodTruncate:
		return true
	default:
		return false
	}
}

// MethodInfo is the resolution of a method call.
type MethodInfo struct {
	Kind MethodKind
	// Receiver is the receiver type before auto-deref.
	Receiver types.TypeID
	Result   types.TypeID
	Fn       *FnSig
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	TypeInterner *types.Interner
	ExprTypes    map[ast.ExprID]types.TypeID
	Symbols      *symbols.Table
	// ExprSymbols maps identifier expressions to the local they name.
	ExprSymbols map[ast.ExprID]symbols.SymbolID
	// StmtSymbols lists the bindings introduced by a let, in pattern order.
	StmtSymbols map[ast.StmtID][]symbols.SymbolID
	// ParamSymbols lists the parameter bindings of each function.
	ParamSymbols map[ast.ItemID][]symbols.SymbolID
	// Fns holds free functions by name.
	Fns map[string]*FnSig
	// Assoc holds methods and associated functions by impl type and name.
	Assoc   map[types.TypeID]map[string]*FnSig
	FnOrder []*FnSig
	Calls        map[ast.ExprID]CallTarget
	Methods      map[ast.ExprID]MethodInfo
	// Invalid marks functions whose bodies produced errors.
	Invalid map[ast.ItemID]bool
}

// Check performs declaration collection and type checking of one file.
func Check(builder *ast.Builder, fileID ast.FileID, opts Options) Result {
	res := Result{
		ExprTypes:    make(map[ast.ExprID]types.TypeID),
		ExprSymbols:  make(map[ast.ExprID]symbols.SymbolID),
		StmtSymbols:  make(map[ast.StmtID][]symbols.SymbolID),
		ParamSymbols: make(map[ast.ItemID][]symbols.SymbolID),
		Fns:          make(map[string]*FnSig),
		Assoc:        make(map[types.TypeID]map[string]*FnSig),
		Calls:        make(map[ast.ExprID]CallTarget),
		Methods:      make(map[ast.ExprID]MethodInfo),
		Invalid:      make(map[ast.ItemID]bool),
		Symbols:      symbols.NewTable(symbols.Hints{}),
	}
	if opts.Types != nil {
		res.TypeInterner = opts.Types
	} else {
		res.TypeInterner = types.NewInterner()
	}
	if builder == nil || fileID == ast.NoFileID {
		return res
	}

	counter := &errorCounter{next: opts.Reporter}
	checker := typeChecker{
		builder:  builder,
		fileID:   fileID,
		reporter: counter,
		errors:   counter,
		types:    res.TypeInterner,
		tracer:   opts.Tracer,
		result:   &res,
	}
	checker.run()
	return res
}

type typeChecker struct {
	builder  *ast.Builder
	fileID   ast.FileID
	reporter diag.Reporter
	errors   *errorCounter
	types    *types.Interner
	tracer   trace.Tracer
	result   *Result

	resolver *symbols.Resolver
	structs  map[string]ast.ItemID
	sigs     map[ast.ItemID]*FnSig
	// fn - сигнатура проверяемой функции.
	fn *FnSig
	// selfType - тип, которым раскрывается `Self` внутри impl.
	selfType types.TypeID
}

func (tc *typeChecker) run() {
	file := tc.builder.Files.Get(tc.fileID)
	if file == nil {
		return
	}
	root := tc.result.Symbols.FileRoot(file.Span.File, file.Span)
	tc.resolver = symbols.NewResolver(tc.result.Symbols, root, symbols.ResolverOptions{Reporter: tc.reporter})
	tc.structs = make(map[string]ast.ItemID)
	tc.sigs = make(map[ast.ItemID]*FnSig)

	tc.collectTypes(file.Items)
	tc.collectFns(file.Items)
	tc.collectImpls(file.Items)
	// методы собираются после свободных функций; порядок - как в исходнике
	slices.SortStableFunc(tc.result.FnOrder, func(a, b *FnSig) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})
	for _, id := range file.Items {
		switch tc.builder.Items.Get(id).Kind {
		case ast.ItemFn:
			tc.walkFn(id)
		case ast.ItemImpl:
			impl, _ := tc.builder.Items.Impl(id)
			for _, m := range impl.Methods {
				tc.walkFn(m)
			}
		}
	}
}

// errorCounter forwards diagnostics and counts errors so a function body can
// be marked invalid.
type errorCounter struct {
	next  diag.Reporter
	count int
}

func (c *errorCounter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		c.count++
	}
	if c.next != nil {
		c.next.Report(code, sev, primary, msg, notes)
	}
}
