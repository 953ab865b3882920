package lower

import (
	"fmt"

	"borrowck/internal/ast"
	"borrowck/internal/ownership"
	"borrowck/internal/sema"
	"borrowck/internal/source"
	"borrowck/internal/trace"
	"borrowck/internal/types"
)

// Options configure lowering of one file.
type Options struct {
	Tracer trace.Tracer
}

// Func is the trace of one function body.
type Func struct {
	Name  string
	Item  ast.ItemID
	Span  source.Span
	Trace *ownership.Trace
}

// Result lists the lowered functions in declaration order.
type Result struct {
	Funcs []Func
	// Skipped lists functions left out because their bodies had semantic errors.
	Skipped []string
}

// Lower turns every well-typed function of the file into an ownership trace.
//
// Reference parameters are modelled as borrows of values owned by a caller
// scope, so a function can be checked in isolation: returning a borrow of a
// parameter's referent is fine, returning a borrow of a local is not.
func Lower(builder *ast.Builder, fileID ast.FileID, semaRes *sema.Result, opts Options) Result {
	var res Result
	if builder == nil || fileID == ast.NoFileID || semaRes == nil {
		return res
	}
	for _, sig := range semaRes.FnOrder {
		if semaRes.Invalid[sig.Item] {
			res.Skipped = append(res.Skipped, sig.Name)
			continue
		}
		fn, ok := builder.Items.Fn(sig.Item)
		if !ok || fn == nil {
			continue
		}
		l := &lowerer{
			builder: builder,
			sema:    semaRes,
			types:   semaRes.TypeInterner,
			tracer:  opts.Tracer,
			tr:      ownership.NewTrace(sig.Name),
		}
		l.lowerFn(fn, sig)
		res.Funcs = append(res.Funcs, Func{Name: sig.Name, Item: sig.Item, Span: fn.Span, Trace: l.tr})
	}
	return res
}

// lowerer holds the state of lowering one function.
type lowerer struct {
	builder *ast.Builder
	sema    *sema.Result
	types   *types.Interner
	tracer  trace.Tracer
	tr      *ownership.Trace

	temps int
	// returned is set once a return statement has been lowered; the rest of
	// the enclosing blocks is unreachable.
	returned bool
}

func (l *lowerer) lowerFn(fn *ast.FnItem, sig *sema.FnSig) {
	if l.tracer != nil && l.tracer.Level() >= trace.LevelDetail {
		span := trace.Begin(l.tracer, trace.ScopeFunc, "lower_fn", 0)
		span.WithExtra("fn", sig.Name)
		defer func() {
			span.WithExtra("ops", fmt.Sprintf("%d", l.tr.Len()))
			span.End("")
		}()
	}

	refs := sig.RefParams(l.types)
	if len(refs) > 0 {
		l.tr.Enter(ownership.ScopeCaller, sig.Name, fn.Span)
		for _, i := range refs {
			p := sig.Params[i]
			l.tr.Bind(ownership.LetMut(callerName(p.Name)), ownership.Owned(), p.Span)
		}
	}
	l.tr.Enter(ownership.ScopeFunction, sig.Name, fn.Span)
	for _, p := range sig.Params {
		to := letTarget(p.Name, p.Mut)
		tt, _ := l.types.Lookup(p.Type)
		switch {
		case tt.Kind == types.KindReference:
			mode := ownership.Shared
			if tt.Mutable {
				mode = ownership.Exclusive
			}
			l.tr.Borrow(ownership.P(callerName(p.Name)), mode, to, p.Span)
		case l.types.ContainsReference(p.Type):
			// кортеж ссылок: заимствование у вызывающего целиком
			l.tr.Borrow(ownership.P(callerName(p.Name)), ownership.Shared, ownership.Let(tempPrefix+p.Name), p.Span)
			l.tr.Bind(to, l.valueFor(p.Type), p.Span, ownership.P(tempPrefix+p.Name))
		default:
			l.tr.Bind(to, l.valueFor(p.Type), p.Span)
		}
	}

	if body, ok := l.builder.Stmts.Block(fn.Body); ok {
		for _, s := range body.Stmts {
			if l.returned {
				break
			}
			l.lowerStmt(s)
		}
	}
	end := fn.Span.ZeroideToEnd()
	l.tr.Exit(end)
	if len(refs) > 0 {
		l.tr.Exit(end)
	}
}

const tempPrefix = "$"

func callerName(param string) string {
	return tempPrefix + "caller_" + param
}

func letTarget(name string, mut bool) ownership.Target {
	if mut {
		return ownership.LetMut(name)
	}
	return ownership.Let(name)
}

// temp allocates a fresh hidden binding for an intermediate value.
func (l *lowerer) temp() string {
	l.temps++
	return fmt.Sprintf("%st%d", tempPrefix, l.temps)
}
