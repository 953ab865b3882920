package lower

import (
	"slices"

	"borrowck/internal/ast"
	"borrowck/internal/ownership"
	"borrowck/internal/sema"
	"borrowck/internal/source"
	"borrowck/internal/types"
)

func (l *lowerer) call(id ast.ExprID, to ownership.Target) {
	data, _ := l.builder.Exprs.Call(id)
	target := l.sema.Calls[id]
	sp := l.exprSpan(id)
	switch target.Kind {
	case sema.CallString:
		l.stringCtor(data, to, id)
	case sema.CallTupleStruct, sema.CallVariant:
		l.aggregate(data.Args, target.Struct, to, sp)
	case sema.CallUnitStruct:
		l.bind(to, l.valueFor(target.Struct), sp)
	case sema.CallFn:
		if target.Fn != nil {
			l.invoke(target.Fn, data.Args, to, sp)
		}
	}
}

// stringCtor lowers `String(...)`. A literal argument gives a buffer with
// known contents; any other text is copied through a clone.
func (l *lowerer) stringCtor(data *ast.ExprCallData, to ownership.Target, id ast.ExprID) {
	sp := l.exprSpan(id)
	if len(data.Args) == 0 {
		l.bind(to, ownership.OwnedText(""), sp)
		return
	}
	arg := data.Args[0]
	if lit, ok := l.builder.Exprs.Literal(l.builder.Exprs.Unparen(arg)); ok && lit.Kind == ast.LitString {
		l.bind(to, ownership.OwnedText(lit.Value), sp)
		return
	}
	from := l.materialize(arg)
	from.Class = ownership.ClassUnknown
	if l.types.IsReference(l.exprType(arg)) && !l.isStrRef(l.exprType(arg)) {
		from = deref(from)
	}
	l.tr.Clone(from, to, ownership.Owned(), sp)
}

// invoke lowers a call of a user function.
func (l *lowerer) invoke(sig *sema.FnSig, args []ast.ExprID, to ownership.Target, sp source.Span) {
	handles := make(map[int]ownership.Place)
	l.passArgs(sig, handles, 0, args)
	l.finishCall(sig, handles, to, sp)
}

// passArgs evaluates arguments for the parameters from skip on. Owned
// arguments are moved into the callee, reference arguments become handles.
func (l *lowerer) passArgs(sig *sema.FnSig, handles map[int]ownership.Place, skip int, args []ast.ExprID) {
	for i, arg := range args {
		pi := i + skip
		if pi >= len(sig.Params) {
			l.discard(arg)
			continue
		}
		pt := sig.Params[pi].Type
		if !l.types.ContainsReference(pt) {
			l.into(arg, ownership.Consumed())
			continue
		}
		if h, ok := l.handle(arg, pt); ok {
			handles[pi] = h
		}
	}
}

// finishCall reads the handles at the call. A result carrying a reference is
// derived from the handles of the parameters it may borrow from instead.
func (l *lowerer) finishCall(sig *sema.FnSig, handles map[int]ownership.Place, to ownership.Target, sp source.Span) {
	result := sig.Result
	borrowed := l.types.ContainsReference(result)
	sources := sig.ResultSources(l.types)
	var used, derived []ownership.Place
	for i := range sig.Params {
		h, ok := handles[i]
		switch {
		case !ok:
		case borrowed && slices.Contains(sources, i):
			derived = append(derived, h)
		default:
			used = append(used, h)
		}
	}
	if len(used) > 0 {
		l.tr.Use(sp, used...)
	}
	if borrowed {
		l.bind(to, l.valueFor(result), sp, derived...)
		return
	}
	if result == l.types.Builtins().Unit && to.Place.IsZero() {
		return
	}
	l.bind(to, l.valueFor(result), sp)
}

// userMethod lowers `recv.name(args)` for a method declared in an impl.
// The receiver is parameter 0. A by-value receiver is moved before the
// arguments are evaluated; a borrowed one is taken after them, so
// `r.grow(r.width)` reads the width first.
func (l *lowerer) userMethod(data *ast.ExprMethodCallData, info sema.MethodInfo, to ownership.Target, sp source.Span) {
	sig := info.Fn
	handles := make(map[int]ownership.Place)
	if sig.Receiver == sema.ReceiverValue {
		l.moveReceiver(data.Receiver, info, sp)
		l.passArgs(sig, handles, 1, data.Args)
	} else {
		l.passArgs(sig, handles, 1, data.Args)
		handles[0] = l.borrowReceiver(data.Receiver, info, sp)
	}
	l.finishCall(sig, handles, to, sp)
}

// moveReceiver passes `self` by value. Through a reference this is a move
// out of the referent.
func (l *lowerer) moveReceiver(id ast.ExprID, info sema.MethodInfo, sp source.Span) {
	if !l.types.IsReference(info.Receiver) {
		l.into(id, ownership.Consumed())
		return
	}
	from := deref(l.materialize(id)).As(l.classOf(info.Fn.Owner))
	l.tr.Move(from, ownership.Consumed(), sp)
}

// borrowReceiver takes `&self` or `&mut self`; a receiver that already is a
// reference is reborrowed through.
func (l *lowerer) borrowReceiver(id ast.ExprID, info sema.MethodInfo, sp source.Span) ownership.Place {
	mode := ownership.Shared
	if info.Fn.Receiver == sema.ReceiverRefMut {
		mode = ownership.Exclusive
	}
	from := l.materialize(id)
	from.Class = ownership.ClassUnknown
	if l.types.IsReference(info.Receiver) {
		from = deref(from)
	}
	tmp := l.temp()
	l.tr.Borrow(from, mode, ownership.Let(tmp), sp)
	return ownership.P(tmp)
}

// handle evaluates an argument passed to a reference parameter. An `&mut`
// handle is reborrowed rather than moved, as the callee only borrows it.
func (l *lowerer) handle(arg ast.ExprID, param types.TypeID) (ownership.Place, bool) {
	arg = l.builder.Exprs.Unparen(arg)
	if p, ok := l.place(arg); ok {
		at, _ := l.types.Lookup(l.exprType(arg))
		if at.Kind != types.KindReference || !at.Mutable {
			return p, true
		}
		mode := ownership.Shared
		if pt, _ := l.types.Lookup(param); pt.Mutable {
			mode = ownership.Exclusive
		}
		tmp := l.temp()
		l.tr.Borrow(deref(p), mode, ownership.Let(tmp), l.exprSpan(arg))
		return ownership.P(tmp), true
	}
	op := l.operand(arg)
	if op.isConst {
		// строковый литерал ничего не заимствует
		return ownership.Place{}, false
	}
	return op.place, true
}

func (l *lowerer) methodCall(id ast.ExprID, to ownership.Target) {
	data, _ := l.builder.Exprs.MethodCall(id)
	info, ok := l.sema.Methods[id]
	if !ok {
		return
	}
	sp := l.exprSpan(id)
	base := l.types.Deref(info.Receiver)

	switch info.Kind {
	case sema.MethodUser:
		l.userMethod(data, info, to, sp)
	case sema.MethodLen, sema.MethodIsEmpty:
		l.read(data.Receiver)
		l.bind(to, ownership.Scalar(), sp)
	case sema.MethodClone:
		if l.isStrRef(info.Receiver) || l.isSliceRef(info.Receiver) {
			// копия ссылки, а не данных
			l.into(data.Receiver, to)
			return
		}
		l.tr.Clone(l.receiver(data.Receiver, info), to, l.valueFor(base), sp)
	case sema.MethodToString:
		l.tr.Clone(l.receiver(data.Receiver, info), to, ownership.Owned(), sp)
	case sema.MethodAsStr:
		l.tr.Borrow(l.receiver(data.Receiver, info), ownership.Shared, to, sp)
	case sema.MethodPushStr, sema.MethodPush, sema.MethodClear, sema.MethodTruncate:
		reads, eff := l.effectArgs(info.Kind, data.Args)
		recv := l.receiver(data.Receiver, info)
		tmp := l.temp()
		// двухфазное заимствование: аргументы читаются до активации
		l.tr.Borrow(recv, ownership.Exclusive, ownership.Let(tmp), sp).WithReads(reads...)
		l.tr.Write(ownership.D(tmp), eff, sp)
		if !to.Place.IsZero() {
			l.tr.Bind(to, ownership.Scalar(), sp)
		}
	}
}

// receiver returns the place a method operates on. A `&str` receiver is the
// handle itself; other references are dereferenced.
func (l *lowerer) receiver(id ast.ExprID, info sema.MethodInfo) ownership.Place {
	p := l.materialize(id)
	p.Class = ownership.ClassUnknown
	if l.types.IsReference(info.Receiver) && !l.isStrRef(info.Receiver) {
		p = deref(p)
	}
	return p
}

// effectArgs evaluates the arguments of a mutating method. Values that are
// not compile-time constants are read by the borrowing operation itself.
func (l *lowerer) effectArgs(kind sema.MethodKind, args []ast.ExprID) ([]ownership.Place, ownership.Effect) {
	var eff ownership.Effect
	switch kind {
	case sema.MethodPushStr, sema.MethodPush:
		eff.Kind = ownership.EffectAppend
	case sema.MethodClear:
		eff.Kind = ownership.EffectClear
	case sema.MethodTruncate:
		eff.Kind = ownership.EffectTruncate
	}
	var reads []ownership.Place
	for _, arg := range args {
		if lit, ok := l.builder.Exprs.Literal(l.builder.Exprs.Unparen(arg)); ok {
			switch {
			case kind == sema.MethodTruncate:
				n, known := l.intLiteral(arg)
				eff.N, eff.Opaque = n, !known
			default:
				eff.Text = lit.Value
			}
			continue
		}
		eff.Opaque = true
		op := l.operand(arg)
		if !op.isConst {
			reads = append(reads, op.place)
		}
	}
	return reads, eff
}

// aggregate builds a tuple, array or tuple struct from its elements.
func (l *lowerer) aggregate(elems []ast.ExprID, t types.TypeID, to ownership.Target, sp source.Span) {
	parts := make([]ownership.Place, 0, len(elems))
	for _, e := range elems {
		if op := l.operand(e); !op.isConst {
			parts = append(parts, op.place)
		}
	}
	l.bind(to, l.valueFor(t), sp, parts...)
}

// structLit builds a struct; fields missing from the literal are taken from
// the `..base` expression.
func (l *lowerer) structLit(id ast.ExprID, to ownership.Target) {
	data, _ := l.builder.Exprs.Struct(id)
	t := l.exprType(id)
	parts := make([]ownership.Place, 0, len(data.Fields))
	given := make(map[string]bool, len(data.Fields))
	for _, f := range data.Fields {
		given[f.Name] = true
		if op := l.operand(f.Value); !op.isConst {
			parts = append(parts, op.place)
		}
	}
	if data.Base.IsValid() {
		base := l.base(data.Base)
		if info, ok := l.types.StructInfo(t); ok {
			for _, f := range info.Fields {
				if given[f.Name] {
					continue
				}
				parts = append(parts, l.field(base, f.Name).As(l.classOf(f.Type)))
			}
		}
	}
	l.bind(to, l.valueFor(t), l.exprSpan(id), parts...)
}
