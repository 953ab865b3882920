package lower

import (
	"borrowck/internal/ast"
	"borrowck/internal/ownership"
	"borrowck/internal/sema"
	"borrowck/internal/source"
)

// operand is an evaluated expression: either a place holding the value or a
// constant that lives in no binding.
type operand struct {
	place   ownership.Place
	value   ownership.Value
	isConst bool
}

// into evaluates the expression and stores its value into to.
func (l *lowerer) into(id ast.ExprID, to ownership.Target) {
	id = l.builder.Exprs.Unparen(id)
	expr := l.builder.Exprs.Get(id)
	if expr == nil {
		return
	}
	sp := expr.Span
	if p, ok := l.place(id); ok {
		l.tr.Move(p.As(l.classOf(l.exprType(id))), to, sp)
		return
	}
	switch expr.Kind {
	case ast.ExprLit:
		if !to.Place.IsZero() {
			l.tr.Bind(to, l.literal(id), sp)
		}
	case ast.ExprIdent, ast.ExprPath:
		if target, ok := l.sema.Calls[id]; ok && (target.Kind == sema.CallUnitStruct || target.Kind == sema.CallVariant) {
			l.bind(to, l.valueFor(target.Struct), sp)
		}
	case ast.ExprUnary:
		data, _ := l.builder.Exprs.Unary(id)
		switch data.Op {
		case ast.UnaryRef:
			l.borrow(data.Operand, ownership.Shared, to, sp)
		case ast.UnaryRefMut:
			l.borrow(data.Operand, ownership.Exclusive, to, sp)
		default:
			l.read(data.Operand)
			l.bind(to, ownership.Scalar(), sp)
		}
	case ast.ExprBinary:
		data, _ := l.builder.Exprs.Binary(id)
		l.read(data.Left)
		l.read(data.Right)
		l.bind(to, ownership.Scalar(), sp)
	case ast.ExprCall:
		l.call(id, to)
	case ast.ExprMethodCall:
		l.methodCall(id, to)
	case ast.ExprTuple:
		data, _ := l.builder.Exprs.Tuple(id)
		l.aggregate(data.Elems, l.exprType(id), to, sp)
	case ast.ExprArray:
		data, _ := l.builder.Exprs.Array(id)
		l.aggregate(data.Elems, l.exprType(id), to, sp)
	case ast.ExprStruct:
		l.structLit(id, to)
	}
}

// bind creates a value without sources; a discarded Copy value needs no op.
func (l *lowerer) bind(to ownership.Target, v ownership.Value, sp source.Span, parts ...ownership.Place) {
	if to.Place.IsZero() && v.Class != ownership.Owning && len(parts) == 0 {
		return
	}
	l.tr.Bind(to, v, sp, parts...)
}

// operand evaluates the expression without choosing a destination. Places
// are returned as is, other values land in a fresh temporary.
func (l *lowerer) operand(id ast.ExprID) operand {
	id = l.builder.Exprs.Unparen(id)
	if p, ok := l.place(id); ok {
		return operand{place: p.As(l.classOf(l.exprType(id)))}
	}
	expr := l.builder.Exprs.Get(id)
	if expr == nil {
		return operand{value: ownership.Scalar(), isConst: true}
	}
	switch expr.Kind {
	case ast.ExprLit:
		return operand{value: l.literal(id), isConst: true}
	case ast.ExprBinary:
		data, _ := l.builder.Exprs.Binary(id)
		l.read(data.Left)
		l.read(data.Right)
		return operand{value: ownership.Scalar(), isConst: true}
	case ast.ExprUnary:
		data, _ := l.builder.Exprs.Unary(id)
		if data.Op == ast.UnaryNeg {
			l.read(data.Operand)
			return operand{value: ownership.Scalar(), isConst: true}
		}
	}
	tmp := l.temp()
	l.into(id, ownership.Let(tmp))
	return operand{place: ownership.P(tmp)}
}

// materialize returns a place holding the value of the expression,
// binding constants to a temporary when needed.
func (l *lowerer) materialize(id ast.ExprID) ownership.Place {
	op := l.operand(id)
	if !op.isConst {
		return op.place
	}
	tmp := l.temp()
	l.tr.Bind(ownership.Let(tmp), op.value, l.exprSpan(id))
	return ownership.P(tmp)
}

// read marks the value of the expression as read.
func (l *lowerer) read(id ast.ExprID) {
	op := l.operand(id)
	if !op.isConst {
		l.tr.Use(l.exprSpan(id), op.place)
	}
}

// discard lowers an expression statement.
func (l *lowerer) discard(id ast.ExprID) {
	id = l.builder.Exprs.Unparen(id)
	expr := l.builder.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprCall, ast.ExprMethodCall, ast.ExprStruct, ast.ExprTuple, ast.ExprArray, ast.ExprPath:
		l.into(id, ownership.Consumed())
	default:
		l.read(id)
	}
}

// place returns the place an expression denotes. Bases that are not places
// themselves are evaluated into temporaries.
func (l *lowerer) place(id ast.ExprID) (ownership.Place, bool) {
	id = l.builder.Exprs.Unparen(id)
	expr := l.builder.Exprs.Get(id)
	if expr == nil {
		return ownership.Place{}, false
	}
	switch expr.Kind {
	case ast.ExprIdent:
		symID, ok := l.sema.ExprSymbols[id]
		if !ok {
			return ownership.Place{}, false
		}
		sym := l.sema.Symbols.Symbols.Get(symID)
		if sym == nil {
			return ownership.Place{}, false
		}
		return ownership.P(sym.Name), true
	case ast.ExprField:
		data, _ := l.builder.Exprs.Field(id)
		return l.field(l.base(data.Target), data.Name), true
	case ast.ExprIndex:
		data, _ := l.builder.Exprs.Index(id)
		if data.IsRange {
			return ownership.Place{}, false
		}
		l.read(data.Index)
		return l.field(l.base(data.Target), ownership.Elem), true
	case ast.ExprUnary:
		data, _ := l.builder.Exprs.Unary(id)
		if data.Op != ast.UnaryDeref {
			return ownership.Place{}, false
		}
		return deref(l.materialize(data.Operand)), true
	}
	return ownership.Place{}, false
}

// base is the place a field or element access starts from; references are
// dereferenced automatically.
func (l *lowerer) base(id ast.ExprID) ownership.Place {
	p := l.materialize(id)
	p.Class = ownership.ClassUnknown
	if l.types.IsReference(l.exprType(id)) {
		p = deref(p)
	}
	return p
}

// borrow lowers `&operand` and `&mut operand`, including slices.
func (l *lowerer) borrow(id ast.ExprID, mode ownership.Mode, to ownership.Target, sp source.Span) {
	id = l.builder.Exprs.Unparen(id)
	if idx, ok := l.builder.Exprs.Index(id); ok && idx.IsRange {
		from := l.base(idx.Target)
		l.tr.Borrow(from, mode, to, sp).WithRange(l.rangeOf(idx))
		return
	}
	from := l.materialize(id)
	from.Class = ownership.ClassUnknown
	l.tr.Borrow(from, mode, to, sp)
}

func (l *lowerer) rangeOf(idx *ast.ExprIndexData) ownership.Range {
	var r ownership.Range
	if idx.Start.IsValid() {
		r.Start, r.HasStart = l.intLiteral(idx.Start)
	}
	if idx.End.IsValid() {
		r.End, r.HasEnd = l.intLiteral(idx.End)
	}
	return r
}
