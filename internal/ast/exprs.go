package ast

import (
	"borrowck/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena       *Arena[Expr]
	Idents      *Arena[ExprIdentData]
	Literals    *Arena[ExprLiteralData]
	Unaries     *Arena[ExprUnaryData]
	Binaries    *Arena[ExprBinaryData]
	Fields      *Arena[ExprFieldData]
	Indices     *Arena[ExprIndexData]
	Calls       *Arena[ExprCallData]
	MethodCalls *Arena[ExprMethodCallData]
	Lists       *Arena[ExprListData]
	Structs     *Arena[ExprStructData]
	Groups      *Arena[ExprGroupData]
	Paths       *Arena[ExprPathData]
}

// NewExprs creates per-kind expression arenas; capHint 0 means 1<<8.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Idents:      NewArena[ExprIdentData](capHint),
		Literals:    NewArena[ExprLiteralData](capHint),
		Unaries:     NewArena[ExprUnaryData](capHint),
		Binaries:    NewArena[ExprBinaryData](capHint),
		Fields:      NewArena[ExprFieldData](capHint),
		Indices:     NewArena[ExprIndexData](capHint),
		Calls:       NewArena[ExprCallData](capHint),
		MethodCalls: NewArena[ExprMethodCallData](capHint),
		Lists:       NewArena[ExprListData](capHint),
		Structs:     NewArena[ExprStructData](capHint),
		Groups:      NewArena[ExprGroupData](capHint),
		Paths:       NewArena[ExprPathData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewIdent creates a new identifier expression.
func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	return e.new(ExprIdent, span, e.Idents.Allocate(ExprIdentData{Name: name}))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, raw, value string) ExprID {
	return e.new(ExprLit, span, e.Literals.Allocate(ExprLiteralData{Kind: kind, Raw: raw, Value: value}))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

// Unary returns the unary data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

// Binary returns the binary data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

// NewField creates a new field access expression.
func (e *Exprs) NewField(span source.Span, data ExprFieldData) ExprID {
	return e.new(ExprField, span, e.Fields.Allocate(data))
}

// Field returns the field data for the given expression ID.
func (e *Exprs) Field(id ExprID) (*ExprFieldData, bool) {
	p, ok := e.payload(id, ExprField)
	if !ok {
		return nil, false
	}
	return e.Fields.Get(p), true
}

// NewIndex creates a new index or range expression.
func (e *Exprs) NewIndex(span source.Span, data ExprIndexData) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(data))
}

// Index returns the index data for the given expression ID.
func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

// NewCall creates a new function call expression.
func (e *Exprs) NewCall(span source.Span, callee string, nameSpan source.Span, args []ExprID) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(ExprCallData{
		Callee:   callee,
		NameSpan: nameSpan,
		Args:     append([]ExprID(nil), args...),
	}))
}

// NewPathCall creates a qualified call such as Type::f(args).
func (e *Exprs) NewPathCall(span source.Span, qualifier string, qualSpan source.Span, callee string, nameSpan source.Span, args []ExprID) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(ExprCallData{
		Qualifier:     qualifier,
		QualifierSpan: qualSpan,
		Callee:        callee,
		NameSpan:      nameSpan,
		Args:          append([]ExprID(nil), args...),
	}))
}

// Call returns the call data for the given expression ID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

// NewMethodCall creates a new method call expression.
func (e *Exprs) NewMethodCall(span source.Span, recv ExprID, name string, nameSpan source.Span, args []ExprID) ExprID {
	return e.new(ExprMethodCall, span, e.MethodCalls.Allocate(ExprMethodCallData{
		Receiver: recv,
		Name:     name,
		NameSpan: nameSpan,
		Args:     append([]ExprID(nil), args...),
	}))
}

// MethodCall returns the method call data for the given expression ID.
func (e *Exprs) MethodCall(id ExprID) (*ExprMethodCallData, bool) {
	p, ok := e.payload(id, ExprMethodCall)
	if !ok {
		return nil, false
	}
	return e.MethodCalls.Get(p), true
}

// NewTuple creates a new tuple expression; an empty tuple is unit.
func (e *Exprs) NewTuple(span source.Span, elems []ExprID) ExprID {
	return e.new(ExprTuple, span, e.Lists.Allocate(ExprListData{Elems: append([]ExprID(nil), elems...)}))
}

// Tuple returns the tuple data for the given expression ID.
func (e *Exprs) Tuple(id ExprID) (*ExprListData, bool) {
	p, ok := e.payload(id, ExprTuple)
	if !ok {
		return nil, false
	}
	return e.Lists.Get(p), true
}

// NewArray creates a new array literal expression.
func (e *Exprs) NewArray(span source.Span, elems []ExprID) ExprID {
	return e.new(ExprArray, span, e.Lists.Allocate(ExprListData{Elems: append([]ExprID(nil), elems...)}))
}

// Array returns the array data for the given expression ID.
func (e *Exprs) Array(id ExprID) (*ExprListData, bool) {
	p, ok := e.payload(id, ExprArray)
	if !ok {
		return nil, false
	}
	return e.Lists.Get(p), true
}

// NewStruct creates a new struct literal expression.
func (e *Exprs) NewStruct(span source.Span, data ExprStructData) ExprID {
	return e.new(ExprStruct, span, e.Structs.Allocate(data))
}

// Struct returns the struct literal data for the given expression ID.
func (e *Exprs) Struct(id ExprID) (*ExprStructData, bool) {
	p, ok := e.payload(id, ExprStruct)
	if !ok {
		return nil, false
	}
	return e.Structs.Get(p), true
}

// NewGroup creates a parenthesised expression.
func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	return e.new(ExprGroup, span, e.Groups.Allocate(ExprGroupData{Inner: inner}))
}

// Group returns the group data for the given expression ID.
func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	p, ok := e.payload(id, ExprGroup)
	if !ok {
		return nil, false
	}
	return e.Groups.Get(p), true
}

// NewPath creates a Type::Name expression.
func (e *Exprs) NewPath(span source.Span, data ExprPathData) ExprID {
	return e.new(ExprPath, span, e.Paths.Allocate(data))
}

// Path returns the path data for the given expression ID.
func (e *Exprs) Path(id ExprID) (*ExprPathData, bool) {
	p, ok := e.payload(id, ExprPath)
	if !ok {
		return nil, false
	}
	return e.Paths.Get(p), true
}

// Unparen strips any number of grouping parentheses.
func (e *Exprs) Unparen(id ExprID) ExprID {
	for {
		g, ok := e.Group(id)
		if !ok {
			return id
		}
		id = g.Inner
	}
}
