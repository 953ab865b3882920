package ast

import (
	"borrowck/internal/source"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprIdent represents an identifier expression.
	ExprIdent ExprKind = iota
	// ExprLit represents a literal expression.
	ExprLit
	// ExprUnary represents &e, &mut e, *e and -e.
	ExprUnary
	// ExprBinary represents a + b and a - b.
	ExprBinary
	// ExprField represents s.name and t.0.
	ExprField
	// ExprIndex represents a[i] and a[lo..hi].
	ExprIndex
	// ExprCall represents f(args) and String("..").
	ExprCall
	// ExprMethodCall represents recv.name(args).
	ExprMethodCall
	ExprTuple
	ExprArray
	// ExprStruct represents Name { f: e, ..base }.
	ExprStruct
	ExprGroup
	// ExprPath represents Type::Name without arguments, e.g. a unit variant.
	ExprPath
)

// Expr represents an expression node in the AST.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprLitKind uint8

const (
	LitInt ExprLitKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
)

type ExprLiteralData struct {
	Kind ExprLitKind
	// Raw - исходный текст литерала, Value - декодированное значение (без кавычек и escape).
	Raw   string
	Value string
}

type ExprIdentData struct {
	Name string
}

type ExprUnaryOp uint8

const (
	UnaryRef ExprUnaryOp = iota
	UnaryRefMut
	UnaryDeref
	UnaryNeg
)

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprBinaryOp uint8

const (
	BinaryAdd ExprBinaryOp = iota
	BinarySub
	BinaryMul
)

type ExprBinaryData struct {
	Op          ExprBinaryOp
	Left, Right ExprID
}

type ExprFieldData struct {
	Target ExprID
	Name   string // для кортежей - "0", "1", ...
	// TupleIndex is set when the field was written as a number.
	TupleIndex bool
	NameSpan   source.Span
}

type ExprIndexData struct {
	Target ExprID
	// Index для a[i]; Start/End для диапазонов (любая граница может отсутствовать).
	Index   ExprID
	IsRange bool
	Start   ExprID
	End     ExprID
}

type ExprCallData struct {
	// Qualifier - тип перед '::' (Rectangle::square); пусто для обычного вызова.
	Qualifier     string
	QualifierSpan source.Span
	Callee        string
	NameSpan      source.Span
	Args          []ExprID
}

type ExprMethodCallData struct {
	Receiver ExprID
	Name     string
	NameSpan source.Span
	Args     []ExprID
}

type ExprListData struct {
	Elems []ExprID
}

type StructLitField struct {
	Name  string
	Value ExprID
	Span  source.Span
}

type ExprStructData struct {
	Name string
	// Variant is set for Enum::Variant { .. } literals.
	Variant     string
	VariantSpan source.Span
	Fields      []StructLitField
	Base        ExprID // ..base или NoExprID
}

type ExprGroupData struct {
	Inner ExprID
}

type ExprPathData struct {
	Type     string
	TypeSpan source.Span
	Name     string
	NameSpan source.Span
}
