package ast

import (
	"borrowck/internal/source"
)

type TypeKind uint8

const (
	// TypePath - именованный тип: i32, String, User, str.
	TypePath TypeKind = iota
	// TypeRef - &T или &mut T.
	TypeRef
	// TypeTuple - (A, B); пустой кортеж - unit.
	TypeTuple
	// TypeArray - [T; N].
	TypeArray
	// TypeSlice - [T], только за ссылкой.
	TypeSlice
)

type TypeExpr struct {
	Kind  TypeKind
	Span  source.Span
	Name  string   // TypePath
	Mut   bool     // TypeRef
	Elem  TypeID   // TypeRef, TypeArray, TypeSlice
	Elems []TypeID // TypeTuple
	Len   uint32   // TypeArray
}

type Types struct {
	Arena *Arena[TypeExpr]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeExpr](capHint)}
}

func (t *Types) New(te TypeExpr) TypeID {
	return TypeID(t.Arena.Allocate(te))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}
