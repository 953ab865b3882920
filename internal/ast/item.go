package ast

import (
	"borrowck/internal/source"
)

type ItemKind uint8

const (
	ItemStruct ItemKind = iota
	ItemFn
	ItemImpl
	ItemEnum
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// Attr is an `@name` marker in front of an item.
type Attr struct {
	Name string
	Span source.Span
}

type StructField struct {
	Name string
	Type TypeID
	Span source.Span
}

type StructItem struct {
	Name     string
	NameSpan source.Span
	Attrs    []Attr
	Fields   []StructField
	// Tuple is set for `struct Color(i32, i32, i32);` - fields are named "0", "1", ...
	Tuple bool
	Span  source.Span
}

// HasAttr reports whether the struct carries `@name`.
func (s *StructItem) HasAttr(name string) bool {
	return hasAttr(s.Attrs, name)
}

func hasAttr(attrs []Attr, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

type FnParam struct {
	Name string
	Mut  bool
	Type TypeID
	Span source.Span
}

type FnItem struct {
	Name     string
	NameSpan source.Span
	Attrs    []Attr
	// Owner - имя типа из impl-блока; пусто для свободной функции.
	Owner string
	// SelfParam is set when Params[0] is the `self` receiver.
	SelfParam bool
	Params    []FnParam
	Result    TypeID // NoTypeID - unit
	Body      StmtID
	Span      source.Span
}

// ImplItem groups methods and associated functions of one type.
// Methods are allocated as ItemFn but are not listed in File.Items.
type ImplItem struct {
	TypeName string
	NameSpan source.Span
	Methods  []ItemID
	Span     source.Span
}

type EnumVariant struct {
	Name     string
	NameSpan source.Span
	Fields   []StructField
	// Tuple is set for `V(T, U)`; a variant with no fields and Tuple unset is a unit variant.
	Tuple bool
	Span  source.Span
}

type EnumItem struct {
	Name     string
	NameSpan source.Span
	Attrs    []Attr
	Variants []EnumVariant
	Span     source.Span
}

// HasAttr reports whether the enum carries `@name`.
func (e *EnumItem) HasAttr(name string) bool {
	return hasAttr(e.Attrs, name)
}

// Variant returns the variant with the given name.
func (e *EnumItem) Variant(name string) (*EnumVariant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

type Items struct {
	Arena   *Arena[Item]
	Structs *Arena[StructItem]
	Fns     *Arena[FnItem]
	Impls   *Arena[ImplItem]
	Enums   *Arena[EnumItem]
}

// NewItems creates per-kind item arenas; capHint 0 means 1<<6.
func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		Structs: NewArena[StructItem](capHint),
		Fns:     NewArena[FnItem](capHint),
		Impls:   NewArena[ImplItem](capHint),
		Enums:   NewArena[EnumItem](capHint),
	}
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewStruct(data StructItem) ItemID {
	payload := i.Structs.Allocate(data)
	return ItemID(i.Arena.Allocate(Item{Kind: ItemStruct, Span: data.Span, Payload: PayloadID(payload)}))
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemStruct {
		return nil, false
	}
	return i.Structs.Get(uint32(item.Payload)), true
}

func (i *Items) NewFn(data FnItem) ItemID {
	payload := i.Fns.Allocate(data)
	return ItemID(i.Arena.Allocate(Item{Kind: ItemFn, Span: data.Span, Payload: PayloadID(payload)}))
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) NewImpl(data ImplItem) ItemID {
	payload := i.Impls.Allocate(data)
	return ItemID(i.Arena.Allocate(Item{Kind: ItemImpl, Span: data.Span, Payload: PayloadID(payload)}))
}

func (i *Items) Impl(id ItemID) (*ImplItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemImpl {
		return nil, false
	}
	return i.Impls.Get(uint32(item.Payload)), true
}

func (i *Items) NewEnum(data EnumItem) ItemID {
	payload := i.Enums.Allocate(data)
	return ItemID(i.Arena.Allocate(Item{Kind: ItemEnum, Span: data.Span, Payload: PayloadID(payload)}))
}

func (i *Items) Enum(id ItemID) (*EnumItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemEnum {
		return nil, false
	}
	return i.Enums.Get(uint32(item.Payload)), true
}
