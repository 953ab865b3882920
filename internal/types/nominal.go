package types

import (
	"fmt"

	"fortio.org/safecast"

	"borrowck/internal/source"
)

// StructField describes a single field inside a nominal struct type.
type StructField struct {
	Name string
	Type TypeID
	Decl source.Span
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string
	Decl   source.Span
	Fields []StructField
	// Copy is set for `@copy` structs whose fields are all Copy.
	Copy bool
	// Tuple marks `struct Color(i32, i32, i32);`.
	Tuple bool
	// Enum marks an enum; its data lives in Variants and Fields stays empty.
	Enum     bool
	Variants []Variant
}

// Variant is one alternative of an enum type.
type Variant struct {
	Name   string
	Decl   source.Span
	Fields []StructField
	Tuple  bool
}

// Unit reports whether the variant carries no data.
func (v *Variant) Unit() bool {
	return len(v.Fields) == 0 && !v.Tuple
}

// Variant returns the enum variant with the given name.
func (s *StructInfo) Variant(name string) (*Variant, bool) {
	for i := range s.Variants {
		if s.Variants[i].Name == name {
			return &s.Variants[i], true
		}
	}
	return nil, false
}

// Payload returns every field a value of the type may hold: the struct fields,
// or the fields of all variants of an enum.
func (s *StructInfo) Payload() []StructField {
	if !s.Enum {
		return s.Fields
	}
	var out []StructField
	for _, v := range s.Variants {
		out = append(out, v.Fields...)
	}
	return out
}

// Field returns the field with the given name.
func (s *StructInfo) Field(name string) (StructField, int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return StructField{}, -1, false
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name string, decl source.Span, tuple bool) TypeID {
	in.structs = append(in.structs, StructInfo{Name: name, Decl: decl, Tuple: tuple})
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	id := in.internRaw(Type{Kind: KindStruct, Payload: slot})
	in.names[name] = id
	return id
}

// RegisterEnum allocates a nominal enum type; variants are set later.
func (in *Interner) RegisterEnum(name string, decl source.Span) TypeID {
	id := in.RegisterStruct(name, decl, false)
	in.structInfo(id).Enum = true
	return id
}

// SetEnumVariants stores the resolved variants of an enum type.
func (in *Interner) SetEnumVariants(typeID TypeID, variants []Variant) {
	if info := in.structInfo(typeID); info != nil {
		info.Variants = append([]Variant(nil), variants...)
	}
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []StructField) {
	if info := in.structInfo(typeID); info != nil {
		info.Fields = append([]StructField(nil), fields...)
	}
}

// MarkCopy records that the struct type is Copy.
func (in *Interner) MarkCopy(typeID TypeID) {
	if info := in.structInfo(typeID); info != nil {
		info.Copy = true
	}
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	return info, info != nil
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct || tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}
