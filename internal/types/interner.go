package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Char    TypeID
	Str     TypeID
	String  TypeID
	// IntLit / FloatLit are the types of unsuffixed literals before defaulting.
	IntLit   TypeID
	FloatLit TypeID
	I32      TypeID
	Usize    TypeID
	F64      TypeID
	// StrRef is `&str`, the type of string literals.
	StrRef TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types      []Type
	index      map[typeKey]TypeID
	builtins   Builtins
	names      map[string]TypeID
	structs    []StructInfo
	tuples     []TupleInfo
	tupleIndex map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[typeKey]TypeID, 64),
		names:      make(map[string]TypeID, 24),
		tupleIndex: make(map[string]TypeID),
	}
	in.structs = append(in.structs, StructInfo{}) // 0 - невалидный слот
	in.tuples = append(in.tuples, TupleInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.IntLit = in.Intern(MakeInt(WidthAny))
	in.builtins.FloatLit = in.Intern(MakeFloat(WidthAny))

	in.names["()"] = in.builtins.Unit
	in.names["bool"] = in.builtins.Bool
	in.names["char"] = in.builtins.Char
	in.names["str"] = in.builtins.Str
	in.names["String"] = in.builtins.String
	for _, w := range []Width{Width8, Width16, Width32, Width64} {
		in.names[fmt.Sprintf("i%d", w)] = in.Intern(MakeInt(w))
		in.names[fmt.Sprintf("u%d", w)] = in.Intern(MakeUint(w))
	}
	in.names["isize"] = in.Intern(MakeInt(WidthSize))
	in.names["usize"] = in.Intern(MakeUint(WidthSize))
	in.names["f32"] = in.Intern(MakeFloat(Width32))
	in.names["f64"] = in.Intern(MakeFloat(Width64))

	in.builtins.I32 = in.names["i32"]
	in.builtins.Usize = in.names["usize"]
	in.builtins.F64 = in.names["f64"]
	in.builtins.StrRef = in.Intern(MakeReference(in.builtins.Str, false))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// LookupName resolves a primitive type name such as "i32" or "String".
func (in *Interner) LookupName(name string) (TypeID, bool) {
	id, ok := in.names[name]
	return id, ok
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Mutable bool
	Payload uint32
}

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// RegisterTuple creates or finds an existing tuple type with the given elements.
// The empty tuple is unit.
func (in *Interner) RegisterTuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = fmt.Sprint(uint32(e))
	}
	key := strings.Join(parts, ",")
	if id, ok := in.tupleIndex[key]; ok {
		return id
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: append([]TypeID(nil), elems...)})
	slot, err := safecast.Conv[uint32](len(in.tuples) - 1)
	if err != nil {
		panic(fmt.Errorf("tuple info overflow: %w", err))
	}
	id := in.internRaw(Type{Kind: KindTuple, Payload: slot})
	in.tupleIndex[key] = id
	return id
}

// TupleInfo returns the element types for a tuple TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}
