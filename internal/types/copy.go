package types

// IsCopy reports whether values of the type are duplicated on assignment
// instead of moved: scalars, shared references, and tuples/arrays/@copy
// structs and enums built only from Copy parts.
func (in *Interner) IsCopy(id TypeID) bool {
	return in.isCopyDepth(id, 0)
}

func (in *Interner) isCopyDepth(id TypeID, depth int) bool {
	if depth > 32 {
		return false
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindUnit, KindBool, KindChar, KindInt, KindUint, KindFloat:
		return true
	case KindReference:
		return !tt.Mutable
	case KindArray:
		return !tt.IsSlice() && in.isCopyDepth(tt.Elem, depth+1)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, e := range info.Elems {
			if !in.isCopyDepth(e, depth+1) {
				return false
			}
		}
		return true
	case KindStruct:
		info, ok := in.StructInfo(id)
		return ok && info.Copy
	default:
		// String, str
		return false
	}
}

// IsReference reports whether id is &T or &mut T.
func (in *Interner) IsReference(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindReference
}

// ContainsReference reports whether a value of the type can carry a borrow.
func (in *Interner) ContainsReference(id TypeID) bool {
	return in.containsReferenceDepth(id, 0)
}

func (in *Interner) containsReferenceDepth(id TypeID, depth int) bool {
	// рекурсивные структуры
	if depth > 32 {
		return false
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindReference:
		return true
	case KindArray:
		return in.containsReferenceDepth(tt.Elem, depth+1)
	case KindTuple:
		if info, ok := in.TupleInfo(id); ok {
			for _, e := range info.Elems {
				if in.containsReferenceDepth(e, depth+1) {
					return true
				}
			}
		}
	case KindStruct:
		if info, ok := in.StructInfo(id); ok {
			for _, f := range info.Payload() {
				if in.containsReferenceDepth(f.Type, depth+1) {
					return true
				}
			}
		}
	}
	return false
}

// Deref strips every layer of references.
func (in *Interner) Deref(id TypeID) TypeID {
	for i := 0; i < 8; i++ {
		tt, ok := in.Lookup(id)
		if !ok || tt.Kind != KindReference {
			return id
		}
		id = tt.Elem
	}
	return id
}

// Embeds reports whether a value of type id stores a value of type target
// inline, through struct and enum fields, tuple elements and fixed arrays.
// References break the chain.
func (in *Interner) Embeds(id, target TypeID) bool {
	seen := make(map[TypeID]bool)
	var walk func(TypeID) bool
	walk = func(cur TypeID) bool {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		tt, ok := in.Lookup(cur)
		if !ok {
			return false
		}
		var next []TypeID
		switch tt.Kind {
		case KindArray:
			if !tt.IsSlice() {
				next = append(next, tt.Elem)
			}
		case KindTuple:
			if info, ok := in.TupleInfo(cur); ok {
				next = append(next, info.Elems...)
			}
		case KindStruct:
			if info, ok := in.StructInfo(cur); ok {
				for _, f := range info.Payload() {
					next = append(next, f.Type)
				}
			}
		}
		for _, n := range next {
			if n == target || walk(n) {
				return true
			}
		}
		return false
	}
	return walk(id)
}
