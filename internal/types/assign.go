package types

// Assignable reports whether a value of type src may be stored into dst.
// Besides identity it admits unsuffixed literals of the right family,
// &mut T → &T, &String → &str and &[T; N] → &[T] coercions.
func (in *Interner) Assignable(dst, src TypeID) bool {
	return in.assignableDepth(dst, src, 0)
}

func (in *Interner) assignableDepth(dst, src TypeID, depth int) bool {
	if dst == src {
		return true
	}
	if depth > 16 {
		return false
	}
	d, okD := in.Lookup(dst)
	s, okS := in.Lookup(src)
	if !okD || !okS {
		// неизвестные типы не порождают каскад ошибок
		return true
	}
	switch d.Kind {
	case KindInt, KindUint:
		return s.Kind == KindInt && s.Width == WidthAny
	case KindFloat:
		return s.Kind == KindFloat && s.Width == WidthAny
	case KindReference:
		if s.Kind != KindReference || (d.Mutable && !s.Mutable) {
			return false
		}
		if d.Elem == s.Elem {
			return true
		}
		de, _ := in.Lookup(d.Elem)
		se, _ := in.Lookup(s.Elem)
		switch {
		case de.Kind == KindStr && se.Kind == KindString:
			return true
		case de.IsSlice() && se.Kind == KindArray:
			return in.assignableDepth(de.Elem, se.Elem, depth+1)
		}
		return in.assignableDepth(d.Elem, s.Elem, depth+1)
	case KindArray:
		return s.Kind == KindArray && s.Count == d.Count && in.assignableDepth(d.Elem, s.Elem, depth+1)
	case KindTuple:
		di, _ := in.TupleInfo(dst)
		si, ok := in.TupleInfo(src)
		if s.Kind != KindTuple || !ok || di == nil || len(di.Elems) != len(si.Elems) {
			return false
		}
		for i := range di.Elems {
			if !in.assignableDepth(di.Elems[i], si.Elems[i], depth+1) {
				return false
			}
		}
		return true
	}
	return false
}

// Default replaces unsuffixed literal types with i32 / f64, recursing into
// tuples and arrays.
func (in *Interner) Default(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindInt:
		if tt.Width == WidthAny {
			return in.builtins.I32
		}
	case KindFloat:
		if tt.Width == WidthAny {
			return in.builtins.F64
		}
	case KindArray:
		return in.Intern(MakeArray(in.Default(tt.Elem), tt.Count))
	case KindReference:
		return in.Intern(MakeReference(in.Default(tt.Elem), tt.Mutable))
	case KindTuple:
		info, _ := in.TupleInfo(id)
		elems := make([]TypeID, len(info.Elems))
		for i, e := range info.Elems {
			elems[i] = in.Default(e)
		}
		return in.RegisterTuple(elems)
	}
	return id
}
