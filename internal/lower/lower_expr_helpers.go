package lower

import (
	"slices"
	"strconv"

	"borrowck/internal/ast"
	"borrowck/internal/ownership"
	"borrowck/internal/source"
	"borrowck/internal/types"
)

func indexName(i int) string {
	return strconv.Itoa(i)
}

func (l *lowerer) exprType(id ast.ExprID) types.TypeID {
	if t, ok := l.sema.ExprTypes[id]; ok {
		return t
	}
	return l.sema.ExprTypes[l.builder.Exprs.Unparen(id)]
}

func (l *lowerer) exprSpan(id ast.ExprID) source.Span {
	if expr := l.builder.Exprs.Get(id); expr != nil {
		return expr.Span
	}
	return source.Span{}
}

// classOf maps a type to its value class; unknown types defer to the binding.
func (l *lowerer) classOf(t types.TypeID) ownership.Class {
	if t == types.NoTypeID {
		return ownership.ClassUnknown
	}
	if l.types.IsCopy(t) {
		return ownership.Copy
	}
	return ownership.Owning
}

// valueFor describes a fresh value of type t.
func (l *lowerer) valueFor(t types.TypeID) ownership.Value {
	tt, ok := l.types.Lookup(t)
	if !ok {
		return ownership.Scalar()
	}
	switch tt.Kind {
	case types.KindReference:
		if tt.Mutable {
			return ownership.ExclusiveRef()
		}
		return ownership.SharedRef()
	case types.KindArray:
		v := ownership.Value{Class: l.classOf(t)}
		if !tt.IsSlice() {
			v.Content = ownership.Elems(int(tt.Count))
		}
		return v
	}
	if l.types.IsCopy(t) {
		return ownership.Scalar()
	}
	return ownership.Owned()
}

func (l *lowerer) literal(id ast.ExprID) ownership.Value {
	lit, ok := l.builder.Exprs.Literal(id)
	if ok && lit.Kind == ast.LitString {
		return ownership.StaticText(lit.Value)
	}
	return ownership.Scalar()
}

func (l *lowerer) intLiteral(id ast.ExprID) (int, bool) {
	lit, ok := l.builder.Exprs.Literal(l.builder.Exprs.Unparen(id))
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Value)
	return n, err == nil && n >= 0
}

func (l *lowerer) isStrRef(t types.TypeID) bool {
	tt, ok := l.types.Lookup(t)
	if !ok || tt.Kind != types.KindReference {
		return false
	}
	elem, ok := l.types.Lookup(tt.Elem)
	return ok && elem.Kind == types.KindStr
}

func (l *lowerer) isSliceRef(t types.TypeID) bool {
	tt, ok := l.types.Lookup(t)
	if !ok || tt.Kind != types.KindReference {
		return false
	}
	elem, ok := l.types.Lookup(tt.Elem)
	return ok && elem.IsSlice()
}

// field extends a place by one path segment.
func (l *lowerer) field(p ownership.Place, name string) ownership.Place {
	return ownership.Place{Name: p.Name, Path: append(slices.Clone(p.Path), name)}
}

// deref steps through the reference stored at p.
func deref(p ownership.Place) ownership.Place {
	if len(p.Path) == 0 {
		return ownership.D(p.Name)
	}
	return ownership.Place{Name: p.Name, Path: append(slices.Clone(p.Path), ownership.Deref)}
}
