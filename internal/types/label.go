package types

import (
	"fmt"
	"strings"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID || typesIn == nil {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindStr:
		return "str"
	case KindString:
		return "String"
	case KindInt:
		return formatIntType(tt.Width, true)
	case KindUint:
		return formatIntType(tt.Width, false)
	case KindFloat:
		if tt.Width == WidthAny {
			return "{float}"
		}
		return fmt.Sprintf("f%d", tt.Width)
	case KindReference:
		if tt.Mutable {
			return "&mut " + labelDepth(typesIn, tt.Elem, depth+1)
		}
		return "&" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindArray:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		if tt.IsSlice() {
			return "[" + elem + "]"
		}
		return fmt.Sprintf("[%s; %d]", elem, tt.Count)
	case KindTuple:
		info, _ := typesIn.TupleInfo(id)
		parts := make([]string, 0, 4)
		if info != nil {
			for _, e := range info.Elems {
				parts = append(parts, labelDepth(typesIn, e, depth+1))
			}
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct:
		if info, ok := typesIn.StructInfo(id); ok {
			return info.Name
		}
	}
	return "?"
}

func formatIntType(w Width, signed bool) string {
	prefix := "u"
	if signed {
		prefix = "i"
	}
	switch w {
	case WidthAny:
		return "{integer}"
	case WidthSize:
		return prefix + "size"
	default:
		return fmt.Sprintf("%s%d", prefix, w)
	}
}
