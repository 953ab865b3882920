package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.String == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
	for _, name := range []string{"i32", "u8", "usize", "f64", "char", "str", "String"} {
		if _, ok := in.LookupName(name); !ok {
			t.Errorf("primitive %q not registered", name)
		}
	}
	if _, ok := in.LookupName("Vec"); ok {
		t.Fatal("Vec is not a builtin")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().I32
	arr1 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	arr2 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	tup1 := in.RegisterTuple([]TypeID{elem, in.Builtins().Bool})
	tup2 := in.RegisterTuple([]TypeID{elem, in.Builtins().Bool})
	if tup1 != tup2 {
		t.Fatalf("tuple types should be deduplicated")
	}
	if in.RegisterTuple(nil) != in.Builtins().Unit {
		t.Fatal("empty tuple must be unit")
	}
}

func TestReferenceMutabilityAffectsIdentity(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().String
	mut := in.Intern(MakeReference(elem, true))
	imm := in.Intern(MakeReference(elem, false))
	if mut == imm {
		t.Fatalf("mutable and immutable references must differ")
	}
}

func TestIsCopy(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	str := b.String
	point := in.RegisterStruct("Point", zeroSpan, false)
	in.SetStructFields(point, []StructField{{Name: "x", Type: b.I32}, {Name: "y", Type: b.I32}})
	user := in.RegisterStruct("User", zeroSpan, false)
	in.SetStructFields(user, []StructField{{Name: "email", Type: str}})
	in.MarkCopy(point)

	tests := []struct {
		name string
		id   TypeID
		want bool
	}{
		{"i32", b.I32, true},
		{"bool", b.Bool, true},
		{"char", b.Char, true},
		{"f64", b.F64, true},
		{"String", str, false},
		{"&str", b.StrRef, true},
		{"&String", in.Intern(MakeReference(str, false)), true},
		{"&mut String", in.Intern(MakeReference(str, true)), false},
		{"(i32, f64, bool)", in.RegisterTuple([]TypeID{b.I32, b.F64, b.Bool}), true},
		{"(i32, String)", in.RegisterTuple([]TypeID{b.I32, str}), false},
		{"[i32; 5]", in.Intern(MakeArray(b.I32, 5)), true},
		{"[String; 2]", in.Intern(MakeArray(str, 2)), false},
		{"@copy Point", point, true},
		{"User", user, false},
	}
	for _, tt := range tests {
		if got := in.IsCopy(tt.id); got != tt.want {
			t.Errorf("IsCopy(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAssignable(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	refString := in.Intern(MakeReference(b.String, false))
	mutString := in.Intern(MakeReference(b.String, true))
	arr := in.Intern(MakeArray(b.I32, 5))
	slice := in.Intern(MakeArray(b.I32, ArrayDynamicLength))

	tests := []struct {
		name     string
		dst, src TypeID
		want     bool
	}{
		{"literal to i32", b.I32, b.IntLit, true},
		{"literal to usize", b.Usize, b.IntLit, true},
		{"i32 to usize", b.Usize, b.I32, false},
		{"&String to &str", b.StrRef, refString, true},
		{"&mut String to &String", refString, mutString, true},
		{"&String to &mut String", mutString, refString, false},
		{"String to &String", refString, b.String, false},
		{"&[i32;5] to &[i32]", in.Intern(MakeReference(slice, false)), in.Intern(MakeReference(arr, false)), true},
		{"tuple literal", in.RegisterTuple([]TypeID{b.I32, b.F64}), in.RegisterTuple([]TypeID{b.IntLit, b.FloatLit}), true},
	}
	for _, tt := range tests {
		if got := in.Assignable(tt.dst, tt.src); got != tt.want {
			t.Errorf("%s: Assignable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLabelAndDefault(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	tup := in.RegisterTuple([]TypeID{b.IntLit, b.FloatLit, in.Intern(MakeReference(b.String, true))})
	if got := Label(in, tup); got != "({integer}, {float}, &mut String)" {
		t.Fatalf("Label = %q", got)
	}
	if got := Label(in, in.Default(tup)); got != "(i32, f64, &mut String)" {
		t.Fatalf("Label(Default) = %q", got)
	}
	if got := Label(in, in.Intern(MakeArray(b.I32, 3))); got != "[i32; 3]" {
		t.Fatalf("array label = %q", got)
	}
	if got := Label(in, b.StrRef); got != "&str" {
		t.Fatalf("str ref label = %q", got)
	}
}

func TestContainsReferenceRecursiveStruct(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	node := in.RegisterStruct("Node", zeroSpan, false)
	in.SetStructFields(node, []StructField{{Name: "next", Type: node}, {Name: "v", Type: b.I32}})
	holder := in.RegisterStruct("Holder", zeroSpan, false)
	in.SetStructFields(holder, []StructField{{Name: "r", Type: b.StrRef}})

	if in.ContainsReference(node) {
		t.Error("Node carries no reference")
	}
	if !in.ContainsReference(in.RegisterTuple([]TypeID{b.I32, holder})) {
		t.Error("tuple with Holder carries a reference")
	}
	if in.IsCopy(node) {
		t.Error("recursive struct is not copy")
	}
}

func TestEnumPayload(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	kind := in.RegisterEnum("IpAddrKind", zeroSpan)
	in.SetEnumVariants(kind, []Variant{{Name: "V4"}, {Name: "V6"}})
	msg := in.RegisterEnum("Message", zeroSpan)
	in.SetEnumVariants(msg, []Variant{
		{Name: "Quit"},
		{Name: "Move", Fields: []StructField{{Name: "x", Type: b.I32}, {Name: "y", Type: b.I32}}},
		{Name: "Write", Tuple: true, Fields: []StructField{{Name: "0", Type: b.String}}},
	})

	info, ok := in.StructInfo(msg)
	if !ok || !info.Enum || len(info.Fields) != 0 {
		t.Fatalf("unexpected enum info %+v", info)
	}
	if got := len(info.Payload()); got != 3 {
		t.Fatalf("Payload() has %d fields, want 3", got)
	}
	if v, ok := info.Variant("Quit"); !ok || !v.Unit() {
		t.Fatalf("Quit must be a unit variant, got %+v", v)
	}
	if v, _ := info.Variant("Write"); v.Unit() {
		t.Fatal("Write carries data")
	}
	if in.IsCopy(kind) {
		t.Error("enums are moved unless marked @copy")
	}
	in.MarkCopy(kind)
	if !in.IsCopy(kind) {
		t.Error("@copy enum must be Copy")
	}
	if got := Label(in, msg); got != "Message" {
		t.Fatalf("Label = %q", got)
	}
}

func TestEmbeds(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	rec := in.RegisterStruct("R", zeroSpan, false)
	in.SetStructFields(rec, []StructField{{Name: "r", Type: rec}})
	wrap := in.RegisterStruct("Wrap", zeroSpan, false)
	inner := in.RegisterStruct("Inner", zeroSpan, false)
	in.SetStructFields(wrap, []StructField{{Name: "inner", Type: in.RegisterTuple([]TypeID{b.I32, inner})}})
	in.SetStructFields(inner, []StructField{{Name: "back", Type: in.Intern(MakeArray(wrap, 2))}})
	list := in.RegisterEnum("List", zeroSpan)
	in.SetEnumVariants(list, []Variant{{Name: "Cons", Tuple: true, Fields: []StructField{{Name: "0", Type: b.I32}, {Name: "1", Type: list}}}})
	byRef := in.RegisterStruct("ByRef", zeroSpan, false)
	in.SetStructFields(byRef, []StructField{{Name: "next", Type: in.Intern(MakeReference(byRef, false))}})

	tests := []struct {
		name string
		id   TypeID
		want bool
	}{
		{"direct field", rec, true},
		{"through tuple and array", wrap, true},
		{"enum variant", list, true},
		{"behind a reference", byRef, false},
		{"plain String", b.String, false},
	}
	for _, tt := range tests {
		if got := in.Embeds(tt.id, tt.id); got != tt.want {
			t.Errorf("%s: Embeds = %v, want %v", tt.name, got, tt.want)
		}
	}
}
