package sema

import (
	"fmt"
	"strings"
	"testing"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/lexer"
	"borrowck/internal/parser"
	"borrowck/internal/source"
	"borrowck/internal/types"
)

type checked struct {
	builder *ast.Builder
	file    ast.FileID
	bag     *diag.Bag
	res     Result
}

func checkSource(t *testing.T, input string) checked {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.own", []byte(input)))
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	builder := ast.NewBuilder(ast.Hints{})
	pr := parser.ParseFile(lx, builder, parser.Options{Reporter: rep, MaxErrors: 100})
	if bag.HasErrors() {
		t.Fatalf("unexpected syntax errors: %s", summary(bag))
	}
	res := Check(builder, pr.File, Options{Reporter: rep})
	if res.Symbols != nil {
		if err := res.Symbols.Validate(); err != nil {
			t.Fatalf("symbol table: %v", err)
		}
	}
	return checked{builder: builder, file: pr.File, bag: bag, res: res}
}

func summary(bag *diag.Bag) string {
	if bag.Len() == 0 {
		return "<none>"
	}
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
	}
	return strings.Join(lines, "; ")
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

const prelude = `
struct User { username: String, email: String, sign_in_count: u64, active: bool }
@copy struct Point { x: i32, y: i32 }
struct Color(i32, i32, i32);
struct AlwaysEqual;

fn takes_ownership(some_string: String) {}
fn makes_copy(some_integer: i32) {}
fn calculate_length(s: &String) -> usize { return s.len(); }
fn change(some_string: &mut String) { some_string.push_str(", world"); }
fn first_word(s: &str) -> &str { return &s[0..5]; }
`

func TestCheckAcceptsPrograms(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"move and copy", `let s = String("hello"); takes_ownership(s); let x = 5; makes_copy(x);`},
		{"borrow arguments", `let mut s = String("hello"); let len = calculate_length(&s); change(&mut s);`},
		{"deref coercions", `let s = String("hello world"); let w = first_word(&s); let l = first_word("literal"); use w, l;`},
		{"slices", `let s = String("hello"); let a = &s[..2]; let b = &s[1..]; let c = &s[..]; use a, b, c;`},
		{"array slices", `let a = [1, 2, 3, 4, 5]; let slice = &a[1..3]; let n = a[0]; use slice, n;`},
		{"struct literal and update", `let user1 = User { email: String("a@b.c"), username: String("u"), active: true, sign_in_count: 1 };
			let user2 = User { email: String("x@y.z"), ..user1 };
			use user2.email;`},
		{"field shorthand", `let email = String("e"); let username = String("u"); let u = User { email, username, active: true, sign_in_count: 1 }; use u;`},
		{"tuple struct and unit struct", `let black = Color(0, 0, 0); let r = black.0; let subject = AlwaysEqual; use r, subject;`},
		{"tuples", `let tup: (i32, f64, u8) = (500, 6.4, 1); let (x, y, z) = tup; let five_hundred = tup.0; use x, y, z, five_hundred;`},
		{"late init", `let r; { let x = 5; r = x; } use r;`},
		{"shadowing", `let x = 5; let x = x + 1; { let x = x - 2; use x; } let spaces = "   "; let spaces = spaces.len(); use spaces;`},
		{"methods", `let mut s = String("hello"); s.push_str(", world"); s.push('!'); let n = s.len(); let e = s.is_empty(); let t = s.clone(); s.truncate(5); s.clear(); let v = s.as_str(); let o = "hi".to_string(); use n, e, t, v, o;`},
		{"assign through deref", `let mut s = String("a"); let r = &mut s; *r = String("b");`},
		{"copy point", `let p = Point { x: 1, y: 2 }; let q = p; use p, q;`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checkSource(t, prelude+"fn main() {\n"+tt.body+"\n}\n")
			if c.bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %s", summary(c.bag))
			}
			if len(c.res.Invalid) != 0 {
				t.Fatalf("functions marked invalid: %v", c.res.Invalid)
			}
		})
	}
}

func TestCheckReportsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"duplicate fn", "fn a() {}\nfn a() {}", diag.SemaDuplicateSymbol},
		{"duplicate struct", "struct S { a: i32 }\nstruct S { b: i32 }", diag.SemaDuplicateSymbol},
		{"builtin name", "struct String { a: i32 }", diag.SemaDuplicateSymbol},
		{"duplicate param", "fn f(a: i32, a: i32) {}", diag.SemaDuplicateSymbol},
		{"unknown type", "fn f(a: Strin) {}", diag.SemaUnknownType},
		{"unknown struct literal", "fn main() { let u = Usr { a: 1 }; }", diag.SemaUnknownType},
		{"ref field", "struct S { name: &str }", diag.SemaMissingLifetime},
		{"copy with string", "@copy struct S { name: String }", diag.SemaCopyNonCopyField},
		{"copy nested", "@copy struct A { b: B }\nstruct B { x: i32 }", diag.SemaCopyNonCopyField},
		{"unknown attr", "@inline fn f() {}", diag.SemaError},
		{"copy on fn", "@copy fn f() {}", diag.SemaError},
		{"ambiguous lifetime", "fn longest(x: &str, y: &str) -> &str { return x; }", diag.SemaAmbiguousLifetime},
		{"unknown fn", "fn main() { foo(); }", diag.SemaUnresolvedSymbol},
		{"unknown value", "fn main() { use y; }", diag.SemaUnresolvedSymbol},
		{"arity", "fn f(a: i32) {}\nfn main() { f(1, 2); }", diag.SemaArgCount},
		{"borrow where owned expected", "fn f(s: String) {}\nfn main() { let s = String(\"a\"); f(&s); }", diag.SemaTypeMismatch},
		{"owned where borrow expected", "fn f(s: &String) -> usize { return s.len(); }\nfn main() { let s = String(\"a\"); f(s); }", diag.SemaTypeMismatch},
		{"shared where exclusive expected", "fn f(s: &mut String) {}\nfn main() { let mut s = String(\"a\"); f(&s); }", diag.SemaTypeMismatch},
		{"let annotation", "fn main() { let x: i32 = \"no\"; }", diag.SemaTypeMismatch},
		{"string int index", "fn main() { let s = String(\"hi\"); let h = s[0]; }", diag.SemaTypeMismatch},
		{"deref non ref", "fn main() { let x = 5; let y = *x; }", diag.SemaTypeMismatch},
		{"unknown field", "struct S { a: i32 }\nfn main() { let s = S { a: 1 }; use s.b; }", diag.SemaUnknownField},
		{"struct literal extra field", "struct S { a: i32 }\nfn main() { let s = S { a: 1, b: 2 }; }", diag.SemaUnknownField},
		{"struct literal missing field", "struct S { a: i32, b: i32 }\nfn main() { let s = S { a: 1 }; }", diag.SemaError},
		{"tuple index out of range", "fn main() { let t = (1, 2); use t.2; }", diag.SemaInvalidTupleAccess},
		{"unknown method", "fn main() { let x = 5; x.push_str(\"a\"); }", diag.SemaUnknownMethod},
		{"mutating method on str", "fn main() { let s = \"a\"; s.clear(); }", diag.SemaUnknownMethod},
		{"pattern arity", "fn main() { let (a, b) = (1, 2, 3); }", diag.SemaInvalidPatternTarget},
		{"assign to call", "fn f() -> i32 { return 1; }\nfn main() { f() = 2; }", diag.SemaNonAddressable},
		{"missing return", "fn f() -> i32 { let x = 1; }", diag.SemaMissingReturn},
		{"return type", "fn f() -> String { return 5; }", diag.SemaTypeMismatch},
		{"unsized local", "fn main() { let s: str = \"a\"; }", diag.SemaError},
		{"non literal slice bound", "fn main() { let s = String(\"abc\"); let n = 1; let t = &s[n..]; }", diag.SemaError},
		{"move out of array", "fn main() { let a = [String(\"a\"), String(\"b\")]; let s = a[0]; }", diag.SemaError},
		{"empty array", "fn main() { let a = []; }", diag.SemaError},
		{"slice bound out of range", "fn main() { let s = String(\"abc\"); let t = &s[0..99999999999999999999999]; }", diag.SemaLiteralOutOfRange},
		{"recursive struct", "struct R { r: R }", diag.SemaRecursiveType},
		{"recursive through tuple", "struct A { b: (i32, B) }\nstruct B { a: [A; 2] }", diag.SemaRecursiveType},
		{"recursive enum", "enum List { Cons(i32, List), Nil }", diag.SemaRecursiveType},
		{"self in free fn", "fn f(&self) {}", diag.SemaInvalidReceiver},
		{"self of foreign type", "struct S;\nimpl S { fn f(self: i32) {} }", diag.SemaInvalidReceiver},
		{"impl for unknown type", "impl Nope { fn f() {} }", diag.SemaUnknownType},
		{"impl for builtin", "impl String { fn f() {} }", diag.SemaError},
		{"duplicate method", "struct S;\nimpl S { fn f(&self) {} }\nimpl S { fn f(&self) {} }", diag.SemaDuplicateSymbol},
		{"associated fn as method", "struct S;\nimpl S { fn new() -> S { return S; } }\nfn main() { let s = S; s.new(); }", diag.SemaUnknownMethod},
		{"unknown associated fn", "struct S;\nfn main() { let s = S::make(); }", diag.SemaUnresolvedSymbol},
		{"method arity", "struct S;\nimpl S { fn f(&self, n: i32) {} }\nfn main() { let s = S; s.f(); }", diag.SemaArgCount},
		{"unknown variant", "enum E { A, B }\nfn main() { let e = E::C; }", diag.SemaUnresolvedSymbol},
		{"tuple variant arity", "enum E { A(i32, i32) }\nfn main() { let e = E::A(1); }", diag.SemaArgCount},
		{"tuple variant as value", "enum E { A(i32) }\nfn main() { let e = E::A; }", diag.SemaError},
		{"enum as value", "enum E { A }\nfn main() { let e = E; }", diag.SemaError},
		{"enum struct literal", "enum E { A }\nfn main() { let e = E { }; }", diag.SemaError},
		{"variant struct update", "enum E { V { a: i32, b: i32 } }\nfn main() { let x = E::V { a: 1, b: 2 }; let y = E::V { a: 3, ..x }; }", diag.SemaError},
		{"variant on struct", "struct S;\nfn main() { let s = S::A; }", diag.SemaUnresolvedSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checkSource(t, tt.src)
			if !hasCode(c.bag, tt.code) {
				t.Fatalf("expected %s, got %s", tt.code.ID(), summary(c.bag))
			}
		})
	}
}

func TestCheckRecordsResolution(t *testing.T) {
	c := checkSource(t, prelude+`
fn main() {
	let mut s = String("hello");
	let len = calculate_length(&s);
	s.push_str("!");
	let (a, mut b) = (1, 2.5);
	let r;
	r = len;
	use a, b, r;
}
`)
	if c.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(c.bag))
	}
	in := c.res.TypeInterner
	b := in.Builtins()

	sig := c.res.Fns["calculate_length"]
	if sig == nil || len(sig.Params) != 1 || sig.Result != b.Usize {
		t.Fatalf("unexpected signature %+v", sig)
	}
	if refs := sig.RefParams(in); len(refs) != 1 || refs[0] != 0 {
		t.Fatalf("ref params = %v", refs)
	}

	var calls, strings_, methods int
	for _, target := range c.res.Calls {
		switch target.Kind {
		case CallFn:
			calls++
		case CallString:
			strings_++
		}
	}
	for _, m := range c.res.Methods {
		if m.Kind == MethodPushStr && m.Kind.Mutates() && m.Receiver == b.String {
			methods++
		}
	}
	if calls != 1 || strings_ != 1 || methods != 1 {
		t.Fatalf("calls=%d strings=%d push_str=%d", calls, strings_, methods)
	}

	var patternLeaves []string
	var lateType types.TypeID
	for _, ids := range c.res.StmtSymbols {
		for _, id := range ids {
			sym := c.res.Symbols.Symbols.Get(id)
			switch sym.Name {
			case "a", "b":
				patternLeaves = append(patternLeaves, fmt.Sprintf("%s:%s:%v", sym.Name, types.Label(in, sym.Type), sym.Mutable()))
			case "r":
				lateType = sym.Type
			}
		}
	}
	if len(patternLeaves) != 2 {
		t.Fatalf("pattern leaves = %v", patternLeaves)
	}
	for _, want := range []string{"a:i32:false", "b:f64:true"} {
		found := false
		for _, got := range patternLeaves {
			found = found || got == want
		}
		if !found {
			t.Fatalf("missing %s in %v", want, patternLeaves)
		}
	}
	if lateType != b.Usize {
		t.Fatalf("late-initialised r has type %s, want usize", types.Label(in, lateType))
	}
}

func TestCopyFixpointAcrossStructs(t *testing.T) {
	c := checkSource(t, `
@copy struct Line { a: Point, b: Point }
@copy struct Point { x: i32, y: i32 }
fn main() {}
`)
	if c.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(c.bag))
	}
	line, _ := c.res.TypeInterner.LookupName("Line")
	if !c.res.TypeInterner.IsCopy(line) {
		t.Fatal("Line built from Copy points must be Copy")
	}
}

func TestInvalidFunctionsAreMarked(t *testing.T) {
	c := checkSource(t, `
fn good() { let x = 1; use x; }
fn bad() { let s: i32 = "x"; }
`)
	var good, bad ast.ItemID
	for _, sig := range c.res.FnOrder {
		switch sig.Name {
		case "good":
			good = sig.Item
		case "bad":
			bad = sig.Item
		}
	}
	if c.res.Invalid[good] || !c.res.Invalid[bad] {
		t.Fatalf("invalid = %v (good=%d bad=%d)", c.res.Invalid, good, bad)
	}
}

func TestCheckMethodsAndEnums(t *testing.T) {
	c := checkSource(t, `
struct Rectangle { width: u32, height: u32 }
enum Message { Quit, Move { x: i32, y: i32 }, Write(String) }

impl Rectangle {
	fn area(&self) -> u32 { return self.width * self.height; }
	fn can_hold(&self, other: &Rectangle) -> bool { use self.width, other.width; return true; }
	fn grow(&mut self, by: u32) { self.width = self.width + by; }
	fn into_width(self) -> u32 { return self.width; }
	fn square(size: u32) -> Self { return Self { width: size, height: size }; }
}

fn main() {
	let mut rect1 = Rectangle { width: 30, height: 50 };
	let rect2 = Rectangle::square(10);
	let fits = rect1.can_hold(&rect2);
	rect1.grow(2);
	let a = Rectangle::area(&rect1);
	let w = rect1.into_width();
	let q = Message::Quit;
	let m = Message::Move { x: 1, y: 2 };
	let s = Message::Write(String("hi"));
	use fits, a, w, q, m, s;
}
`)
	if c.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(c.bag))
	}
	in := c.res.TypeInterner
	rect, _ := in.LookupName("Rectangle")
	msg, _ := in.LookupName("Message")

	if _, ok := c.res.Fns["area"]; ok {
		t.Fatal("methods must not be registered as free functions")
	}
	receivers := map[string]ReceiverKind{
		"area":       ReceiverRef,
		"can_hold":   ReceiverRef,
		"grow":       ReceiverRefMut,
		"into_width": ReceiverValue,
		"square":     ReceiverNone,
	}
	for name, want := range receivers {
		sig := c.res.Assoc[rect][name]
		if sig == nil {
			t.Fatalf("Rectangle::%s not registered", name)
		}
		if sig.Receiver != want {
			t.Errorf("Rectangle::%s receiver = %d, want %d", name, sig.Receiver, want)
		}
		if sig.Name != "Rectangle::"+name {
			t.Errorf("sig name = %q", sig.Name)
		}
	}
	if got := c.res.Assoc[rect]["square"].Result; got != rect {
		t.Fatalf("Self result resolved to %s", types.Label(in, got))
	}
	if src := c.res.Assoc[rect]["can_hold"].ResultSources(in); len(src) != 1 || src[0] != 0 {
		t.Fatalf("can_hold result sources = %v", src)
	}

	var user int
	for _, m := range c.res.Methods {
		if m.Kind == MethodUser {
			if m.Fn == nil || m.Receiver != rect {
				t.Fatalf("user method info %+v", m)
			}
			user++
		}
	}
	if user != 3 {
		t.Fatalf("user method calls = %d, want 3", user)
	}

	var variants []string
	var assoc int
	for _, target := range c.res.Calls {
		switch target.Kind {
		case CallVariant:
			if target.Struct != msg {
				t.Fatalf("variant of %s", types.Label(in, target.Struct))
			}
			variants = append(variants, target.Variant)
		case CallFn:
			if target.Fn.Owner == rect {
				assoc++
			}
		}
	}
	if len(variants) != 3 {
		t.Fatalf("variants = %v", variants)
	}
	if assoc != 2 {
		t.Fatalf("qualified calls = %d, want 2", assoc)
	}
	if in.IsCopy(msg) {
		t.Fatal("enums without @copy must move")
	}
}

func TestRecursiveTypeNotes(t *testing.T) {
	c := checkSource(t, "struct R { r: R }\nfn main() {}\n")
	var found bool
	for _, d := range c.bag.Items() {
		if d.Code != diag.SemaRecursiveType {
			continue
		}
		found = true
		if !strings.Contains(d.Message, "'R'") || len(d.Notes) != 1 {
			t.Fatalf("diagnostic %q notes=%d", d.Message, len(d.Notes))
		}
	}
	if !found {
		t.Fatalf("no recursive_type diagnostic: %s", summary(c.bag))
	}
}
