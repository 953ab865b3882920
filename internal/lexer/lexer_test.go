package lexer_test

import (
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/lexer"
	"borrowck/internal/source"
	"borrowck/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.own", []byte(input)))
	reporter := &testReporter{}
	return lexer.New(file, lexer.Options{Reporter: reporter}), reporter
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func assertKinds(t *testing.T, input string, want ...token.Kind) []token.Token {
	t.Helper()
	lx, rep := makeTestLexer(input)
	toks := lx.All()
	got := kinds(toks)
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d = %v, want %v (all: %v)", input, i, got[i], want[i], got)
		}
	}
	if len(rep.diagnostics) != 0 {
		t.Fatalf("%q: unexpected diagnostics %+v", input, rep.diagnostics)
	}
	return toks
}

func TestLetStatement(t *testing.T) {
	toks := assertKinds(t, `let mut s = String("hello");`,
		token.KwLet, token.KwMut, token.Ident, token.Assign, token.Ident,
		token.LParen, token.StringLit, token.RParen, token.Semicolon)
	if toks[6].Text != `"hello"` {
		t.Fatalf("string text = %q", toks[6].Text)
	}
}

func TestBorrowsAndRanges(t *testing.T) {
	assertKinds(t, `&mut s`, token.Amp, token.KwMut, token.Ident)
	assertKinds(t, `&s[0..5]`,
		token.Amp, token.Ident, token.LBracket, token.IntLit, token.DotDot, token.IntLit, token.RBracket)
	assertKinds(t, `&s[..]`, token.Amp, token.Ident, token.LBracket, token.DotDot, token.RBracket)
	assertKinds(t, `..user1`, token.DotDot, token.Ident)
}

func TestTupleIndexIsNotFloat(t *testing.T) {
	toks := assertKinds(t, `pair.0.1`,
		token.Ident, token.Dot, token.IntLit, token.Dot, token.IntLit)
	if toks[2].Text != "0" || toks[4].Text != "1" {
		t.Fatalf("unexpected tuple indices %q %q", toks[2].Text, toks[4].Text)
	}
	assertKinds(t, `let x = 2.5;`, token.KwLet, token.Ident, token.Assign, token.FloatLit, token.Semicolon)
}

func TestFunctionSignature(t *testing.T) {
	assertKinds(t, `fn f(s: &String) -> usize {}`,
		token.KwFn, token.Ident, token.LParen, token.Ident, token.Colon, token.Amp, token.Ident,
		token.RParen, token.Arrow, token.Ident, token.LBrace, token.RBrace)
	assertKinds(t, `@copy struct P { x: i32 }`,
		token.At, token.Ident, token.KwStruct, token.Ident, token.LBrace,
		token.Ident, token.Colon, token.Ident, token.RBrace)
}

func TestCharAndUnicodeLiterals(t *testing.T) {
	toks := assertKinds(t, `let c = 'z'; let h = "Здравствуйте"; let e = '\n';`,
		token.KwLet, token.Ident, token.Assign, token.CharLit, token.Semicolon,
		token.KwLet, token.Ident, token.Assign, token.StringLit, token.Semicolon,
		token.KwLet, token.Ident, token.Assign, token.CharLit, token.Semicolon)
	if toks[3].Text != "'z'" {
		t.Fatalf("char text = %q", toks[3].Text)
	}
}

func TestExpectationTrivia(t *testing.T) {
	lx, _ := makeTestLexer("use s1; //~ ERROR use_after_move\nuse s2;")
	toks := lx.All()
	// trivia приклеивается к следующему значимому токену
	var found bool
	for _, tok := range toks {
		for _, tr := range tok.Leading {
			if tr.Kind == token.TriviaExpect {
				found = true
				if tr.ExpectBody() != "ERROR use_after_move" {
					t.Fatalf("unexpected expectation body %q", tr.ExpectBody())
				}
			}
		}
	}
	if !found {
		t.Fatal("expectation trivia not found")
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{`"unterminated`, diag.LexUnterminatedString},
		{"\"line\nbreak\"", diag.LexUnterminatedString},
		{`/* open`, diag.LexUnterminatedBlockComment},
		{`let x = 12ab;`, diag.LexBadNumber},
		{`let x = #;`, diag.LexUnknownChar},
		{`'a`, diag.LexUnterminatedChar},
		{`"\q"`, diag.LexBadEscape},
	}
	for _, tt := range tests {
		lx, rep := makeTestLexer(tt.input)
		lx.All()
		if len(rep.diagnostics) == 0 {
			t.Errorf("%q: expected %s, got nothing", tt.input, tt.code.ID())
			continue
		}
		if rep.diagnostics[0].Code != tt.code {
			t.Errorf("%q: got %s, want %s", tt.input, rep.diagnostics[0].Code.ID(), tt.code.ID())
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("let a")
	if lx.Peek().Kind != token.KwLet || lx.Peek().Kind != token.KwLet {
		t.Fatal("Peek must be idempotent")
	}
	if lx.Next().Kind != token.KwLet || lx.Next().Kind != token.Ident || lx.Next().Kind != token.EOF {
		t.Fatal("unexpected token sequence after Peek")
	}
	if lx.Next().Kind != token.EOF {
		t.Fatal("EOF must be sticky")
	}
}
