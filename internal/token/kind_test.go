package token_test

import (
	"testing"

	"borrowck/internal/source"
	"borrowck/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{
		token.IntLit, token.FloatLit, token.CharLit,
		token.StringLit, token.KwTrue, token.KwFalse,
	}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwLet, token.Amp, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Amp, token.Star, token.Plus, token.Minus, token.Dot, token.DotDot,
		token.Comma, token.Semicolon, token.Colon, token.PathSep, token.Arrow, token.Assign,
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.LBracket, token.RBracket, token.At,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	if tok(token.Ident).IsPunctOrOp() || tok(token.KwFn).IsPunctOrOp() {
		t.Fatal("identifiers and keywords are not punctuation")
	}
}

func TestKeywords(t *testing.T) {
	for word, want := range map[string]token.Kind{
		"fn": token.KwFn, "let": token.KwLet, "mut": token.KwMut,
		"struct": token.KwStruct, "return": token.KwReturn, "use": token.KwUse,
		"impl": token.KwImpl, "enum": token.KwEnum,
	} {
		got, ok := token.LookupKeyword(word)
		if !ok || got != want {
			t.Errorf("LookupKeyword(%q) = %v, %v", word, got, ok)
		}
		if !tok(got).IsKeyword() {
			t.Errorf("%v should be a keyword", got)
		}
	}
	if _, ok := token.LookupKeyword("Fn"); ok {
		t.Fatal("keywords are case-sensitive")
	}
	if _, ok := token.LookupKeyword("String"); ok {
		t.Fatal("type names are identifiers")
	}
}

func TestKindString(t *testing.T) {
	if token.DotDot.String() != "DotDot" || token.KwStruct.String() != "KwStruct" {
		t.Fatalf("unexpected names: %s %s", token.DotDot, token.KwStruct)
	}
}

func TestExpectBody(t *testing.T) {
	tr := token.Trivia{Kind: token.TriviaExpect, Text: "//~ ERROR use_after_move"}
	if got := tr.ExpectBody(); got != "ERROR use_after_move" {
		t.Fatalf("ExpectBody() = %q", got)
	}
	plain := token.Trivia{Kind: token.TriviaLineComment, Text: "// hi"}
	if plain.ExpectBody() != "" {
		t.Fatal("plain comments carry no expectation")
	}
}
