package fuzztests

import (
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/lexer"
	"borrowck/internal/source"
	"borrowck/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.own", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		var prevEnd uint32
		for n := 0; ; n++ {
			tok := lx.Next()
			if tok.Span.Start < prevEnd {
				t.Fatalf("token %d (%s) starts at %d before previous end %d", n, tok.Kind, tok.Span.Start, prevEnd)
			}
			prevEnd = tok.Span.End
			if tok.Kind == token.EOF {
				break
			}
			if n > len(input)+1 {
				t.Fatalf("lexer produced more tokens than input bytes")
			}
		}
	})
}
