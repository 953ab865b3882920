package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"borrowck/internal/source"
	"borrowck/internal/token"
)

// TokenOutput is one token of `borrowck tokenize --format json`.
type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Span    source.Span `json:"span"`
	Leading []string    `json:"leading,omitempty"`
	// Expect holds the bodies of `//~` comments attached to the token.
	Expect []string `json:"expect,omitempty"`
}

func tokenOutput(tok token.Token) TokenOutput {
	out := TokenOutput{Kind: tok.Kind.String(), Text: tok.Text, Span: tok.Span}
	for _, tr := range tok.Leading {
		out.Leading = append(out.Leading, tr.Kind.String())
		if body := tr.ExpectBody(); body != "" {
			out.Expect = append(out.Expect, body)
		}
	}
	return out
}

// upToEOF cuts the stream after the first EOF token.
func upToEOF(tokens []token.Token) []token.Token {
	for i, tok := range tokens {
		if tok.Kind == token.EOF {
			return tokens[:i+1]
		}
	}
	return tokens
}

// FormatTokensPretty печатает по строке на токен: номер, вид, текст, позиция.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range upToEOF(tokens) {
		out := tokenOutput(tok)
		var sb strings.Builder
		fmt.Fprintf(&sb, "%3d: %-15s", i+1, out.Kind)
		if out.Text != "" {
			fmt.Fprintf(&sb, " %q", out.Text)
		}
		start, end := fs.Resolve(tok.Span)
		fmt.Fprintf(&sb, " at %d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
		if len(out.Leading) > 0 {
			fmt.Fprintf(&sb, " (leading: %s)", strings.Join(out.Leading, ", "))
		}
		for _, e := range out.Expect {
			fmt.Fprintf(&sb, " [expect %q]", e)
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON writes the stream as an indented JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	toks := upToEOF(tokens)
	output := make([]TokenOutput, 0, len(toks))
	for _, tok := range toks {
		output = append(output, tokenOutput(tok))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
