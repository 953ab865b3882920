package driver

import (
	"fmt"
	"sort"
	"strings"

	"borrowck/internal/diag"
	"borrowck/internal/source"
	"borrowck/internal/token"
)

// Expectation is a `//~ ERROR <kind>` annotation. `//~^` points at the
// previous line, every extra caret one more line up.
type Expectation struct {
	Line uint32
	Code diag.Code
	// Raw is the annotation body, kept for malformed entries.
	Raw  string
	Span source.Span
	// Malformed is set when the body could not be parsed.
	Malformed bool
}

// ParseExpectations collects expectation comments from the lexed tokens.
func ParseExpectations(fs *source.FileSet, tokens []token.Token) []Expectation {
	var out []Expectation
	for _, tok := range tokens {
		for _, tr := range tok.Leading {
			if tr.Kind != token.TriviaExpect {
				continue
			}
			start, _ := fs.Resolve(tr.Span)
			out = append(out, parseExpectation(tr.ExpectBody(), start.Line, tr.Span))
		}
	}
	return out
}

func parseExpectation(body string, line uint32, sp source.Span) Expectation {
	exp := Expectation{Raw: body, Span: sp, Line: line}
	carets := 0
	for carets < len(body) && body[carets] == '^' {
		carets++
	}
	rest := strings.Fields(body[carets:])
	if len(rest) != 2 || rest[0] != "ERROR" || uint32(carets) >= line {
		exp.Malformed = true
		return exp
	}
	code, ok := diag.LookupCode(rest[1])
	if !ok {
		exp.Malformed = true
		return exp
	}
	exp.Line = line - uint32(carets)
	exp.Code = code
	return exp
}

// MismatchKind classifies a difference between expectations and diagnostics.
type MismatchKind uint8

const (
	// MismatchMissing: an expected error was not reported.
	MismatchMissing MismatchKind = iota + 1
	// MismatchUnexpected: an error was reported without an expectation.
	MismatchUnexpected
	// MismatchMalformed: the annotation itself could not be parsed.
	MismatchMalformed
)

// Mismatch is one verification failure.
type Mismatch struct {
	Kind    MismatchKind
	Path    string
	Line    uint32
	Code    diag.Code
	Message string
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MismatchMissing:
		return fmt.Sprintf("%s:%d: expected %s, not reported", m.Path, m.Line, m.Code.Slug())
	case MismatchUnexpected:
		return fmt.Sprintf("%s:%d: unexpected %s: %s", m.Path, m.Line, m.Code.Slug(), m.Message)
	default:
		return fmt.Sprintf("%s:%d: malformed expectation %q", m.Path, m.Line, m.Message)
	}
}

type lineCode struct {
	line uint32
	code diag.Code
}

// Verify compares the error diagnostics of a file against its expectations.
// Each expectation consumes exactly one matching diagnostic.
func Verify(res *FileResult) []Mismatch {
	if res == nil || res.File == nil {
		return nil
	}
	path := res.File.FormatPath("relative", res.FileSet.BaseDir())
	expected := make(map[lineCode]int)
	var out []Mismatch
	for _, exp := range res.Expectations {
		if exp.Malformed {
			out = append(out, Mismatch{Kind: MismatchMalformed, Path: path, Line: exp.Line, Message: exp.Raw})
			continue
		}
		expected[lineCode{exp.Line, exp.Code}]++
	}

	for _, d := range res.Bag.Items() {
		if d.Severity != diag.SevError {
			continue
		}
		start, _ := res.FileSet.Resolve(d.Primary)
		key := lineCode{start.Line, d.Code}
		if expected[key] > 0 {
			expected[key]--
			continue
		}
		out = append(out, Mismatch{Kind: MismatchUnexpected, Path: path, Line: start.Line, Code: d.Code, Message: d.Message})
	}
	for key, n := range expected {
		for range n {
			out = append(out, Mismatch{Kind: MismatchMissing, Path: path, Line: key.line, Code: key.code})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Code < out[j].Code
	})
	return out
}
