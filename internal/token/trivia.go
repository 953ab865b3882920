package token

import (
	"strings"

	"borrowck/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	// TriviaExpect is a `//~` comment carrying a diagnostic expectation.
	TriviaExpect
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// ExpectBody returns the annotation text after the `//~` marker.
func (t Trivia) ExpectBody() string {
	if t.Kind != TriviaExpect {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(t.Text, "//~"))
}

var triviaNames = [...]string{
	TriviaSpace:        "Space",
	TriviaNewline:      "Newline",
	TriviaLineComment:  "LineComment",
	TriviaBlockComment: "BlockComment",
	TriviaExpect:       "Expect",
}

func (k TriviaKind) String() string {
	if int(k) < len(triviaNames) {
		return triviaNames[k]
	}
	return "Trivia(?)"
}
