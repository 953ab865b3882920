package lexer

import (
	"borrowck/internal/diag"
	"borrowck/internal/token"
)

// Жадность: сначала двухсимвольные (.., ->, ::), затем односимвольные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}

	switch {
	case lx.try2('.', '.'):
		return emit(token.DotDot)
	case lx.try2('-', '>'):
		return emit(token.Arrow)
	case lx.try2(':', ':'):
		return emit(token.PathSep)
	}

	switch lx.cursor.Bump() {
	case '&':
		return emit(token.Amp)
	case '*':
		return emit(token.Star)
	case '+':
		return emit(token.Plus)
	case '-':
		return emit(token.Minus)
	case '.':
		return emit(token.Dot)
	case ',':
		return emit(token.Comma)
	case ';':
		return emit(token.Semicolon)
	case ':':
		return emit(token.Colon)
	case '=':
		return emit(token.Assign)
	case '(':
		return emit(token.LParen)
	case ')':
		return emit(token.RParen)
	case '{':
		return emit(token.LBrace)
	case '}':
		return emit(token.RBrace)
	case '[':
		return emit(token.LBracket)
	case ']':
		return emit(token.RBracket)
	case '@':
		return emit(token.At)
	}

	tok := emit(token.Invalid)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character "+tok.Text)
	return tok
}

func (lx *Lexer) try2(a, b byte) bool {
	if lx.cursor.Peek() == a && lx.cursor.PeekAt(1) == b {
		lx.cursor.Bump()
		lx.cursor.Bump()
		return true
	}
	return false
}
