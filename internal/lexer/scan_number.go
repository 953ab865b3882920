package lexer

import (
	"borrowck/internal/diag"
	"borrowck/internal/token"
)

// scanNumber: 0, 123, 1_000, 2.5, 1e3, 2.5e-1.
// Дробная часть разбирается только если за '.' идёт цифра, так что 0..5 - это
// IntLit DotDot IntLit. allowFraction=false используется для индексов кортежей.
func (lx *Lexer) scanNumber(allowFraction bool) token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	lx.eatDigits()
	if allowFraction && lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		lx.eatDigits()
		kind = token.FloatLit
	}
	if allowFraction && (lx.cursor.Peek() == 'e' || lx.cursor.Peek() == 'E') {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			lx.eatDigits()
			kind = token.FloatLit
		} else {
			lx.cursor.Reset(mark)
		}
	}

	// хвост из букв (1abc) - ошибка числа
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadNumber, sp, "invalid numeric literal "+lx.text(sp))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) eatDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}
