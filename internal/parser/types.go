package parser

import (
	"fmt"
	"strconv"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/token"

	"fortio.org/safecast"
)

// Type := '&' ['mut'] Type | '(' Type,* ')' | '[' Type [';' Int] ']' | Ident
func (p *Parser) parseType() (ast.TypeID, bool) {
	start := p.lx.Peek().Span
	switch p.lx.Peek().Kind {
	case token.Amp:
		p.advance()
		_, mut := p.eat(token.KwMut)
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeRef, Mut: mut, Elem: elem, Span: start.Cover(p.lastSpan)}), true

	case token.LParen:
		p.advance()
		var elems []ast.TypeID
		for !p.atAny(token.RParen, token.EOF) {
			elem, ok := p.parseType()
			if !ok {
				return ast.NoTypeID, false
			}
			elems = append(elems, elem)
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' in tuple type"); !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeTuple, Elems: elems, Span: start.Cover(p.lastSpan)}), true

	case token.LBracket:
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		te := ast.TypeExpr{Kind: ast.TypeSlice, Elem: elem}
		if _, ok := p.eat(token.Semicolon); ok {
			n, ok := p.expect(token.IntLit, diag.SynExpectExpression, "expected array length")
			if !ok {
				return ast.NoTypeID, false
			}
			length, err := strconv.ParseUint(stripUnderscores(n.Text), 10, 32)
			if err != nil {
				p.report(diag.SynExpectExpression, n.Span, "array length out of range")
				return ast.NoTypeID, false
			}
			te.Kind = ast.TypeArray
			te.Len, err = safecast.Conv[uint32](length)
			if err != nil {
				panic(fmt.Errorf("array length overflow: %w", err))
			}
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' in array type"); !ok {
			return ast.NoTypeID, false
		}
		te.Span = start.Cover(p.lastSpan)
		return p.arenas.Types.New(te), true

	case token.Ident:
		name := p.advance()
		return p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypePath, Name: name.Text, Span: name.Span}), true
	}
	p.err(diag.SynExpectType, "expected type, found "+describe(p.lx.Peek()))
	return ast.NoTypeID, false
}
