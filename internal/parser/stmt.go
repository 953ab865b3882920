package parser

import (
	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/source"
	"borrowck/internal/token"
)

// parseBlock ожидает, что текущий токен - '{'.
func (p *Parser) parseBlock() ast.StmtID {
	open := p.advance()
	var stmts []ast.StmtID
	for !p.atAny(token.RBrace, token.EOF) {
		if p.opts.Enough() {
			p.resyncBlockEnd()
			break
		}
		id, ok := p.parseStmt()
		if !ok {
			p.resyncStmt()
			continue
		}
		stmts = append(stmts, id)
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close block")
	return p.arenas.Stmts.NewBlock(open.Span.Cover(p.lastSpan), stmts)
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	start := p.lx.Peek().Span
	switch p.lx.Peek().Kind {
	case token.LBrace:
		return p.parseBlock(), true
	case token.KwLet:
		return p.parseLet()
	case token.KwUse:
		p.advance()
		var exprs []ast.ExprID
		for {
			e, ok := p.parseExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			exprs = append(exprs, e)
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		if !p.expectSemicolon() {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewUse(start.Cover(p.lastSpan), exprs), true
	case token.KwReturn:
		p.advance()
		value := ast.NoExprID
		if !p.at(token.Semicolon) {
			e, ok := p.parseExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			value = e
		}
		if !p.expectSemicolon() {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewReturn(start.Cover(p.lastSpan), value), true
	case token.Semicolon:
		// пустой оператор
		p.advance()
		return p.arenas.Stmts.NewBlock(start, nil), true
	}

	target, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.eat(token.Assign); ok {
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoStmtID, false
		}
		if !p.expectSemicolon() {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewAssign(start.Cover(p.lastSpan), target, value), true
	}
	if !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewExpr(start.Cover(p.lastSpan), target), true
}

// let [mut] pat [: T] [= e];
func (p *Parser) parseLet() (ast.StmtID, bool) {
	kw := p.advance()
	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoStmtID, false
	}
	typ := ast.NoTypeID
	if _, ok := p.eat(token.Colon); ok {
		if typ, ok = p.parseType(); !ok {
			return ast.NoStmtID, false
		}
	}
	value := ast.NoExprID
	if _, ok := p.eat(token.Assign); ok {
		if value, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, false
		}
	}
	if !p.expectSemicolon() {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLet(kw.Span.Cover(p.lastSpan), pat, typ, value), true
}

func (p *Parser) parsePattern() (ast.Pattern, bool) {
	start := p.lx.Peek().Span
	if _, ok := p.eat(token.LParen); ok {
		pat := ast.Pattern{Kind: ast.PatTuple}
		for !p.atAny(token.RParen, token.EOF) {
			elem, ok := p.parsePattern()
			if !ok {
				return ast.Pattern{}, false
			}
			pat.Elems = append(pat.Elems, elem)
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' in tuple pattern"); !ok {
			return ast.Pattern{}, false
		}
		pat.Span = start.Cover(p.lastSpan)
		return pat, true
	}
	_, mut := p.eat(token.KwMut)
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected binding name")
	if !ok {
		return ast.Pattern{}, false
	}
	return ast.Pattern{Kind: ast.PatIdent, Name: name.Text, Mut: mut, Span: start.Cover(name.Span)}, true
}

func (p *Parser) expectSemicolon() bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	sp := p.lastSpan.ZeroideToEnd()
	p.report(diag.SynExpectSemicolon, sp, "expected ';', found "+describe(p.lx.Peek()))
	return false
}

// resyncStmt пропускает токены до ';' (съедая его) или до '}' (не съедая).
func (p *Parser) resyncStmt() {
	for {
		switch p.lx.Peek().Kind {
		case token.EOF, token.RBrace:
			return
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace:
			p.skipBalanced()
		default:
			p.advance()
		}
	}
}

func (p *Parser) resyncBlockEnd() {
	for !p.atAny(token.RBrace, token.EOF) {
		if p.at(token.LBrace) {
			p.skipBalanced()
			continue
		}
		p.advance()
	}
}

func (p *Parser) skipBalanced() source.Span {
	start := p.advance().Span
	depth := 1
	for depth > 0 && !p.at(token.EOF) {
		switch p.advance().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
	}
	return start.Cover(p.lastSpan)
}
