package parser

import (
	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/token"
)

// struct Name { f: T, ... }
// struct Name(T, ...);
// struct Name;
func (p *Parser) parseStructItem(attrs []ast.Attr) (ast.ItemID, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected struct name")
	if !ok {
		return ast.NoItemID, false
	}
	item := ast.StructItem{Name: name.Text, NameSpan: name.Span, Attrs: attrs}

	switch {
	case p.at(token.LBrace):
		if item.Fields, ok = p.parseNamedFields("struct fields"); !ok {
			return ast.NoItemID, false
		}
	case p.at(token.LParen):
		item.Tuple = true
		if item.Fields, ok = p.parseTupleFields("tuple struct fields"); !ok {
			return ast.NoItemID, false
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after tuple struct"); !ok {
			return ast.NoItemID, false
		}
	default:
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected '{', '(' or ';' after struct name"); !ok {
			return ast.NoItemID, false
		}
	}

	item.Span = kw.Span.Cover(p.lastSpan)
	if len(attrs) > 0 {
		item.Span = attrs[0].Span.Cover(item.Span)
	}
	return p.arenas.Items.NewStruct(item), true
}

// '{' name: T, ... '}'
func (p *Parser) parseNamedFields(what string) ([]ast.StructField, bool) {
	p.advance()
	var fields []ast.StructField
	for !p.atAny(token.RBrace, token.EOF) {
		fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name")
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
			return nil, false
		}
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, ast.StructField{
			Name: fname.Text,
			Type: typ,
			Span: fname.Span.Cover(p.lastSpan),
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after "+what); !ok {
		return nil, false
	}
	return fields, true
}

// '(' T, ... ')' - поля получают имена "0", "1", ...
func (p *Parser) parseTupleFields(what string) ([]ast.StructField, bool) {
	p.advance()
	var fields []ast.StructField
	for !p.atAny(token.RParen, token.EOF) {
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, ast.StructField{
			Name: itoa(len(fields)),
			Type: typ,
			Span: p.arenas.Types.Get(typ).Span,
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after "+what); !ok {
		return nil, false
	}
	return fields, true
}

// enum Name { A, B(T, U), C { f: T }, ... }
func (p *Parser) parseEnumItem(attrs []ast.Attr) (ast.ItemID, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected enum name")
	if !ok {
		return ast.NoItemID, false
	}
	item := ast.EnumItem{Name: name.Text, NameSpan: name.Span, Attrs: attrs}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after enum name"); !ok {
		return ast.NoItemID, false
	}
	for !p.atAny(token.RBrace, token.EOF) {
		vname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variant name")
		if !ok {
			return ast.NoItemID, false
		}
		v := ast.EnumVariant{Name: vname.Text, NameSpan: vname.Span}
		switch {
		case p.at(token.LBrace):
			if v.Fields, ok = p.parseNamedFields("variant fields"); !ok {
				return ast.NoItemID, false
			}
		case p.at(token.LParen):
			v.Tuple = true
			if v.Fields, ok = p.parseTupleFields("variant fields"); !ok {
				return ast.NoItemID, false
			}
		}
		v.Span = vname.Span.Cover(p.lastSpan)
		item.Variants = append(item.Variants, v)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after enum variants"); !ok {
		return ast.NoItemID, false
	}
	item.Span = kw.Span.Cover(p.lastSpan)
	if len(attrs) > 0 {
		item.Span = attrs[0].Span.Cover(item.Span)
	}
	return p.arenas.Items.NewEnum(item), true
}

// impl Name { fn ... }
func (p *Parser) parseImplItem() (ast.ItemID, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected type name after 'impl'")
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after impl type"); !ok {
		return ast.NoItemID, false
	}
	impl := ast.ImplItem{TypeName: name.Text, NameSpan: name.Span}
	for !p.atAny(token.RBrace, token.EOF) {
		attrs := p.parseAttrs()
		if !p.at(token.KwFn) {
			p.err(diag.SynUnexpectedToken, "expected 'fn' inside impl block, found "+describe(p.lx.Peek()))
			p.resyncImpl()
			continue
		}
		id, ok := p.parseFnItem(attrs, name.Text)
		if !ok {
			p.resyncImpl()
			continue
		}
		impl.Methods = append(impl.Methods, id)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after impl block"); !ok {
		return ast.NoItemID, false
	}
	impl.Span = kw.Span.Cover(p.lastSpan)
	return p.arenas.Items.NewImpl(impl), true
}

// resyncImpl пропускает токены до следующего метода или конца блока.
func (p *Parser) resyncImpl() {
	for !p.atAny(token.EOF, token.KwFn, token.RBrace, token.At) {
		p.advance()
	}
}

// fn name(p: T, mut q: U) -> R { ... }
// Inside an impl the first parameter may be a receiver: self, mut self, &self, &mut self.
func (p *Parser) parseFnItem(attrs []ast.Attr, owner string) (ast.ItemID, bool) {
	kw := p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoItemID, false
	}
	fn := ast.FnItem{Name: name.Text, NameSpan: name.Span, Attrs: attrs, Owner: owner}
	for !p.atAny(token.RParen, token.EOF) {
		param, self, ok := p.parseParam()
		if !ok {
			return ast.NoItemID, false
		}
		if self {
			if len(fn.Params) > 0 {
				p.report(diag.SynUnexpectedToken, param.Span, "'self' must be the first parameter")
				return ast.NoItemID, false
			}
			fn.SelfParam = true
		}
		fn.Params = append(fn.Params, param)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after parameters"); !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.eat(token.Arrow); ok {
		typ, ok := p.parseType()
		if !ok {
			return ast.NoItemID, false
		}
		fn.Result = typ
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynUnexpectedToken, "expected function body, found "+describe(p.lx.Peek()))
		return ast.NoItemID, false
	}
	fn.Body = p.parseBlock()
	fn.Span = kw.Span.Cover(p.lastSpan)
	return p.arenas.Items.NewFn(fn), true
}

// parseParam разбирает `[mut] name: T` или receiver. self=true для receiver'а;
// его тип записывается как Self, &Self или &mut Self.
func (p *Parser) parseParam() (ast.FnParam, bool, bool) {
	start := p.lx.Peek().Span
	if _, ok := p.eat(token.Amp); ok {
		_, mut := p.eat(token.KwMut)
		self, ok := p.expectSelf()
		if !ok {
			return ast.FnParam{}, false, false
		}
		elem := p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypePath, Name: "Self", Span: self.Span})
		ref := p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypeRef, Mut: mut, Elem: elem, Span: start.Cover(self.Span)})
		return ast.FnParam{Name: "self", Type: ref, Span: start.Cover(self.Span)}, true, true
	}
	_, mut := p.eat(token.KwMut)
	pname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
	if !ok {
		return ast.FnParam{}, false, false
	}
	if pname.Text == "self" && !p.at(token.Colon) {
		typ := p.arenas.Types.New(ast.TypeExpr{Kind: ast.TypePath, Name: "Self", Span: pname.Span})
		return ast.FnParam{Name: "self", Mut: mut, Type: typ, Span: start.Cover(pname.Span)}, true, true
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after parameter name"); !ok {
		return ast.FnParam{}, false, false
	}
	typ, ok := p.parseType()
	if !ok {
		return ast.FnParam{}, false, false
	}
	return ast.FnParam{
		Name: pname.Text,
		Mut:  mut,
		Type: typ,
		Span: start.Cover(p.lastSpan),
	}, pname.Text == "self", true
}

func (p *Parser) expectSelf() (token.Token, bool) {
	tok := p.lx.Peek()
	if tok.Kind == token.Ident && tok.Text == "self" {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdentifier, "expected 'self' after '&', found "+describe(tok))
	return token.Token{}, false
}
