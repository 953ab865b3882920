package parser

import (
	"unicode"
	"unicode/utf8"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/token"
)

func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseAdditive()
}

// Additive := Multiplicative (('+'|'-') Multiplicative)*
func (p *Parser) parseAdditive() (ast.ExprID, bool) {
	left, ok := p.parseMultiplicative()
	if !ok {
		return ast.NoExprID, false
	}
	for p.atAny(token.Plus, token.Minus) {
		op := ast.BinaryAdd
		if p.advance().Kind == token.Minus {
			op = ast.BinarySub
		}
		right, ok := p.parseMultiplicative()
		if !ok {
			return ast.NoExprID, false
		}
		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(span, op, left, right)
	}
	return left, true
}

// Multiplicative := Unary ('*' Unary)*
func (p *Parser) parseMultiplicative() (ast.ExprID, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	for p.at(token.Star) {
		p.advance()
		right, ok := p.parseUnary()
		if !ok {
			return ast.NoExprID, false
		}
		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(span, ast.BinaryMul, left, right)
	}
	return left, true
}

// Unary := '&' ['mut'] Unary | '*' Unary | '-' Unary | Postfix
func (p *Parser) parseUnary() (ast.ExprID, bool) {
	start := p.lx.Peek().Span
	var op ast.ExprUnaryOp
	switch p.lx.Peek().Kind {
	case token.Amp:
		p.advance()
		op = ast.UnaryRef
		if _, ok := p.eat(token.KwMut); ok {
			op = ast.UnaryRefMut
		}
	case token.Star:
		p.advance()
		op = ast.UnaryDeref
	case token.Minus:
		p.advance()
		op = ast.UnaryNeg
	default:
		return p.parsePostfix()
	}
	operand, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewUnary(start.Cover(p.lastSpan), op, operand), true
}

// Postfix := Primary ('.' Ident ['(' args ')'] | '.' Int | '[' index ']')*
func (p *Parser) parsePostfix() (ast.ExprID, bool) {
	expr, ok := p.parsePrimary()
	if !ok {
		return ast.NoExprID, false
	}
	start := p.arenas.Exprs.Get(expr).Span
	for {
		switch p.lx.Peek().Kind {
		case token.Dot:
			p.advance()
			switch p.lx.Peek().Kind {
			case token.Ident:
				name := p.advance()
				if p.at(token.LParen) {
					args, ok := p.parseArgs()
					if !ok {
						return ast.NoExprID, false
					}
					expr = p.arenas.Exprs.NewMethodCall(start.Cover(p.lastSpan), expr, name.Text, name.Span, args)
					continue
				}
				expr = p.arenas.Exprs.NewField(start.Cover(name.Span), ast.ExprFieldData{
					Target: expr, Name: name.Text, NameSpan: name.Span,
				})
			case token.IntLit:
				idx := p.advance()
				expr = p.arenas.Exprs.NewField(start.Cover(idx.Span), ast.ExprFieldData{
					Target: expr, Name: stripUnderscores(idx.Text), TupleIndex: true, NameSpan: idx.Span,
				})
			default:
				p.err(diag.SynInvalidTupleIndex, "expected field name or tuple index after '.', found "+describe(p.lx.Peek()))
				return ast.NoExprID, false
			}
		case token.LBracket:
			p.advance()
			data := ast.ExprIndexData{Target: expr}
			if !p.atAny(token.DotDot) {
				e, ok := p.parseExpr()
				if !ok {
					return ast.NoExprID, false
				}
				data.Index = e
			}
			if _, ok := p.eat(token.DotDot); ok {
				data.IsRange = true
				data.Start, data.Index = data.Index, ast.NoExprID
				if !p.at(token.RBracket) {
					e, ok := p.parseExpr()
					if !ok {
						return ast.NoExprID, false
					}
					data.End = e
				}
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'"); !ok {
				return ast.NoExprID, false
			}
			expr = p.arenas.Exprs.NewIndex(start.Cover(p.lastSpan), data)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parseArgs() ([]ast.ExprID, bool) {
	p.advance() // '('
	var args []ast.ExprID
	for !p.atAny(token.RParen, token.EOF) {
		arg, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after arguments"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitInt, tok.Text, stripUnderscores(tok.Text)), true
	case token.FloatLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitFloat, tok.Text, stripUnderscores(tok.Text)), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitBool, tok.Text, tok.Text), true
	case token.StringLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitString, tok.Text, unquote(tok.Text)), true
	case token.CharLit:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.LitChar, tok.Text, unquote(tok.Text)), true

	case token.Ident:
		p.advance()
		if p.at(token.PathSep) {
			return p.parsePath(tok)
		}
		switch {
		case p.at(token.LParen):
			args, ok := p.parseArgs()
			if !ok {
				return ast.NoExprID, false
			}
			return p.arenas.Exprs.NewCall(tok.Span.Cover(p.lastSpan), tok.Text, tok.Span, args), true
		case p.at(token.LBrace) && startsUpper(tok.Text):
			return p.parseStructLit(tok, token.Token{})
		}
		return p.arenas.Exprs.NewIdent(tok.Span, tok.Text), true

	case token.LParen:
		p.advance()
		var elems []ast.ExprID
		trailingComma := false
		for !p.atAny(token.RParen, token.EOF) {
			e, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			elems = append(elems, e)
			_, trailingComma = p.eat(token.Comma)
			if !trailingComma {
				break
			}
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
			return ast.NoExprID, false
		}
		span := tok.Span.Cover(p.lastSpan)
		if len(elems) == 1 && !trailingComma {
			return p.arenas.Exprs.NewGroup(span, elems[0]), true
		}
		return p.arenas.Exprs.NewTuple(span, elems), true

	case token.LBracket:
		p.advance()
		var elems []ast.ExprID
		for !p.atAny(token.RBracket, token.EOF) {
			e, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			elems = append(elems, e)
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'"); !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewArray(tok.Span.Cover(p.lastSpan), elems), true
	}
	p.err(diag.SynExpectExpression, "expected expression, found "+describe(tok))
	return ast.NoExprID, false
}

// Type::f(args) | Enum::Variant { .. } | Type::Name
func (p *Parser) parsePath(typ token.Token) (ast.ExprID, bool) {
	p.advance() // '::'
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected name after '::'")
	if !ok {
		return ast.NoExprID, false
	}
	switch {
	case p.at(token.LParen):
		args, ok := p.parseArgs()
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewPathCall(typ.Span.Cover(p.lastSpan), typ.Text, typ.Span, name.Text, name.Span, args), true
	case p.at(token.LBrace) && startsUpper(name.Text):
		return p.parseStructLit(typ, name)
	}
	return p.arenas.Exprs.NewPath(typ.Span.Cover(name.Span), ast.ExprPathData{
		Type: typ.Text, TypeSpan: typ.Span, Name: name.Text, NameSpan: name.Span,
	}), true
}

// Name { f: e, f, ..base }
// Enum::Variant { f: e }; для обычной структуры variant - нулевой токен.
func (p *Parser) parseStructLit(name, variant token.Token) (ast.ExprID, bool) {
	p.advance() // '{'
	data := ast.ExprStructData{Name: name.Text, Variant: variant.Text, VariantSpan: variant.Span}
	for !p.atAny(token.RBrace, token.EOF) {
		if _, ok := p.eat(token.DotDot); ok {
			base, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			data.Base = base
			break
		}
		fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name in struct literal")
		if !ok {
			return ast.NoExprID, false
		}
		var value ast.ExprID
		if _, ok := p.eat(token.Colon); ok {
			if value, ok = p.parseExpr(); !ok {
				return ast.NoExprID, false
			}
		} else {
			// сокращённая запись `User { email, .. }`
			value = p.arenas.Exprs.NewIdent(fname.Span, fname.Text)
		}
		data.Fields = append(data.Fields, ast.StructLitField{Name: fname.Text, Value: value, Span: fname.Span.Cover(p.lastSpan)})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after struct literal"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewStruct(name.Span.Cover(p.lastSpan), data), true
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
