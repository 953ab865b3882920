package parser

import (
	"slices"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/lexer"
	"borrowck/internal/source"
	"borrowck/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser - состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile - входная точка для разбора одного файла.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	first := lx.Peek().Span
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.NewFile(first.ZeroideToStart()),
		opts:     opts,
		lastSpan: first.ZeroideToStart(),
	}
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems - основной цикл верхнего уровня: пока не EOF - parseItem.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lx.Peek().Span)
}

// parseItem выбирает по первому токену нужный распознаватель top-level конструкции.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	attrs := p.parseAttrs()
	switch p.lx.Peek().Kind {
	case token.KwStruct:
		return p.parseStructItem(attrs)
	case token.KwEnum:
		return p.parseEnumItem(attrs)
	case token.KwImpl:
		if len(attrs) > 0 {
			p.report(diag.SynUnexpectedToken, attrs[0].Span, "attributes are not allowed on impl blocks")
		}
		return p.parseImplItem()
	case token.KwFn:
		return p.parseFnItem(attrs, "")
	default:
		p.err(diag.SynUnexpectedTopLevel, "expected 'struct', 'enum', 'impl' or 'fn' at top level, found "+describe(p.lx.Peek()))
		return ast.NoItemID, false
	}
}

func (p *Parser) parseAttrs() []ast.Attr {
	var attrs []ast.Attr
	for p.at(token.At) {
		at := p.advance()
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected attribute name after '@'")
		if !ok {
			continue
		}
		attrs = append(attrs, ast.Attr{Name: name.Text, Span: at.Span.Cover(name.Span)})
	}
	return attrs
}

// resyncTop пропускает токены до следующего item.
func (p *Parser) resyncTop() {
	for !p.atAny(token.EOF, token.KwFn, token.KwStruct, token.KwEnum, token.KwImpl, token.At) {
		p.advance()
	}
}
