package lower

import (
	"borrowck/internal/ast"
	"borrowck/internal/ownership"
	"borrowck/internal/types"
)

func (l *lowerer) lowerStmt(id ast.StmtID) {
	stmt := l.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		blk, _ := l.builder.Stmts.Block(id)
		l.tr.Enter(ownership.ScopeBlock, "", stmt.Span)
		for _, s := range blk.Stmts {
			if l.returned {
				break
			}
			l.lowerStmt(s)
		}
		l.tr.Exit(stmt.Span.ZeroideToEnd())
	case ast.StmtLet:
		l.lowerLet(id)
	case ast.StmtExpr:
		es, _ := l.builder.Stmts.Expr(id)
		l.discard(es.Expr)
	case ast.StmtAssign:
		as, _ := l.builder.Stmts.Assign(id)
		target, ok := l.place(as.Target)
		if !ok {
			return
		}
		l.into(as.Value, ownership.Into(target))
	case ast.StmtUse:
		us, _ := l.builder.Stmts.Use(id)
		for _, e := range us.Exprs {
			l.read(e)
		}
	case ast.StmtReturn:
		ret, _ := l.builder.Stmts.Return(id)
		l.lowerReturn(ret, stmt)
	}
}

func (l *lowerer) lowerLet(id ast.StmtID) {
	let, _ := l.builder.Stmts.Let(id)
	pat := &let.Pattern
	if !let.Value.IsValid() {
		l.declarePattern(pat)
		return
	}
	if pat.Kind == ast.PatIdent {
		l.into(let.Value, letTarget(pat.Name, pat.Mut))
		return
	}
	// деструктуризация: значение целиком, затем по листьям
	src := l.materialize(let.Value)
	l.destructure(pat, src, l.exprType(let.Value))
}

func (l *lowerer) declarePattern(pat *ast.Pattern) {
	if pat.Kind == ast.PatIdent {
		l.tr.Declare(pat.Name, pat.Mut, pat.Span)
		return
	}
	for i := range pat.Elems {
		l.declarePattern(&pat.Elems[i])
	}
}

// destructure moves every leaf of a tuple pattern out of src.
func (l *lowerer) destructure(pat *ast.Pattern, src ownership.Place, t types.TypeID) {
	if pat.Kind == ast.PatIdent {
		l.tr.Move(src.As(l.classOf(t)), letTarget(pat.Name, pat.Mut), pat.Span)
		return
	}
	var elems []types.TypeID
	if info, ok := l.types.TupleInfo(t); ok {
		elems = info.Elems
	}
	for i := range pat.Elems {
		elem := types.NoTypeID
		if i < len(elems) {
			elem = elems[i]
		}
		l.destructure(&pat.Elems[i], l.field(src, indexName(i)), elem)
	}
}

func (l *lowerer) lowerReturn(ret *ast.ReturnStmt, stmt *ast.Stmt) {
	l.returned = true
	if !ret.Value.IsValid() {
		l.tr.Return(ownership.Place{}, stmt.Span)
		return
	}
	op := l.operand(ret.Value)
	if op.isConst {
		l.tr.Return(ownership.Place{}, stmt.Span)
		return
	}
	l.tr.Return(op.place, l.exprSpan(ret.Value))
}
