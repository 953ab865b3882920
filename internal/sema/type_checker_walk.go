package sema

import (
	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/symbols"
	"borrowck/internal/trace"
	"borrowck/internal/types"
)

func (tc *typeChecker) walkFn(id ast.ItemID) {
	fn, ok := tc.builder.Items.Fn(id)
	if !ok || fn == nil {
		return
	}
	sig := tc.sigs[id]
	if sig == nil {
		// повторное объявление уже отмечено в collectFns
		return
	}

	if tc.tracer != nil && tc.tracer.Level() >= trace.LevelDetail {
		span := trace.Begin(tc.tracer, trace.ScopeFunc, "sema_fn", 0)
		span.WithExtra("fn", sig.Name)
		defer span.End("")
	}

	before := tc.errors.count
	tc.fn, tc.selfType = sig, sig.Owner
	defer func() { tc.fn, tc.selfType = nil, types.NoTypeID }()

	scope := tc.resolver.Enter(symbols.ScopeFunction, symbols.ScopeOwner{
		Kind:       symbols.ScopeOwnerItem,
		SourceFile: fn.Span.File,
		ASTFile:    tc.fileID,
		Item:       id,
	}, fn.Span)
	seen := make(map[string]bool, len(sig.Params))
	params := make([]symbols.SymbolID, 0, len(sig.Params))
	for _, p := range sig.Params {
		if seen[p.Name] {
			tc.report(diag.SemaDuplicateSymbol, p.Span, "identifier '%s' is bound more than once in this parameter list", p.Name)
			continue
		}
		seen[p.Name] = true
		var flags symbols.SymbolFlags
		if p.Mut {
			flags |= symbols.SymbolFlagMutable
		}
		symID, _ := tc.resolver.Declare(symbols.Symbol{
			Name:  p.Name,
			Kind:  symbols.SymbolParam,
			Span:  p.Span,
			Flags: flags,
			Type:  p.Type,
			Decl:  symbols.SymbolDecl{SourceFile: p.Span.File, ASTFile: tc.fileID, Item: id},
		})
		params = append(params, symID)
	}
	tc.result.ParamSymbols[id] = params

	tc.walkStmt(fn.Body)
	tc.checkReturns(fn, sig)
	tc.resolver.Leave(scope)

	if tc.errors.count > before {
		tc.result.Invalid[id] = true
	}
}

func (tc *typeChecker) walkStmt(id ast.StmtID) {
	stmt := tc.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		blk, _ := tc.builder.Stmts.Block(id)
		scope := tc.resolver.Enter(symbols.ScopeBlock, symbols.ScopeOwner{
			Kind:       symbols.ScopeOwnerStmt,
			SourceFile: stmt.Span.File,
			ASTFile:    tc.fileID,
			Stmt:       id,
		}, stmt.Span)
		for _, s := range blk.Stmts {
			tc.walkStmt(s)
		}
		tc.resolver.Leave(scope)
	case ast.StmtLet:
		tc.walkLet(id)
	case ast.StmtExpr:
		es, _ := tc.builder.Stmts.Expr(id)
		tc.typeExpr(es.Expr)
	case ast.StmtAssign:
		tc.walkAssign(id)
	case ast.StmtUse:
		us, _ := tc.builder.Stmts.Use(id)
		for _, e := range us.Exprs {
			tc.typeExpr(e)
		}
	case ast.StmtReturn:
		tc.walkReturn(id, stmt)
	}
}

func (tc *typeChecker) walkLet(id ast.StmtID) {
	let, _ := tc.builder.Stmts.Let(id)
	declared := types.NoTypeID
	if let.Type.IsValid() {
		declared = tc.resolveType(let.Type)
		tc.checkSized(declared, tc.builder.Types.Get(let.Type).Span)
	}
	valueType := types.NoTypeID
	if let.Value.IsValid() {
		valueType = tc.typeExpr(let.Value)
		tc.checkMovable(let.Value)
		if declared != types.NoTypeID {
			tc.expectAssignable(declared, valueType, let.Value)
		}
	}
	bindType := declared
	if bindType == types.NoTypeID {
		bindType = tc.types.Default(valueType)
	}
	pending := !let.Value.IsValid() && !let.Type.IsValid()
	leaves := make([]symbols.SymbolID, 0, 1)
	tc.bindPattern(&let.Pattern, bindType, pending, id, &leaves)
	tc.result.StmtSymbols[id] = leaves
}

// bindPattern declares every leaf of the pattern with its part of t.
func (tc *typeChecker) bindPattern(pat *ast.Pattern, t types.TypeID, pending bool, stmt ast.StmtID, out *[]symbols.SymbolID) {
	if pat.Kind == ast.PatIdent {
		var flags symbols.SymbolFlags
		if pat.Mut {
			flags |= symbols.SymbolFlagMutable
		}
		if pending {
			flags |= symbols.SymbolFlagPending
		}
		symID, _ := tc.resolver.Declare(symbols.Symbol{
			Name:  pat.Name,
			Kind:  symbols.SymbolLet,
			Span:  pat.Span,
			Flags: flags,
			Type:  t,
			Decl:  symbols.SymbolDecl{SourceFile: pat.Span.File, ASTFile: tc.fileID, Stmt: stmt},
		})
		*out = append(*out, symID)
		return
	}

	elems := make([]types.TypeID, len(pat.Elems))
	if t != types.NoTypeID {
		info, ok := tc.types.TupleInfo(t)
		if ok && len(info.Elems) == len(pat.Elems) {
			copy(elems, info.Elems)
		} else {
			tc.report(diag.SemaInvalidPatternTarget, pat.Span, "mismatched types: expected '%s', found a tuple with %d elements", tc.typeLabel(t), len(pat.Elems))
		}
	}
	for i := range pat.Elems {
		tc.bindPattern(&pat.Elems[i], elems[i], pending, stmt, out)
	}
}

func (tc *typeChecker) walkAssign(id ast.StmtID) {
	as, _ := tc.builder.Stmts.Assign(id)
	valueType := tc.typeExpr(as.Value)
	tc.checkMovable(as.Value)
	if !tc.isPlaceExpr(as.Target) {
		tc.typeExpr(as.Target)
		tc.report(diag.SemaNonAddressable, tc.exprSpan(as.Target), "invalid left-hand side of assignment")
		return
	}

	// первое присваивание `let r;` фиксирует тип
	target := tc.builder.Exprs.Unparen(as.Target)
	if ident, ok := tc.builder.Exprs.Ident(target); ok {
		symID, found := tc.resolver.LookupOne(ident.Name, symbols.SymbolLet.Mask()|symbols.SymbolParam.Mask())
		if sym := tc.result.Symbols.Symbols.Get(symID); found && sym != nil && sym.Flags&symbols.SymbolFlagPending != 0 {
			if valueType != types.NoTypeID {
				sym.Type = tc.types.Default(valueType)
				sym.Flags &^= symbols.SymbolFlagPending
			}
			tc.result.ExprSymbols[target] = symID
			tc.result.ExprTypes[target] = sym.Type
			tc.result.ExprTypes[as.Target] = sym.Type
			return
		}
	}
	targetType := tc.typeExpr(as.Target)
	tc.expectAssignable(targetType, valueType, as.Value)
}

func (tc *typeChecker) walkReturn(id ast.StmtID, stmt *ast.Stmt) {
	ret, _ := tc.builder.Stmts.Return(id)
	want := tc.fn.Result
	if !ret.Value.IsValid() {
		if want != tc.types.Builtins().Unit {
			tc.report(diag.SemaTypeMismatch, stmt.Span, "mismatched types: expected '%s', found '()'", tc.typeLabel(want))
		}
		return
	}
	got := tc.typeExpr(ret.Value)
	tc.checkMovable(ret.Value)
	tc.expectAssignable(want, got, ret.Value)
}
