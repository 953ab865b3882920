package ast

import (
	"borrowck/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtExpr
	StmtAssign
	StmtUse
	StmtReturn
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

type PatternKind uint8

const (
	PatIdent PatternKind = iota
	PatTuple
)

// Pattern is the left side of a let: `x`, `mut x`, `(a, mut b)`.
type Pattern struct {
	Kind  PatternKind
	Name  string
	Mut   bool
	Span  source.Span
	Elems []Pattern
}

type LetStmt struct {
	Pattern Pattern
	Type    TypeID // NoTypeID если аннотации нет
	Value   ExprID // NoExprID для `let r;`
}

type ExprStmt struct {
	Expr ExprID
}

type AssignStmt struct {
	Target ExprID
	Value  ExprID
}

// UseStmt marks reads of its operands: `use s1, r2;`.
type UseStmt struct {
	Exprs []ExprID
}

type ReturnStmt struct {
	Value ExprID // NoExprID для `return;`
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Lets    *Arena[LetStmt]
	Exprs   *Arena[ExprStmt]
	Assigns *Arena[AssignStmt]
	Uses    *Arena[UseStmt]
	Returns *Arena[ReturnStmt]
}

// NewStmts creates per-kind statement arenas; capHint 0 means 1<<8.
func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint),
		Lets:    NewArena[LetStmt](capHint),
		Exprs:   NewArena[ExprStmt](capHint),
		Assigns: NewArena[AssignStmt](capHint),
		Uses:    NewArena[UseStmt](capHint),
		Returns: NewArena[ReturnStmt](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockStmt{Stmts: append([]StmtID(nil), stmts...)}))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewLet(span source.Span, pat Pattern, typ TypeID, value ExprID) StmtID {
	return s.new(StmtLet, span, s.Lets.Allocate(LetStmt{Pattern: pat, Type: typ, Value: value}))
}

func (s *Stmts) Let(id StmtID) (*LetStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtLet {
		return nil, false
	}
	return s.Lets.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Target: target, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtAssign {
		return nil, false
	}
	return s.Assigns.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewUse(span source.Span, exprs []ExprID) StmtID {
	return s.new(StmtUse, span, s.Uses.Allocate(UseStmt{Exprs: append([]ExprID(nil), exprs...)}))
}

func (s *Stmts) Use(id StmtID) (*UseStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtUse {
		return nil, false
	}
	return s.Uses.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(st.Payload)), true
}
