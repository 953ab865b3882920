package ownership

import (
	"fmt"
	"strings"

	"borrowck/internal/source"
)

// Class is the value classification of a binding.
type Class uint8

const (
	// ClassUnknown defers to the class of the binding being accessed.
	ClassUnknown Class = iota
	Copy
	Owning
)

func (c Class) String() string {
	switch c {
	case Copy:
		return "Copy"
	case Owning:
		return "Owning"
	default:
		return "?"
	}
}

// Mode differentiates shared vs exclusive borrows.
type Mode uint8

const (
	Shared Mode = iota
	Exclusive
)

func (m Mode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// RefKind tells whether a value is a borrow handle.
type RefKind uint8

const (
	RefNone RefKind = iota
	RefShared
	RefExclusive
)

// ScopeKind distinguishes blocks from function bodies.
type ScopeKind uint8

const (
	ScopeBlock ScopeKind = iota
	ScopeFunction
	// ScopeCaller holds values owned outside the current function, e.g. the
	// referents of reference parameters. Its bindings are never released.
	ScopeCaller
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFunction:
		return "fn"
	case ScopeCaller:
		return "caller"
	default:
		return "block"
	}
}

// Deref is the path segment that steps through a reference.
const Deref = "*"

// Elem is the path segment of an array element. All indices share it, so
// borrows of different elements overlap.
const Elem = "[]"

// Place names a binding plus an optional field path: s, user.email, *r, pair.0.
type Place struct {
	Name string
	Path []string
	// Class overrides the binding class for field and deref places.
	Class Class
}

// P builds a place from a binding name and field path.
func P(name string, path ...string) Place {
	return Place{Name: name, Path: path}
}

// D builds the place behind a reference handle: *name.field...
func D(name string, path ...string) Place {
	return Place{Name: name, Path: append([]string{Deref}, path...)}
}

// As sets the class of the accessed value.
func (p Place) As(c Class) Place {
	p.Class = c
	return p
}

// IsZero reports whether the place is empty.
func (p Place) IsZero() bool {
	return p.Name == ""
}

// ThroughRef reports whether the place starts with a dereference.
func (p Place) ThroughRef() bool {
	return len(p.Path) > 0 && p.Path[0] == Deref
}

func (p Place) String() string {
	return formatPath(p.Name, p.Path)
}

func formatPath(name string, path []string) string {
	if len(path) == 0 {
		return name
	}
	var sb strings.Builder
	rest := path
	if path[0] == Deref {
		sb.WriteString("*")
		rest = path[1:]
	}
	sb.WriteString(name)
	for _, seg := range rest {
		switch seg {
		case Deref:
		case Elem:
			sb.WriteString("[..]")
		default:
			sb.WriteString(".")
			sb.WriteString(seg)
		}
	}
	return sb.String()
}

// Target is where an operation stores its result.
type Target struct {
	// Place is empty when the value is consumed (passed to a callee).
	Place Place
	// New creates a fresh binding named Place.Name in the current scope.
	New bool
	Mut bool
}

// Let targets a new immutable binding.
func Let(name string) Target { return Target{Place: P(name), New: true} }

// LetMut targets a new mutable binding.
func LetMut(name string) Target { return Target{Place: P(name), New: true, Mut: true} }

// Into targets an existing place (assignment).
func Into(p Place) Target { return Target{Place: p} }

// Consumed discards the value; ownership leaves the trace.
func Consumed() Target { return Target{} }

// Content is the statically known shape of a sequence value.
type Content struct {
	Known bool
	// IsText marks string contents; Len is then len(Text) in bytes.
	IsText bool
	Text   string
	Len    int
}

// Text describes known string contents.
func Text(s string) Content {
	return Content{Known: true, IsText: true, Text: s, Len: len(s)}
}

// Elems describes an array of known length.
func Elems(n int) Content {
	return Content{Known: true, Len: n}
}

// Value describes a value being bound or stored.
type Value struct {
	Class   Class
	Ref     RefKind
	Content Content
}

// Scalar is a Copy value without content.
func Scalar() Value { return Value{Class: Copy} }

// Owned is an Owning value with unknown contents.
func Owned() Value { return Value{Class: Owning} }

// OwnedText is an owning string buffer with known contents.
func OwnedText(s string) Value { return Value{Class: Owning, Content: Text(s)} }

// StaticText is a string literal: a Copy shared view into static memory.
func StaticText(s string) Value { return Value{Class: Copy, Ref: RefShared, Content: Text(s)} }

// SharedRef is a shared reference returned by a call.
func SharedRef() Value { return Value{Class: Copy, Ref: RefShared} }

// ExclusiveRef is an exclusive reference returned by a call.
func ExclusiveRef() Value { return Value{Class: Owning, Ref: RefExclusive} }

// Range bounds a slice borrow; a missing bound means the sequence edge.
type Range struct {
	Start, End       int
	HasStart, HasEnd bool
}

func (r Range) String() string {
	var sb strings.Builder
	if r.HasStart {
		fmt.Fprintf(&sb, "%d", r.Start)
	}
	sb.WriteString("..")
	if r.HasEnd {
		fmt.Fprintf(&sb, "%d", r.End)
	}
	return sb.String()
}

// EffectKind enumerates mutations performed by OpWrite.
type EffectKind uint8

const (
	// EffectAssign stores Op.Value into the target place.
	EffectAssign EffectKind = iota
	EffectAppend
	EffectClear
	EffectTruncate
	// EffectTouch mutates without a statically known effect on contents.
	EffectTouch
)

// Effect is the mutation applied by OpWrite.
type Effect struct {
	Kind EffectKind
	Text string // EffectAppend
	N    int    // EffectTruncate
	// Opaque marks an argument that is not a compile-time constant.
	Opaque bool
}

// OpKind enumerates trace operations.
type OpKind uint8

const (
	OpEnter OpKind = iota
	OpExit
	// OpBind creates a value; Parts are moved into it and their borrows are carried.
	OpBind
	// OpDeclare creates an uninitialised binding (`let r;`).
	OpDeclare
	OpMove
	OpClone
	OpBorrow
	OpUse
	OpWrite
	OpReturn
)

func (k OpKind) String() string {
	switch k {
	case OpEnter:
		return "enter"
	case OpExit:
		return "exit"
	case OpBind:
		return "bind"
	case OpDeclare:
		return "declare"
	case OpMove:
		return "move"
	case OpClone:
		return "clone"
	case OpBorrow:
		return "borrow"
	case OpUse:
		return "use"
	case OpWrite:
		return "write"
	case OpReturn:
		return "return"
	default:
		return fmt.Sprintf("OpKind(%d)", k)
	}
}

// Op is a single operation of a trace. Only the fields relevant to Kind are set.
type Op struct {
	Kind OpKind
	Span source.Span

	Scope ScopeKind // OpEnter
	Label string    // OpEnter

	From  Place   // OpMove, OpClone, OpBorrow, OpReturn
	To    Target  // OpBind, OpMove, OpClone, OpBorrow
	Value Value   // OpBind, OpClone, OpWrite(EffectAssign)
	Parts []Place // OpBind

	Mode  Mode   // OpBorrow
	Range *Range // OpBorrow
	// Reads lists handles read by the arguments of the expression creating
	// the borrow; they are read before the borrow takes effect.
	Reads []Place

	Args []Place // OpUse

	Target Place  // OpWrite
	Effect Effect // OpWrite

	Name string // OpDeclare
	Mut  bool   // OpDeclare
}

func (op *Op) String() string {
	switch op.Kind {
	case OpEnter:
		return fmt.Sprintf("enter %s %s", op.Scope, op.Label)
	case OpExit:
		return "exit"
	case OpBind:
		parts := make([]string, len(op.Parts))
		for i, p := range op.Parts {
			parts[i] = p.String()
		}
		return fmt.Sprintf("bind %s = %s(%s)", targetString(op.To), op.Value.Class, strings.Join(parts, ", "))
	case OpDeclare:
		if op.Mut {
			return "declare mut " + op.Name
		}
		return "declare " + op.Name
	case OpMove:
		return fmt.Sprintf("move %s -> %s", op.From, targetString(op.To))
	case OpClone:
		return fmt.Sprintf("clone %s -> %s", op.From, targetString(op.To))
	case OpBorrow:
		s := fmt.Sprintf("borrow %s %s -> %s", op.Mode, op.From, targetString(op.To))
		if op.Range != nil {
			s += " [" + op.Range.String() + "]"
		}
		return s
	case OpUse:
		args := make([]string, len(op.Args))
		for i, p := range op.Args {
			args[i] = p.String()
		}
		return "use " + strings.Join(args, ", ")
	case OpWrite:
		return "write " + op.Target.String()
	case OpReturn:
		if op.From.IsZero() {
			return "return"
		}
		return "return " + op.From.String()
	default:
		return op.Kind.String()
	}
}

func targetString(t Target) string {
	switch {
	case t.Place.IsZero():
		return "_"
	case t.New && t.Mut:
		return "let mut " + t.Place.String()
	case t.New:
		return "let " + t.Place.String()
	default:
		return t.Place.String()
	}
}

// Trace is the program-ordered list of operations of one function.
type Trace struct {
	Name string
	Ops  []Op
}

// NewTrace creates an empty trace.
func NewTrace(name string) *Trace {
	return &Trace{Name: name, Ops: make([]Op, 0, 32)}
}

// Len returns the number of operations.
func (t *Trace) Len() int {
	return len(t.Ops)
}

// Push appends op and returns a pointer to it; the pointer is valid until
// the next append.
func (t *Trace) Push(op Op) *Op {
	t.Ops = append(t.Ops, op)
	return &t.Ops[len(t.Ops)-1]
}

func (t *Trace) Enter(kind ScopeKind, label string, sp source.Span) *Op {
	return t.Push(Op{Kind: OpEnter, Scope: kind, Label: label, Span: sp})
}

func (t *Trace) Exit(sp source.Span) *Op {
	return t.Push(Op{Kind: OpExit, Span: sp})
}

// Bind stores a fresh value into to; parts are moved into the new value.
func (t *Trace) Bind(to Target, v Value, sp source.Span, parts ...Place) *Op {
	return t.Push(Op{Kind: OpBind, To: to, Value: v, Parts: parts, Span: sp})
}

func (t *Trace) Declare(name string, mut bool, sp source.Span) *Op {
	return t.Push(Op{Kind: OpDeclare, Name: name, Mut: mut, Span: sp})
}

func (t *Trace) Move(from Place, to Target, sp source.Span) *Op {
	return t.Push(Op{Kind: OpMove, From: from, To: to, Span: sp})
}

// Clone copies the contents of from into a fresh value of class v.Class.
func (t *Trace) Clone(from Place, to Target, v Value, sp source.Span) *Op {
	return t.Push(Op{Kind: OpClone, From: from, To: to, Value: v, Span: sp})
}

func (t *Trace) Borrow(from Place, mode Mode, to Target, sp source.Span) *Op {
	return t.Push(Op{Kind: OpBorrow, From: from, Mode: mode, To: to, Span: sp})
}

// WithRange turns a borrow into a slice borrow.
func (op *Op) WithRange(r Range) *Op {
	op.Range = &r
	return op
}

// WithReads records handles read by the borrow-creating expression.
func (op *Op) WithReads(reads ...Place) *Op {
	op.Reads = append(op.Reads, reads...)
	return op
}

func (t *Trace) Use(sp source.Span, args ...Place) *Op {
	return t.Push(Op{Kind: OpUse, Args: args, Span: sp})
}

func (t *Trace) Write(target Place, eff Effect, sp source.Span) *Op {
	return t.Push(Op{Kind: OpWrite, Target: target, Effect: eff, Span: sp})
}

// Assign stores v into an existing place.
func (t *Trace) Assign(target Place, v Value, sp source.Span) *Op {
	return t.Push(Op{Kind: OpWrite, Target: target, Effect: Effect{Kind: EffectAssign}, Value: v, Span: sp})
}

// Return moves from out of the function; a zero place returns unit.
func (t *Trace) Return(from Place, sp source.Span) *Op {
	return t.Push(Op{Kind: OpReturn, From: from, Span: sp})
}

// Format renders the trace one operation per line.
func (t *Trace) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "trace %s\n", t.Name)
	depth := 1
	for i := range t.Ops {
		op := &t.Ops[i]
		if op.Kind == OpExit && depth > 1 {
			depth--
		}
		fmt.Fprintf(&sb, "%4d %s%s\n", i, strings.Repeat("  ", depth), op.String())
		if op.Kind == OpEnter {
			depth++
		}
	}
	return sb.String()
}
