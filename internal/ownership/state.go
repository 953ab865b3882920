package ownership

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"borrowck/internal/source"
)

// BindingState is the lifecycle state of a binding.
type BindingState uint8

const (
	StateUninit BindingState = iota
	StateValid
	StateMoved
	// StateDead - binding's scope has ended.
	StateDead
)

func (s BindingState) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateValid:
		return "valid"
	case StateMoved:
		return "moved"
	case StateDead:
		return "dead"
	default:
		return fmt.Sprintf("BindingState(%d)", s)
	}
}

// view points a handle at a range of its root binding's contents.
type view struct {
	Root       BindingID
	Start, End int
	Whole      bool
}

// value is the runtime-free description of what a binding holds.
type value struct {
	Class    Class
	Ref      RefKind
	Loans    []BorrowID
	Resource ResourceID
	Content  Content
	View     *view
}

func (v value) clone() value {
	v.Loans = slices.Clone(v.Loans)
	if v.View != nil {
		cp := *v.View
		v.View = &cp
	}
	return v
}

type movedPath struct {
	Path []string
	Span source.Span
}

// Binding is an arena entry created by OpBind, OpDeclare or a new Target.
type Binding struct {
	ID    BindingID
	Name  string
	Scope ScopeID
	Mut   bool
	State BindingState
	Decl  source.Span
	// MovedAt is set when the whole value was moved out.
	MovedAt source.Span

	val   value
	moved []movedPath
}

// Class returns the current value classification.
func (b *Binding) Class() Class {
	return b.val.Class
}

// Loans returns the borrows carried by the binding's value.
func (b *Binding) Loans() []BorrowID {
	return b.val.Loans
}

// Resource returns the resource owned by the binding, if any.
func (b *Binding) Resource() ResourceID {
	return b.val.Resource
}

// Borrow records a borrow and the place it refers to.
type Borrow struct {
	ID      BorrowID
	Mode    Mode
	Binding BindingID
	Path    []string
	// Root is the owning binding at the end of a reborrow chain.
	Root BindingID
	// Parents are the borrows of the handle a reborrow went through.
	Parents []BorrowID
	Op      int
	LastUse int
	Span    source.Span
	Label   string

	Dropped   bool
	DroppedAt source.Span
}

// Scope is a lexical region; bindings created inside it occupy the arena
// range [Start, End). Inner scopes' entries inside that range are skipped
// on exit because their Scope differs.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Label  string
	Parent ScopeID
	Depth  int
	Start  int
	End    int
	Span   source.Span
}

// arena stores bindings, borrows and scopes; index 0 is a sentinel in each.
type arena struct {
	bindings []Binding
	borrows  []Borrow
	scopes   []Scope
	stack    []ScopeID
	nextRes  ResourceID
}

func newArena() *arena {
	return &arena{
		bindings: []Binding{{}},
		borrows:  []Borrow{{}},
		scopes:   []Scope{{}},
		stack:    make([]ScopeID, 0, 8),
	}
}

func (a *arena) binding(id BindingID) *Binding {
	if id == NoBindingID || int(id) >= len(a.bindings) {
		return nil
	}
	return &a.bindings[id]
}

func (a *arena) borrow(id BorrowID) *Borrow {
	if id == NoBorrowID || int(id) >= len(a.borrows) {
		return nil
	}
	return &a.borrows[id]
}

func (a *arena) scope(id ScopeID) *Scope {
	if id == NoScopeID || int(id) >= len(a.scopes) {
		return nil
	}
	return &a.scopes[id]
}

func (a *arena) current() *Scope {
	if len(a.stack) == 0 {
		return nil
	}
	return a.scope(a.stack[len(a.stack)-1])
}

func (a *arena) pushScope(kind ScopeKind, label string, sp source.Span) ScopeID {
	n, err := safecast.Conv[uint32](len(a.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(n)
	parent := NoScopeID
	if cur := a.current(); cur != nil {
		parent = cur.ID
	}
	a.scopes = append(a.scopes, Scope{
		ID:     id,
		Kind:   kind,
		Label:  label,
		Parent: parent,
		Depth:  len(a.stack),
		Start:  len(a.bindings),
		End:    -1,
		Span:   sp,
	})
	a.stack = append(a.stack, id)
	return id
}

func (a *arena) newBinding(name string, mut bool, sp source.Span) *Binding {
	n, err := safecast.Conv[uint32](len(a.bindings))
	if err != nil {
		panic(fmt.Errorf("binding arena overflow: %w", err))
	}
	scope := NoScopeID
	if cur := a.current(); cur != nil {
		scope = cur.ID
	}
	a.bindings = append(a.bindings, Binding{
		ID:    BindingID(n),
		Name:  name,
		Scope: scope,
		Mut:   mut,
		Decl:  sp,
	})
	return &a.bindings[n]
}

func (a *arena) newBorrow(b Borrow) *Borrow {
	n, err := safecast.Conv[uint32](len(a.borrows))
	if err != nil {
		panic(fmt.Errorf("borrow arena overflow: %w", err))
	}
	b.ID = BorrowID(n)
	a.borrows = append(a.borrows, b)
	return &a.borrows[n]
}

func (a *arena) newResource() ResourceID {
	a.nextRes++
	return a.nextRes
}

// lookup resolves a name to the most recent binding that is still in scope.
func (a *arena) lookup(name string) *Binding {
	for i := len(a.bindings) - 1; i > 0; i-- {
		b := &a.bindings[i]
		if b.State != StateDead && b.Name == name {
			return b
		}
	}
	return nil
}

// scopeDepth returns the depth of the scope owning the binding.
func (a *arena) scopeDepth(id BindingID) int {
	b := a.binding(id)
	if b == nil {
		return -1
	}
	if sc := a.scope(b.Scope); sc != nil {
		return sc.Depth
	}
	return -1
}

// functionDepth returns the depth of the innermost function scope.
func (a *arena) functionDepth() int {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if sc := a.scope(a.stack[i]); sc != nil && sc.Kind == ScopeFunction {
			return sc.Depth
		}
	}
	return 0
}

// overlaps reports whether one path is a prefix of the other.
func overlaps(a, b []string) bool {
	n := min(len(a), len(b))
	return slices.Equal(a[:n], b[:n])
}

func hasPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}
