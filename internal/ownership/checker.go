package ownership

import (
	"fmt"
	"slices"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

// Options configure a Check run.
type Options struct {
	// Reporter receives the violation as a diagnostic when set.
	Reporter diag.Reporter
}

// Result stores the verdict and the evaluator state at the point it stopped.
type Result struct {
	Trace     *Trace
	Violation *Violation
	Bindings  []Binding
	Borrows   []Borrow
	Scopes    []Scope
	Events    []Event
	Releases  []Release
}

// OK reports whether the trace satisfied every rule.
func (r *Result) OK() bool {
	return r.Violation == nil
}

// Check evaluates the trace and stops at the first violation.
func Check(tr *Trace, opts Options) Result {
	if tr == nil {
		return Result{}
	}
	resolve := newChecker(tr, nil)
	resolve.run()

	enforce := newChecker(tr, resolve.lastUse)
	enforce.run()

	res := enforce.result()
	if res.Violation != nil && opts.Reporter != nil {
		res.Violation.Emit(opts.Reporter)
	}
	return res
}

type checker struct {
	*arena
	trace   *Trace
	enforce bool
	// lastUse is indexed by BorrowID; the resolution pass fills it.
	lastUse []int
	op      int

	events    []Event
	releases  []Release
	violation *Violation
}

func newChecker(tr *Trace, lastUse []int) *checker {
	c := &checker{
		arena:   newArena(),
		trace:   tr,
		enforce: lastUse != nil,
		lastUse: lastUse,
	}
	if !c.enforce {
		c.lastUse = []int{-1}
	}
	return c
}

func (c *checker) run() {
	for i := range c.trace.Ops {
		c.op = i
		op := &c.trace.Ops[i]
		switch op.Kind {
		case OpEnter:
			c.pushScope(op.Scope, op.Label, op.Span)
		case OpExit:
			c.opExit(op)
		case OpBind:
			c.opBind(op)
		case OpDeclare:
			b := c.newBinding(op.Name, op.Mut, op.Span)
			b.State = StateUninit
		case OpMove:
			c.opMove(op)
		case OpClone:
			c.opClone(op)
		case OpBorrow:
			c.opBorrow(op)
		case OpUse:
			c.opUse(op)
		case OpWrite:
			c.opWrite(op)
		case OpReturn:
			c.opReturn(op)
		default:
			c.reject(c.newViolation(InvalidOperation, op.Span, "unknown trace operation %s", op.Kind))
		}
		if c.violation != nil {
			return
		}
		c.endBorrows(i)
	}
}

func (c *checker) result() Result {
	res := Result{
		Trace:     c.trace,
		Violation: c.violation,
		Bindings:  slices.Clone(c.bindings[1:]),
		Borrows:   slices.Clone(c.borrows[1:]),
		Scopes:    slices.Clone(c.scopes[1:]),
		Events:    c.events,
		Releases:  c.releases,
	}
	for i := range res.Borrows {
		res.Borrows[i].LastUse = c.last(res.Borrows[i].ID)
	}
	return res
}

func (c *checker) newViolation(kind ViolationKind, sp source.Span, format string, args ...any) *Violation {
	return &Violation{Kind: kind, Op: c.op, Span: sp, Message: fmt.Sprintf(format, args...)}
}

// reject records v; it returns false when evaluation has to stop.
// The resolution pass ignores violations.
func (c *checker) reject(v *Violation) bool {
	if !c.enforce {
		return true
	}
	if c.violation == nil {
		c.violation = v
	}
	return false
}

func (c *checker) event(kind EventKind, place string, sp source.Span, note string) {
	if !c.enforce {
		return
	}
	c.events = append(c.events, Event{Kind: kind, Op: c.op, Place: place, Span: sp, Note: note})
}

func (c *checker) endBorrows(i int) {
	if !c.enforce {
		return
	}
	for id := 1; id < len(c.borrows); id++ {
		br := &c.borrows[id]
		if c.last(br.ID) == i {
			c.events = append(c.events, Event{Kind: EvBorrowEnd, Op: i, Borrow: br.ID, Mode: br.Mode, Place: br.Label, Span: br.Span})
		}
	}
}

func (c *checker) last(id BorrowID) int {
	if int(id) < len(c.lastUse) {
		return c.lastUse[id]
	}
	if br := c.borrow(id); br != nil {
		return br.Op
	}
	return -1
}

// touch marks every borrow carried by b as used at the current operation.
func (c *checker) touch(b *Binding) {
	if c.enforce || b == nil {
		return
	}
	for _, id := range b.val.Loans {
		if int(id) < len(c.lastUse) && c.lastUse[id] < c.op {
			c.lastUse[id] = c.op
		}
	}
}

// live reports whether the borrow is in effect at the current operation.
// A shared borrow whose final read is one of the exempt reads has already ended.
func (c *checker) live(br *Borrow, exempt []BorrowID) bool {
	if br.Op >= c.op || br.Dropped {
		return false
	}
	lu := c.last(br.ID)
	switch {
	case lu > c.op:
		return true
	case lu == c.op:
		return br.Mode == Exclusive || !slices.Contains(exempt, br.ID)
	default:
		return false
	}
}

// conflict finds a live borrow of an overlapping place; shared borrows are
// considered only when anyMode is set. Borrows listed in skip are ancestors
// of the access and never conflict with it.
func (c *checker) conflict(id BindingID, path []string, anyMode bool, exempt, skip []BorrowID) *Borrow {
	for i := 1; i < len(c.borrows); i++ {
		br := &c.borrows[i]
		if br.Binding != id || !overlaps(br.Path, path) {
			continue
		}
		if !anyMode && br.Mode != Exclusive {
			continue
		}
		if slices.Contains(skip, br.ID) || !c.live(br, exempt) {
			continue
		}
		return br
	}
	return nil
}

func (c *checker) borrowNotes(v *Violation, br *Borrow) *Violation {
	v.note(br.Span, "%s borrow of '%s' occurs here", modeAdj(br.Mode), br.Label)
	if lu := c.last(br.ID); lu >= c.op && lu < len(c.trace.Ops) {
		v.note(c.trace.Ops[lu].Span, "%s borrow later used here", modeAdj(br.Mode))
	}
	return v
}

func modeAdj(m Mode) string {
	if m == Exclusive {
		return "mutable"
	}
	return "immutable"
}

// resolve finds the binding a place refers to.
func (c *checker) resolve(p Place, sp source.Span) *Binding {
	if b := c.lookup(p.Name); b != nil {
		return b
	}
	c.reject(c.newViolation(InvalidOperation, sp, "cannot find binding '%s' in this scope", p.Name))
	return nil
}

// checkValid rejects uninitialised, moved and dangling accesses.
func (c *checker) checkValid(b *Binding, path []string, sp source.Span) bool {
	switch b.State {
	case StateUninit:
		v := c.newViolation(Uninitialized, sp, "used binding '%s' isn't initialized", b.Name)
		return c.reject(v.note(b.Decl, "binding '%s' declared here but left uninitialized", b.Name))
	case StateMoved:
		v := c.newViolation(UseAfterMove, sp, "use of moved value '%s'", b.Name)
		return c.reject(v.note(b.MovedAt, "value moved here"))
	}
	for _, m := range b.moved {
		if !overlaps(m.Path, path) {
			continue
		}
		var v *Violation
		if len(path) < len(m.Path) {
			v = c.newViolation(UseAfterMove, sp, "use of partially moved value '%s'", formatPath(b.Name, path))
		} else {
			v = c.newViolation(UseAfterMove, sp, "use of moved value '%s'", formatPath(b.Name, path))
		}
		return c.reject(v.note(m.Span, "value '%s' moved here", formatPath(b.Name, m.Path)))
	}
	for _, id := range b.val.Loans {
		br := c.borrow(id)
		if br == nil || !br.Dropped {
			continue
		}
		src := "?"
		if sb := c.binding(br.Binding); sb != nil {
			src = sb.Name
		}
		v := c.newViolation(DanglingReference, sp, "'%s' does not live long enough", src)
		v.note(br.Span, "borrow of '%s' occurs here", br.Label)
		v.note(br.DroppedAt, "'%s' dropped here while still borrowed", src)
		return c.reject(v)
	}
	return true
}

// checkRead validates a read of b.path and rejects it while the place is
// exclusively borrowed.
func (c *checker) checkRead(b *Binding, path []string, sp source.Span) bool {
	if !c.checkValid(b, path, sp) {
		return false
	}
	if br := c.conflict(b.ID, path, false, nil, nil); br != nil {
		v := c.newViolation(AliasConflict, sp, "cannot use '%s' because it was mutably borrowed", formatPath(b.Name, path))
		return c.reject(c.borrowNotes(v, br))
	}
	return true
}

// checkMutable validates that b.path may be mutated in place.
func (c *checker) checkMutable(b *Binding, path []string, sp source.Span) bool {
	name := formatPath(b.Name, path)
	if len(path) > 0 && path[0] == Deref {
		if b.val.Ref != RefExclusive {
			v := c.newViolation(NotMutable, sp, "cannot borrow '%s' as mutable, as it is behind a '&' reference", name)
			return c.reject(v.note(b.Decl, "consider declaring '%s' as '&mut'", b.Name))
		}
		return true
	}
	if !b.Mut {
		v := c.newViolation(NotMutable, sp, "cannot borrow '%s' as mutable, as it is not declared as mutable", name)
		return c.reject(v.note(b.Decl, "consider changing this to 'mut %s'", b.Name))
	}
	return true
}

// viewRoot returns the owning binding a handle views in full.
func (c *checker) viewRoot(b *Binding) *Binding {
	if b.val.View == nil || !b.val.View.Whole {
		return nil
	}
	return c.binding(b.val.View.Root)
}

func (c *checker) release(b *Binding, sp source.Span, note string) {
	if b.val.Class != Owning || !b.val.Resource.IsValid() {
		return
	}
	if b.State != StateValid {
		return
	}
	c.releases = append(c.releases, Release{Binding: b.ID, Resource: b.val.Resource, Op: c.op})
	c.event(EvDrop, b.Name, sp, note)
	b.val.Resource = NoResourceID
}
