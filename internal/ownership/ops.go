package ownership

import (
	"slices"

	"borrowck/internal/source"
)

func (c *checker) opExit(op *Op) {
	sc := c.current()
	if sc == nil {
		c.reject(c.newViolation(InvalidOperation, op.Span, "scope exit without a matching enter"))
		return
	}
	sc.End = len(c.bindings)
	for i := len(c.bindings) - 1; i >= sc.Start; i-- {
		b := &c.bindings[i]
		if b.Scope != sc.ID || b.State == StateDead {
			continue
		}
		if sc.Kind != ScopeCaller {
			c.release(b, op.Span, "scope end")
		}
		b.State = StateDead
	}
	for i := 1; i < len(c.borrows); i++ {
		br := &c.borrows[i]
		if br.Dropped || (len(br.Path) > 0 && br.Path[0] == Deref) {
			continue
		}
		if src := c.binding(br.Binding); src != nil && src.Scope == sc.ID {
			br.Dropped = true
			br.DroppedAt = op.Span
		}
	}
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *checker) opBind(op *Op) {
	val := value{Class: op.Value.Class, Ref: op.Value.Ref, Content: op.Value.Content}
	if val.Class == ClassUnknown {
		val.Class = Owning
	}
	for _, p := range op.Parts {
		b := c.resolve(p, op.Span)
		if b == nil {
			return
		}
		part, ok := c.take(b, p, op.Span)
		if !ok {
			return
		}
		for _, id := range part.Loans {
			if !slices.Contains(val.Loans, id) {
				val.Loans = append(val.Loans, id)
			}
		}
	}
	if val.Class == Owning && val.Ref == RefNone {
		val.Resource = c.newResource()
	}
	c.store(op.To, val, op.Span)
}

func (c *checker) opMove(op *Op) {
	b := c.resolve(op.From, op.Span)
	if b == nil {
		return
	}
	val, ok := c.take(b, op.From, op.Span)
	if !ok {
		return
	}
	c.store(op.To, val, op.Span)
}

// take moves or copies the value at p out of b.
func (c *checker) take(b *Binding, p Place, sp source.Span) (value, bool) {
	class := p.Class
	if class == ClassUnknown || len(p.Path) == 0 {
		class = b.val.Class
	}
	name := formatPath(b.Name, p.Path)
	if class != Owning {
		if !c.checkRead(b, p.Path, sp) {
			return value{}, false
		}
		c.touch(b)
		c.event(EvCopy, name, sp, "")
		val := b.val.clone()
		val.Class = Copy
		val.Resource = NoResourceID
		if len(p.Path) > 0 {
			val.View, val.Content = nil, Content{}
		}
		return val, true
	}
	if p.ThroughRef() {
		v := c.newViolation(InvalidOperation, sp, "cannot move out of '%s' which is behind a reference", name)
		return value{}, c.reject(v.note(b.Decl, "'%s' is a reference", b.Name))
	}
	if !c.checkValid(b, p.Path, sp) {
		return value{}, false
	}
	if br := c.conflict(b.ID, p.Path, true, nil, nil); br != nil {
		v := c.newViolation(AliasConflict, sp, "cannot move out of '%s' because it is borrowed", name)
		return value{}, c.reject(c.borrowNotes(v, br))
	}
	c.touch(b)
	c.event(EvMove, name, sp, "")
	if len(p.Path) == 0 {
		val := b.val.clone()
		b.State = StateMoved
		b.MovedAt = sp
		b.val.Resource = NoResourceID
		return val, true
	}
	b.moved = append(b.moved, movedPath{Path: slices.Clone(p.Path), Span: sp})
	return value{Class: Owning, Resource: c.newResource()}, true
}

func (c *checker) opClone(op *Op) {
	b := c.resolve(op.From, op.Span)
	if b == nil {
		return
	}
	if !c.checkRead(b, op.From.Path, op.Span) {
		return
	}
	c.touch(b)
	val := value{Class: op.Value.Class, Ref: op.Value.Ref, Content: c.contentOf(b, op.From.Path)}
	if val.Class == ClassUnknown {
		val.Class = Owning
	}
	if val.Class == Owning && val.Ref == RefNone {
		val.Resource = c.newResource()
	}
	c.event(EvCopy, op.From.String(), op.Span, "clone")
	c.store(op.To, val, op.Span)
}

func (c *checker) opBorrow(op *Op) {
	var exempt []BorrowID
	for _, r := range op.Reads {
		rb := c.resolve(r, op.Span)
		if rb == nil {
			return
		}
		if !c.checkRead(rb, r.Path, op.Span) {
			return
		}
		c.touch(rb)
		exempt = append(exempt, rb.val.Loans...)
	}

	b := c.resolve(op.From, op.Span)
	if b == nil {
		return
	}
	path := op.From.Path
	name := formatPath(b.Name, path)
	if !c.checkValid(b, path, op.Span) {
		return
	}

	root := b.ID
	var parents []BorrowID
	if op.From.ThroughRef() {
		if b.val.Ref == RefNone {
			c.reject(c.newViolation(InvalidOperation, op.Span, "'%s' is not a reference and cannot be dereferenced", b.Name))
			return
		}
		parents = slices.Clone(b.val.Loans)
		root = NoBindingID
		if b.val.View != nil {
			root = b.val.View.Root
		}
	}
	if op.Mode == Exclusive && !c.checkMutable(b, path, op.Span) {
		return
	}
	if br := c.conflict(b.ID, path, op.Mode == Exclusive, exempt, parents); br != nil {
		var v *Violation
		switch {
		case op.Mode == Exclusive && br.Mode == Exclusive:
			v = c.newViolation(AliasConflict, op.Span, "cannot borrow '%s' as mutable more than once at a time", name)
		case op.Mode == Exclusive:
			v = c.newViolation(AliasConflict, op.Span, "cannot borrow '%s' as mutable because it is also borrowed as immutable", name)
		default:
			v = c.newViolation(AliasConflict, op.Span, "cannot borrow '%s' as immutable because it is also borrowed as mutable", name)
		}
		c.reject(c.borrowNotes(v, br))
		return
	}
	c.touch(b)

	handle := value{Class: Copy, Ref: RefShared}
	if op.Mode == Exclusive {
		handle = value{Class: Owning, Ref: RefExclusive}
	}
	if !c.borrowView(b, op, root, &handle) {
		return
	}

	br := c.newBorrow(Borrow{
		Mode:    op.Mode,
		Binding: b.ID,
		Path:    slices.Clone(path),
		Root:    root,
		Parents: parents,
		Op:      c.op,
		Span:    op.Span,
		Label:   name,
	})
	if !c.enforce {
		c.lastUse = append(c.lastUse, c.op)
	}
	if c.enforce {
		c.events = append(c.events, Event{Kind: EvBorrowStart, Op: c.op, Borrow: br.ID, Mode: br.Mode, Place: name, Span: op.Span})
	}
	handle.Loans = append([]BorrowID{br.ID}, parents...)
	c.store(op.To, handle, op.Span)
}

func (c *checker) opUse(op *Op) {
	for _, p := range op.Args {
		b := c.resolve(p, op.Span)
		if b == nil {
			return
		}
		if !c.checkRead(b, p.Path, op.Span) {
			return
		}
		c.touch(b)
	}
}

func (c *checker) opWrite(op *Op) {
	if op.Effect.Kind == EffectAssign {
		val := value{Class: op.Value.Class, Ref: op.Value.Ref, Content: op.Value.Content}
		if val.Class == ClassUnknown {
			val.Class = Owning
		}
		if val.Class == Owning && val.Ref == RefNone {
			val.Resource = c.newResource()
		}
		c.assign(op.Target, val, op.Span)
		return
	}
	b := c.resolve(op.Target, op.Span)
	if b == nil {
		return
	}
	path := op.Target.Path
	name := formatPath(b.Name, path)
	if !c.checkValid(b, path, op.Span) || !c.checkMutable(b, path, op.Span) {
		return
	}
	if br := c.conflict(b.ID, path, true, nil, nil); br != nil {
		v := c.newViolation(AliasConflict, op.Span, "cannot borrow '%s' as mutable because it is also borrowed as %s", name, modeAdj(br.Mode))
		c.reject(c.borrowNotes(v, br))
		return
	}
	c.touch(b)

	var target *Binding
	switch {
	case len(path) == 0:
		target = b
	case len(path) == 1 && op.Target.ThroughRef():
		target = c.viewRoot(b)
	}
	if target != nil && !c.applyEffect(target, op.Effect, op.Span) {
		return
	}
	c.event(EvWrite, name, op.Span, effectNote(op.Effect))
}

// assign stores val into an existing place.
func (c *checker) assign(p Place, val value, sp source.Span) bool {
	b := c.resolve(p, sp)
	if b == nil {
		return false
	}
	path := p.Path
	name := formatPath(b.Name, path)
	if p.ThroughRef() {
		if !c.checkValid(b, nil, sp) {
			return false
		}
		if b.val.Ref != RefExclusive {
			v := c.newViolation(NotMutable, sp, "cannot assign to '%s', which is behind a '&' reference", name)
			return c.reject(v.note(b.Decl, "consider declaring '%s' as '&mut'", b.Name))
		}
	} else {
		switch {
		case len(path) == 0 && b.State == StateUninit:
			// первое присваивание объявленной привязки
		case len(path) == 0 && !b.Mut:
			v := c.newViolation(NotMutable, sp, "cannot assign twice to immutable variable '%s'", b.Name)
			return c.reject(v.note(b.Decl, "first assignment to '%s'", b.Name))
		case len(path) > 0 && !b.Mut:
			v := c.newViolation(NotMutable, sp, "cannot assign to '%s', as '%s' is not declared as mutable", name, b.Name)
			return c.reject(v.note(b.Decl, "consider changing this to 'mut %s'", b.Name))
		case len(path) > 0 && b.State == StateUninit:
			v := c.newViolation(Uninitialized, sp, "partially assigned binding '%s' isn't fully initialized", b.Name)
			return c.reject(v.note(b.Decl, "binding declared here"))
		case len(path) > 0 && b.State == StateMoved:
			v := c.newViolation(UseAfterMove, sp, "assign to part of moved value '%s'", b.Name)
			return c.reject(v.note(b.MovedAt, "value moved here"))
		}
	}
	if br := c.conflict(b.ID, path, true, nil, nil); br != nil {
		v := c.newViolation(AliasConflict, sp, "cannot assign to '%s' because it is borrowed", name)
		return c.reject(c.borrowNotes(v, br))
	}
	c.touch(b)

	switch {
	case p.ThroughRef():
		if root := c.viewRoot(b); root != nil && len(path) == 1 {
			c.release(root, sp, "overwritten")
			root.val.Resource = val.Resource
			root.val.Content = val.Content
		}
	case len(path) == 0:
		c.release(b, sp, "overwritten")
		b.val = val
		b.State = StateValid
		b.moved = nil
	default:
		b.moved = slices.DeleteFunc(b.moved, func(m movedPath) bool {
			return hasPrefix(m.Path, path)
		})
	}
	c.event(EvWrite, name, sp, "assign")
	return true
}

// store places val into the target of an operation.
func (c *checker) store(to Target, val value, sp source.Span) bool {
	switch {
	case to.Place.IsZero():
		if val.Class == Owning && val.Resource.IsValid() {
			c.event(EvMove, "_", sp, "consumed")
		}
		return true
	case to.New:
		b := c.newBinding(to.Place.Name, to.Mut, sp)
		b.val = val
		b.State = StateValid
		return true
	default:
		return c.assign(to.Place, val, sp)
	}
}

func (c *checker) opReturn(op *Op) {
	if op.From.IsZero() {
		return
	}
	b := c.resolve(op.From, op.Span)
	if b == nil {
		return
	}
	val, ok := c.take(b, op.From, op.Span)
	if !ok {
		return
	}
	fnDepth := c.functionDepth()
	for _, id := range val.Loans {
		br := c.borrow(id)
		if br == nil || (len(br.Path) > 0 && br.Path[0] == Deref) {
			continue
		}
		if c.scopeDepth(br.Binding) < fnDepth {
			continue
		}
		src := c.binding(br.Binding)
		var v *Violation
		if len(br.Path) == 0 {
			v = c.newViolation(DanglingReference, op.Span, "cannot return reference to local variable '%s'", src.Name)
		} else {
			v = c.newViolation(DanglingReference, op.Span, "cannot return value referencing local variable '%s'", src.Name)
		}
		v.note(br.Span, "'%s' is borrowed here", br.Label)
		v.note(src.Decl, "'%s' is dropped when the function returns", src.Name)
		c.reject(v)
		return
	}
}
