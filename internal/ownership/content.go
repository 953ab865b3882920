package ownership

import (
	"fmt"
	"unicode/utf8"

	"borrowck/internal/source"
)

// contentOf returns the statically known contents visible through b.path.
func (c *checker) contentOf(b *Binding, path []string) Content {
	switch {
	case len(path) == 0 && b.val.Ref == RefNone:
		return b.val.Content
	case len(path) == 0 || (len(path) == 1 && path[0] == Deref):
		return c.handleContent(b, 0)
	default:
		return Content{}
	}
}

func (c *checker) handleContent(b *Binding, depth int) Content {
	if depth > 16 {
		return Content{}
	}
	vw := b.val.View
	if vw == nil {
		return b.val.Content
	}
	root := c.binding(vw.Root)
	if root == nil {
		return Content{}
	}
	var base Content
	if root.val.Ref == RefNone {
		base = root.val.Content
	} else {
		base = c.handleContent(root, depth+1)
	}
	if !base.Known || vw.Whole {
		return base
	}
	if vw.Start < 0 || vw.End > base.Len || vw.Start > vw.End {
		return Content{}
	}
	if base.IsText {
		return Text(base.Text[vw.Start:vw.End])
	}
	return Elems(vw.End - vw.Start)
}

// borrowView validates a slice range and points the new handle at its root.
func (c *checker) borrowView(b *Binding, op *Op, root BindingID, handle *value) bool {
	content := c.contentOf(b, op.From.Path)
	offset := 0
	if op.From.ThroughRef() && b.val.View != nil && !b.val.View.Whole {
		offset = b.val.View.Start
	}
	simple := len(op.From.Path) == 0 || (len(op.From.Path) == 1 && op.From.ThroughRef())

	if op.Range == nil {
		switch {
		case !simple:
		case root.IsValid() && !op.From.ThroughRef():
			handle.View = &view{Root: root, Whole: true}
		case op.From.ThroughRef() && b.val.View != nil:
			cp := *b.val.View
			handle.View = &cp
		default:
			handle.Content = content
		}
		return true
	}

	start, end, msg := checkRange(content, *op.Range)
	if msg != "" {
		v := c.newViolation(InvalidOperation, op.Span, "%s", msg)
		return c.reject(v.note(b.Decl, "'%s' declared here", b.Name))
	}
	if !simple || end < 0 {
		return true
	}
	if root.IsValid() {
		handle.View = &view{Root: root, Start: offset + start, End: offset + end}
		return true
	}
	if content.Known {
		if content.IsText {
			handle.Content = Text(content.Text[start:end])
		} else {
			handle.Content = Elems(end - start)
		}
	}
	return true
}

// checkRange resolves the bounds of r against the contents. end is -1 when
// the length is unknown and r has no end bound.
func checkRange(content Content, r Range) (start, end int, msg string) {
	start, end = 0, -1
	if r.HasStart {
		start = r.Start
	}
	if r.HasEnd {
		end = r.End
	} else if content.Known {
		end = content.Len
	}
	if end >= 0 && start > end {
		return 0, 0, fmt.Sprintf("slice index starts at %d but ends at %d", start, end)
	}
	if !content.Known {
		return start, end, ""
	}
	if start > content.Len {
		return 0, 0, fmt.Sprintf("range start index %d out of range for slice of length %d", start, content.Len)
	}
	if end > content.Len {
		return 0, 0, fmt.Sprintf("range end index %d out of range for slice of length %d", end, content.Len)
	}
	if content.IsText {
		for _, idx := range []int{start, end} {
			if !isCharBoundary(content.Text, idx) {
				return 0, 0, fmt.Sprintf("byte index %d is not a char boundary", idx)
			}
		}
	}
	return start, end, ""
}

func isCharBoundary(s string, idx int) bool {
	if idx == 0 || idx == len(s) {
		return true
	}
	return idx > 0 && idx < len(s) && utf8.RuneStart(s[idx])
}

// applyEffect updates the known contents of the mutated binding.
func (c *checker) applyEffect(b *Binding, eff Effect, sp source.Span) bool {
	content := b.val.Content
	if eff.Opaque || !content.Known || !content.IsText {
		if eff.Kind == EffectClear {
			b.val.Content = Text("")
		} else if eff.Kind != EffectTouch {
			b.val.Content = Content{}
		}
		return true
	}
	switch eff.Kind {
	case EffectAppend:
		b.val.Content = Text(content.Text + eff.Text)
	case EffectClear:
		b.val.Content = Text("")
	case EffectTruncate:
		if eff.N >= content.Len {
			return true
		}
		if !isCharBoundary(content.Text, eff.N) {
			v := c.newViolation(InvalidOperation, sp, "new length %d is not a char boundary of '%s'", eff.N, b.Name)
			return c.reject(v)
		}
		b.val.Content = Text(content.Text[:eff.N])
	}
	return true
}

func effectNote(eff Effect) string {
	switch eff.Kind {
	case EffectAssign:
		return "assign"
	case EffectAppend:
		return "append"
	case EffectClear:
		return "clear"
	case EffectTruncate:
		return fmt.Sprintf("truncate %d", eff.N)
	default:
		return ""
	}
}
