// Package testkit holds structural checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"borrowck/internal/ast"
	"borrowck/internal/ownership"
	"borrowck/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span lies within the file content
// 2) every item span is non-empty and inside file.Span
// 3) file.Span covers the union of item spans
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	var union source.Span
	for i, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		sp := item.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}
		if i == 0 {
			union = sp
		} else {
			union = union.Cover(sp)
		}
	}
	if len(f.Items) > 0 && (union.Start < f.Span.Start || union.End > f.Span.End) {
		return fmt.Errorf("file span %v does not cover union of items %v", f.Span, union)
	}
	return nil
}

// CheckTraceInvariants verifies the shape every lowered trace must have:
// scopes are balanced and never closed below the outermost one, and op
// spans stay inside the source file.
func CheckTraceInvariants(tr *ownership.Trace, sf *source.File) error {
	if tr == nil {
		return fmt.Errorf("nil trace")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	depth := 0
	for i, op := range tr.Ops {
		switch op.Kind {
		case ownership.OpEnter:
			depth++
		case ownership.OpExit:
			depth--
			if depth < 0 {
				return fmt.Errorf("%s: op %d closes a scope that was never opened", tr.Name, i)
			}
		default:
			if depth == 0 {
				return fmt.Errorf("%s: op %d (%s) outside any scope", tr.Name, i, op.Kind)
			}
		}
		if op.Span.File != sf.ID || op.Span.End > lenContent || op.Span.Start > op.Span.End {
			return fmt.Errorf("%s: op %d (%s) has span %v outside the file", tr.Name, i, op.Kind, op.Span)
		}
	}
	if depth != 0 {
		return fmt.Errorf("%s: %d scopes left open", tr.Name, depth)
	}
	return nil
}
