package ownership

import (
	"fmt"

	"borrowck/internal/source"
)

// EventKind identifies the type of event recorded during evaluation.
type EventKind uint8

const (
	EvBorrowStart EventKind = iota
	EvBorrowEnd
	EvMove
	EvCopy
	EvWrite
	EvDrop
)

func (k EventKind) String() string {
	switch k {
	case EvBorrowStart:
		return "borrow_start"
	case EvBorrowEnd:
		return "borrow_end"
	case EvMove:
		return "move"
	case EvCopy:
		return "copy"
	case EvWrite:
		return "write"
	case EvDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Event is a lightweight log entry produced by the enforcing pass.
// It is meant for debugging output and never affects the verdict.
type Event struct {
	Kind EventKind
	Op   int

	// Borrow is set for borrow_start / borrow_end.
	Borrow BorrowID
	Mode   Mode

	// Place is the accessed place in source terms.
	Place string
	Span  source.Span
	Note  string
}

func (e Event) String() string {
	s := fmt.Sprintf("%4d %-12s %s", e.Op, e.Kind, e.Place)
	if e.Borrow.IsValid() {
		s += fmt.Sprintf(" #%d", e.Borrow)
		if e.Kind == EvBorrowStart {
			s += " " + e.Mode.String()
		}
	}
	if e.Note != "" {
		s += " (" + e.Note + ")"
	}
	return s
}

// Release records a resource freed at scope exit or on overwrite.
type Release struct {
	Binding  BindingID
	Resource ResourceID
	Op       int
}
