package ownership

import (
	"fmt"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

// ViolationKind enumerates the rules an operation can break.
type ViolationKind uint8

const (
	UseAfterMove ViolationKind = iota + 1
	AliasConflict
	DanglingReference
	NotMutable
	Uninitialized
	InvalidOperation
)

func (k ViolationKind) String() string {
	switch k {
	case UseAfterMove:
		return "UseAfterMove"
	case AliasConflict:
		return "AliasConflict"
	case DanglingReference:
		return "DanglingReference"
	case NotMutable:
		return "NotMutable"
	case Uninitialized:
		return "Uninitialized"
	case InvalidOperation:
		return "InvalidOperation"
	default:
		return fmt.Sprintf("ViolationKind(%d)", k)
	}
}

// Code maps the violation kind onto its diagnostic code.
func (k ViolationKind) Code() diag.Code {
	switch k {
	case UseAfterMove:
		return diag.OwnUseAfterMove
	case AliasConflict:
		return diag.OwnAliasConflict
	case DanglingReference:
		return diag.OwnDanglingReference
	case NotMutable:
		return diag.OwnNotMutable
	case Uninitialized:
		return diag.OwnUninitialized
	default:
		return diag.OwnInvalidOperation
	}
}

// Violation is the first rule broken by a trace.
type Violation struct {
	Kind    ViolationKind
	Op      int
	Span    source.Span
	Message string
	Notes   []diag.Note
}

func (v *Violation) note(sp source.Span, format string, args ...any) *Violation {
	v.Notes = append(v.Notes, diag.Note{Span: sp, Msg: fmt.Sprintf(format, args...)})
	return v
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s at op %d: %s", v.Kind, v.Op, v.Message)
}

// Emit reports the violation as an error diagnostic.
func (v *Violation) Emit(r diag.Reporter) {
	if v == nil || r == nil {
		return
	}
	b := diag.ReportError(r, v.Kind.Code(), v.Span, v.Message)
	for _, n := range v.Notes {
		b.WithNote(n.Span, n.Msg)
	}
	b.Emit()
}
