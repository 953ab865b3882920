package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	// KindPoint is an instant event without duration.
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	// ScopePhase covers one pipeline phase of one file.
	ScopePhase
	// ScopeFunc covers one function during sema, lowering or checking.
	ScopeFunc
	// ScopeOp covers a single trace operation.
	ScopeOp
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePhase:
		return "phase"
	case ScopeFunc:
		return "func"
	case ScopeOp:
		return "op"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	GID      uint64
	// Name is "parse", "check", "fn:main" and the like.
	Name   string
	Detail string
	// Elapsed is set on span ends.
	Elapsed time.Duration
	Extra   map[string]string
}
