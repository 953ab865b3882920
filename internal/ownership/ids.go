package ownership

// BindingID indexes the binding arena in creation order.
type BindingID uint32

// BorrowID identifies a borrow created by an OpBorrow.
type BorrowID uint32

// ScopeID identifies an entered scope.
type ScopeID uint32

// ResourceID identifies the resource owned by an Owning value.
type ResourceID uint32

const (
	NoBindingID  BindingID  = 0
	NoBorrowID   BorrowID   = 0
	NoScopeID    ScopeID    = 0
	NoResourceID ResourceID = 0
)

func (id BindingID) IsValid() bool  { return id != NoBindingID }
func (id BorrowID) IsValid() bool   { return id != NoBorrowID }
func (id ScopeID) IsValid() bool    { return id != NoScopeID }
func (id ResourceID) IsValid() bool { return id != NoResourceID }
