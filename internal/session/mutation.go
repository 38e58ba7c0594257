package session

// MutationKind identifies a requested change to the caller's session.
type MutationKind int

const (
	MutationNone MutationKind = iota
	MutationSetUserID
	MutationClear
)

// Mutation describes a session change produced by a service call. Services
// return mutations instead of touching request state; the transport applies
// them once the operation has finished.
type Mutation struct {
	Kind   MutationKind
	UserID uint
}

// SetUserID marks the session as authenticated as id.
func SetUserID(id uint) Mutation {
	return Mutation{Kind: MutationSetUserID, UserID: id}
}

// Clear drops the session entirely.
func Clear() Mutation {
	return Mutation{Kind: MutationClear}
}

// IsZero reports whether m requests no change.
func (m Mutation) IsZero() bool {
	return m.Kind == MutationNone
}
