package domain

import "time"

// ReimbStatus represents the lifecycle state of a reimbursement request.
type ReimbStatus string

const (
	StatusPending  ReimbStatus = "Pending"
	StatusApproved ReimbStatus = "Approved"
	StatusDenied   ReimbStatus = "Denied"
)

// validTransitions defines the allowed state machine transitions.
// Approved and Denied are terminal: they have no outgoing edges.
var validTransitions = map[ReimbStatus][]ReimbStatus{
	StatusPending: {StatusApproved, StatusDenied},
}

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s ReimbStatus) CanTransitionTo(next ReimbStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s belongs to the closed status set.
func KnownStatus(s ReimbStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Reimbursement category types.
const (
	TypeLodging = "Lodging"
	TypeTravel  = "Travel"
	TypeFood    = "Food"
	TypeOther   = "Other"
)

// KnownType reports whether t belongs to the closed category set.
func KnownType(t string) bool {
	switch t {
	case TypeLodging, TypeTravel, TypeFood, TypeOther:
		return true
	}
	return false
}

// Reimbursement is the core aggregate. Author and resolver are referenced by
// name pair; the persistence layer resolves them against the user store.
// Invariant: Resolved and the resolver names are set iff Status != Pending.
type Reimbursement struct {
	ID            int64
	Amount        float64
	Submitted     time.Time
	Resolved      *time.Time // nil while Pending
	Description   string
	Receipt       string // opaque receipt reference, e.g. a URL
	AuthorFirst   string
	AuthorLast    string
	ResolverFirst string
	ResolverLast  string
	Status        ReimbStatus
	Type          string
}
