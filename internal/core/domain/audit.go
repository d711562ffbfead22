package domain

import "time"

// DecisionRecord is an audit-trail entry for a single approve/deny decision.
// Records are append-only; the reimbursement document remains the source of
// truth for current state.
type DecisionRecord struct {
	ReimbID       int64
	Status        ReimbStatus
	ResolvedAt    time.Time
	ResolverFirst string
	ResolverLast  string
}
