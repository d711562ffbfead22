package ports

import (
	"context"
	"time"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

// DecisionEventInput is the DTO handed to the audit pipeline when a
// reimbursement is approved or denied.
type DecisionEventInput struct {
	ReimbID       int64
	Status        domain.ReimbStatus
	ResolvedAt    time.Time
	ResolverFirst string
	ResolverLast  string
}

// AuditRepository persists the append-only decision trail.
type AuditRepository interface {
	InsertDecision(ctx context.Context, rec *domain.DecisionRecord) error
	ListByReimbID(ctx context.Context, reimbID int64) ([]domain.DecisionRecord, error)
}

// AuditService processes decision events off the hot path.
type AuditService interface {
	Process(ctx context.Context, in DecisionEventInput) error
	Trail(ctx context.Context, reimbID int64) ([]domain.DecisionRecord, error)
}

// DecisionRecorder is the narrow surface ReimbService needs to hand a
// decision to the audit pipeline. The queue dispatcher implements it.
type DecisionRecorder interface {
	Record(ev DecisionEventInput)
}
