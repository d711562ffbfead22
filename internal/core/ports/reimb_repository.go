package ports

import (
	"context"
	"time"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

// ReimbRepository defines persistence operations for reimbursements.
// The update surface is split to match the two lifecycle branches: Resolve
// writes only (status, resolved, resolver) and UpdateDetails writes only
// (amount, description, receipt, type). There is no whole-row update.
type ReimbRepository interface {
	GetAll(ctx context.Context) ([]domain.Reimbursement, error)
	// GetAllByAuthorID lists reimbursements authored by the given user.
	GetAllByAuthorID(ctx context.Context, authorID int64) ([]domain.Reimbursement, error)
	GetByID(ctx context.Context, id int64) (*domain.Reimbursement, error)
	GetByUniqueKey(ctx context.Context, field, value string) (*domain.Reimbursement, error)
	// Save persists a new pending reimbursement and assigns its identity.
	// The author identity is resolved from the author name pair against the
	// user store; an unknown author surfaces as ErrNoRecord.
	Save(ctx context.Context, r *domain.Reimbursement) (*domain.Reimbursement, error)
	// Resolve applies a terminal decision: status, resolution timestamp, and
	// resolver identity. All other fields are left untouched.
	Resolve(ctx context.Context, id int64, status domain.ReimbStatus, resolvedAt time.Time, resolverFirst, resolverLast string) (bool, error)
	// UpdateDetails edits the mutable fields of a still-pending request.
	UpdateDetails(ctx context.Context, id int64, amount float64, description, receipt, reimbType string) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
