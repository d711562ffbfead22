package ports

import (
	"context"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

// NewReimbInput carries the caller-supplied fields for a new request.
// Status is not accepted: every new reimbursement starts Pending.
type NewReimbInput struct {
	Amount      float64
	Description string
	Receipt     string
	Type        string
	AuthorFirst string
	AuthorLast  string
}

// UpdateReimbInput is a full reimbursement payload for the update path.
// Which fields are actually persisted depends on the target status branch.
type UpdateReimbInput struct {
	ID            int64
	Amount        float64
	Description   string
	Receipt       string
	Type          string
	Status        domain.ReimbStatus
	AuthorFirst   string
	AuthorLast    string
	ResolverFirst string
	ResolverLast  string
}

// ReimbService defines the reimbursement lifecycle use cases.
type ReimbService interface {
	GetAllReimbes(ctx context.Context) ([]domain.Reimbursement, error)
	GetAllByUserID(ctx context.Context, authorID int64) ([]domain.Reimbursement, error)
	GetReimbByID(ctx context.Context, id int64) (*domain.Reimbursement, error)
	// GetReimbByUniqueKey resolves a single-field query {field: value} with
	// the same contract as the user equivalent.
	GetReimbByUniqueKey(ctx context.Context, query map[string]string) (*domain.Reimbursement, error)
	AddNewReimb(ctx context.Context, in NewReimbInput) (*domain.Reimbursement, error)
	UpdateReimb(ctx context.Context, in UpdateReimbInput) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
