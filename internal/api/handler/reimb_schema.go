package handler

import (
	"time"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

type createReimbRequest struct {
	Amount      float64 `json:"amount"       validate:"required,gt=0"`
	Description string  `json:"description"  validate:"required"`
	Receipt     string  `json:"receipt"      validate:"required"`
	Type        string  `json:"type"         validate:"required,oneof=Lodging Travel Food Other"`
	AuthorFirst string  `json:"author_first" validate:"required"`
	AuthorLast  string  `json:"author_last"  validate:"required"`
}

type updateReimbRequest struct {
	ID            int64   `json:"id"           validate:"required"`
	Amount        float64 `json:"amount"       validate:"required,gt=0"`
	Description   string  `json:"description"  validate:"required"`
	Receipt       string  `json:"receipt"      validate:"required"`
	Type          string  `json:"type"         validate:"required,oneof=Lodging Travel Food Other"`
	Status        string  `json:"status"       validate:"required"`
	AuthorFirst   string  `json:"author_first" validate:"required"`
	AuthorLast    string  `json:"author_last"  validate:"required"`
	ResolverFirst string  `json:"resolver_first"`
	ResolverLast  string  `json:"resolver_last"`
}

// Response-only types owned by the transport layer. These are intentionally
// separate from domain types so the JSON contract is not coupled to internal
// service changes.

type reimbursementResponse struct {
	ID            int64      `json:"id"`
	Amount        float64    `json:"amount"`
	Submitted     time.Time  `json:"submitted"`
	Resolved      *time.Time `json:"resolved,omitempty"`
	Description   string     `json:"description"`
	Receipt       string     `json:"receipt"`
	AuthorFirst   string     `json:"author_first"`
	AuthorLast    string     `json:"author_last"`
	ResolverFirst string     `json:"resolver_first,omitempty"`
	ResolverLast  string     `json:"resolver_last,omitempty"`
	Status        string     `json:"status"`
	Type          string     `json:"type"`
}

type decisionResponse struct {
	ReimbID       int64     `json:"reimb_id"`
	Status        string    `json:"status"`
	ResolvedAt    time.Time `json:"resolved_at"`
	ResolverFirst string    `json:"resolver_first"`
	ResolverLast  string    `json:"resolver_last"`
}

func toReimbResponse(r domain.Reimbursement) reimbursementResponse {
	return reimbursementResponse{
		ID:            r.ID,
		Amount:        r.Amount,
		Submitted:     r.Submitted,
		Resolved:      r.Resolved,
		Description:   r.Description,
		Receipt:       r.Receipt,
		AuthorFirst:   r.AuthorFirst,
		AuthorLast:    r.AuthorLast,
		ResolverFirst: r.ResolverFirst,
		ResolverLast:  r.ResolverLast,
		Status:        string(r.Status),
		Type:          r.Type,
	}
}

func toReimbResponses(rs []domain.Reimbursement) []reimbursementResponse {
	out := make([]reimbursementResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReimbResponse(r))
	}
	return out
}

func toDecisionResponses(recs []domain.DecisionRecord) []decisionResponse {
	out := make([]decisionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, decisionResponse{
			ReimbID:       rec.ReimbID,
			Status:        string(rec.Status),
			ResolvedAt:    rec.ResolvedAt,
			ResolverFirst: rec.ResolverFirst,
			ResolverLast:  rec.ResolverLast,
		})
	}
	return out
}
