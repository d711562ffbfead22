package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

// DedupChecker abstracts the decision dedup store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, reimbID int64, status string, ts time.Time) (bool, error)
	Mark(ctx context.Context, reimbID int64, status string, ts time.Time) error
}

type auditService struct {
	auditRepo ports.AuditRepository
	dedup     DedupChecker
	log       zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(auditRepo ports.AuditRepository, dedup DedupChecker, log zerolog.Logger) ports.AuditService {
	return &auditService{auditRepo: auditRepo, dedup: dedup, log: log}
}

// Process deduplicates and persists a single decision event. Duplicate
// deliveries from dispatcher retries are skipped silently.
func (s *auditService) Process(ctx context.Context, in ports.DecisionEventInput) error {
	isDup, err := s.dedup.IsDuplicate(ctx, in.ReimbID, string(in.Status), in.ResolvedAt)
	if err != nil {
		s.log.Warn().Err(err).Int64("reimb_id", in.ReimbID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Int64("reimb_id", in.ReimbID).Str("status", string(in.Status)).Msg("duplicate decision skipped")
		return nil
	}

	// Mark before writing so a crashed insert is not replayed twice.
	if markErr := s.dedup.Mark(ctx, in.ReimbID, string(in.Status), in.ResolvedAt); markErr != nil {
		s.log.Warn().Err(markErr).Int64("reimb_id", in.ReimbID).Msg("failed to set dedup key")
	}

	rec := &domain.DecisionRecord{
		ReimbID:       in.ReimbID,
		Status:        in.Status,
		ResolvedAt:    in.ResolvedAt,
		ResolverFirst: in.ResolverFirst,
		ResolverLast:  in.ResolverLast,
	}
	if err := s.auditRepo.InsertDecision(ctx, rec); err != nil {
		return fmt.Errorf("process decision: %w", err)
	}

	s.log.Info().
		Int64("reimb_id", in.ReimbID).
		Str("status", string(in.Status)).
		Msg("decision recorded")

	return nil
}

// Trail returns the decision history for one reimbursement.
func (s *auditService) Trail(ctx context.Context, reimbID int64) ([]domain.DecisionRecord, error) {
	if reimbID <= 0 {
		return nil, domain.NewBadRequest(fmt.Sprintf("invalid reimbursement id: %d", reimbID))
	}
	return s.auditRepo.ListByReimbID(ctx, reimbID)
}
