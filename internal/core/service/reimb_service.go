package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
	"github.com/ersuite/reimbursement-api/internal/core/validation"
)

// ReimbService enforces the reimbursement rules: id shapes, field
// validation, and the lifecycle state machine. Every approve/deny decision
// is also handed to the audit recorder.
type ReimbService struct {
	repo     ports.ReimbRepository
	rules    validation.Validator
	recorder ports.DecisionRecorder
	logger   zerolog.Logger
}

func NewReimbService(repo ports.ReimbRepository, rules validation.Validator, recorder ports.DecisionRecorder, logger zerolog.Logger) *ReimbService {
	return &ReimbService{repo: repo, rules: rules, recorder: recorder, logger: logger}
}

var _ ports.ReimbService = (*ReimbService)(nil)

// GetAllReimbes lists every reimbursement. An empty store is a not-found
// condition.
func (s *ReimbService) GetAllReimbes(ctx context.Context) ([]domain.Reimbursement, error) {
	reimbes, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(reimbes) == 0 {
		return nil, domain.NewResourceNotFound("no reimbursements found")
	}
	return reimbes, nil
}

// GetAllByUserID lists the reimbursements authored by one user.
func (s *ReimbService) GetAllByUserID(ctx context.Context, authorID int64) ([]domain.Reimbursement, error) {
	if !s.rules.ValidID(authorID) {
		return nil, domain.NewBadRequest(fmt.Sprintf("invalid user id: %d", authorID))
	}

	reimbes, err := s.repo.GetAllByAuthorID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if len(reimbes) == 0 {
		return nil, domain.NewResourceNotFound(fmt.Sprintf("no reimbursements found for user %d", authorID))
	}
	return reimbes, nil
}

// GetReimbByID fetches one reimbursement after checking the id shape.
func (s *ReimbService) GetReimbByID(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	if !s.rules.ValidID(id) {
		return nil, domain.NewBadRequest(fmt.Sprintf("invalid reimbursement id: %d", id))
	}

	reimb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return nil, domain.NewResourceNotFound(fmt.Sprintf("no reimbursement found with id %d", id))
		}
		return nil, err
	}
	return reimb, nil
}

// GetReimbByUniqueKey resolves a single-field query with the same contract
// as the user equivalent.
func (s *ReimbService) GetReimbByUniqueKey(ctx context.Context, query map[string]string) (*domain.Reimbursement, error) {
	if len(query) != 1 {
		return nil, domain.NewBadRequest("exactly one query field is required")
	}

	var field, value string
	for k, v := range query {
		field, value = k, v
	}

	if !s.rules.IsReimbField(field) {
		return nil, domain.NewBadRequest(fmt.Sprintf("%q is not a queryable reimbursement field", field))
	}

	if field == "id" {
		id, err := validation.ParseID(value)
		if err != nil {
			return nil, domain.NewBadRequest(err.Error())
		}
		return s.GetReimbByID(ctx, id)
	}

	if !s.rules.NonEmpty(value) {
		return nil, domain.NewBadRequest("query value must be a non-empty string")
	}

	reimb, err := s.repo.GetByUniqueKey(ctx, field, value)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return nil, domain.NewResourceNotFound(fmt.Sprintf("no reimbursement found with %s %q", field, value))
		}
		return nil, err
	}
	return reimb, nil
}

// AddNewReimb creates a request. Status is forced to Pending regardless of
// input, the submission timestamp is set here, and resolver fields remain
// unset until a decision is made.
func (s *ReimbService) AddNewReimb(ctx context.Context, in ports.NewReimbInput) (*domain.Reimbursement, error) {
	candidate := domain.Reimbursement{
		Amount:      in.Amount,
		Description: in.Description,
		Receipt:     in.Receipt,
		AuthorFirst: in.AuthorFirst,
		AuthorLast:  in.AuthorLast,
		Type:        in.Type,
	}
	if vs := s.rules.CheckReimbursement(candidate, false); len(vs) != 0 {
		return nil, domain.NewBadRequest("invalid property values found in provided reimbursement: " + vs.String())
	}

	candidate.Status = domain.StatusPending
	candidate.Submitted = time.Now().UTC()

	persisted, err := s.repo.Save(ctx, &candidate)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return nil, domain.NewBadRequest(fmt.Sprintf("no user named %s %s exists", in.AuthorFirst, in.AuthorLast))
		}
		return nil, err
	}

	s.logger.Info().
		Int64("reimb_id", persisted.ID).
		Str("type", persisted.Type).
		Float64("amount", persisted.Amount).
		Msg("reimbursement submitted")

	return persisted, nil
}

// UpdateReimb branches on the target status:
//
//   - Approved/Denied: the Pending record is resolved exactly once; only
//     (status, resolved, resolver) are written, so amount, description,
//     receipt, and type stay untouched even when present in the payload.
//   - Pending: only (amount, description, receipt, type) are written and
//     the lifecycle fields stay untouched. Edits are rejected once the
//     record has left Pending.
func (s *ReimbService) UpdateReimb(ctx context.Context, in ports.UpdateReimbInput) (bool, error) {
	updated := domain.Reimbursement{
		ID:            in.ID,
		Amount:        in.Amount,
		Description:   in.Description,
		Receipt:       in.Receipt,
		Type:          in.Type,
		Status:        in.Status,
		AuthorFirst:   in.AuthorFirst,
		AuthorLast:    in.AuthorLast,
		ResolverFirst: in.ResolverFirst,
		ResolverLast:  in.ResolverLast,
	}
	if vs := s.rules.CheckReimbursement(updated, true); len(vs) != 0 {
		return false, domain.NewBadRequest("invalid reimbursement provided: " + vs.String())
	}
	if !domain.KnownStatus(in.Status) {
		return false, domain.NewBadRequest(fmt.Sprintf("%q is not a recognized status", in.Status))
	}

	current, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return false, domain.NewResourceNotFound(fmt.Sprintf("no reimbursement found with id %d", in.ID))
		}
		return false, err
	}

	switch in.Status {
	case domain.StatusApproved, domain.StatusDenied:
		return s.resolve(ctx, current, in)
	default: // domain.StatusPending
		return s.editPending(ctx, current, in)
	}
}

func (s *ReimbService) resolve(ctx context.Context, current *domain.Reimbursement, in ports.UpdateReimbInput) (bool, error) {
	if !s.rules.NonEmpty(in.ResolverFirst, in.ResolverLast) {
		return false, domain.NewBadRequest("a resolver name is required to resolve a reimbursement")
	}
	if !current.Status.CanTransitionTo(in.Status) {
		return false, domain.NewResourcePersistence(
			fmt.Sprintf("reimbursement %d is already %s and cannot become %s", current.ID, current.Status, in.Status))
	}

	resolvedAt := time.Now().UTC()
	ok, err := s.repo.Resolve(ctx, current.ID, in.Status, resolvedAt, in.ResolverFirst, in.ResolverLast)
	if err != nil {
		if errors.Is(err, ports.ErrNoRecord) {
			return false, domain.NewBadRequest(fmt.Sprintf("no user named %s %s exists", in.ResolverFirst, in.ResolverLast))
		}
		// The conditional write lost a race: another decision landed
		// between our read and this write.
		if errors.Is(err, ports.ErrConflict) {
			return false, domain.NewResourcePersistence(
				fmt.Sprintf("reimbursement %d was resolved concurrently", current.ID))
		}
		return false, err
	}

	s.logger.Info().
		Int64("reimb_id", current.ID).
		Str("status", string(in.Status)).
		Str("resolver", in.ResolverFirst+" "+in.ResolverLast).
		Msg("reimbursement resolved")

	s.recorder.Record(ports.DecisionEventInput{
		ReimbID:       current.ID,
		Status:        in.Status,
		ResolvedAt:    resolvedAt,
		ResolverFirst: in.ResolverFirst,
		ResolverLast:  in.ResolverLast,
	})

	return ok, nil
}

func (s *ReimbService) editPending(ctx context.Context, current *domain.Reimbursement, in ports.UpdateReimbInput) (bool, error) {
	if current.Status != domain.StatusPending {
		return false, domain.NewResourcePersistence(
			fmt.Sprintf("reimbursement %d is %s; resolved reimbursements are immutable", current.ID, current.Status))
	}

	ok, err := s.repo.UpdateDetails(ctx, current.ID, in.Amount, in.Description, in.Receipt, in.Type)
	if err != nil {
		return false, err
	}

	s.logger.Info().Int64("reimb_id", current.ID).Msg("pending reimbursement edited")
	return ok, nil
}

// DeleteByID removes a reimbursement after checking the id shape.
func (s *ReimbService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if !s.rules.ValidID(id) {
		return false, domain.NewBadRequest(fmt.Sprintf("invalid reimbursement id: %d", id))
	}
	return s.repo.DeleteByID(ctx, id)
}
