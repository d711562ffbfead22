package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
	"github.com/ersuite/reimbursement-api/internal/core/validation"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubReimbRepo struct {
	reimbs      map[int64]*domain.Reimbursement
	nextID      int64
	saveErr     error
	resolveErr  error
	deleteCalls int
}

func newStubReimbRepo() *stubReimbRepo {
	return &stubReimbRepo{reimbs: make(map[int64]*domain.Reimbursement), nextID: 1}
}

func (r *stubReimbRepo) seed(rb domain.Reimbursement) {
	if rb.ID >= r.nextID {
		r.nextID = rb.ID + 1
	}
	clone := rb
	r.reimbs[rb.ID] = &clone
}

func (r *stubReimbRepo) GetAll(_ context.Context) ([]domain.Reimbursement, error) {
	out := make([]domain.Reimbursement, 0, len(r.reimbs))
	for _, rb := range r.reimbs {
		out = append(out, *rb)
	}
	return out, nil
}

func (r *stubReimbRepo) GetAllByAuthorID(_ context.Context, authorID int64) ([]domain.Reimbursement, error) {
	// The stub keys authors by first name "author<id>" to keep seeding terse.
	var out []domain.Reimbursement
	for _, rb := range r.reimbs {
		if rb.AuthorFirst == authorName(authorID) {
			out = append(out, *rb)
		}
	}
	return out, nil
}

func authorName(id int64) string {
	return "author" + string(rune('0'+id))
}

func (r *stubReimbRepo) GetByID(_ context.Context, id int64) (*domain.Reimbursement, error) {
	rb, ok := r.reimbs[id]
	if !ok {
		return nil, ports.ErrNoRecord
	}
	clone := *rb
	return &clone, nil
}

func (r *stubReimbRepo) GetByUniqueKey(_ context.Context, field, value string) (*domain.Reimbursement, error) {
	for _, rb := range r.reimbs {
		var got string
		switch field {
		case "description":
			got = rb.Description
		case "receipt":
			got = rb.Receipt
		case "status":
			got = string(rb.Status)
		case "type":
			got = rb.Type
		case "author_first":
			got = rb.AuthorFirst
		case "author_last":
			got = rb.AuthorLast
		}
		if got == value {
			clone := *rb
			return &clone, nil
		}
	}
	return nil, ports.ErrNoRecord
}

func (r *stubReimbRepo) Save(_ context.Context, rb *domain.Reimbursement) (*domain.Reimbursement, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	clone := *rb
	clone.ID = r.nextID
	r.nextID++
	r.reimbs[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *stubReimbRepo) Resolve(_ context.Context, id int64, status domain.ReimbStatus, resolvedAt time.Time, resolverFirst, resolverLast string) (bool, error) {
	if r.resolveErr != nil {
		return false, r.resolveErr
	}
	rb, ok := r.reimbs[id]
	if !ok || rb.Status != domain.StatusPending {
		return false, ports.ErrConflict
	}
	rb.Status = status
	rb.Resolved = &resolvedAt
	rb.ResolverFirst = resolverFirst
	rb.ResolverLast = resolverLast
	return true, nil
}

func (r *stubReimbRepo) UpdateDetails(_ context.Context, id int64, amount float64, description, receipt, reimbType string) (bool, error) {
	rb, ok := r.reimbs[id]
	if !ok {
		return false, ports.ErrNoRecord
	}
	rb.Amount = amount
	rb.Description = description
	rb.Receipt = receipt
	rb.Type = reimbType
	return true, nil
}

func (r *stubReimbRepo) DeleteByID(_ context.Context, id int64) (bool, error) {
	r.deleteCalls++
	_, existed := r.reimbs[id]
	delete(r.reimbs, id)
	return existed, nil
}

// stubRecorder captures decision events handed to the audit pipeline.
type stubRecorder struct {
	events []ports.DecisionEventInput
}

func (r *stubRecorder) Record(ev ports.DecisionEventInput) {
	r.events = append(r.events, ev)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newReimbSvc(repo *stubReimbRepo) (*ReimbService, *stubRecorder) {
	rec := &stubRecorder{}
	return NewReimbService(repo, validation.Rules{}, rec, nopLogger), rec
}

func pendingReimb(id int64) domain.Reimbursement {
	return domain.Reimbursement{
		ID:          id,
		Amount:      250,
		Submitted:   time.Now().UTC().Add(-time.Hour),
		Description: "conference hotel",
		Receipt:     "https://receipts.example.com/r/42",
		AuthorFirst: "author1",
		AuthorLast:  "Anderson",
		Status:      domain.StatusPending,
		Type:        domain.TypeLodging,
	}
}

func updateInputFrom(rb domain.Reimbursement) ports.UpdateReimbInput {
	return ports.UpdateReimbInput{
		ID:            rb.ID,
		Amount:        rb.Amount,
		Description:   rb.Description,
		Receipt:       rb.Receipt,
		Type:          rb.Type,
		Status:        rb.Status,
		AuthorFirst:   rb.AuthorFirst,
		AuthorLast:    rb.AuthorLast,
		ResolverFirst: rb.ResolverFirst,
		ResolverLast:  rb.ResolverLast,
	}
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func TestReimbService_GetAll_EmptyStore(t *testing.T) {
	svc, _ := newReimbSvc(newStubReimbRepo())

	_, err := svc.GetAllReimbes(context.Background())
	var nf *domain.ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ResourceNotFoundError, got %v", err)
	}
}

func TestReimbService_GetAll_ReturnsStoreContents(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	repo.seed(pendingReimb(2))
	svc, _ := newReimbSvc(repo)

	got, err := svc.GetAllReimbes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 reimbursements, got %d", len(got))
	}
}

func TestReimbService_GetAllByUserID(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1)) // author1
	other := pendingReimb(2)
	other.AuthorFirst = "author2"
	repo.seed(other)
	svc, _ := newReimbSvc(repo)

	got, err := svc.GetAllByUserID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected only author1's reimbursement, got %d", len(got))
	}

	for _, id := range invalidIDs {
		_, err := svc.GetAllByUserID(context.Background(), id)
		var br *domain.BadRequestError
		if !errors.As(err, &br) {
			t.Errorf("id %d: expected BadRequestError, got %v", id, err)
		}
	}

	_, err = svc.GetAllByUserID(context.Background(), 9)
	var nf *domain.ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected ResourceNotFoundError for authorless user, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetReimbByID / unique key
// ---------------------------------------------------------------------------

func TestReimbService_GetByID(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, _ := newReimbSvc(repo)

	rb, err := svc.GetReimbByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.Description != "conference hotel" {
		t.Errorf("wrong record: %+v", rb)
	}

	for _, id := range invalidIDs {
		if _, err := svc.GetReimbByID(context.Background(), id); err == nil {
			t.Errorf("id %d: expected error", id)
		}
	}

	_, err = svc.GetReimbByID(context.Background(), 77)
	var nf *domain.ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected ResourceNotFoundError, got %v", err)
	}
}

func TestReimbService_GetByUniqueKey(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, _ := newReimbSvc(repo)

	rb, err := svc.GetReimbByUniqueKey(context.Background(), map[string]string{"status": "Pending"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.ID != 1 {
		t.Errorf("expected reimb 1, got %d", rb.ID)
	}

	if _, err := svc.GetReimbByUniqueKey(context.Background(), map[string]string{"id": "1"}); err != nil {
		t.Errorf("id delegation failed: %v", err)
	}

	badQueries := []map[string]string{
		{"amount_due": "250"},
		{},
		{"status": "Pending", "type": "Lodging"},
		{"id": "3.14"},
		{"description": ""},
	}
	for _, q := range badQueries {
		_, err := svc.GetReimbByUniqueKey(context.Background(), q)
		var br *domain.BadRequestError
		if !errors.As(err, &br) {
			t.Errorf("query %v: expected BadRequestError, got %v", q, err)
		}
	}

	_, err = svc.GetReimbByUniqueKey(context.Background(), map[string]string{"description": "no such"})
	var nf *domain.ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected ResourceNotFoundError, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// AddNewReimb
// ---------------------------------------------------------------------------

func TestReimbService_AddNew_ForcesPending(t *testing.T) {
	repo := newStubReimbRepo()
	svc, _ := newReimbSvc(repo)

	rb, err := svc.AddNewReimb(context.Background(), ports.NewReimbInput{
		Amount:      99.99,
		Description: "taxi to airport",
		Receipt:     "https://receipts.example.com/r/7",
		Type:        domain.TypeTravel,
		AuthorFirst: "author1",
		AuthorLast:  "Anderson",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.Status != domain.StatusPending {
		t.Errorf("expected forced Pending status, got %q", rb.Status)
	}
	if rb.ID == 0 {
		t.Error("expected a server-assigned id")
	}
	if rb.Submitted.IsZero() {
		t.Error("expected a submission timestamp")
	}
	if rb.Resolved != nil || rb.ResolverFirst != "" || rb.ResolverLast != "" {
		t.Error("resolver fields must be unset on a new reimbursement")
	}
}

func TestReimbService_AddNew_InvalidObject(t *testing.T) {
	svc, _ := newReimbSvc(newStubReimbRepo())

	cases := []ports.NewReimbInput{
		{Amount: 0, Description: "d", Receipt: "r", Type: domain.TypeOther, AuthorFirst: "a", AuthorLast: "b"},
		{Amount: 10, Description: "", Receipt: "r", Type: domain.TypeOther, AuthorFirst: "a", AuthorLast: "b"},
		{Amount: 10, Description: "d", Receipt: "r", Type: "Gambling", AuthorFirst: "a", AuthorLast: "b"},
		{Amount: 10, Description: "d", Receipt: "r", Type: domain.TypeOther, AuthorFirst: "", AuthorLast: "b"},
	}
	for i, in := range cases {
		_, err := svc.AddNewReimb(context.Background(), in)
		var br *domain.BadRequestError
		if !errors.As(err, &br) {
			t.Errorf("case %d: expected BadRequestError, got %v", i, err)
		}
	}
}

func TestReimbService_AddNew_UnknownAuthor(t *testing.T) {
	repo := newStubReimbRepo()
	repo.saveErr = ports.ErrNoRecord
	svc, _ := newReimbSvc(repo)

	_, err := svc.AddNewReimb(context.Background(), ports.NewReimbInput{
		Amount: 10, Description: "d", Receipt: "r", Type: domain.TypeOther,
		AuthorFirst: "Ghost", AuthorLast: "Writer",
	})
	var br *domain.BadRequestError
	if !errors.As(err, &br) {
		t.Fatalf("expected BadRequestError for unknown author, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdateReimb — lifecycle state machine
// ---------------------------------------------------------------------------

func TestReimbService_Update_ApproveSetsResolution(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, rec := newReimbSvc(repo)

	in := updateInputFrom(pendingReimb(1))
	in.Status = domain.StatusApproved
	in.ResolverFirst = "Mona"
	in.ResolverLast = "Manager"

	ok, err := svc.UpdateReimb(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected update to report success")
	}

	stored := repo.reimbs[1]
	if stored.Status != domain.StatusApproved {
		t.Errorf("expected Approved, got %q", stored.Status)
	}
	if stored.Resolved == nil || stored.Resolved.IsZero() {
		t.Error("expected a resolution timestamp")
	}
	if stored.ResolverFirst != "Mona" || stored.ResolverLast != "Manager" {
		t.Errorf("resolver not recorded: %+v", stored)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 decision event, got %d", len(rec.events))
	}
	if rec.events[0].ReimbID != 1 || rec.events[0].Status != domain.StatusApproved {
		t.Errorf("wrong decision event: %+v", rec.events[0])
	}
}

func TestReimbService_Update_ApproveIgnoresFieldEdits(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, _ := newReimbSvc(repo)

	in := updateInputFrom(pendingReimb(1))
	in.Status = domain.StatusDenied
	in.Amount = 999999 // present in payload, must not be written
	in.Description = "changed"
	in.ResolverFirst = "Mona"
	in.ResolverLast = "Manager"

	if _, err := svc.UpdateReimb(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.reimbs[1]
	if stored.Amount != 250 || stored.Description != "conference hotel" {
		t.Errorf("decision branch must not touch detail fields: %+v", stored)
	}
}

func TestReimbService_Update_SecondDecisionRejected(t *testing.T) {
	repo := newStubReimbRepo()
	approved := pendingReimb(1)
	now := time.Now().UTC()
	approved.Status = domain.StatusApproved
	approved.Resolved = &now
	approved.ResolverFirst = "Mona"
	approved.ResolverLast = "Manager"
	repo.seed(approved)
	svc, rec := newReimbSvc(repo)

	in := updateInputFrom(approved)
	in.Amount = 1 // attempt to alter amount on a resolved record

	_, err := svc.UpdateReimb(context.Background(), in)
	var pe *domain.ResourcePersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ResourcePersistenceError, got %v", err)
	}
	if repo.reimbs[1].Amount != 250 {
		t.Error("amount must stay immutable after resolution")
	}
	if len(rec.events) != 0 {
		t.Error("a rejected decision must not reach the audit pipeline")
	}
}

func TestReimbService_Update_PendingEditsDetails(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, rec := newReimbSvc(repo)

	in := updateInputFrom(pendingReimb(1))
	in.Amount = 300
	in.Description = "conference hotel, two nights"
	in.Type = domain.TypeTravel

	ok, err := svc.UpdateReimb(context.Background(), in)
	if err != nil || !ok {
		t.Fatalf("expected successful edit, got ok=%v err=%v", ok, err)
	}

	stored := repo.reimbs[1]
	if stored.Amount != 300 || stored.Description != "conference hotel, two nights" || stored.Type != domain.TypeTravel {
		t.Errorf("edits not persisted: %+v", stored)
	}
	if stored.Status != domain.StatusPending || stored.Resolved != nil {
		t.Error("pending edit must not touch lifecycle fields")
	}
	if len(rec.events) != 0 {
		t.Error("a pending edit is not a decision")
	}
}

func TestReimbService_Update_PendingEditOfResolvedRejected(t *testing.T) {
	repo := newStubReimbRepo()
	denied := pendingReimb(1)
	now := time.Now().UTC()
	denied.Status = domain.StatusDenied
	denied.Resolved = &now
	repo.seed(denied)
	svc, _ := newReimbSvc(repo)

	in := updateInputFrom(denied)
	in.Status = domain.StatusPending // attempt to reopen
	in.Amount = 1

	_, err := svc.UpdateReimb(context.Background(), in)
	var pe *domain.ResourcePersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ResourcePersistenceError, got %v", err)
	}
}

func TestReimbService_Update_UnknownStatusRejected(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, _ := newReimbSvc(repo)

	in := updateInputFrom(pendingReimb(1))
	in.Status = "Reviewed"

	_, err := svc.UpdateReimb(context.Background(), in)
	var br *domain.BadRequestError
	if !errors.As(err, &br) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestReimbService_Update_DecisionRequiresResolver(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, _ := newReimbSvc(repo)

	in := updateInputFrom(pendingReimb(1))
	in.Status = domain.StatusApproved // no resolver names

	_, err := svc.UpdateReimb(context.Background(), in)
	var br *domain.BadRequestError
	if !errors.As(err, &br) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestReimbService_Update_NotFound(t *testing.T) {
	svc, _ := newReimbSvc(newStubReimbRepo())

	in := updateInputFrom(pendingReimb(12))

	_, err := svc.UpdateReimb(context.Background(), in)
	var nf *domain.ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ResourceNotFoundError, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// DeleteByID
// ---------------------------------------------------------------------------

func TestReimbService_Delete_InvalidIDSkipsRepo(t *testing.T) {
	repo := newStubReimbRepo()
	svc, _ := newReimbSvc(repo)

	for _, id := range invalidIDs {
		_, err := svc.DeleteByID(context.Background(), id)
		var br *domain.BadRequestError
		if !errors.As(err, &br) {
			t.Errorf("id %d: expected BadRequestError, got %v", id, err)
		}
	}
	if repo.deleteCalls != 0 {
		t.Errorf("repository delete must not run on invalid ids, got %d calls", repo.deleteCalls)
	}
}

func TestReimbService_Delete_Success(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	svc, _ := newReimbSvc(repo)

	ok, err := svc.DeleteByID(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("expected successful delete, got ok=%v err=%v", ok, err)
	}
}

func TestReimbService_Delete_UnknownIDReportsFalse(t *testing.T) {
	repo := newStubReimbRepo()
	svc, _ := newReimbSvc(repo)

	ok, err := svc.DeleteByID(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("deleting a nonexistent id must report false")
	}
}

// Two decisions can race past the status check that runs on the fetched
// row; the conditional write lets only one land and the loser gets a
// conflict with no audit event.
func TestReimbService_Update_ConcurrentDecisionConflict(t *testing.T) {
	repo := newStubReimbRepo()
	repo.seed(pendingReimb(1))
	repo.resolveErr = ports.ErrConflict
	svc, rec := newReimbSvc(repo)

	in := updateInputFrom(pendingReimb(1))
	in.Status = domain.StatusApproved
	in.ResolverFirst = "Mona"
	in.ResolverLast = "Manager"

	_, err := svc.UpdateReimb(context.Background(), in)
	var pe *domain.ResourcePersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ResourcePersistenceError, got %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("a lost decision race must not emit audit events, got %d", len(rec.events))
	}
}
