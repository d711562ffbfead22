package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

type stubReimbService struct {
	getAllByUserFn func(ctx context.Context, authorID int64) ([]domain.Reimbursement, error)
}

func (s *stubReimbService) GetAllReimbes(ctx context.Context) ([]domain.Reimbursement, error) {
	return nil, nil
}

func (s *stubReimbService) GetAllByUserID(ctx context.Context, authorID int64) ([]domain.Reimbursement, error) {
	return s.getAllByUserFn(ctx, authorID)
}

func (s *stubReimbService) GetReimbByID(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	return nil, nil
}

func (s *stubReimbService) GetReimbByUniqueKey(ctx context.Context, query map[string]string) (*domain.Reimbursement, error) {
	return nil, nil
}

func (s *stubReimbService) AddNewReimb(ctx context.Context, in ports.NewReimbInput) (*domain.Reimbursement, error) {
	return nil, nil
}

func (s *stubReimbService) UpdateReimb(ctx context.Context, in ports.UpdateReimbInput) (bool, error) {
	return false, nil
}

func (s *stubReimbService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

type stubTrailService struct{}

func (s *stubTrailService) Process(ctx context.Context, in ports.DecisionEventInput) error {
	return nil
}

func (s *stubTrailService) Trail(ctx context.Context, reimbID int64) ([]domain.DecisionRecord, error) {
	return nil, nil
}

func listByAuthorContext(e *echo.Echo, userID int64, username, role, authorID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reimbursements/author/:id")
	c.SetParamNames("id")
	c.SetParamValues(authorID)
	c.Set("user_id", userID)
	c.Set("username", username)
	c.Set("role", role)
	return c, rec
}

func TestReimbHandler_ListByAuthor_OwnHistory(t *testing.T) {
	e := newTestEcho()
	svc := &stubReimbService{
		getAllByUserFn: func(ctx context.Context, authorID int64) ([]domain.Reimbursement, error) {
			if authorID != 7 {
				t.Fatalf("unexpected author id: %d", authorID)
			}
			return []domain.Reimbursement{{ID: 42, AuthorFirst: "Eve", AuthorLast: "Evans"}}, nil
		},
	}
	h := NewReimbHandler(svc, &stubTrailService{})

	c, rec := listByAuthorContext(e, 7, "eevans", domain.RoleUser, "7")
	if err := h.ListByAuthor(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReimbHandler_ListByAuthor_OtherUserForbidden(t *testing.T) {
	e := newTestEcho()
	svc := &stubReimbService{
		getAllByUserFn: func(ctx context.Context, authorID int64) ([]domain.Reimbursement, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewReimbHandler(svc, &stubTrailService{})

	c, _ := listByAuthorContext(e, 7, "eevans", domain.RoleUser, "8")
	err := h.ListByAuthor(c)
	var sc domain.StatusCoder
	if !errors.As(err, &sc) || sc.Status() != http.StatusForbidden {
		t.Fatalf("expected 403 authorization error, got %v", err)
	}
}

func TestReimbHandler_ListByAuthor_ManagerReadsAny(t *testing.T) {
	e := newTestEcho()
	svc := &stubReimbService{
		getAllByUserFn: func(ctx context.Context, authorID int64) ([]domain.Reimbursement, error) {
			return []domain.Reimbursement{{ID: 1}}, nil
		},
	}
	h := NewReimbHandler(svc, &stubTrailService{})

	c, rec := listByAuthorContext(e, 2, "mmorris", domain.RoleManager, "8")
	if err := h.ListByAuthor(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReimbHandler_ListByAuthor_MissingClaims(t *testing.T) {
	e := newTestEcho()
	h := NewReimbHandler(&stubReimbService{}, &stubTrailService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err := h.ListByAuthor(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
