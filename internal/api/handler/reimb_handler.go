package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ersuite/reimbursement-api/internal/api/metrics"
	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
	"github.com/ersuite/reimbursement-api/internal/core/validation"
)

// ReimbHandler handles HTTP requests for the reimbursement lifecycle.
type ReimbHandler struct {
	service ports.ReimbService
	audit   ports.AuditService
}

func NewReimbHandler(service ports.ReimbService, audit ports.AuditService) *ReimbHandler {
	return &ReimbHandler{service: service, audit: audit}
}

// List handles GET /v1/reimbursements. Without query parameters it returns
// every reimbursement; with exactly one parameter it performs a unique-key
// lookup, e.g. GET /v1/reimbursements?id=42.
func (h *ReimbHandler) List(c echo.Context) error {
	params := c.QueryParams()
	if len(params) == 0 {
		reimbs, err := h.service.GetAllReimbes(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, toReimbResponses(reimbs))
	}

	query := make(map[string]string, len(params))
	for key := range params {
		query[key] = params.Get(key)
	}

	reimb, err := h.service.GetReimbByUniqueKey(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReimbResponse(*reimb))
}

// ListByAuthor handles GET /v1/reimbursements/author/:id. Employees may
// only read their own history; managers and administrators may read any.
func (h *ReimbHandler) ListByAuthor(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if p.Role == domain.RoleUser && p.UserID != id {
		return domain.NewAuthorization("you may only view your own reimbursements")
	}

	reimbs, err := h.service.GetAllByUserID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReimbResponses(reimbs))
}

// Get handles GET /v1/reimbursements/:id.
func (h *ReimbHandler) Get(c echo.Context) error {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reimb, err := h.service.GetReimbByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReimbResponse(*reimb))
}

// Create handles POST /v1/reimbursements. New requests always start
// Pending regardless of the payload.
func (h *ReimbHandler) Create(c echo.Context) error {
	var req createReimbRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reimb, err := h.service.AddNewReimb(c.Request().Context(), ports.NewReimbInput{
		Amount:      req.Amount,
		Description: req.Description,
		Receipt:     req.Receipt,
		Type:        req.Type,
		AuthorFirst: req.AuthorFirst,
		AuthorLast:  req.AuthorLast,
	})
	if err != nil {
		return err
	}

	metrics.ReimbsCreatedTotal.WithLabelValues(reimb.Type).Inc()

	return c.JSON(http.StatusCreated, toReimbResponse(*reimb))
}

// Update handles PUT /v1/reimbursements. A Pending target edits the request
// details; an Approved or Denied target records the decision.
func (h *ReimbHandler) Update(c echo.Context) error {
	var req updateReimbRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateReimb(c.Request().Context(), ports.UpdateReimbInput{
		ID:            req.ID,
		Amount:        req.Amount,
		Description:   req.Description,
		Receipt:       req.Receipt,
		Type:          req.Type,
		Status:        domain.ReimbStatus(req.Status),
		AuthorFirst:   req.AuthorFirst,
		AuthorLast:    req.AuthorLast,
		ResolverFirst: req.ResolverFirst,
		ResolverLast:  req.ResolverLast,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updatedResponse{Updated: updated})
}

// Delete handles DELETE /v1/reimbursements/:id.
func (h *ReimbHandler) Delete(c echo.Context) error {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deleted, err := h.service.DeleteByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: deleted})
}

// Decisions handles GET /v1/reimbursements/:id/decisions and returns the
// append-only decision trail for one reimbursement.
func (h *ReimbHandler) Decisions(c echo.Context) error {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	recs, err := h.audit.Trail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDecisionResponses(recs))
}
