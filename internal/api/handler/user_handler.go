package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ersuite/reimbursement-api/internal/core/ports"
	"github.com/ersuite/reimbursement-api/internal/core/validation"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /v1/users. Without query parameters it returns every
// user; with exactly one parameter it performs a unique-key lookup, e.g.
// GET /v1/users?username=aanderson.
func (h *UserHandler) List(c echo.Context) error {
	params := c.QueryParams()
	if len(params) == 0 {
		users, err := h.service.GetAllUsers(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, users)
	}

	query := make(map[string]string, len(params))
	for key := range params {
		query[key] = params.Get(key)
	}

	user, err := h.service.GetUserByUniqueKey(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := validation.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create handles POST /v1/users. The role in the payload is ignored; new
// accounts always start with the default role.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.AddNewUser(c.Request().Context(), ports.NewUserInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /v1/users. The payload is a full replacement keyed
// by its id field.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateUser(c.Request().Context(), ports.UpdateUserInput{
		ID:        req.ID,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updatedResponse{Updated: updated})
}

// Delete handles DELETE /v1/users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
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
