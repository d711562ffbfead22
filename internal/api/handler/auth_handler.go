package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

// tokenTTL bounds how long an issued session token is accepted.
const tokenTTL = 8 * time.Hour

// AuthHandler exposes login and self-service registration.
type AuthHandler struct {
	userService ports.UserService
	jwtSecret   string
}

func NewAuthHandler(userService ports.UserService, jwtSecret string) *AuthHandler {
	return &AuthHandler{userService: userService, jwtSecret: jwtSecret}
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.userService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, err := h.issueToken(profile)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: profile})
}

// Register creates a new account. The role is always the default; an
// administrator promotes users through the user management endpoints.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.userService.AddNewUser(c.Request().Context(), ports.NewUserInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: profile})
}

func (h *AuthHandler) issueToken(p *ports.UserProfile) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  p.ID,
		"username": p.Username,
		"role":     p.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
