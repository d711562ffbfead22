package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// principal is the identity the Auth middleware injected into the request.
type principal struct {
	UserID   int64
	Username string
	Role     string
}

// ctxPrincipal extracts the auth claims and performs a fast-fail check
// before any service call: role and username must be non-empty (presence
// proves the middleware ran and the token carried a usable identity).
func ctxPrincipal(c echo.Context) (principal, error) {
	role, _ := c.Get("role").(string)
	username, _ := c.Get("username").(string)
	if role == "" || username == "" {
		return principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(int64)
	return principal{UserID: userID, Username: username, Role: role}, nil
}
