package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
)

// RBAC enforces role-based access control. It assumes Auth ran first and
// stored "role" in the request context. Denials surface as domain
// authorization errors so they render through the central error handler
// like every other refused operation.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return domain.NewAuthorization("")
			}
			return next(c)
		}
	}
}
