package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// RBAC enforces role-based access control. Legacy ROLE_ prefixed names
// match their bare form.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			for _, r := range allowedRoles {
				if domain.RoleMatches(role, string(r)) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"message": domain.MessageAccessDenied})
		}
	}
}
