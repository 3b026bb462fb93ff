package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/api/middleware"
	"github.com/jobhub/jobboard/internal/core/domain"
)

// actorFromContext extracts the caller injected by the Auth middleware.
// A missing user id means the middleware did not run: reject with 401.
func actorFromContext(c echo.Context) (domain.Actor, error) {
	id, _ := c.Get(middleware.CtxUserID).(string)
	if id == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return domain.Actor{ID: id, Role: domain.CanonicalRole(role)}, nil
}
