package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetActive toggles a user's active flag. Callers may only change their own
// flag unless they are ADMIN.
//
// @Summary      Set the active flag
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User ID"
// @Param        body  body      setActiveRequest  true  "Active flag"
// @Success      204
// @Failure      403   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Router       /users/{id}/active [put]
func (h *UserHandler) SetActive(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if !actor.CanAccess(id) {
		return domain.ErrForbidden
	}

	var req setActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.SetActive(c.Request().Context(), id, *req.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
