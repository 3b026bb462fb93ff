package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type markManyRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// Create stores a notification and pushes it to the owner's live channels.
//
// @Summary      Create a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreateNotificationInput  true  "Notification"
// @Success      201   {object}  domain.Notification
// @Failure      400   {object}  ErrorBody
// @Failure      403   {object}  ErrorBody
// @Router       /notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	var req ports.CreateNotificationInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notifications.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// List returns one page of a user's notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true   "User ID"
// @Param        page    query     int     false  "Page number, zero-based"
// @Param        size    query     int     false  "Page size"
// @Success      200     {object}  domain.Page[domain.Notification]
// @Failure      403     {object}  ErrorBody
// @Router       /notifications/user/{userId} [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	result, err := h.notifications.List(c.Request().Context(), actor, c.Param("userId"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// UnreadCount returns the number of unread notifications.
//
// @Summary      Unread count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  countResponse
// @Failure      403     {object}  ErrorBody
// @Router       /notifications/user/{userId}/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	n, err := h.notifications.UnreadCount(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: n})
}

// MarkRead marks one notification read.
//
// @Summary      Mark one notification read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  ErrorBody
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), actor, []string{c.Param("id")}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkManyRead marks a set of notifications read.
//
// @Summary      Mark several notifications read
// @Tags         notifications
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  markManyRequest  true  "Notification IDs"
// @Success      204
// @Failure      400   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Router       /notifications/read [put]
func (h *NotificationHandler) MarkManyRead(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req markManyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), actor, req.IDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks every notification of a user read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      403     {object}  ErrorBody
// @Router       /notifications/user/{userId}/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.Request().Context(), actor, c.Param("userId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one notification.
//
// @Summary      Delete a notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  ErrorBody
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
