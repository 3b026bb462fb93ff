package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// PushServer attaches an upgraded connection to a user's push fan-out.
type PushServer interface {
	Serve(userID string, ws *websocket.Conn)
}

type PushHandler struct {
	hub      PushServer
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewPushHandler(hub PushServer, log zerolog.Logger) *PushHandler {
	return &PushHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Subscribe upgrades the request and streams the user's push events until
// the peer goes away.
//
// @Summary      Subscribe to push notifications
// @Tags         notifications
// @Security     BearerAuth
// @Param        userId  query  string  false  "User ID, defaults to the caller"
// @Success      101
// @Failure      403     {object}  ErrorBody
// @Router       /ws/notifications [get]
func (h *PushHandler) Subscribe(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	userID := c.QueryParam("userId")
	if userID == "" {
		userID = actor.ID
	}
	if !actor.CanAccess(userID) {
		return domain.ErrForbidden
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return nil
	}
	h.hub.Serve(userID, ws)
	return nil
}
