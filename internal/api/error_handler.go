package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/api/handler"
	"github.com/jobhub/jobboard/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and a user-facing message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorBody{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Email hoặc mật khẩu không đúng"
	case errors.Is(err, domain.ErrNotVerified):
		return http.StatusForbidden, "Tài khoản chưa được xác thực, mã xác thực mới đã được gửi"
	case errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusBadRequest, "Mã xác thực không đúng hoặc đã hết hạn"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "Email đã được sử dụng"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "Không tìm thấy tài khoản"
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, "Không tìm thấy thông báo"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.MessageAccessDenied
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, domain.FallbackErrorMessage
}
