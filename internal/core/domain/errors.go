package domain

import "errors"

var (
	ErrMalformedToken  = errors.New("malformed session token")
	ErrMissingClaims   = errors.New("session token missing identity claims")
	ErrNoSession       = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrStaleResponse   = errors.New("stale response discarded")
	ErrPushUnavailable = errors.New("push channel unavailable")

	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotVerified          = errors.New("account not verified")
	ErrInvalidOTP           = errors.New("invalid or expired verification code")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("access forbidden")
)

// FallbackErrorMessage is shown when a failed call carries no usable message.
const FallbackErrorMessage = "Đã xảy ra lỗi, vui lòng thử lại"

// APIError is a rejected REST call reduced to what a form can display.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// UserMessage extracts the human-readable message from err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackErrorMessage
}
