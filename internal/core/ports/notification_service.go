package ports

import (
	"context"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// CreateNotificationInput is what a backend producer submits.
type CreateNotificationInput struct {
	UserID   string `json:"userId" validate:"required"`
	Type     string `json:"type" validate:"required"`
	JobTitle string `json:"jobTitle"`
	Reason   string `json:"reason"`
	JobID    string `json:"jobId"`
	Message  string `json:"message"`
}

// NotificationService is the development backend's notification use cases.
type NotificationService interface {
	Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error)
	List(ctx context.Context, actor domain.Actor, userID string, page, size int) (domain.Page[domain.Notification], error)
	UnreadCount(ctx context.Context, actor domain.Actor, userID string) (int64, error)
	MarkRead(ctx context.Context, actor domain.Actor, ids []string) error
	MarkAllRead(ctx context.Context, actor domain.Actor, userID string) error
	Delete(ctx context.Context, actor domain.Actor, id string) error
}
