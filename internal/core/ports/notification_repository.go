package ports

import (
	"context"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// NotificationRepository persists development-backend notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListByUser returns a most-recent-first page and the total count.
	ListByUser(ctx context.Context, userID string, page, size int) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, ids []string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}

// PushPublisher fans a push event out to a user's live connections.
type PushPublisher interface {
	Publish(userID string, event domain.PushEvent)
}
