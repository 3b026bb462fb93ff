package ports

import (
	"context"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// NotificationAPI is the REST collaborator behind the notification feed.
type NotificationAPI interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkManyRead(ctx context.Context, ids []string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}

// PushChannel delivers live events for one user until ctx ends or the
// channel gives up. A give-up is reported as domain.ErrPushUnavailable.
type PushChannel interface {
	Listen(ctx context.Context, userID string, handle func(domain.PushEvent)) error
}

// Alerter raises toast/desktop alerts for pushed notifications.
type Alerter interface {
	Permitted() bool
	Alert(ctx context.Context, n domain.Notification)
}
