package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/metrics"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type notificationService struct {
	repo      ports.NotificationRepository
	publisher ports.PushPublisher
	log       zerolog.Logger
}

// NewNotificationService returns the backend NotificationService. publisher
// may be nil, in which case nothing is pushed.
func NewNotificationService(repo ports.NotificationRepository, publisher ports.PushPublisher, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, publisher: publisher, log: log}
}

// Create stores a rendered notification and pushes it to the owner.
func (s *notificationService) Create(ctx context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("create notification: %w", domain.ErrUserNotFound)
	}
	t := domain.ClassifyNotification(in.Type)
	title, msg := domain.RenderNotification(t, in.JobTitle, in.Reason, in.Message)

	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      t,
		Title:     title,
		Message:   msg,
		JobTitle:  in.JobTitle,
		Reason:    in.Reason,
		JobID:     in.JobID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(t)).Inc()

	if s.publisher != nil {
		s.publisher.Publish(n.UserID, domain.PushEvent{
			Type:      string(n.Type),
			ID:        n.ID,
			JobTitle:  n.JobTitle,
			Reason:    n.Reason,
			JobID:     n.JobID,
			Message:   in.Message,
			CreatedAt: n.CreatedAt,
		})
	}

	s.log.Info().
		Str("notification_id", n.ID).
		Str("user_id", n.UserID).
		Str("type", string(n.Type)).
		Msg("notification created")
	return n, nil
}

// List returns one page of the user's notifications, most recent first.
func (s *notificationService) List(ctx context.Context, actor domain.Actor, userID string, page, size int) (domain.Page[domain.Notification], error) {
	if !actor.CanAccess(userID) {
		return domain.Page[domain.Notification]{}, domain.ErrForbidden
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.repo.ListByUser(ctx, userID, page, size)
	if err != nil {
		return domain.Page[domain.Notification]{}, fmt.Errorf("list notifications: %w", err)
	}
	return domain.NewPage(items, total, page, size), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor domain.Actor, userID string) (int64, error) {
	if !actor.CanAccess(userID) {
		return 0, domain.ErrForbidden
	}
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead marks ids read. Every id must exist and belong to the actor;
// nothing is written otherwise.
func (s *notificationService) MarkRead(ctx context.Context, actor domain.Actor, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	owner := ""
	for _, id := range ids {
		n, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(n.UserID) {
			return domain.ErrForbidden
		}
		if owner != "" && owner != n.UserID {
			return domain.ErrForbidden
		}
		owner = n.UserID
	}
	if err := s.repo.MarkRead(ctx, owner, ids); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor domain.Actor, userID string) error {
	if !actor.CanAccess(userID) {
		return domain.ErrForbidden
	}
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			return err
		}
		return fmt.Errorf("delete notification: %w", err)
	}
	if !actor.CanAccess(n.UserID) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
