package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotificationNewJob  NotificationType = "NEW_JOB"
	NotificationApprove NotificationType = "APPROVE"
	NotificationReject  NotificationType = "REJECT"
	NotificationDelete  NotificationType = "DELETE"
	NotificationUnknown NotificationType = "UNKNOWN"
)

// ClassifyNotification maps a wire discriminator onto the closed set.
func ClassifyNotification(s string) NotificationType {
	switch t := NotificationType(strings.ToUpper(strings.TrimSpace(s))); t {
	case NotificationNewJob, NotificationApprove, NotificationReject, NotificationDelete:
		return t
	}
	return NotificationUnknown
}

// Notification is a single feed record.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	JobTitle  string           `json:"jobTitle,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	JobID     string           `json:"jobId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// PushEvent is an inbound message on the push channel.
type PushEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	JobID     string    `json:"jobId,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// RenderNotification returns the title and message template for a type.
// fallback is used as the message of unknown types when non-empty.
func RenderNotification(t NotificationType, jobTitle, reason, fallback string) (title, message string) {
	switch t {
	case NotificationNewJob:
		return "Việc làm mới", fmt.Sprintf("Có việc làm mới: \"%s\"", jobTitle)
	case NotificationApprove:
		return "Bài đăng đã được duyệt", fmt.Sprintf("Bài đăng \"%s\" đã được duyệt", jobTitle)
	case NotificationReject:
		if reason == "" {
			return "Bài đăng bị từ chối", fmt.Sprintf("Bài đăng \"%s\" bị từ chối", jobTitle)
		}
		return "Bài đăng bị từ chối", fmt.Sprintf("Bài đăng \"%s\" bị từ chối: %s", jobTitle, reason)
	case NotificationDelete:
		if reason == "" {
			return "Bài đăng đã bị xóa", fmt.Sprintf("Bài đăng \"%s\" đã bị xóa", jobTitle)
		}
		return "Bài đăng đã bị xóa", fmt.Sprintf("Bài đăng \"%s\" đã bị xóa: %s", jobTitle, reason)
	}
	if fallback != "" {
		return "Thông báo", fallback
	}
	return "Thông báo", "Bạn có thông báo mới"
}

// NotificationFromPush synthesizes an unread record from a push event.
func NotificationFromPush(ev PushEvent, now time.Time) Notification {
	t := ClassifyNotification(ev.Type)
	title, msg := RenderNotification(t, ev.JobTitle, ev.Reason, ev.Message)
	created := ev.CreatedAt
	if created.IsZero() {
		created = now
	}
	return Notification{
		ID:        ev.ID,
		Type:      t,
		Title:     title,
		Message:   msg,
		JobTitle:  ev.JobTitle,
		Reason:    ev.Reason,
		JobID:     ev.JobID,
		CreatedAt: created,
	}
}
