package domain

import (
	"testing"
	"time"
)

func TestNotificationFromPush_RejectTemplate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := NotificationFromPush(PushEvent{Type: "REJECT", JobTitle: "Backend Dev", Reason: "budget cut"}, now)

	if n.Type != NotificationReject {
		t.Fatalf("expected REJECT, got %s", n.Type)
	}
	if want := `Bài đăng "Backend Dev" bị từ chối: budget cut`; n.Message != want {
		t.Fatalf("message = %q, want %q", n.Message, want)
	}
	if n.Read {
		t.Fatalf("pushed notification must start unread")
	}
	if !n.CreatedAt.Equal(now) {
		t.Fatalf("expected creation time to default to now")
	}
}

func TestClassifyNotification_Fallback(t *testing.T) {
	if got := ClassifyNotification("new_job"); got != NotificationNewJob {
		t.Fatalf("expected NEW_JOB, got %s", got)
	}
	if got := ClassifyNotification("PROMOTION"); got != NotificationUnknown {
		t.Fatalf("expected UNKNOWN, got %s", got)
	}
}

func TestRenderNotification_UnknownUsesFallbackMessage(t *testing.T) {
	title, msg := RenderNotification(NotificationUnknown, "", "", "Hệ thống bảo trì")
	if title != "Thông báo" || msg != "Hệ thống bảo trì" {
		t.Fatalf("unexpected render: %q / %q", title, msg)
	}
}

func TestNewPage_TotalPages(t *testing.T) {
	p := NewPage([]int{1, 2}, 5, 0, 2)
	if p.TotalPages != 3 || p.TotalElements != 5 {
		t.Fatalf("unexpected page: %+v", p)
	}
	empty := NewPage[int](nil, 0, 0, 10)
	if empty.Content == nil || empty.TotalPages != 0 {
		t.Fatalf("unexpected empty page: %+v", empty)
	}
}
