package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jobhub/jobboard/internal/api/middleware"
	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

type stubNotificationService struct {
	ports.NotificationService

	listFn     func(ctx context.Context, actor domain.Actor, userID string, page, size int) (domain.Page[domain.Notification], error)
	markReadFn func(ctx context.Context, actor domain.Actor, ids []string) error
}

func (s *stubNotificationService) List(ctx context.Context, actor domain.Actor, userID string, page, size int) (domain.Page[domain.Notification], error) {
	return s.listFn(ctx, actor, userID, page, size)
}

func (s *stubNotificationService) MarkRead(ctx context.Context, actor domain.Actor, ids []string) error {
	return s.markReadFn(ctx, actor, ids)
}

func TestNotificationHandler_ListPassesActorAndPaging(t *testing.T) {
	svc := &stubNotificationService{
		listFn: func(_ context.Context, actor domain.Actor, userID string, page, size int) (domain.Page[domain.Notification], error) {
			if actor.ID != "u1" || actor.Role != domain.RoleUser {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if userID != "u1" || page != 2 || size != 10 {
				t.Fatalf("unexpected args %q %d %d", userID, page, size)
			}
			return domain.NewPage([]domain.Notification{{ID: "n1"}}, 21, page, size), nil
		},
	}
	c, rec := newTestContext(http.MethodGet, "/api/notifications/user/u1?page=2&size=10", "")
	c.SetParamNames("userId")
	c.SetParamValues("u1")
	c.Set(middleware.CtxUserID, "u1")
	c.Set(middleware.CtxRole, "ROLE_USER")

	if err := NewNotificationHandler(svc).List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page domain.Page[domain.Notification]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalPages != 3 || len(page.Content) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestNotificationHandler_RequiresAuthContext(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/notifications/user/u1", "")
	err := NewNotificationHandler(&stubNotificationService{}).List(c)
	if err == nil {
		t.Fatalf("expected error without auth context")
	}
}

func TestNotificationHandler_MarkManyRead(t *testing.T) {
	var got []string
	svc := &stubNotificationService{
		markReadFn: func(_ context.Context, _ domain.Actor, ids []string) error {
			got = ids
			return nil
		},
	}

	c, rec := newTestContext(http.MethodPut, "/api/notifications/read", `{"ids":["n1","n2"]}`)
	c.Set(middleware.CtxUserID, "u1")
	if err := NewNotificationHandler(svc).MarkManyRead(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent || len(got) != 2 {
		t.Fatalf("expected 204 with two ids, got %d %v", rec.Code, got)
	}

	c, _ = newTestContext(http.MethodPut, "/api/notifications/read", `{"ids":[]}`)
	c.Set(middleware.CtxUserID, "u1")
	if err := NewNotificationHandler(svc).MarkManyRead(c); err == nil {
		t.Fatalf("expected validation error for empty ids")
	}
}

func TestUserHandler_SetActiveOwnership(t *testing.T) {
	var calls int
	svc := &stubAccountService{
		setActiveFn: func(context.Context, string, bool) error {
			calls++
			return nil
		},
	}

	c, _ := newTestContext(http.MethodPut, "/api/users/u2/active", `{"active":false}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	c.Set(middleware.CtxUserID, "u1")
	c.Set(middleware.CtxRole, "USER")
	if err := NewUserHandler(svc).SetActive(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, rec := newTestContext(http.MethodPut, "/api/users/u2/active", `{"active":false}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	c.Set(middleware.CtxUserID, "a1")
	c.Set(middleware.CtxRole, "ADMIN")
	if err := NewUserHandler(svc).SetActive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent || calls != 1 {
		t.Fatalf("expected one call and 204, got %d calls, %d", calls, rec.Code)
	}
}
