package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

type stubNotificationAPI struct {
	mu sync.Mutex

	lists    [][]domain.Notification
	listGate []chan struct{}
	count    int
	countErr error

	markReadErr error
	markAllErr  error
	deleteErr   error

	markReadCalls int
	markedMany    [][]string
	deleted       []string
}

func (a *stubNotificationAPI) List(ctx context.Context, _ string) ([]domain.Notification, error) {
	a.mu.Lock()
	var gate chan struct{}
	if len(a.listGate) > 0 {
		gate, a.listGate = a.listGate[0], a.listGate[1:]
	}
	var items []domain.Notification
	if len(a.lists) > 0 {
		items, a.lists = a.lists[0], a.lists[1:]
	}
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return items, nil
}

func (a *stubNotificationAPI) UnreadCount(context.Context, string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count, a.countErr
}

func (a *stubNotificationAPI) MarkRead(context.Context, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.markReadCalls++
	return a.markReadErr
}

func (a *stubNotificationAPI) MarkManyRead(_ context.Context, ids []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.markedMany = append(a.markedMany, ids)
	return a.markReadErr
}

func (a *stubNotificationAPI) MarkAllRead(context.Context, string) error {
	return a.markAllErr
}

func (a *stubNotificationAPI) Delete(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, id)
	return a.deleteErr
}

type stubAlerter struct {
	permitted bool
	alerts    []domain.Notification
}

func (a *stubAlerter) Permitted() bool { return a.permitted }

func (a *stubAlerter) Alert(_ context.Context, n domain.Notification) {
	a.alerts = append(a.alerts, n)
}

func sampleNotifications() []domain.Notification {
	return []domain.Notification{
		{ID: "n1", Type: domain.NotificationApprove, Read: false},
		{ID: "n2", Type: domain.NotificationNewJob, Read: true},
		{ID: "n3", Type: domain.NotificationReject, Read: false},
	}
}

func newLoadedFeed(t *testing.T, api *stubNotificationAPI, alerter *stubAlerter) *NotificationFeed {
	t.Helper()
	api.lists = append([][]domain.Notification{sampleNotifications()}, api.lists...)
	var alerts ports.Alerter
	if alerter != nil {
		alerts = alerter
	}
	feed := NewNotificationFeed(api, alerts, "u1", time.Minute, zerolog.Nop())
	if err := feed.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if got := feed.Snapshot().Unread; got != 2 {
		t.Fatalf("expected 2 unread after load, got %d", got)
	}
	return feed
}

func TestNotificationFeed_MarkAsRead_CounterNeverNegative(t *testing.T) {
	api := &stubNotificationAPI{}
	feed := newLoadedFeed(t, api, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := feed.MarkAsRead(ctx, "n1"); err != nil {
			t.Fatalf("MarkAsRead returned error: %v", err)
		}
	}
	if got := feed.Snapshot().Unread; got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
	if api.markReadCalls != 1 {
		t.Fatalf("already-read records must not be re-sent, got %d calls", api.markReadCalls)
	}

	if err := feed.MarkAsRead(ctx, "n3"); err != nil {
		t.Fatalf("MarkAsRead returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = feed.MarkAsRead(ctx, "n3")
		_ = feed.MarkAsRead(ctx, "n2")
	}
	if got := feed.Snapshot().Unread; got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
}

func TestNotificationFeed_MarkAsRead_RollsBackOnFailure(t *testing.T) {
	api := &stubNotificationAPI{markReadErr: errors.New("503")}
	feed := newLoadedFeed(t, api, nil)

	if err := feed.MarkAsRead(context.Background(), "n1"); err == nil {
		t.Fatalf("expected error from MarkAsRead")
	}
	s := feed.Snapshot()
	if s.Unread != 2 {
		t.Fatalf("expected counter to be restored to 2, got %d", s.Unread)
	}
	if s.Items[0].Read {
		t.Fatalf("expected record n1 to be unread again")
	}
}

func TestNotificationFeed_MarkManyAsRead(t *testing.T) {
	api := &stubNotificationAPI{}
	feed := newLoadedFeed(t, api, nil)

	if err := feed.MarkManyAsRead(context.Background(), []string{"n1", "n2", "n3"}); err != nil {
		t.Fatalf("MarkManyAsRead returned error: %v", err)
	}
	if got := feed.Snapshot().Unread; got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
	if len(api.markedMany) != 1 || len(api.markedMany[0]) != 3 {
		t.Fatalf("unexpected batch calls %+v", api.markedMany)
	}
}

func TestNotificationFeed_MarkAllAsRead_RollbackRestoresCounter(t *testing.T) {
	api := &stubNotificationAPI{count: 7}
	feed := newLoadedFeed(t, api, nil)
	ctx := context.Background()
	// Counter covers records beyond the loaded page.
	if err := feed.SyncUnreadCount(ctx); err != nil {
		t.Fatalf("SyncUnreadCount returned error: %v", err)
	}

	api.markAllErr = errors.New("timeout")
	if err := feed.MarkAllAsRead(ctx); err == nil {
		t.Fatalf("expected error from MarkAllAsRead")
	}
	s := feed.Snapshot()
	if s.Unread != 7 {
		t.Fatalf("expected counter 7 after rollback, got %d", s.Unread)
	}
	if s.Items[0].Read || s.Items[2].Read || !s.Items[1].Read {
		t.Fatalf("unexpected read flags after rollback: %+v", s.Items)
	}

	api.markAllErr = nil
	if err := feed.MarkAllAsRead(ctx); err != nil {
		t.Fatalf("MarkAllAsRead returned error: %v", err)
	}
	if got := feed.Snapshot().Unread; got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
}

func TestNotificationFeed_Delete(t *testing.T) {
	api := &stubNotificationAPI{}
	feed := newLoadedFeed(t, api, nil)
	ctx := context.Background()

	if err := feed.Delete(ctx, "n2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if s := feed.Snapshot(); s.Unread != 2 || len(s.Items) != 2 {
		t.Fatalf("deleting a read record must keep the counter, got %+v", s)
	}
	if err := feed.Delete(ctx, "n3"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if got := feed.Snapshot().Unread; got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
}

func TestNotificationFeed_Delete_RollbackReinserts(t *testing.T) {
	api := &stubNotificationAPI{deleteErr: errors.New("500")}
	feed := newLoadedFeed(t, api, nil)

	if err := feed.Delete(context.Background(), "n1"); err == nil {
		t.Fatalf("expected error from Delete")
	}
	s := feed.Snapshot()
	if len(s.Items) != 3 || s.Items[0].ID != "n1" {
		t.Fatalf("expected n1 back at its position, got %+v", s.Items)
	}
	if s.Unread != 2 {
		t.Fatalf("expected counter 2, got %d", s.Unread)
	}
}

func TestNotificationFeed_RejectPushEvent(t *testing.T) {
	api := &stubNotificationAPI{}
	alerter := &stubAlerter{permitted: true}
	feed := newLoadedFeed(t, api, alerter)
	before := feed.Snapshot().Unread

	feed.OnPushEvent(context.Background(), domain.PushEvent{
		Type:     "REJECT",
		ID:       "p1",
		JobTitle: "Backend Dev",
		Reason:   "budget cut",
	})

	s := feed.Snapshot()
	if s.Unread != before+1 {
		t.Fatalf("expected counter to grow by exactly 1, got %d -> %d", before, s.Unread)
	}
	head := s.Items[0]
	if head.Type != domain.NotificationReject || head.Read {
		t.Fatalf("unexpected head record %+v", head)
	}
	if want := `Bài đăng "Backend Dev" bị từ chối: budget cut`; head.Message != want {
		t.Fatalf("message = %q, want %q", head.Message, want)
	}
	if len(alerter.alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerter.alerts))
	}

	// Redelivery of the same event is ignored.
	feed.OnPushEvent(context.Background(), domain.PushEvent{Type: "REJECT", ID: "p1"})
	if got := feed.Snapshot().Unread; got != before+1 {
		t.Fatalf("duplicate push event changed counter to %d", got)
	}
}

func TestNotificationFeed_PushWithoutPermissionDoesNotAlert(t *testing.T) {
	api := &stubNotificationAPI{}
	alerter := &stubAlerter{}
	feed := newLoadedFeed(t, api, alerter)

	feed.OnPushEvent(context.Background(), domain.PushEvent{Type: "weird"})

	s := feed.Snapshot()
	if s.Items[0].Type != domain.NotificationUnknown || s.Items[0].ID == "" {
		t.Fatalf("unexpected head record %+v", s.Items[0])
	}
	if len(alerter.alerts) != 0 {
		t.Fatalf("alert raised without permission")
	}
}

func TestNotificationFeed_StaleRefreshIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	api := &stubNotificationAPI{
		lists: [][]domain.Notification{
			{{ID: "old", Read: false}},
			{{ID: "new1", Read: false}, {ID: "new2", Read: true}},
		},
		listGate: []chan struct{}{slow, nil},
	}
	feed := NewNotificationFeed(api, nil, "u1", time.Minute, zerolog.Nop())
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- feed.Refresh(ctx) }()

	// Wait until the slow fetch has been issued.
	deadline := time.Now().Add(2 * time.Second)
	for {
		api.mu.Lock()
		issued := len(api.listGate) == 1
		api.mu.Unlock()
		if issued {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("first refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := feed.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh returned error: %v", err)
	}
	close(slow)
	if err := <-errc; !errors.Is(err, domain.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}

	s := feed.Snapshot()
	if len(s.Items) != 2 || s.Items[0].ID != "new1" || s.Unread != 1 {
		t.Fatalf("stale response leaked into state: %+v", s)
	}
	if s.Loading {
		t.Fatalf("loading flag left set")
	}
}

func TestNotificationFeed_SyncUnreadCountFloorsAtZero(t *testing.T) {
	api := &stubNotificationAPI{count: -3}
	feed := NewNotificationFeed(api, nil, "u1", time.Minute, zerolog.Nop())

	if err := feed.SyncUnreadCount(context.Background()); err != nil {
		t.Fatalf("SyncUnreadCount returned error: %v", err)
	}
	if got := feed.Snapshot().Unread; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestNotificationFeed_SubscribeReceivesState(t *testing.T) {
	api := &stubNotificationAPI{}
	feed := newLoadedFeed(t, api, nil)

	var last FeedState
	cancel := feed.Subscribe(func(s FeedState) { last = s })
	feed.OnPushEvent(context.Background(), domain.PushEvent{Type: "NEW_JOB", ID: "p9", JobTitle: "Go Dev"})
	cancel()

	if last.Unread != 3 || last.Items[0].ID != "p9" {
		t.Fatalf("subscriber saw %+v", last)
	}
}
