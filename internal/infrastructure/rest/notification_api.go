package rest

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// FeedPageSize is how many records one list fetch asks for.
const FeedPageSize = 50

// NotificationAPI implements ports.NotificationAPI.
type NotificationAPI struct {
	c *Client
}

func NewNotificationAPI(c *Client) *NotificationAPI {
	return &NotificationAPI{c: c}
}

func userPath(userID string) string {
	return "/notifications/user/" + url.PathEscape(userID)
}

// List returns the first page of the user's notifications.
func (a *NotificationAPI) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	page, err := a.Page(ctx, userID, 0, FeedPageSize)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// Page fetches one page of the user's notifications.
func (a *NotificationAPI) Page(ctx context.Context, userID string, page, size int) (domain.Page[domain.Notification], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	var resp domain.Page[domain.Notification]
	if err := a.c.get(ctx, userPath(userID), params, &resp); err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	for i := range resp.Content {
		resp.Content[i].Type = domain.ClassifyNotification(string(resp.Content[i].Type))
	}
	return resp, nil
}

func (a *NotificationAPI) UnreadCount(ctx context.Context, userID string) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := a.c.get(ctx, userPath(userID)+"/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (a *NotificationAPI) MarkRead(ctx context.Context, id string) error {
	return a.c.put(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (a *NotificationAPI) MarkManyRead(ctx context.Context, ids []string) error {
	return a.c.put(ctx, "/notifications/read", map[string][]string{"ids": ids}, nil)
}

func (a *NotificationAPI) MarkAllRead(ctx context.Context, userID string) error {
	return a.c.put(ctx, userPath(userID)+"/read-all", nil, nil)
}

func (a *NotificationAPI) Delete(ctx context.Context, id string) error {
	return a.c.delete(ctx, "/notifications/"+url.PathEscape(id))
}
