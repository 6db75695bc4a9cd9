package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jengzang/taste-records-go/internal/models"
)

// NotificationAPI wraps the /notifications endpoints
type NotificationAPI struct {
	c *Client
}

// Notifications returns the notification endpoints
func (c *Client) Notifications() *NotificationAPI {
	return &NotificationAPI{c: c}
}

// NotificationList is the body of GET /notifications
type NotificationList struct {
	Data   []models.Notification `json:"data"`
	Unread int64                 `json:"unread"`
}

// List returns the latest notifications
func (a *NotificationAPI) List(ctx context.Context, unreadOnly bool) (*NotificationList, error) {
	path := "/api/v1/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var out NotificationList
	if err := a.c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRead acknowledges one notification
func (a *NotificationAPI) MarkRead(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", id), nil, nil)
}

// MarkAllRead acknowledges every notification
func (a *NotificationAPI) MarkAllRead(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := a.c.Do(ctx, http.MethodPost, "/api/v1/notifications/read-all", nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}
