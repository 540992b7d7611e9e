// internal/database/notification_repository.go
package database

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"stackit/internal/models"
)

const selectNotification = `*,
	profiles:sender_id(username, display_name, avatar_url),
	questions(title),
	answers(content)`

// GetUserNotifications returns the user's newest notifications with sender and content summaries.
func (c *RESTClient) GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	var rows []*models.Notification
	_, err := c.do(ctx, "GetUserNotifications", request{
		method: http.MethodGet,
		query: from(TableNotifications).
			Select(selectNotification).
			Eq("user_id", userID).
			Order("created_at", false).
			Limit(NotificationLimit),
	}, &rows)
	if err != nil {
		return nil, err
	}
	if err := decodeRows(c.validate, TableNotifications, rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// MarkNotificationsRead marks every unread notification of the user as read.
func (c *RESTClient) MarkNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := c.do(ctx, "MarkNotificationsRead", request{
		method: http.MethodPatch,
		query:  from(TableNotifications).Eq("user_id", userID).Eq("read", false),
		body:   map[string]bool{"read": true},
		prefer: []string{preferMinimal},
	}, nil)
	return err
}
