package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stackit/internal/database"
	"stackit/internal/models"
)

type NotificationService struct {
	store  database.ContentStore
	logger *zap.Logger
}

func NewNotificationService(store database.ContentStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// Inbox returns the user's latest notifications and then marks them all read. The
// notifications are returned as fetched, with their unread flags intact; a failure
// to mark them is logged and does not fail the call.
func (s *NotificationService) Inbox(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	notifications, err := s.store.GetUserNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if unread(notifications) == 0 {
		return notifications, nil
	}
	if err := s.store.MarkNotificationsRead(ctx, userID); err != nil {
		s.logger.Warn("marking notifications read failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return notifications, nil
}

func unread(notifications []*models.Notification) int {
	n := 0
	for _, notification := range notifications {
		if !notification.Read {
			n++
		}
	}
	return n
}
