package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
)

// NotificationService reads and acknowledges a user's notifications
type NotificationService struct {
	notifications NotificationStore
	now           func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications, now: time.Now}
}

// List returns the principal's notifications, newest first
func (s *NotificationService) List(ctx context.Context, p auth.Principal, unreadOnly bool, page, size int) (*Page[*models.Notification], error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	items, total, err := s.notifications.List(ctx, repositories.NotificationFilter{
		UserID:     p.ID,
		UnreadOnly: unreadOnly,
		Page:       page,
		Size:       size,
	})
	if err != nil {
		return nil, err
	}
	return &Page[*models.Notification]{Items: items, Total: total, Page: page, Size: size}, nil
}

// MarkRead marks one notification as read. Other users' notifications are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.RequireAuthenticated(p); err != nil {
		return err
	}
	if err := s.notifications.MarkRead(ctx, p.ID, id, s.now().UTC()); err != nil {
		return storeError(err, "Notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification of the principal as read
func (s *NotificationService) MarkAllRead(ctx context.Context, p auth.Principal) (int64, error) {
	if err := auth.RequireAuthenticated(p); err != nil {
		return 0, err
	}
	return s.notifications.MarkAllRead(ctx, p.ID, s.now().UTC())
}
