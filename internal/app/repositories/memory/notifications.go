package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/helpers"
)

// NotificationRepository stores per-user notifications
type NotificationRepository struct {
	s *Store
}

// Create inserts a notification
func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	copied := *n
	r.s.notifications[n.ID] = &copied
	return nil
}

// List retrieves a user's notifications, newest first
func (r *NotificationRepository) List(_ context.Context, filter repositories.NotificationFilter) ([]*models.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Notification
	for _, n := range r.s.notifications {
		if n.UserID != filter.UserID || (filter.UnreadOnly && n.IsRead()) {
			continue
		}
		copied := *n
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	return helpers.PageSlice(matched, filter.Page, filter.Size), int64(len(matched)), nil
}

// MarkRead marks one of the user's notifications as read
func (r *NotificationRepository) MarkRead(_ context.Context, userID, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return apperrors.ErrResourceNotFound
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			readAt := at
			n.ReadAt = &readAt
			changed++
		}
	}
	return changed, nil
}
