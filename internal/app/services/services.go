// Package services holds the moderation workflow: item and claim lifecycles,
// their side effects, and the account and notification operations around them.
// Every operation takes the calling principal explicitly.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/app/repositories"
)

// ItemStore persists lost and found items
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, kind models.ItemKind, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, filter repositories.ItemFilter) ([]*models.Item, int64, error)
	UpdateStatus(ctx context.Context, kind models.ItemKind, id uuid.UUID, from, to models.ItemStatus, change repositories.StatusChange) (*models.Item, error)
	UpdateDetails(ctx context.Context, item *models.Item, allowed []models.ItemStatus) (*models.Item, error)
	Delete(ctx context.Context, kind models.ItemKind, id uuid.UUID) error
}

// ClaimStore persists claims
type ClaimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	List(ctx context.Context, filter repositories.ClaimFilter) ([]*models.Claim, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ClaimStatus, review repositories.ClaimReview) (*models.Claim, error)
}

// ActivityLogStore is the audit sink
type ActivityLogStore interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter repositories.ActivityLogFilter) ([]*models.ActivityLog, int64, error)
}

// NotificationStore is the notification sink
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter repositories.NotificationFilter) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

// UserStore persists accounts and roles
type UserStore interface {
	Create(ctx context.Context, user *models.User, role models.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error)
	SetRole(ctx context.Context, userID uuid.UUID, role models.Role, at time.Time) error
	PromoteFirstAdmin(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error)
}

// NotificationPublisher pushes a stored notification to connected clients
type NotificationPublisher interface {
	Publish(userID uuid.UUID, n *models.Notification)
}

// Page is one page of a listing
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

// ItemResult is an item returned by an admin action together with side effect warnings
type ItemResult struct {
	Item     *models.Item
	Warnings []string
}

// ClaimResult is a claim returned by an admin action together with side effect warnings
type ClaimResult struct {
	Claim    *models.Claim
	Warnings []string
}
