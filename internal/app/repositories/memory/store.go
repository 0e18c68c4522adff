// Package memory is an in-process implementation of the repositories, used by the
// "memory" database driver and by tests. It honours the same conditional-update
// semantics as the PostgreSQL repositories.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

type itemKey struct {
	kind models.ItemKind
	id   uuid.UUID
}

// Store holds every table behind a single lock
type Store struct {
	mu            sync.RWMutex
	items         map[itemKey]*models.Item
	claims        map[uuid.UUID]*models.Claim
	logs          []*models.ActivityLog
	notifications map[uuid.UUID]*models.Notification
	users         map[uuid.UUID]*models.User
	roles         map[uuid.UUID]models.UserRole

	Items         *ItemRepository
	Claims        *ClaimRepository
	ActivityLogs  *ActivityLogRepository
	Notifications *NotificationRepository
	Users         *UserRepository
}

// New creates an empty store
func New() *Store {
	s := &Store{
		items:         make(map[itemKey]*models.Item),
		claims:        make(map[uuid.UUID]*models.Claim),
		notifications: make(map[uuid.UUID]*models.Notification),
		users:         make(map[uuid.UUID]*models.User),
		roles:         make(map[uuid.UUID]models.UserRole),
	}
	s.Items = &ItemRepository{s: s}
	s.Claims = &ClaimRepository{s: s}
	s.ActivityLogs = &ActivityLogRepository{s: s}
	s.Notifications = &NotificationRepository{s: s}
	s.Users = &UserRepository{s: s}
	return s
}
