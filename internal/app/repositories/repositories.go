package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ItemRepository         *ItemRepository
	ClaimRepository        *ClaimRepository
	ActivityLogRepository  *ActivityLogRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		ItemRepository:         NewItemRepository(db),
		ClaimRepository:        NewClaimRepository(db),
		ActivityLogRepository:  NewActivityLogRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
