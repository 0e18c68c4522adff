package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
)

// UserRepository stores accounts and their roles
type UserRepository struct {
	s *Store
}

// Create inserts a user with its initial role
func (r *UserRepository) Create(_ context.Context, user *models.User, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	copied := *user
	copied.Email = email
	r.s.users[user.ID] = &copied
	r.s.roles[user.ID] = models.UserRole{UserID: user.ID, Role: role, UpdatedAt: user.CreatedAt}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	copied := *u
	return &copied, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

// GetRole returns the role stored for the user
func (r *UserRepository) GetRole(_ context.Context, userID uuid.UUID) (models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[userID]
	if !ok {
		return "", apperrors.ErrResourceNotFound
	}
	return role.Role, nil
}

// SetRole upserts the role of an existing user
func (r *UserRepository) SetRole(_ context.Context, userID uuid.UUID, role models.Role, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return apperrors.ErrResourceNotFound
	}
	r.s.roles[userID] = models.UserRole{UserID: userID, Role: role, UpdatedAt: at}
	return nil
}

// PromoteFirstAdmin makes the user an admin only when no admin exists yet
func (r *UserRepository) PromoteFirstAdmin(_ context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return false, apperrors.ErrResourceNotFound
	}
	for _, role := range r.s.roles {
		if role.Role == models.RoleAdmin {
			return false, nil
		}
	}
	r.s.roles[userID] = models.UserRole{UserID: userID, Role: models.RoleAdmin, UpdatedAt: at}
	return true, nil
}
