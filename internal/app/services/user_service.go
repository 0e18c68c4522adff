package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/auth"
	"github.com/yigit/campusfound/internal/app/lifecycle"
	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	pkgauth "github.com/yigit/campusfound/internal/pkg/auth"
)

// UserService manages roles
type UserService struct {
	users          UserStore
	effects        *SideEffects
	bootstrapToken string
	now            func() time.Time
	logger         zerolog.Logger
}

// NewUserService creates a new UserService. An empty bootstrapToken disables bootstrap.
func NewUserService(users UserStore, effects *SideEffects, bootstrapToken string, logger zerolog.Logger) *UserService {
	return &UserService{
		users:          users,
		effects:        effects,
		bootstrapToken: bootstrapToken,
		now:            time.Now,
		logger:         logger,
	}
}

// SetRole changes another user's role
func (s *UserService) SetRole(ctx context.Context, p auth.Principal, userID uuid.UUID, role models.Role) ([]string, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be one of: user admin")
	}
	if userID == p.ID {
		return nil, apperrors.NewForbiddenError("Administrators cannot change their own role")
	}

	previous, err := s.users.GetRole(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if err := s.users.SetRole(ctx, userID, role, s.now().UTC()); err != nil {
		return nil, storeError(err, "User not found")
	}

	s.logger.Info().Str("userID", userID.String()).Str("role", string(role)).Str("adminID", p.ID.String()).Msg("Role changed")
	return s.effects.emit(ctx, lifecycle.Effects{
		Audit: models.ActivityLog{
			AdminID:    p.ID,
			Action:     models.ActionChangedRole,
			EntityType: models.EntityUser,
			EntityID:   userID,
			Details:    map[string]interface{}{"from": string(previous), "to": string(role)},
		},
	}), nil
}

// Bootstrap promotes the principal to admin with the configured one-time token,
// as long as no admin exists yet
func (s *UserService) Bootstrap(ctx context.Context, p auth.Principal, token string) error {
	if err := auth.RequireAuthenticated(p); err != nil {
		return err
	}
	if s.bootstrapToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.bootstrapToken)) != 1 {
		return apperrors.NewForbiddenError("Invalid bootstrap token")
	}

	promoted, err := s.users.PromoteFirstAdmin(ctx, p.ID, s.now().UTC())
	if err != nil {
		return storeError(err, "User not found")
	}
	if !promoted {
		return apperrors.NewConflictError("An administrator already exists")
	}
	s.logger.Warn().Str("userID", p.ID.String()).Msg("Bootstrapped first administrator")
	return nil
}

// EnsureAdmin creates or promotes the configured seed administrator
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	now := s.now().UTC()

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.users.SetRole(ctx, user.ID, models.RoleAdmin, now)
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return err
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing seed admin password: %w", err)
	}
	return s.users.Create(ctx, &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, models.RoleAdmin)
}
