package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/logger"
)

// RoleReader reads roles from the user_roles table
type RoleReader interface {
	GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error)
}

// AuthorizationService resolves principals and answers role questions
type AuthorizationService struct {
	roles RoleReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(roles RoleReader) *AuthorizationService {
	return &AuthorizationService{roles: roles}
}

// RoleOf returns the role of a user. Users without a user_roles row are plain users.
func (s *AuthorizationService) RoleOf(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	role, err := s.roles.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return models.RoleUser, nil
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error reading user role")
		return "", fmt.Errorf("failed to read role: %w", err)
	}
	return role, nil
}

// ResolvePrincipal builds the principal for an authenticated user id. The role is
// read on every call so role changes apply to the next request.
func (s *AuthorizationService) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (Principal, error) {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(userID, role), nil
}

// RequireAuthenticated returns ErrUnauthenticated for anonymous principals
func RequireAuthenticated(p Principal) error {
	if !p.IsAuthenticated() {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin validates that the principal is an admin or returns an authorization error.
// Anonymous principals get the same authorization error.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return apperrors.NewForbiddenError("Only administrators can perform this action")
	}
	return nil
}

// CanModifyItem reports whether the principal may edit or delete the item
func CanModifyItem(p Principal, item *models.Item) bool {
	return p.Owns(item.OwnerID) || p.IsAdmin()
}

// CanReadClaim reports whether the principal may read the claim
func CanReadClaim(p Principal, claim *models.Claim) bool {
	return p.Owns(claim.ClaimantID) || p.IsAdmin()
}
