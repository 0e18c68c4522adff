package auth

import (
	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// Principal is the caller of a core operation. The zero value is anonymous.
type Principal struct {
	ID   uuid.UUID
	Role models.Role

	authenticated bool
}

// Anonymous returns the principal used for requests without a token
func Anonymous() Principal {
	return Principal{}
}

// NewPrincipal creates an authenticated principal
func NewPrincipal(id uuid.UUID, role models.Role) Principal {
	if !role.Valid() {
		role = models.RoleUser
	}
	return Principal{ID: id, Role: role, authenticated: true}
}

// IsAuthenticated reports whether the principal carries a verified identity
func (p Principal) IsAuthenticated() bool {
	return p.authenticated
}

// IsAdmin reports whether the principal is an authenticated admin
func (p Principal) IsAdmin() bool {
	return p.authenticated && p.Role == models.RoleAdmin
}

// Owns reports whether the principal is the given owner
func (p Principal) Owns(ownerID uuid.UUID) bool {
	return p.authenticated && p.ID == ownerID
}
