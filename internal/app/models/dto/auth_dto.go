package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/yigit/campusfound/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a new account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@uni.edu"`
	Password string `json:"password" binding:"required" example:"secret123"`
	FullName string `json:"fullName" binding:"required" example:"Ada Lovelace"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role" example:"user" enums:"user,admin"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// SetRoleRequest changes a user's role
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin" example:"admin"`
}

// BootstrapRequest carries the one-time bootstrap token
type BootstrapRequest struct {
	Token string `json:"token" binding:"required"`
}

// FromUser converts a user and its role to a UserResponse
func FromUser(user *models.User, role models.Role) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(role),
		CreatedAt: user.CreatedAt,
	}
}
