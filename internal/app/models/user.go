package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UserRole is a row of the user_roles table
type UserRole struct {
	UserID    uuid.UUID `db:"user_id"`
	Role      Role      `db:"role"`
	UpdatedAt time.Time `db:"updated_at"`
}
