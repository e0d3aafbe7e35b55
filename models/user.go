package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a back-office or client account. Authentication itself is handled
// upstream; this service only manages the profile rows.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     string    `json:"phone" db:"phone"`
	Role      string    `json:"role" db:"role"` // admin, agent, client
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Favorite records one user's like of one property. Row existence is the
// like signal; there is no counter column.
type Favorite struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// User roles
const (
	RoleAdmin  = "admin"
	RoleAgent  = "agent"
	RoleClient = "client"
)

// ValidRole reports whether role is one of the known vocabulary values.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleClient:
		return true
	}
	return false
}
