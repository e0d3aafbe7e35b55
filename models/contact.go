package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is an inbound lead message from the public contact form, tracked
// through a four-state workflow by the back office.
type Contact struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Phone      string     `json:"phone" db:"phone"`
	Subject    string     `json:"subject" db:"subject"`
	Message    string     `json:"message" db:"message"`
	PropertyID *uuid.UUID `json:"property_id" db:"property_id"`
	Status     string     `json:"status" db:"status"` // new, in_progress, completed, cancelled
	Notes      string     `json:"notes" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	Property *Property `json:"property,omitempty"`
}

// ContactStats is the per-status breakdown served to the admin dashboard.
type ContactStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Recent24h  int `json:"recent_24h"`
}

// Contact status. Transitions are admin-triggered overwrites; nothing moves
// automatically.
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusCompleted  = "completed"
	ContactStatusCancelled  = "cancelled"
)

// ValidContactStatus reports whether status is part of the workflow vocabulary.
func ValidContactStatus(status string) bool {
	switch status {
	case ContactStatusNew, ContactStatusInProgress, ContactStatusCompleted, ContactStatusCancelled:
		return true
	}
	return false
}
