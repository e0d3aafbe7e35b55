package models

import "time"

// ActivityItem is one entry of the merged recent-activity feed shown on the
// admin dashboard (properties, contacts and users interleaved).
type ActivityItem struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"` // property, contact, user
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Time        string      `json:"time"`   // French relative label ("Il y a 2 heures")
	Status      string      `json:"status"` // success, warning, info
	CreatedAt   time.Time   `json:"-"`
	Metadata    interface{} `json:"metadata,omitempty"`
}

// AuditEntry is one back-office mutation recorded in the local audit log.
type AuditEntry struct {
	ID        int64     `json:"id" db:"id"`
	Actor     string    `json:"actor" db:"actor"`
	Action    string    `json:"action" db:"action"` // property.create, contact.status, user.delete, ...
	EntityID  string    `json:"entity_id" db:"entity_id"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Activity item types
const (
	ActivityTypeProperty = "property"
	ActivityTypeContact  = "contact"
	ActivityTypeUser     = "user"
)
