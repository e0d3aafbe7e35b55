package services

import (
	"log"

	"github.com/patrickassako/triomphe-immobilier/models"
)

// AuditLog is the slice of the SQLite store the audit service needs.
type AuditLog interface {
	Append(e *models.AuditEntry) error
	Recent(limit int) ([]models.AuditEntry, error)
}

// AuditService records admin mutations in the local audit log. A nil service
// is valid and records nothing, so callers never guard for it.
type AuditService struct {
	store AuditLog
	actor string
}

func NewAuditService(store AuditLog, actor string) *AuditService {
	if actor == "" {
		actor = "admin"
	}
	return &AuditService{store: store, actor: actor}
}

// Record appends one entry. Failures are logged and swallowed; the audit
// trail must never fail the mutation it describes.
func (s *AuditService) Record(action, entityID, detail string) {
	if s == nil || s.store == nil {
		return
	}
	err := s.store.Append(&models.AuditEntry{
		Actor:    s.actor,
		Action:   action,
		EntityID: entityID,
		Detail:   detail,
	})
	if err != nil {
		log.Printf("Warning: audit append failed for %s: %v", action, err)
	}
}

// Recent returns the most recent entries, newest first.
func (s *AuditService) Recent(limit int) ([]models.AuditEntry, error) {
	if s == nil || s.store == nil {
		return []models.AuditEntry{}, nil
	}
	return s.store.Recent(limit)
}
