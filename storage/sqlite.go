package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// AuditStore keeps the back-office audit trail in a local SQLite file,
// separate from the Postgres domain data. Losing it never affects the
// catalog.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(dbPath string) (*AuditStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &AuditStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *AuditStore) Close() error {
	return s.db.Close()
}

func (s *AuditStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY,
		actor TEXT,
		action TEXT NOT NULL,
		entity_id TEXT,
		detail TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append records one mutation. Called fire-and-forget from the services.
func (s *AuditStore) Append(e *models.AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO audit_log (actor, action, entity_id, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Actor, e.Action, e.EntityID, e.Detail, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, _ = res.LastInsertId()
	return nil
}

// Recent returns the newest entries, newest first.
func (s *AuditStore) Recent(limit int) ([]models.AuditEntry, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, actor, action, entity_id, detail, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
