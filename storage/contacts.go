package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// ContactFilter selects and orders lead messages for the back office.
type ContactFilter struct {
	Status    string // empty or "all" disables the filter
	SortBy    string // column name, default created_at
	SortOrder string // asc or desc, default desc
	Page      int
	Limit     int
}

const contactColumns = `id, first_name, last_name, email, phone, subject, message,
	property_id, status, notes, created_at, updated_at`

var contactSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
	"last_name":  "last_name",
}

func contactOrderClause(f ContactFilter) string {
	col, ok := contactSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	return col + " " + dir
}

func (s *PostgresStore) InsertContact(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contacts (
			id, first_name, last_name, email, phone, subject, message,
			property_id, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Subject, c.Message,
		c.PropertyID, c.Status, c.Notes, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

// ListContacts returns one page of lead messages, linked property summaries
// attached.
func (s *PostgresStore) ListContacts(ctx context.Context, f ContactFilter) ([]models.Contact, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	where, args := contactWhere(f)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	query := fmt.Sprintf(`SELECT %s FROM contacts %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		contactColumns, where, contactOrderClause(f), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachContactProperties(ctx, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *PostgresStore) CountContacts(ctx context.Context, f ContactFilter) (int, error) {
	where, args := contactWhere(f)
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contacts "+where, args...).Scan(&count)
	return count, err
}

func contactWhere(f ContactFilter) (string, []interface{}) {
	if f.Status != "" && f.Status != "all" {
		return "WHERE status = $1", []interface{}{f.Status}
	}
	return "", nil
}

func (s *PostgresStore) GetContactByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	query := fmt.Sprintf("SELECT %s FROM contacts WHERE id = $1", contactColumns)

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	if err := s.attachContactProperties(ctx, contacts); err != nil {
		return nil, err
	}
	return &contacts[0], nil
}

// UpdateContact overwrites status and notes; updated_at always refreshes.
func (s *PostgresStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	return s.pool.QueryRow(ctx, `
		UPDATE contacts SET status = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Status, c.Notes,
	).Scan(&c.UpdatedAt)
}

func (s *PostgresStore) DeleteContact(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	return err
}

// ContactStatusCounts returns the per-status breakdown in one pass.
func (s *PostgresStore) ContactStatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountContactsSince counts leads created at or after the cutoff.
func (s *PostgresStore) CountContactsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM contacts WHERE created_at >= $1`, since,
	).Scan(&count)
	return count, err
}

// RecentContacts returns the latest rows for the activity feed.
func (s *PostgresStore) RecentContacts(ctx context.Context, limit int) ([]models.Contact, error) {
	query := fmt.Sprintf("SELECT %s FROM contacts ORDER BY created_at DESC LIMIT $1", contactColumns)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContacts(rows)
}

func scanContacts(rows pgx.Rows) ([]models.Contact, error) {
	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Subject, &c.Message,
			&c.PropertyID, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// attachContactProperties bulk-loads title/slug summaries for linked listings.
func (s *PostgresStore) attachContactProperties(ctx context.Context, contacts []models.Contact) error {
	ids := make([]uuid.UUID, 0, len(contacts))
	for i := range contacts {
		if contacts[i].PropertyID != nil {
			ids = append(ids, *contacts[i].PropertyID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, slug FROM properties WHERE id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	summaries := make(map[uuid.UUID]*models.Property)
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug); err != nil {
			return err
		}
		summaries[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range contacts {
		if contacts[i].PropertyID != nil {
			contacts[i].Property = summaries[*contacts[i].PropertyID]
		}
	}
	return nil
}
