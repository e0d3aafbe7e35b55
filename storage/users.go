package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// UserFilter selects and orders account rows for the back office.
type UserFilter struct {
	Search    string // substring over first name, last name, email
	Role      string // empty or "all" disables the filter
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

const userColumns = `id, email, first_name, last_name, phone, role, is_active, created_at, updated_at`

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"email":      "email",
	"last_name":  "last_name",
	"role":       "role",
}

func userWhere(f UserFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf("(first_name ILIKE %s OR last_name ILIKE %s OR email ILIKE %s)", p, p, p))
	}
	if f.Role != "" && f.Role != "all" {
		args = append(args, f.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *PostgresStore) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	col, ok := userSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}

	where, args := userWhere(f)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		userColumns, where, col, dir, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) CountUsers(ctx context.Context, f UserFilter) (int, error) {
	where, args := userWhere(f)
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&count)
	return count, err
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := scanUser(s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), id), &u)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail finds a row by email, optionally excluding one id (used by
// the email-uniqueness check on update).
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	args := []interface{}{email}
	if excludeID != nil {
		query += " AND id <> $2"
		args = append(args, *excludeID)
	}

	var u models.User
	err := scanUser(s.pool.QueryRow(ctx, query, args...), &u)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) InsertUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, phone, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u *models.User) error {
	return s.pool.QueryRow(ctx, `
		UPDATE users SET
			email = $2, first_name = $3, last_name = $4, phone = $5, role = $6,
			is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.Role, u.IsActive,
	).Scan(&u.UpdatedAt)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// CountActiveUsersByRole backs the last-admin guard. Deactivated rows do not
// count; an inactive admin cannot administer anything.
func (s *PostgresStore) CountActiveUsersByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND is_active = TRUE`, role,
	).Scan(&count)
	return count, err
}

// RecentUsers returns the latest signups for the activity feed.
func (s *PostgresStore) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC LIMIT $1", userColumns)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
}
