package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// =============================================================================
// Favorites (likes)
// =============================================================================

// CountFavorites returns the like count for one property.
func (s *PostgresStore) CountFavorites(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM favorites WHERE property_id = $1`, propertyID,
	).Scan(&count)
	return count, err
}

// GetFavorite fetches the favorite row for a (user, property) pair, nil when
// absent.
func (s *PostgresStore) GetFavorite(ctx context.Context, userID, propertyID uuid.UUID) (*models.Favorite, error) {
	var f models.Favorite
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, property_id, created_at
		FROM favorites WHERE user_id = $1 AND property_id = $2`,
		userID, propertyID,
	).Scan(&f.ID, &f.UserID, &f.PropertyID, &f.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) InsertFavorite(ctx context.Context, f *models.Favorite) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO favorites (id, user_id, property_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		f.ID, f.UserID, f.PropertyID, f.CreatedAt,
	).Scan(&f.ID)
}

func (s *PostgresStore) DeleteFavorite(ctx context.Context, userID, propertyID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND property_id = $2`,
		userID, propertyID,
	)
	return err
}

// =============================================================================
// Shares
// =============================================================================

// GetShares reads the share counter. Only valid once the shares_count
// migration has been applied; callers gate on the capability flag.
func (s *PostgresStore) GetShares(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var count *int
	err := s.pool.QueryRow(ctx,
		`SELECT shares_count FROM properties WHERE id = $1`, propertyID,
	).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if count == nil {
		return 0, nil
	}
	return *count, nil
}

// IncrementShares bumps the share counter and returns the new value.
func (s *PostgresStore) IncrementShares(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		UPDATE properties SET shares_count = COALESCE(shares_count, 0) + 1
		WHERE id = $1
		RETURNING shares_count`, propertyID,
	).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return count, err
}
