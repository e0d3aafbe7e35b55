package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// ListLocations returns every neighbourhood, ordered by name for the public
// search dropdown.
func (s *PostgresStore) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, city, region, created_at
		FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug, &l.City, &l.Region, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *PostgresStore) locationsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Location, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, city, region, created_at
		FROM locations WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make(map[uuid.UUID]models.Location)
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug, &l.City, &l.Region, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations[l.ID] = l
	}
	return locations, rows.Err()
}

func (s *PostgresStore) categoriesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, created_at
		FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make(map[uuid.UUID]models.Category)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories[c.ID] = c
	}
	return categories, rows.Err()
}
