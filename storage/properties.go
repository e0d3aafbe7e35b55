package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickassako/triomphe-immobilier/models"
)

// PropertyFilter is the flat set of optional catalog filters. Zero-valued
// fields are left out of the predicate set entirely.
type PropertyFilter struct {
	Search       string
	PropertyType string
	MinPrice     float64
	MaxPrice     float64
	LocationID   *uuid.UUID
	Bedrooms     int
	Bathrooms    int
	SortBy       string // price_asc, price_desc, date_asc, date_desc (default)
	Page         int
	Limit        int
}

const propertyColumns = `id, title, slug, description, price, currency, price_type,
	property_type, status, bedrooms, bathrooms, surface_area, land_size, address,
	location_id, category_id, agent_id, meta_title, meta_description,
	is_published, is_featured, views_count, shares_count, created_at, updated_at`

// BuildPropertySearch translates a filter into a WHERE clause and argument
// list. The same predicate set backs both the page query and the count query,
// so the reported total always matches the filter.
func BuildPropertySearch(f PropertyFilter) (string, []interface{}) {
	conds := []string{"is_published = TRUE"}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR address ILIKE %s)", p, p, p))
	}
	if f.PropertyType != "" {
		conds = append(conds, "property_type = "+arg(EncodePropertyType(f.PropertyType)))
	}
	if f.MinPrice > 0 {
		conds = append(conds, "price >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conds = append(conds, "price <= "+arg(f.MaxPrice))
	}
	if f.LocationID != nil {
		conds = append(conds, "location_id = "+arg(*f.LocationID))
	}
	if f.Bedrooms > 0 {
		conds = append(conds, "bedrooms = "+arg(f.Bedrooms))
	}
	if f.Bathrooms > 0 {
		conds = append(conds, "bathrooms = "+arg(f.Bathrooms))
	}

	return strings.Join(conds, " AND "), args
}

func propertyOrderClause(sortBy string) string {
	switch sortBy {
	case models.SortPriceAsc:
		return "price ASC"
	case models.SortPriceDesc:
		return "price DESC"
	case models.SortDateAsc:
		return "created_at ASC"
	default: // date_desc
		return "created_at DESC"
	}
}

// SearchProperties returns one page of published properties matching the
// filter, with images and locations attached.
func (s *PostgresStore) SearchProperties(ctx context.Context, f PropertyFilter) ([]models.Property, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 12
	}

	where, args := BuildPropertySearch(f)
	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM properties WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		propertyColumns, where, propertyOrderClause(f.SortBy), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props, err := scanProperties(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, props); err != nil {
		return nil, err
	}
	return props, nil
}

// CountProperties runs the count-only twin of SearchProperties.
func (s *PostgresStore) CountProperties(ctx context.Context, f PropertyFilter) (int, error) {
	where, args := BuildPropertySearch(f)
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM properties WHERE "+where, args...).Scan(&count)
	return count, err
}

// FeaturedProperties returns the most recent published featured rows.
func (s *PostgresStore) FeaturedProperties(ctx context.Context, limit int) ([]models.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties
		WHERE is_published = TRUE AND is_featured = TRUE
		ORDER BY created_at DESC LIMIT $1`, propertyColumns)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props, err := scanProperties(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, props); err != nil {
		return nil, err
	}
	return props, nil
}

// RecentProperties returns the latest rows for the activity feed, published
// or not.
func (s *PostgresStore) RecentProperties(ctx context.Context, limit int) ([]models.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties ORDER BY created_at DESC LIMIT $1", propertyColumns)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProperties(rows)
}

func (s *PostgresStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.getProperty(ctx, "id = $1", id)
}

func (s *PostgresStore) GetPropertyBySlug(ctx context.Context, slug string) (*models.Property, error) {
	return s.getProperty(ctx, "slug = $1", slug)
}

func (s *PostgresStore) getProperty(ctx context.Context, cond string, arg interface{}) (*models.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE %s", propertyColumns, cond)

	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props, err := scanProperties(rows)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, nil
	}
	if err := s.attachRelations(ctx, props); err != nil {
		return nil, err
	}
	if err := s.attachFeatures(ctx, &props[0]); err != nil {
		return nil, err
	}
	return &props[0], nil
}

func (s *PostgresStore) CreateProperty(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (
			id, title, slug, description, price, currency, price_type, property_type,
			status, bedrooms, bathrooms, surface_area, land_size, address,
			location_id, category_id, agent_id, meta_title, meta_description,
			is_published, is_featured, views_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.Price, p.Currency, p.PriceType,
		EncodePropertyType(p.PropertyType), p.Status, p.Bedrooms, p.Bathrooms,
		p.SurfaceArea, p.LandSize, p.Address, p.LocationID, p.CategoryID, p.AgentID,
		p.MetaTitle, p.MetaDesc, p.IsPublished, p.IsFeatured, p.ViewsCount,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (s *PostgresStore) UpdateProperty(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties SET
			title = $2, slug = $3, description = $4, price = $5, currency = $6,
			price_type = $7, property_type = $8, status = $9, bedrooms = $10,
			bathrooms = $11, surface_area = $12, land_size = $13, address = $14,
			location_id = $15, category_id = $16, agent_id = $17, meta_title = $18,
			meta_description = $19, is_published = $20, is_featured = $21,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return s.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.Price, p.Currency, p.PriceType,
		EncodePropertyType(p.PropertyType), p.Status, p.Bedrooms, p.Bathrooms,
		p.SurfaceArea, p.LandSize, p.Address, p.LocationID, p.CategoryID, p.AgentID,
		p.MetaTitle, p.MetaDesc, p.IsPublished, p.IsFeatured,
	).Scan(&p.UpdatedAt)
}

func (s *PostgresStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	return err
}

// IncrementViews bumps the view counter. Best effort; callers ignore errors.
func (s *PostgresStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE properties SET views_count = views_count + 1 WHERE id = $1`, id)
	return err
}

// MarkRecentFeatured flags the count most recent published rows as featured
// and clears the flag everywhere else.
func (s *PostgresStore) MarkRecentFeatured(ctx context.Context, count int) (int, error) {
	query := `
		WITH recent AS (
			SELECT id FROM properties
			WHERE is_published = TRUE
			ORDER BY created_at DESC
			LIMIT $1
		)
		UPDATE properties SET is_featured = (properties.id IN (SELECT id FROM recent))
		WHERE is_featured <> (properties.id IN (SELECT id FROM recent))`

	tag, err := s.pool.Exec(ctx, query, count)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// =============================================================================
// Images
// =============================================================================

// ReplaceImages clears a property's image set and inserts the new one. The
// first image is primary unless the payload flags another; positions follow
// input order. No transaction: a failure between delete and insert leaves the
// property without images, mirroring the original's behavior.
func (s *PostgresStore) ReplaceImages(ctx context.Context, propertyID uuid.UUID, images []models.ImageInput) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM property_images WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("clear images: %w", err)
	}

	hasPrimary := false
	for _, img := range images {
		if img.IsPrimary {
			hasPrimary = true
			break
		}
	}

	for i, img := range images {
		primary := img.IsPrimary || (!hasPrimary && i == 0)
		_, err := s.pool.Exec(ctx, `
			INSERT INTO property_images (id, property_id, url, alt_text, is_primary, sort_order, mirror_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			uuid.New(), propertyID, img.URL, img.AltText, primary, i, models.MirrorStatusPending,
		)
		if err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetImages(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyImage, error) {
	return s.queryImages(ctx, `WHERE property_id = $1 ORDER BY sort_order`, propertyID)
}

// GetPendingImages returns images awaiting a mirror attempt, oldest first.
func (s *PostgresStore) GetPendingImages(ctx context.Context, limit int) ([]models.PropertyImage, error) {
	return s.queryImages(ctx, `WHERE mirror_status = 'pending' AND mirror_attempts < 3 ORDER BY created_at LIMIT $1`, limit)
}

func (s *PostgresStore) queryImages(ctx context.Context, tail string, args ...interface{}) ([]models.PropertyImage, error) {
	query := `
		SELECT id, property_id, url, alt_text, is_primary, sort_order,
			mirror_url, mirror_status, mirror_attempts, created_at
		FROM property_images ` + tail

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.PropertyImage
	for rows.Next() {
		var img models.PropertyImage
		if err := rows.Scan(
			&img.ID, &img.PropertyID, &img.URL, &img.AltText, &img.IsPrimary, &img.SortOrder,
			&img.MirrorURL, &img.MirrorStatus, &img.MirrorAttempts, &img.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *PostgresStore) UpdateImageMirror(ctx context.Context, id uuid.UUID, status string, mirrorURL *string, attempts int) error {
	query := `UPDATE property_images SET mirror_status = $2, mirror_url = COALESCE($3, mirror_url), mirror_attempts = $4 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, status, mirrorURL, attempts)
	return err
}

// =============================================================================
// Features
// =============================================================================

// ReplaceFeatures swaps a property's feature set, same policy as ReplaceImages.
func (s *PostgresStore) ReplaceFeatures(ctx context.Context, propertyID uuid.UUID, featureIDs []uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM property_features WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("clear features: %w", err)
	}
	for _, fid := range featureIDs {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO property_features (property_id, feature_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			propertyID, fid,
		)
		if err != nil {
			return fmt.Errorf("insert feature: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) attachFeatures(ctx context.Context, p *models.Property) error {
	query := `
		SELECT f.id, f.name, f.slug, f.created_at
		FROM property_features pf
		JOIN features f ON f.id = pf.feature_id
		WHERE pf.property_id = $1
		ORDER BY f.name`

	rows, err := s.pool.Query(ctx, query, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Feature
		if err := rows.Scan(&f.ID, &f.Name, &f.Slug, &f.CreatedAt); err != nil {
			return err
		}
		p.Features = append(p.Features, f)
	}
	return rows.Err()
}

// =============================================================================
// Row helpers
// =============================================================================

func scanProperties(rows pgx.Rows) ([]models.Property, error) {
	var props []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Description, &p.Price, &p.Currency, &p.PriceType,
			&p.PropertyType, &p.Status, &p.Bedrooms, &p.Bathrooms, &p.SurfaceArea, &p.LandSize,
			&p.Address, &p.LocationID, &p.CategoryID, &p.AgentID, &p.MetaTitle, &p.MetaDesc,
			&p.IsPublished, &p.IsFeatured, &p.ViewsCount, &p.SharesCount, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.PropertyType = DecodePropertyType(p.PropertyType)
		props = append(props, p)
	}
	return props, rows.Err()
}

// attachRelations bulk-loads images, locations and categories for one page of
// rows. Two extra round-trips instead of one per row.
func (s *PostgresStore) attachRelations(ctx context.Context, props []models.Property) error {
	if len(props) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(props))
	byID := make(map[uuid.UUID]*models.Property, len(props))
	for i := range props {
		ids[i] = props[i].ID
		byID[props[i].ID] = &props[i]
	}

	images, err := s.queryImages(ctx, `WHERE property_id = ANY($1) ORDER BY property_id, sort_order`, ids)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for _, img := range images {
		if p, ok := byID[img.PropertyID]; ok {
			p.Images = append(p.Images, img)
		}
	}

	locIDs := make([]uuid.UUID, 0, len(props))
	catIDs := make([]uuid.UUID, 0, len(props))
	for i := range props {
		if props[i].LocationID != nil {
			locIDs = append(locIDs, *props[i].LocationID)
		}
		if props[i].CategoryID != nil {
			catIDs = append(catIDs, *props[i].CategoryID)
		}
	}

	if len(locIDs) > 0 {
		locs, err := s.locationsByID(ctx, locIDs)
		if err != nil {
			return fmt.Errorf("load locations: %w", err)
		}
		for i := range props {
			if props[i].LocationID != nil {
				if loc, ok := locs[*props[i].LocationID]; ok {
					l := loc
					props[i].Location = &l
				}
			}
		}
	}

	if len(catIDs) > 0 {
		cats, err := s.categoriesByID(ctx, catIDs)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for i := range props {
			if props[i].CategoryID != nil {
				if cat, ok := cats[*props[i].CategoryID]; ok {
					c := cat
					props[i].Category = &c
				}
			}
		}
	}

	return nil
}
