package storage

import (
	"context"
	"time"
)

// =============================================================================
// Analytics aggregates
// =============================================================================

// OverviewCounts feeds the admin analytics overview in a handful of count
// queries.
type OverviewCounts struct {
	TotalProperties  int
	ActiveProperties int
	TotalUsers       int
	TotalContacts    int
	RecentContacts   int
	TotalViews       int
}

func (s *PostgresStore) GetOverviewCounts(ctx context.Context, since time.Time) (*OverviewCounts, error) {
	var o OverviewCounts

	queries := []struct {
		sql  string
		dst  *int
		args []interface{}
	}{
		{`SELECT COUNT(*) FROM properties`, &o.TotalProperties, nil},
		{`SELECT COUNT(*) FROM properties WHERE is_published = TRUE`, &o.ActiveProperties, nil},
		{`SELECT COUNT(*) FROM users`, &o.TotalUsers, nil},
		{`SELECT COUNT(*) FROM contacts`, &o.TotalContacts, nil},
		{`SELECT COUNT(*) FROM contacts WHERE created_at >= $1`, &o.RecentContacts, []interface{}{since}},
		{`SELECT COALESCE(SUM(views_count), 0) FROM properties`, &o.TotalViews, nil},
	}

	for _, q := range queries {
		if err := s.pool.QueryRow(ctx, q.sql, q.args...).Scan(q.dst); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// PropertiesByType groups all properties by type, decoded to the API
// vocabulary.
func (s *PostgresStore) PropertiesByType(ctx context.Context, since *time.Time) (map[string]int, error) {
	query := `SELECT property_type, COUNT(*) FROM properties`
	var args []interface{}
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}
	query += ` GROUP BY property_type`

	counts, err := s.groupCount(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	decoded := make(map[string]int, len(counts))
	for dbType, n := range counts {
		decoded[DecodePropertyType(dbType)] += n
	}
	return decoded, nil
}

func (s *PostgresStore) PropertiesByStatus(ctx context.Context, since time.Time) (map[string]int, error) {
	return s.groupCount(ctx,
		`SELECT status, COUNT(*) FROM properties WHERE created_at >= $1 GROUP BY status`, since)
}

func (s *PostgresStore) UsersByRole(ctx context.Context, since *time.Time) (map[string]int, error) {
	query := `SELECT role, COUNT(*) FROM users`
	var args []interface{}
	if since != nil {
		query += ` WHERE created_at >= $1`
		args = append(args, *since)
	}
	query += ` GROUP BY role`
	return s.groupCount(ctx, query, args...)
}

func (s *PostgresStore) ContactsByStatusSince(ctx context.Context, since time.Time) (map[string]int, error) {
	return s.groupCount(ctx,
		`SELECT status, COUNT(*) FROM contacts WHERE created_at >= $1 GROUP BY status`, since)
}

// CreatedOverTime buckets row creation per day or per month for one of the
// three analytics tables. table is trusted internal input, never user data.
func (s *PostgresStore) CreatedOverTime(ctx context.Context, table string, since time.Time, groupBy string) (map[string]int, error) {
	format := "YYYY-MM-DD"
	if groupBy == "month" {
		format = "YYYY-MM"
	}

	query := `SELECT to_char(created_at, '` + format + `') AS bucket, COUNT(*)
		FROM ` + table + ` WHERE created_at >= $1 GROUP BY bucket ORDER BY bucket`

	return s.groupCount(ctx, query, since)
}

// AvgPriceByType computes the mean asking price per property type for rows
// created since the cutoff.
func (s *PostgresStore) AvgPriceByType(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT property_type, ROUND(AVG(price))::bigint
		FROM properties WHERE created_at >= $1
		GROUP BY property_type`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	avgs := make(map[string]int)
	for rows.Next() {
		var dbType string
		var avg int64
		if err := rows.Scan(&dbType, &avg); err != nil {
			return nil, err
		}
		avgs[DecodePropertyType(dbType)] = int(avg)
	}
	return avgs, rows.Err()
}

func (s *PostgresStore) groupCount(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
