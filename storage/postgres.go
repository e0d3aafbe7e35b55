package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// =============================================================================
// Property type vocabulary
// =============================================================================

// The storage schema predates the API and keeps property types in a French
// vocabulary. The API speaks English; this table is the single place where the
// two meet. Unknown values pass through untouched.
var propertyTypeToDB = map[string]string{
	"apartment":  "appartement",
	"house":      "maison",
	"villa":      "villa",
	"land":       "terrain",
	"commercial": "commerce",
	"office":     "bureau",
}

var propertyTypeFromDB = func() map[string]string {
	m := make(map[string]string, len(propertyTypeToDB))
	for api, db := range propertyTypeToDB {
		m[db] = api
	}
	return m
}()

// EncodePropertyType maps a canonical API property type to the stored value.
func EncodePropertyType(apiType string) string {
	if db, ok := propertyTypeToDB[apiType]; ok {
		return db
	}
	return apiType
}

// DecodePropertyType maps a stored property type back to the API vocabulary.
func DecodePropertyType(dbType string) string {
	if api, ok := propertyTypeFromDB[dbType]; ok {
		return api
	}
	return dbType
}
