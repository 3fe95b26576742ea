package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSettingsTableSQL = `
    CREATE TABLE IF NOT EXISTS masjid_settings (
        mosque_id  TEXT PRIMARY KEY,
        settings   JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )
`

const getSettingsSQL = `
    SELECT settings
    FROM masjid_settings
    WHERE mosque_id = $1
`

const upsertSettingsSQL = `
    INSERT INTO masjid_settings (mosque_id, settings, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (mosque_id)
    DO UPDATE SET settings = EXCLUDED.settings, updated_at = now()
`

// PostgresStore keeps settings in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and creates the settings table if needed.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createSettingsTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating settings table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, getSettingsSQL, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, id string, doc []byte) error {
	_, err := s.pool.Exec(ctx, upsertSettingsSQL, id, doc)
	return err
}
