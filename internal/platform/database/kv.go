package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClientStorage is the postgres session backend: one row per key in the
// client_storage table, each expiring ttl after its last write.
type ClientStorage struct {
	db  *sql.DB
	ttl time.Duration
}

// NewClientStorage wraps a migrated database
func NewClientStorage(db *sql.DB, ttl time.Duration) *ClientStorage {
	return &ClientStorage{db: db, ttl: ttl}
}

func (s *ClientStorage) expiry() any {
	if s.ttl <= 0 {
		return nil
	}
	return time.Now().Add(s.ttl).UTC()
}

// Get returns the value for key unless it is missing or expired
func (s *ClientStorage) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value FROM client_storage
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value and pushes its expiry forward
func (s *ClientStorage) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO client_storage (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, key, value, s.expiry()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys in one transaction
func (s *ClientStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM client_storage WHERE key = $1", key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *ClientStorage) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM client_storage WHERE expires_at IS NOT NULL AND expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired entries: %w", err)
	}
	return result.RowsAffected()
}

// Health pings the database
func (s *ClientStorage) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}
