package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"huntoverlay/pkg/db"
)

// Store combines all storage interfaces.
type Store interface {
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- State ---

// GetState returns the value for key. A missing row is not an error.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read state %q: %w", key, err)
	}
	return val, true, nil
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	now := time.Now()
	query := `INSERT INTO persistent_state (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, key, val, now, now)
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

// MoveState runs in one transaction. A missing source row is a no-op.
func (s *SQLiteStore) MoveState(ctx context.Context, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("move state %q: %w", from, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM persistent_state WHERE key = ?
		AND EXISTS (SELECT 1 FROM persistent_state WHERE key = ?)`, to, from); err != nil {
		return fmt.Errorf("move state %q: %w", from, err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE persistent_state SET key = ?, updated_at = ? WHERE key = ?", to, time.Now(), from); err != nil {
		return fmt.Errorf("move state %q: %w", from, err)
	}
	return tx.Commit()
}
