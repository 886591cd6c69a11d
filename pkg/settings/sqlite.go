package settings

import (
	"context"
	"fmt"
	"os"

	"huntoverlay/pkg/store"
)

// StateKey is the persistent_state key holding the settings document.
const StateKey = "overlay_settings"

// SQLiteBackend keeps the document as one row of the key/value state table.
type SQLiteBackend struct {
	st  store.StateStore
	key string
}

// NewSQLiteBackend stores the document under StateKey.
func NewSQLiteBackend(st store.StateStore) *SQLiteBackend {
	return &SQLiteBackend{st: st, key: StateKey}
}

func (b *SQLiteBackend) Location() string { return "sqlite:" + b.key }

// Read reports os.ErrNotExist only for a missing row. A failed query is
// returned as is so the store treats it like a corrupt document.
func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	val, ok, err := b.st.GetState(ctx, b.key)
	if err != nil {
		return nil, &IoError{Location: b.Location(), Op: "read", Err: err}
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", b.Location(), os.ErrNotExist)
	}
	return []byte(val), nil
}

// Write is a single-row upsert, which SQLite applies atomically.
func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	if err := b.st.SetState(ctx, b.key, string(data)); err != nil {
		return &IoError{Location: b.Location(), Op: "write", Err: err}
	}
	return nil
}

// Quarantine moves the row to <key>.corrupt without reading it back.
func (b *SQLiteBackend) Quarantine(ctx context.Context) error {
	if err := b.st.MoveState(ctx, b.key, b.key+".corrupt"); err != nil {
		return fmt.Errorf("quarantine %s: %w", b.Location(), err)
	}
	return nil
}
