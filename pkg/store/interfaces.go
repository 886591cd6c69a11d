package store

import "context"

// StateStore is a small key/value table for documents that outlive a run.
type StateStore interface {
	// GetState reports ok=false with a nil error when key has no row.
	GetState(ctx context.Context, key string) (val string, ok bool, err error)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
	// MoveState renames from to to, replacing any row already at to.
	MoveState(ctx context.Context, from, to string) error
}
