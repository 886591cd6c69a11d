package settings

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// Backend reads and writes the raw settings document.
type Backend interface {
	// Read returns the stored document or an error wrapping os.ErrNotExist.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored document atomically.
	Write(ctx context.Context, data []byte) error
	// Quarantine moves a corrupt document aside so the next save does not destroy it.
	Quarantine(ctx context.Context) error
	// Location describes where the document lives, for logs and the panel.
	Location() string
}

// Store loads and saves State through a Backend.
type Store struct {
	backend  Backend
	defaults Defaults
	logger   *slog.Logger
}

// NewStore creates a settings store.
func NewStore(b Backend, d Defaults) *Store {
	return &Store{
		backend:  b,
		defaults: d,
		logger:   slog.With("component", "settings", "location", b.Location()),
	}
}

// Defaults returns the defaults the store normalises against.
func (s *Store) Defaults() Defaults {
	return s.defaults
}

// Location describes the backing storage.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Load returns the persisted state. A missing or corrupt document never fails:
// the default state is returned instead, and a corrupt one is quarantined.
func (s *Store) Load(ctx context.Context) State {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("No saved settings, using defaults")
		return s.defaults.State()
	}
	if err != nil {
		s.recover(ctx, err)
		return s.defaults.State()
	}

	st, version, err := Decode(data, s.defaults)
	if err != nil {
		s.recover(ctx, err)
		return s.defaults.State()
	}
	if version != Version {
		s.logger.Info("Settings version differs, merged with defaults", "file_version", version, "version", Version)
	}
	return st
}

func (s *Store) recover(ctx context.Context, err error) {
	cerr := &ConfigCorruptError{Location: s.backend.Location(), Err: err}
	s.logger.Warn("Settings unreadable, falling back to defaults", "error", cerr)
	if qerr := s.backend.Quarantine(ctx); qerr != nil {
		s.logger.Warn("Failed to keep corrupt settings aside", "error", qerr)
	}
}

// Save encodes and writes st.
func (s *Store) Save(ctx context.Context, st State) error {
	data, err := Encode(st)
	if err != nil {
		return &IoError{Location: s.backend.Location(), Op: "encode", Err: err}
	}
	return s.Write(ctx, data)
}

// Write stores an already encoded document.
func (s *Store) Write(ctx context.Context, data []byte) error {
	if err := s.backend.Write(ctx, data); err != nil {
		var ioErr *IoError
		if errors.As(err, &ioErr) {
			return ioErr
		}
		return &IoError{Location: s.backend.Location(), Op: "write", Err: err}
	}
	return nil
}
