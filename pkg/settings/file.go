package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps the document in a single JSON file.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for path. The directory is created on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Location() string { return f.path }

func (f *FileBackend) Read(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.path)
}

// Write replaces the file via a synced temp file in the same directory, so a
// crash leaves either the old or the new document, never a truncated one.
func (f *FileBackend) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IoError{Location: f.path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return &IoError{Location: f.path, Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &IoError{Location: f.path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return &IoError{Location: f.path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IoError{Location: f.path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return &IoError{Location: f.path, Op: "rename", Err: err}
	}
	return nil
}

// Quarantine renames the file to <name>.corrupt, replacing an older quarantined copy.
func (f *FileBackend) Quarantine(_ context.Context) error {
	dst := f.path + ".corrupt"
	_ = os.Remove(dst)
	if err := os.Rename(f.path, dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("quarantine %s: %w", f.path, err)
	}
	return nil
}
