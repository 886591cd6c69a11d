package dataset

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Bundled file names.
const (
	DataFile  = "data.json"
	StyleFile = "poiData.json"
)

//go:embed bundled/*.json
var bundled embed.FS

// Bundled returns the contents of a file shipped inside the binary.
func Bundled(name string) ([]byte, error) {
	data, err := bundled.ReadFile(path.Join("bundled", name))
	if err != nil {
		return nil, fmt.Errorf("no bundled file %q: %w", name, err)
	}
	return data, nil
}

// EnsureFile seeds dst from the bundled copy of name if dst does not exist yet.
// It reports whether a file was written.
func EnsureFile(dst, name string) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}
	if err := Restore(dst, name); err != nil {
		return false, err
	}
	return true, nil
}

// Restore overwrites dst with the bundled copy of name.
func Restore(dst, name string) error {
	data, err := Bundled(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	return replaceFile(dst, data)
}

// replaceFile swaps in data through a synced temp file next to dst, so a
// crash leaves either the old file or the complete new one.
func replaceFile(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", dst, err)
	}
	tmpName := tmp.Name()
	fail := func(op string, err error) error {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to %s %s: %w", op, tmpName, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}
