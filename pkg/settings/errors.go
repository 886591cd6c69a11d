package settings

import "fmt"

// ConfigCorruptError reports an unreadable or invalid user configuration.
// It is recovered locally by falling back to defaults.
type ConfigCorruptError struct {
	Location string
	Err      error
}

func (e *ConfigCorruptError) Error() string {
	return fmt.Sprintf("config %s is corrupt: %v", e.Location, e.Err)
}

func (e *ConfigCorruptError) Unwrap() error {
	return e.Err
}

// IoError reports a failed settings read or write. In-memory state stays authoritative.
type IoError struct {
	Location string
	Op       string
	Err      error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("settings %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}
