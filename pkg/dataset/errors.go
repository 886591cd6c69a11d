package dataset

import "fmt"

// DataCorruptError reports a dataset or style file that is missing, unreadable or invalid.
type DataCorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataCorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("dataset %s: %s", e.Path, e.Reason)
}

func (e *DataCorruptError) Unwrap() error {
	return e.Err
}

func corrupt(path, reason string, err error) *DataCorruptError {
	return &DataCorruptError{Path: path, Reason: reason, Err: err}
}

func corruptf(path, format string, args ...any) *DataCorruptError {
	return &DataCorruptError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
