package repository

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxFileSize bounds how much of a schema file is read.
const DefaultMaxFileSize int64 = 1 << 20

// FileTooLargeError is returned when a schema file exceeds the size limit.
type FileTooLargeError struct {
	Name  string
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("schema file %s exceeds size limit of %s", e.Name, FormatSize(e.Limit))
}

// IsFileTooLargeError returns true if the error is a FileTooLargeError.
func IsFileTooLargeError(err error) bool {
	var tooLarge *FileTooLargeError
	return errors.As(err, &tooLarge)
}

// readLimited reads all of r, failing once more than limit bytes are seen.
// A limit of zero or less disables the check.
func readLimited(r io.Reader, name string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &FileTooLargeError{Name: name, Limit: limit}
	}
	return data, nil
}

// FormatSize returns a human-readable size string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
