package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrSchemaNotFound is returned when no file backs the requested schema ID.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrMalformedSchema is returned when a stored schema file cannot be parsed.
	ErrMalformedSchema = errors.New("malformed schema file")
)

// SchemaNotFoundError indicates the schema doesn't exist in the store.
type SchemaNotFoundError struct {
	ID string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("Schema with ID '%s' not found", e.ID)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrSchemaNotFound)
func (e *SchemaNotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

// MalformedSchemaError indicates a schema file exists but is not a readable document.
type MalformedSchemaError struct {
	Path string
	Err  error
}

func (e *MalformedSchemaError) Error() string {
	return fmt.Sprintf("malformed schema file %s: %v", e.Path, e.Err)
}

// Is implements error matching for errors.Is() checks.
func (e *MalformedSchemaError) Is(target error) bool {
	return target == ErrMalformedSchema
}

// Unwrap returns the underlying parse error.
func (e *MalformedSchemaError) Unwrap() error {
	return e.Err
}
