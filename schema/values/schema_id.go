// Package values contains validated value objects for the schema registry.
package values

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const maxSchemaIDLength = 64

// ErrInvalidSchemaID is returned when a string cannot be used as a schema ID.
var ErrInvalidSchemaID = errors.New("invalid schema ID")

// SchemaID represents a validated schema identifier.
// A SchemaID is always safe to use as a file name stem.
type SchemaID struct {
	value string
}

// NewSchemaID creates a SchemaID with strict validation.
// A valid schema ID must:
// - Be non-empty
// - contain only alphanumeric characters, underscores, and hyphens
// - NOT contain paths, dots, or special characters
// - Be at most 64 characters long
func NewSchemaID(id string) (SchemaID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return SchemaID{}, fmt.Errorf("%w: schema ID cannot be empty", ErrInvalidSchemaID)
	}

	if len(id) > maxSchemaIDLength {
		return SchemaID{}, fmt.Errorf("%w: schema ID too long (max %d chars)", ErrInvalidSchemaID, maxSchemaIDLength)
	}

	// Security check: Path separators
	if strings.ContainsAny(id, `/\`) {
		return SchemaID{}, fmt.Errorf("%w: schema ID cannot contain path separators", ErrInvalidSchemaID)
	}

	// Security check: Directory traversal
	if strings.Contains(id, "..") {
		return SchemaID{}, fmt.Errorf("%w: schema ID cannot contain parent directory references", ErrInvalidSchemaID)
	}

	for _, ch := range id {
		if !isValidIDChar(ch) {
			return SchemaID{}, fmt.Errorf("%w: %q must contain only alphanumeric characters, underscores, and hyphens", ErrInvalidSchemaID, id)
		}
	}

	return SchemaID{value: id}, nil
}

// GenerateSchemaID returns a fresh random (v4) UUID identifier.
func GenerateSchemaID() SchemaID {
	return SchemaID{value: uuid.NewString()}
}

func isValidIDChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' ||
		r == '-'
}

// MustNewSchemaID creates a SchemaID or panics
func MustNewSchemaID(id string) SchemaID {
	sid, err := NewSchemaID(id)
	if err != nil {
		panic(err)
	}
	return sid
}

// String returns the string representation
func (s SchemaID) String() string {
	return s.value
}

// IsEmpty returns true if this is the zero value
func (s SchemaID) IsEmpty() bool {
	return s.value == ""
}

// Equals checks if two schema IDs are equal
func (s SchemaID) Equals(other SchemaID) bool {
	return s.value == other.value
}

// FileName returns the name of the backing file for this ID.
func (s SchemaID) FileName() string {
	return s.value + ".json"
}

// MarshalJSON implements json.Marshaler.
func (s SchemaID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SchemaID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid schema ID JSON: %w", err)
	}

	id, err := NewSchemaID(raw)
	if err != nil {
		return err
	}
	*s = id
	return nil
}
