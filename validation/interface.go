// Package validation checks operation payloads against their registered input schemas.
package validation

// ValidationResult is the outcome of validating one payload.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// PayloadValidator validates operation payloads against a schema.
type PayloadValidator interface {
	// Validate checks payload against the input schema registered for kind.
	// Operations without a registered schema are always valid.
	Validate(kind string, payload []byte) (*ValidationResult, error)
}
