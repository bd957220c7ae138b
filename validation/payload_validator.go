package validation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/reglet-schema-registry/registry"
)

// SchemaValidator implements PayloadValidator with santhosh-tekuri/jsonschema.
// Compiled schemas are cached per operation.
type SchemaValidator struct {
	registry registry.SchemaRegistry
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator creates a validator over the schemas in reg.
func NewSchemaValidator(reg registry.SchemaRegistry) *SchemaValidator {
	return &SchemaValidator{
		registry: reg,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate checks payload against the schema registered for kind.
// An empty payload is validated as an empty object.
func (v *SchemaValidator) Validate(kind string, payload []byte) (*ValidationResult, error) {
	schema, ok, err := v.schemaFor(kind)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("{}")
	}

	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("payload is not valid JSON: %v", err)},
		}, nil
	}

	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ValidationResult{Valid: false, Errors: flatten(verr)}, nil
		}
		return nil, fmt.Errorf("validate %s payload: %w", kind, err)
	}

	return &ValidationResult{Valid: true}, nil
}

func (v *SchemaValidator) schemaFor(kind string) (*jsonschema.Schema, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[kind]; ok {
		return s, true, nil
	}

	raw, ok := v.registry.GetSchema(kind)
	if !ok {
		return nil, false, nil
	}

	url := kind + ".schema.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, strings.NewReader(raw)); err != nil {
		return nil, false, fmt.Errorf("load input schema for %s: %w", kind, err)
	}

	s, err := compiler.Compile(url)
	if err != nil {
		return nil, false, fmt.Errorf("compile input schema for %s: %w", kind, err)
	}

	v.compiled[kind] = s
	return s, true, nil
}

// flatten returns the leaf messages of a validation error tree.
func flatten(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		location := verr.InstanceLocation
		if location == "" {
			location = "/"
		}
		return []string{fmt.Sprintf("%s: %s", location, verr.Message)}
	}

	var out []string
	for _, cause := range verr.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}
