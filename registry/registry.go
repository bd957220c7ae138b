// Package registry implements an in-memory registry of operation input schemas.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Registry implements SchemaRegistry using in-memory storage.
type Registry struct {
	schemas   map[string]string
	mu        sync.RWMutex
	mappings  map[reflect.Type]*jsonschema.Schema
	reflector *jsonschema.Reflector
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithTypeMapping makes the reflector emit s for every field whose type is
// the type of sample (pointers are dereferenced). Use it for types whose Go
// representation does not describe their JSON shape.
func WithTypeMapping(sample interface{}, s *jsonschema.Schema) RegistryOption {
	return func(r *Registry) {
		t := reflect.TypeOf(sample)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		r.mappings[t] = s
	}
}

// WithAdditionalProperties makes reflected schemas accept keys the Go type
// does not declare.
func WithAdditionalProperties() RegistryOption {
	return func(r *Registry) {
		r.reflector.AllowAdditionalProperties = true
	}
}

// NewRegistry creates a new input schema registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:   make(map[string]string),
		mappings:  make(map[reflect.Type]*jsonschema.Schema),
		reflector: new(jsonschema.Reflector),
	}

	r.reflector.ExpandedStruct = true
	r.reflector.DoNotReference = true
	r.reflector.Anonymous = true
	r.reflector.Mapper = r.mapType

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Registry) mapType(t reflect.Type) *jsonschema.Schema {
	if s, ok := r.mappings[t]; ok {
		// Copy so reflected schemas never share (and mutate) the mapping.
		clone := *s
		return &clone
	}
	return nil
}

// Register adds a schema for an operation.
// model can be a Go struct (to generate schema) or a raw JSON schema string/map/bytes.
func (r *Registry) Register(kind string, model interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("operation already registered: %s", kind)
	}

	var schemaStr string

	switch v := model.(type) {
	case string:
		schemaStr = v
	case []byte:
		schemaStr = string(v)
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal schema map: %w", err)
		}
		schemaStr = string(b)
	default:
		t := reflect.TypeOf(model)
		if t == nil || !(t.Kind() == reflect.Struct || (t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)) {
			return fmt.Errorf("cannot derive schema for %s from %T", kind, model)
		}

		s := r.reflector.Reflect(model)
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal generated schema: %w", err)
		}
		schemaStr = string(b)
	}

	if !json.Valid([]byte(schemaStr)) {
		return fmt.Errorf("schema for %s is not valid JSON", kind)
	}

	r.schemas[kind] = schemaStr
	return nil
}

// GetSchema retrieves the JSON Schema for an operation.
func (r *Registry) GetSchema(kind string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// List returns all registered operation names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
