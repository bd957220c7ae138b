package schemareg

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/reglet-schema-registry/registry"
	"github.com/reglet-dev/reglet-schema-registry/schema"
	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
)

// Operation names.
const (
	OpGetSchema      = "get_schema"
	OpListSchemas    = "list_schemas"
	OpCreateSchema   = "create_schema"
	OpCreateInstance = "create_instance"
)

// WithSchemaService registers the four registry operations backed by svc.
func WithSchemaService(svc *schema.SchemaService) RegistryOption {
	return func(b *registryBuilder) {
		WithHandler(OpGetSchema, func(ctx context.Context, payload []byte) ([]byte, error) {
			req, err := decode[schema.GetSchemaRequest](OpGetSchema, payload)
			if err != nil {
				return nil, err
			}
			return text(svc.GetSchema(ctx, req.SchemaID))
		})(b)

		WithHandler(OpListSchemas, func(ctx context.Context, _ []byte) ([]byte, error) {
			return text(svc.GetSchemasList(ctx))
		})(b)

		WithHandler(OpCreateSchema, func(ctx context.Context, payload []byte) ([]byte, error) {
			req, err := decode[schema.CreateSchemaRequest](OpCreateSchema, payload)
			if err != nil {
				return nil, err
			}
			return text(svc.CreateSchema(ctx, req))
		})(b)

		WithHandler(OpCreateInstance, func(ctx context.Context, payload []byte) ([]byte, error) {
			req, err := decode[schema.CreateInstanceRequest](OpCreateInstance, payload)
			if err != nil {
				return nil, err
			}
			return text(svc.CreateInstance(ctx, req))
		})(b)
	}
}

// NewInputSchemaRegistry returns a registry holding the input schema of every
// registry operation, reflected from the request types. Undeclared keys are
// accepted and ignored.
func NewInputSchemaRegistry() (*registry.Registry, error) {
	reg := registry.NewRegistry(
		registry.WithAdditionalProperties(),
		registry.WithTypeMapping((*entities.Properties)(nil), &jsonschema.Schema{Type: "object"}),
		registry.WithTypeMapping((*json.RawMessage)(nil), &jsonschema.Schema{}),
	)

	models := []struct {
		name  string
		model interface{}
	}{
		{OpGetSchema, schema.GetSchemaRequest{}},
		{OpListSchemas, schema.ListSchemasRequest{}},
		{OpCreateSchema, schema.CreateSchemaRequest{}},
		{OpCreateInstance, schema.CreateInstanceRequest{}},
	}
	for _, m := range models {
		if err := reg.Register(m.name, m.model); err != nil {
			return nil, fmt.Errorf("register input schema %s: %w", m.name, err)
		}
	}
	return reg, nil
}

func decode[T any](operation string, payload []byte) (T, error) {
	var req T
	if len(bytes.TrimSpace(payload)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, NewInvalidPayloadError(operation, []string{err.Error()})
	}
	return req, nil
}

func text(s string, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
