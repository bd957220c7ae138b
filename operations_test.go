package schemareg

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-schema-registry/schema"
	"github.com/reglet-dev/reglet-schema-registry/schema/repository"
	"github.com/reglet-dev/reglet-schema-registry/validation"
)

func newTestRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	repo, err := repository.NewFSSchemaRepository(t.TempDir())
	require.NoError(t, err)

	inputs, err := NewInputSchemaRegistry()
	require.NoError(t, err)

	reg, err := NewHandlerRegistry(
		WithMiddleware(
			PanicRecoveryMiddleware(),
			ValidationMiddleware(validation.NewSchemaValidator(inputs)),
		),
		WithSchemaService(schema.NewSchemaService(repo)),
	)
	require.NoError(t, err)
	return reg
}

func invoke(t *testing.T, reg *HandlerRegistry, op, payload string) string {
	t.Helper()
	var body []byte
	if payload != "" {
		body = []byte(payload)
	}
	out, err := reg.Invoke(context.Background(), op, body)
	require.NoError(t, err)
	return string(out)
}

func TestOperations_EndToEnd(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Equal(t, []string{OpCreateInstance, OpCreateSchema, OpGetSchema, OpListSchemas}, reg.Names())

	assert.Equal(t, "[]", invoke(t, reg, OpListSchemas, ""))

	created := invoke(t, reg, OpCreateSchema, `{
		"title": "Person",
		"properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
		"required": ["name"]
	}`)
	require.True(t, strings.HasPrefix(created, "Schema created with ID: "))
	id := strings.TrimPrefix(created, "Schema created with ID: ")

	stored := invoke(t, reg, OpGetSchema, `{"schema_id":"`+id+`"}`)
	assert.JSONEq(t, `{
		"title": "Person",
		"type": "object",
		"properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
		"required": ["name"],
		"$id": "`+id+`"
	}`, stored)
	assert.Less(t, strings.Index(stored, `"name"`), strings.Index(stored, `"age"`))

	assert.JSONEq(t, `[{"id":"`+id+`","name":"Person"}]`, invoke(t, reg, OpListSchemas, `{}`))

	instance := invoke(t, reg, OpCreateInstance, `{"schema_id":"`+id+`","values":{"age":42,"ghost":true}}`)
	assert.JSONEq(t, `{"name":"","age":42}`, instance)

	assert.Equal(t, "Schema with ID 'missing' not found",
		invoke(t, reg, OpGetSchema, `{"schema_id":"missing"}`))
	assert.Equal(t, "Schema with ID '../x' not found",
		invoke(t, reg, OpCreateInstance, `{"schema_id":"../x"}`))
}

func TestOperations_InvalidPayloads(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name    string
		op      string
		payload string
	}{
		{"get without id", OpGetSchema, `{}`},
		{"get with numeric id", OpGetSchema, `{"schema_id":5}`},
		{"create without title", OpCreateSchema, `{"type":"object"}`},
		{"create with list properties", OpCreateSchema, `{"title":"x","properties":[1]}`},
		{"instance with list values", OpCreateInstance, `{"schema_id":"a","values":[1]}`},
		{"not json", OpCreateSchema, `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Invoke(context.Background(), tt.op, []byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestOperations_IgnoreUndeclaredKeys(t *testing.T) {
	reg := newTestRegistry(t)

	created := invoke(t, reg, OpCreateSchema, `{"title":"Loose","extra":"ignored","properties":{"a":{"type":"boolean"}}}`)
	require.True(t, strings.HasPrefix(created, "Schema created with ID: "))
	id := strings.TrimPrefix(created, "Schema created with ID: ")

	stored := invoke(t, reg, OpGetSchema, `{"schema_id":"`+id+`","verbose":true}`)
	assert.NotContains(t, stored, "extra")

	assert.JSONEq(t, `{"a":false}`, invoke(t, reg, OpCreateInstance, `{"schema_id":"`+id+`","trace":1}`))
}

func TestOperations_DecodeWithoutValidation(t *testing.T) {
	repo, err := repository.NewFSSchemaRepository(t.TempDir())
	require.NoError(t, err)
	reg, err := NewHandlerRegistry(WithSchemaService(schema.NewSchemaService(repo)))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), OpGetSchema, []byte(`{"schema_id":`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	out, err := reg.Invoke(context.Background(), OpGetSchema, nil)
	require.NoError(t, err)
	assert.Equal(t, "Schema with ID '' not found", string(out))
}

func TestNewInputSchemaRegistry(t *testing.T) {
	inputs, err := NewInputSchemaRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{OpCreateInstance, OpCreateSchema, OpGetSchema, OpListSchemas}, inputs.List())

	raw, ok := inputs.GetSchema(OpCreateSchema)
	require.True(t, ok)

	var s struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"title"}, s.Required)
	assert.Contains(t, s.Properties, "title")
	assert.Contains(t, s.Properties, "type")
	assert.Contains(t, s.Properties, "properties")
	assert.Contains(t, s.Properties, "required")
	assert.Contains(t, string(s.Properties["properties"]), `"object"`)
	assert.Contains(t, string(s.Properties["type"]), `"default"`)
}
