package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-schema-registry/registry"
)

const lookupSchema = `{
  "type": "object",
  "properties": {
    "schema_id": {"type": "string"},
    "values": {"type": "object"}
  },
  "required": ["schema_id"],
  "additionalProperties": false
}`

func newValidator(t *testing.T) *SchemaValidator {
	t.Helper()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register("lookup", lookupSchema))
	require.NoError(t, reg.Register("broken", `{"type": 12}`))
	return NewSchemaValidator(reg)
}

func TestSchemaValidator_Validate(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name      string
		payload   string
		valid     bool
		errSubstr string
	}{
		{"valid", `{"schema_id":"abc"}`, true, ""},
		{"valid with values", `{"schema_id":"abc","values":{"n":1}}`, true, ""},
		{"missing required", `{}`, false, "schema_id"},
		{"empty payload", ``, false, "schema_id"},
		{"wrong type", `{"schema_id":7}`, false, "/schema_id"},
		{"additional property", `{"schema_id":"a","extra":true}`, false, "extra"},
		{"not json", `{"schema_id":`, false, "not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Validate("lookup", []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.Contains(t, joined(result.Errors), tt.errSubstr)
			}
		})
	}
}

func TestSchemaValidator_UnregisteredKindIsValid(t *testing.T) {
	result, err := newValidator(t).Validate("unknown", []byte(`not even json`))
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestSchemaValidator_BadSchema(t *testing.T) {
	_, err := newValidator(t).Validate("broken", []byte(`{}`))
	assert.Error(t, err)
}

func TestSchemaValidator_CachesCompiledSchema(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate("lookup", []byte(`{"schema_id":"a"}`))
	require.NoError(t, err)
	_, err = v.Validate("lookup", []byte(`{"schema_id":"b"}`))
	require.NoError(t, err)

	assert.Len(t, v.compiled, 1)
}

func joined(errs []string) string {
	out := ""
	for _, e := range errs {
		out += e + "\n"
	}
	return out
}
