package values

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSchemaID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"uuid", "3f8a9c1e-4b2d-4e6f-9a1b-2c3d4e5f6a7b", "3f8a9c1e-4b2d-4e6f-9a1b-2c3d4e5f6a7b", false},
		{"custom", "person_v2", "person_v2", false},
		{"trims whitespace", "  person  ", "person", false},
		{"max length", strings.Repeat("a", 64), strings.Repeat("a", 64), false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"parent traversal", "../etc/passwd", "", true},
		{"dot dot", "..", "", true},
		{"forward slash", "a/b", "", true},
		{"backslash", `a\b`, "", true},
		{"dot", "a.json", "", true},
		{"space inside", "a b", "", true},
		{"unicode", "schéma", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewSchemaID(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSchemaID)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, id.String())
			}
		})
	}
}

func Test_GenerateSchemaID(t *testing.T) {
	id := GenerateSchemaID()

	parsed, err := uuid.Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	// Generated IDs always pass validation.
	_, err = NewSchemaID(id.String())
	assert.NoError(t, err)

	assert.False(t, id.Equals(GenerateSchemaID()))
}

func Test_MustNewSchemaID_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewSchemaID("../x")
	})
}

func Test_SchemaID_IsEmpty(t *testing.T) {
	assert.True(t, SchemaID{}.IsEmpty())
	assert.False(t, MustNewSchemaID("person").IsEmpty())
}

func Test_SchemaID_FileName(t *testing.T) {
	assert.Equal(t, "person.json", MustNewSchemaID("person").FileName())
}

func Test_SchemaID_JSON(t *testing.T) {
	data, err := json.Marshal(MustNewSchemaID("person"))
	require.NoError(t, err)
	assert.JSONEq(t, `"person"`, string(data))

	var id SchemaID
	require.NoError(t, json.Unmarshal([]byte(`"person"`), &id))
	assert.Equal(t, "person", id.String())

	err = json.Unmarshal([]byte(`"../person"`), &id)
	assert.ErrorIs(t, err, ErrInvalidSchemaID)
}
