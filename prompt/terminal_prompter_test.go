package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_validatePropertyName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "email", false},
		{"snake case", "first_name", false},
		{"empty finishes", "", false},
		{"blank finishes", "   ", false},
		{"dot", "a.b", true},
		{"space", "first name", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePropertyName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_PropertyTypes(t *testing.T) {
	// The schema type select offers object first; property selects skip it.
	assert.Equal(t, "object", PropertyTypes[0])
	assert.NotContains(t, PropertyTypes[1:], "object")
}
