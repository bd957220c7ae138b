package schema

import (
	"github.com/goccy/go-json"

	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
)

// DefaultSchemaType is used when create_schema is called without a type.
// An explicit empty type is stored as given.
const DefaultSchemaType = entities.TypeObject

// GetSchemaRequest is the payload of the get_schema operation.
type GetSchemaRequest struct {
	SchemaID string `json:"schema_id" jsonschema:"description=ID of the schema to read"`
}

// ListSchemasRequest is the (empty) payload of the list_schemas operation.
type ListSchemasRequest struct{}

// CreateSchemaRequest is the payload of the create_schema operation.
type CreateSchemaRequest struct {
	Title      string               `json:"title" jsonschema:"description=The title of the schema"`
	Type       string               `json:"type,omitempty" jsonschema:"description=The type of the schema such as object or array or string,default=object"`
	Properties *entities.Properties `json:"properties,omitempty" jsonschema:"description=Dictionary of property definitions"`
	Required   []string             `json:"required,omitempty" jsonschema:"description=List of required property names"`

	// HasType reports that Type was supplied, even as "".
	HasType bool `json:"-"`
}

// UnmarshalJSON decodes the request keeping property declaration order.
func (r *CreateSchemaRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title      string          `json:"title"`
		Type       *string         `json:"type"`
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = CreateSchemaRequest{Title: raw.Title, Required: raw.Required}
	if raw.Type != nil {
		r.Type = *raw.Type
		r.HasType = true
	}
	if len(raw.Properties) > 0 && string(raw.Properties) != "null" {
		props := entities.NewProperties()
		if err := props.UnmarshalJSON(raw.Properties); err != nil {
			return err
		}
		r.Properties = props
	}
	return nil
}

// CreateInstanceRequest is the payload of the create_instance operation.
type CreateInstanceRequest struct {
	SchemaID string                     `json:"schema_id" jsonschema:"description=ID of the schema to use"`
	Values   map[string]json.RawMessage `json:"values,omitempty" jsonschema:"description=Values to populate in the instance"`
}
