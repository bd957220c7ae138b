// Package entities defines the schema registry's domain types.
package entities

import (
	"github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TypeObject is the JSON Schema type that has instantiable properties.
const TypeObject = "object"

// Properties maps property names to their raw JSON definitions in declaration order.
type Properties = orderedmap.OrderedMap[string, json.RawMessage]

// NewProperties returns an empty Properties map.
func NewProperties() *Properties {
	return orderedmap.New[string, json.RawMessage]()
}

// Document is a stored JSON Schema.
// Field order matches the on-disk layout: title, type, properties, required, $id.
type Document struct {
	Title      string      `json:"title"`
	Type       string      `json:"type"`
	Properties *Properties `json:"properties,omitempty"`
	Required   []string    `json:"required,omitempty"`
	ID         string      `json:"$id,omitempty"`
}

// NewDocument builds a document, dropping empty properties and required lists
// so they are omitted from the stored file entirely.
func NewDocument(title, typ string, properties *Properties, required []string) *Document {
	doc := &Document{Title: title, Type: typ}
	if properties != nil && properties.Len() > 0 {
		doc.Properties = properties
	}
	if len(required) > 0 {
		doc.Required = required
	}
	return doc
}

// IsInstantiable reports whether the document is an object schema with declared properties.
func (d *Document) IsInstantiable() bool {
	return d.Type == TypeObject && d.Properties != nil && d.Properties.Len() > 0
}

// UnmarshalJSON decodes a document leniently. Files may be edited out of band,
// so fields with an unexpected JSON type are left at their zero value instead
// of failing the whole document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title      json.RawMessage `json:"title"`
		Type       json.RawMessage `json:"type"`
		Properties json.RawMessage `json:"properties"`
		Required   json.RawMessage `json:"required"`
		ID         json.RawMessage `json:"$id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Document{
		Title: stringOrEmpty(raw.Title),
		Type:  stringOrEmpty(raw.Type),
		ID:    stringOrEmpty(raw.ID),
	}

	if len(raw.Properties) > 0 {
		props := NewProperties()
		if err := props.UnmarshalJSON(raw.Properties); err == nil && props.Len() > 0 {
			d.Properties = props
		}
	}

	if len(raw.Required) > 0 {
		var required []string
		if err := json.Unmarshal(raw.Required, &required); err == nil {
			d.Required = required
		}
	}

	return nil
}

// PropertyType returns the declared "type" of a property definition.
// Missing types, non-string types and non-object definitions all report "string".
func PropertyType(def json.RawMessage) string {
	var d struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(def, &d); err != nil {
		return "string"
	}
	if t := stringOrEmpty(d.Type); t != "" {
		return t
	}
	return "string"
}

func stringOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// TypedDefinition returns the minimal property definition {"type": typ}.
func TypedDefinition(typ string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"type": typ})
	return b
}
