// Package services contains domain services for the schema registry.
package services

import (
	"github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
)

// Instance is a generated document, keyed in the schema's property order.
type Instance = orderedmap.OrderedMap[string, json.RawMessage]

var typeDefaults = map[string]json.RawMessage{
	"string":  json.RawMessage(`""`),
	"number":  json.RawMessage(`0`),
	"integer": json.RawMessage(`0`),
	"boolean": json.RawMessage(`false`),
	"array":   json.RawMessage(`[]`),
	"object":  json.RawMessage(`{}`),
}

// DefaultFor returns the zero value emitted for a declared property type.
// Unknown types default like "string".
func DefaultFor(typ string) json.RawMessage {
	if v, ok := typeDefaults[typ]; ok {
		return v
	}
	return typeDefaults["string"]
}

// InstanceService builds instances of stored schemas.
type InstanceService struct{}

// NewInstanceService creates a new InstanceService.
func NewInstanceService() *InstanceService {
	return &InstanceService{}
}

// Instantiate returns one entry per declared property of an object schema.
// An override in values wins over the type default; keys the schema does not
// declare are dropped. Values are not checked against the declared type.
// Non-object schemas and schemas without properties produce an empty instance.
func (s *InstanceService) Instantiate(doc *entities.Document, values map[string]json.RawMessage) *Instance {
	instance := orderedmap.New[string, json.RawMessage]()
	if doc == nil || !doc.IsInstantiable() {
		return instance
	}

	for pair := doc.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if v, ok := values[pair.Key]; ok {
			instance.Set(pair.Key, v)
			continue
		}
		instance.Set(pair.Key, DefaultFor(entities.PropertyType(pair.Value)))
	}
	return instance
}
