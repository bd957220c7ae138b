package registry

// SchemaRegistry manages the JSON input schemas of registry operations.
type SchemaRegistry interface {
	// Register adds a schema for an operation (e.g. "create_schema").
	// model can be a struct (to generate schema) or a JSON schema string/map.
	Register(kind string, model interface{}) error

	// GetSchema returns the JSON schema for an operation.
	GetSchema(kind string) (string, bool)

	// List returns all registered operations in sorted order.
	List() []string
}
