// Package ports declares the interfaces the schema service depends on.
package ports

import (
	"context"

	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
	"github.com/reglet-dev/reglet-schema-registry/schema/values"
)

// SchemaSummary is one entry of a schema listing.
type SchemaSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListResult is the outcome of a best-effort directory enumeration.
type ListResult struct {
	Schemas []SchemaSummary
	// Skipped counts files that matched but could not be listed.
	Skipped int
}

// SchemaRepository manages persistent storage of schema documents.
// Implements Repository pattern for the Document aggregate.
type SchemaRepository interface {
	// Path returns the backing file path for an ID. It performs no I/O.
	Path(id values.SchemaID) string

	// Find returns the stored bytes of a schema exactly as written.
	Find(ctx context.Context, id values.SchemaID) ([]byte, error)

	// Load returns the parsed schema document.
	Load(ctx context.Context, id values.SchemaID) (*entities.Document, error)

	// List enumerates every stored schema, skipping unreadable files.
	List(ctx context.Context) (*ListResult, error)

	// Save persists a document, assigning a fresh ID when it has none.
	// Returns the ID used.
	Save(ctx context.Context, doc *entities.Document) (values.SchemaID, error)
}

// SkipRecorder observes files skipped while listing.
type SkipRecorder interface {
	RecordListSkipped(reason string)
}

// Recorder observes registry activity. metrics.Metrics implements it.
type Recorder interface {
	SkipRecorder
	RecordSchemaCreated()
	RecordInstanceCreated()
}
