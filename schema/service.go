// Package schema implements the schema registry use cases on top of a
// SchemaRepository: reading, listing, creating and instantiating schemas.
package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
	"github.com/reglet-dev/reglet-schema-registry/schema/ports"
	"github.com/reglet-dev/reglet-schema-registry/schema/services"
	"github.com/reglet-dev/reglet-schema-registry/schema/values"
)

// SchemaService orchestrates the registry use cases.
// Results are caller-facing text: a missing schema is reported as a
// "not found" message, not as an error.
type SchemaService struct {
	repository ports.SchemaRepository
	instances  *services.InstanceService
	recorder   ports.Recorder
	logger     zerolog.Logger
}

// SchemaServiceOption configures a SchemaService.
type SchemaServiceOption func(*SchemaService)

// NewSchemaService creates a schema service backed by repository.
func NewSchemaService(repository ports.SchemaRepository, opts ...SchemaServiceOption) *SchemaService {
	s := &SchemaService{
		repository: repository,
		instances:  services.NewInstanceService(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) SchemaServiceOption {
	return func(s *SchemaService) { s.logger = l }
}

// WithRecorder sets the activity recorder.
func WithRecorder(r ports.Recorder) SchemaServiceOption {
	return func(s *SchemaService) { s.recorder = r }
}

// WithInstanceService sets the instance service.
func WithInstanceService(is *services.InstanceService) SchemaServiceOption {
	return func(s *SchemaService) { s.instances = is }
}

// NotFoundMessage is the text returned for an unknown schema ID.
func NotFoundMessage(id string) string {
	return (&entities.SchemaNotFoundError{ID: id}).Error()
}

// CreatedMessage is the text returned after a schema is stored.
func CreatedMessage(id values.SchemaID) string {
	return fmt.Sprintf("Schema created with ID: %s", id)
}

// GetSchema returns the stored schema text byte-for-byte.
func (s *SchemaService) GetSchema(ctx context.Context, rawID string) (string, error) {
	id, err := values.NewSchemaID(rawID)
	if err != nil {
		s.logger.Debug().Err(err).Str("schemaId", rawID).Msg("Rejected schema ID")
		return NotFoundMessage(rawID), nil
	}

	data, err := s.repository.Find(ctx, id)
	if errors.Is(err, entities.ErrSchemaNotFound) {
		return NotFoundMessage(rawID), nil
	}
	if err != nil {
		return "", fmt.Errorf("read schema %s: %w", id, err)
	}
	return string(data), nil
}

// GetSchemasList returns the indented JSON array of {id, name} entries.
func (s *SchemaService) GetSchemasList(ctx context.Context) (string, error) {
	result, err := s.repository.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list schemas: %w", err)
	}

	summaries := result.Schemas
	if summaries == nil {
		summaries = []ports.SchemaSummary{}
	}

	out, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema list: %w", err)
	}
	return string(out), nil
}

// CreateSchema stores a new schema and returns a confirmation with its ID.
// A missing type defaults to "object"; a supplied type and the property
// definitions are stored as given.
func (s *SchemaService) CreateSchema(ctx context.Context, req CreateSchemaRequest) (string, error) {
	typ := req.Type
	if typ == "" && !req.HasType {
		typ = DefaultSchemaType
	}

	doc := entities.NewDocument(req.Title, typ, req.Properties, req.Required)
	id, err := s.repository.Save(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("save schema: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordSchemaCreated()
	}
	s.logger.Info().
		Str("schemaId", id.String()).
		Str("title", req.Title).
		Str("type", typ).
		Msg("Schema created")

	return CreatedMessage(id), nil
}

// CreateInstance returns an indented JSON instance of the schema, filled from
// req.Values where declared and type defaults elsewhere. Nothing is persisted.
func (s *SchemaService) CreateInstance(ctx context.Context, req CreateInstanceRequest) (string, error) {
	id, err := values.NewSchemaID(req.SchemaID)
	if err != nil {
		s.logger.Debug().Err(err).Str("schemaId", req.SchemaID).Msg("Rejected schema ID")
		return NotFoundMessage(req.SchemaID), nil
	}

	doc, err := s.repository.Load(ctx, id)
	if errors.Is(err, entities.ErrSchemaNotFound) {
		return NotFoundMessage(req.SchemaID), nil
	}
	if err != nil {
		return "", fmt.Errorf("load schema %s: %w", id, err)
	}

	instance := s.instances.Instantiate(doc, req.Values)
	out, err := json.MarshalIndent(instance, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal instance: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordInstanceCreated()
	}
	return string(out), nil
}
