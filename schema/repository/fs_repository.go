// Package repository implements schema repository adapters.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
	"github.com/reglet-dev/reglet-schema-registry/schema/ports"
	"github.com/reglet-dev/reglet-schema-registry/schema/values"
)

// DefaultDir is the schema directory used when none is configured.
const DefaultDir = "schemas"

const (
	schemaGlob    = "*.json"
	fileExtension = ".json"

	// maxCreateAttempts bounds retries when a generated ID collides with an existing file.
	maxCreateAttempts = 3

	skipReasonParse     = "parse_error"
	skipReasonInvalidID = "invalid_id"
	skipReasonRead      = "read_error"
	skipReasonTooLarge  = "too_large"
)

// FSSchemaRepository implements ports.SchemaRepository using one JSON file per schema.
type FSSchemaRepository struct {
	root        string // ./schemas
	filePerm    os.FileMode
	maxFileSize int64
	logger      zerolog.Logger
	skips       ports.SkipRecorder
	openFile    func(root *os.Root, name string, flag int, perm os.FileMode) (io.WriteCloser, error)
}

// Option configures an FSSchemaRepository.
type Option func(*FSSchemaRepository)

// WithLogger sets the logger used to report skipped files.
func WithLogger(l zerolog.Logger) Option {
	return func(r *FSSchemaRepository) { r.logger = l }
}

// WithSkipRecorder sets where skipped-file counts are reported.
func WithSkipRecorder(rec ports.SkipRecorder) Option {
	return func(r *FSSchemaRepository) { r.skips = rec }
}

// WithFilePermissions sets the permissions of newly written schema files.
func WithFilePermissions(perm os.FileMode) Option {
	return func(r *FSSchemaRepository) { r.filePerm = perm }
}

// WithMaxFileSize sets the largest schema file that will be read.
// Zero or less disables the limit.
func WithMaxFileSize(limit int64) Option {
	return func(r *FSSchemaRepository) { r.maxFileSize = limit }
}

// NewFSSchemaRepository creates a filesystem-based repository rooted at dir,
// creating the directory if it does not exist.
func NewFSSchemaRepository(dir string, opts ...Option) (*FSSchemaRepository, error) {
	if dir == "" {
		dir = DefaultDir
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create schema directory: %w", err)
	}

	r := &FSSchemaRepository{
		root:        filepath.Clean(dir),
		filePerm:    0o644,
		maxFileSize: DefaultMaxFileSize,
		logger:      zerolog.Nop(),
		openFile:    openInRoot,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root returns the schema directory.
func (r *FSSchemaRepository) Root() string {
	return r.root
}

// Path returns <root>/<id>.json.
func (r *FSSchemaRepository) Path(id values.SchemaID) string {
	return filepath.Join(r.root, id.FileName())
}

// Find returns the raw stored bytes for a schema.
func (r *FSSchemaRepository) Find(ctx context.Context, id values.SchemaID) ([]byte, error) {
	root, err := os.OpenRoot(r.root)
	if err != nil {
		return nil, fmt.Errorf("open schema directory %q: %w", r.root, err)
	}
	defer func() { _ = root.Close() }()

	return r.readFile(root, id)
}

// Load parses the stored schema document.
func (r *FSSchemaRepository) Load(ctx context.Context, id values.SchemaID) (*entities.Document, error) {
	data, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	var doc entities.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &entities.MalformedSchemaError{Path: r.Path(id), Err: err}
	}
	return &doc, nil
}

// List returns every schema in the directory as {id, name} pairs.
// Files that cannot be read or parsed are logged, counted and left out.
func (r *FSSchemaRepository) List(ctx context.Context) (*ports.ListResult, error) {
	root, err := os.OpenRoot(r.root)
	if err != nil {
		return nil, fmt.Errorf("open schema directory %q: %w", r.root, err)
	}
	defer func() { _ = root.Close() }()

	names, err := doublestar.Glob(root.FS(), schemaGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("enumerate schemas: %w", err)
	}

	result := &ports.ListResult{Schemas: make([]ports.SchemaSummary, 0, len(names))}
	for _, name := range names {
		stem := strings.TrimSuffix(name, fileExtension)

		id, err := values.NewSchemaID(stem)
		if err != nil {
			r.skip(result, skipReasonInvalidID, name, err)
			continue
		}

		data, err := r.readFile(root, id)
		if err != nil {
			reason := skipReasonRead
			if IsFileTooLargeError(err) {
				reason = skipReasonTooLarge
			}
			r.skip(result, reason, name, err)
			continue
		}

		summary, err := summarize(id, data)
		if err != nil {
			r.skip(result, skipReasonParse, name, err)
			continue
		}
		result.Schemas = append(result.Schemas, summary)
	}

	if result.Skipped > 0 {
		r.logger.Warn().
			Int("skipped", result.Skipped).
			Int("listed", len(result.Schemas)).
			Str("dir", r.root).
			Msg("Schema listing skipped unreadable files")
	}

	return result, nil
}

// Save writes the document as indented JSON. Documents without an ID get a
// fresh UUID and are created exclusively; caller-supplied IDs overwrite.
func (r *FSSchemaRepository) Save(ctx context.Context, doc *entities.Document) (values.SchemaID, error) {
	if doc == nil {
		return values.SchemaID{}, errors.New("schema document cannot be nil")
	}

	root, err := os.OpenRoot(r.root)
	if err != nil {
		return values.SchemaID{}, fmt.Errorf("open schema directory %q: %w", r.root, err)
	}
	defer func() { _ = root.Close() }()

	if doc.ID != "" {
		id, err := values.NewSchemaID(doc.ID)
		if err != nil {
			return values.SchemaID{}, err
		}
		doc.ID = id.String()
		return id, r.write(root, id, doc, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id := values.GenerateSchemaID()
		doc.ID = id.String()

		err := r.write(root, id, doc, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
		if errors.Is(err, fs.ErrExist) {
			r.logger.Warn().Str("schemaId", id.String()).Msg("Generated schema ID already in use, retrying")
			continue
		}
		if err != nil {
			doc.ID = ""
			return values.SchemaID{}, err
		}
		return id, nil
	}

	doc.ID = ""
	return values.SchemaID{}, fmt.Errorf("could not allocate a unique schema ID after %d attempts", maxCreateAttempts)
}

// Helper methods

func (r *FSSchemaRepository) write(root *os.Root, id values.SchemaID, doc *entities.Document, flag int) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema %s: %w", id, err)
	}

	name := id.FileName()
	file, err := r.openFile(root, name, flag, r.filePerm)
	if err != nil {
		return fmt.Errorf("create schema file %q: %w", name, err)
	}

	_, err = file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// A file created exclusively by this call holds no complete schema.
		if flag&os.O_EXCL != 0 {
			if rmErr := root.Remove(name); rmErr != nil {
				r.logger.Warn().Err(rmErr).Str("file", r.Path(id)).Msg("Failed to remove partial schema file")
			}
		}
		return fmt.Errorf("write schema file %q: %w", name, err)
	}
	return nil
}

func openInRoot(root *os.Root, name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
	file, err := root.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *FSSchemaRepository) skip(result *ports.ListResult, reason, name string, err error) {
	result.Skipped++
	r.logger.Error().
		Err(err).
		Str("file", filepath.Join(r.root, name)).
		Str("reason", reason).
		Msg("Error reading schema")
	if r.skips != nil {
		r.skips.RecordListSkipped(reason)
	}
}

func (r *FSSchemaRepository) readFile(root *os.Root, id values.SchemaID) ([]byte, error) {
	file, err := root.Open(id.FileName())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &entities.SchemaNotFoundError{ID: id.String()}
		}
		return nil, fmt.Errorf("open schema %q: %w", id.FileName(), err)
	}
	defer func() { _ = file.Close() }()

	data, err := readLimited(file, id.FileName(), r.maxFileSize)
	if err != nil {
		if IsFileTooLargeError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read schema %q: %w", id.FileName(), err)
	}
	return data, nil
}

// summarize extracts the listing entry for a schema file. The name is the
// document title when it is a string, otherwise the ID.
func summarize(id values.SchemaID, data []byte) (ports.SchemaSummary, error) {
	var view struct {
		Title json.RawMessage `json:"title"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		return ports.SchemaSummary{}, &entities.MalformedSchemaError{Path: id.FileName(), Err: err}
	}

	summary := ports.SchemaSummary{ID: id.String(), Name: id.String()}
	var title string
	if len(view.Title) > 0 && view.Title[0] == '"' && json.Unmarshal(view.Title, &title) == nil {
		summary.Name = title
	}
	return summary, nil
}
