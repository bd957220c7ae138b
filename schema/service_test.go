package schema

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
	"github.com/reglet-dev/reglet-schema-registry/schema/repository"
)

type countingRecorder struct {
	mu        sync.Mutex
	created   int
	instances int
	skipped   []string
}

func (r *countingRecorder) RecordSchemaCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) RecordInstanceCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances++
}

func (r *countingRecorder) RecordListSkipped(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, reason)
}

func newTestService(t *testing.T) (*SchemaService, string, *countingRecorder) {
	t.Helper()
	dir := t.TempDir()
	rec := &countingRecorder{}
	repo, err := repository.NewFSSchemaRepository(dir, repository.WithSkipRecorder(rec))
	require.NoError(t, err)
	return NewSchemaService(repo, WithRecorder(rec)), dir, rec
}

func properties(t *testing.T, raw string) *entities.Properties {
	t.Helper()
	props := entities.NewProperties()
	require.NoError(t, props.UnmarshalJSON([]byte(raw)))
	return props
}

func createdID(t *testing.T, msg string) string {
	t.Helper()
	const prefix = "Schema created with ID: "
	require.True(t, strings.HasPrefix(msg, prefix), "unexpected create result %q", msg)
	return strings.TrimPrefix(msg, prefix)
}

func TestSchemaService_CreateThenGet(t *testing.T) {
	svc, dir, rec := newTestService(t)
	ctx := context.Background()

	msg, err := svc.CreateSchema(ctx, CreateSchemaRequest{
		Title:      "Person",
		Type:       "object",
		Properties: properties(t, `{"name":{"type":"string"},"age":{"type":"integer"}}`),
		Required:   []string{"name"},
	})
	require.NoError(t, err)
	id := createdID(t, msg)
	assert.Equal(t, 1, rec.created)

	got, err := svc.GetSchema(ctx, id)
	require.NoError(t, err)

	onDisk, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)
	assert.Equal(t, string(onDisk), got)

	assert.JSONEq(t, `{
		"title": "Person",
		"type": "object",
		"properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
		"required": ["name"],
		"$id": "`+id+`"
	}`, got)
}

func TestSchemaService_CreateDefaultsAndOmissions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.CreateSchema(ctx, CreateSchemaRequest{Title: "Bare"})
	require.NoError(t, err)
	id := createdID(t, msg)

	got, err := svc.GetSchema(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Bare","type":"object","$id":"`+id+`"}`, got)
	assert.NotContains(t, got, "properties")
	assert.NotContains(t, got, "required")
}

func TestSchemaService_CreateStoresTypeVerbatim(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.CreateSchema(ctx, CreateSchemaRequest{
		Title:      "Odd",
		Type:       "frobnicate",
		Properties: properties(t, `{"x":{"type":"widget","format":"custom"}}`),
	})
	require.NoError(t, err)

	got, err := svc.GetSchema(ctx, createdID(t, msg))
	require.NoError(t, err)
	assert.Contains(t, got, `"type": "frobnicate"`)
	assert.Contains(t, got, `"format": "custom"`)
}

func TestSchemaService_CreateDistinctIDs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateSchema(ctx, CreateSchemaRequest{Title: "Same"})
	require.NoError(t, err)
	second, err := svc.CreateSchema(ctx, CreateSchemaRequest{Title: "Same"})
	require.NoError(t, err)

	assert.NotEqual(t, createdID(t, first), createdID(t, second))
}

func TestSchemaService_GetSchemaNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, id := range []string{"missing", "", "../../etc/passwd", "a/b", "x.y"} {
		t.Run(id, func(t *testing.T) {
			got, err := svc.GetSchema(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, "Schema with ID '"+id+"' not found", got)
		})
	}
}

func TestSchemaService_GetSchemaRawBytes(t *testing.T) {
	svc, dir, _ := newTestService(t)

	raw := "{ \"title\" : \"Hand written\",\n\"type\":\"string\" }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hand.json"), []byte(raw), 0o644))

	got, err := svc.GetSchema(context.Background(), "hand")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestSchemaService_GetSchemasList(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		got, err := svc.GetSchemasList(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("lists every schema and skips malformed files", func(t *testing.T) {
		svc, dir, rec := newTestService(t)
		ctx := context.Background()

		var ids []string
		for _, title := range []string{"One", "Two", "Three"} {
			msg, err := svc.CreateSchema(ctx, CreateSchemaRequest{Title: title})
			require.NoError(t, err)
			ids = append(ids, createdID(t, msg))
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "untitled.json"), []byte(`{"type":"object"}`), 0o644))

		got, err := svc.GetSchemasList(ctx)
		require.NoError(t, err)

		var entries []map[string]string
		require.NoError(t, json.Unmarshal([]byte(got), &entries))
		require.Len(t, entries, 4)

		names := make(map[string]string)
		for _, e := range entries {
			assert.Len(t, e, 2)
			names[e["id"]] = e["name"]
		}
		assert.Equal(t, "One", names[ids[0]])
		assert.Equal(t, "Two", names[ids[1]])
		assert.Equal(t, "Three", names[ids[2]])
		assert.Equal(t, "untitled", names["untitled"])
		assert.Equal(t, []string{"parse_error"}, rec.skipped)
	})
}

func TestSchemaService_CreateInstance(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	msg, err := svc.CreateSchema(ctx, CreateSchemaRequest{
		Title:      "Person",
		Properties: properties(t, `{"name":{"type":"string"},"age":{"type":"integer"},"tags":{"type":"array"}}`),
	})
	require.NoError(t, err)
	id := createdID(t, msg)

	t.Run("defaults", func(t *testing.T) {
		got, err := svc.CreateInstance(ctx, CreateInstanceRequest{SchemaID: id})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"","age":0,"tags":[]}`, got)
		assert.True(t, strings.HasPrefix(got, "{\n  \"name\": \"\","), "instance should be indented in declaration order: %s", got)
		assert.Less(t, strings.Index(got, `"age"`), strings.Index(got, `"tags"`))
	})

	t.Run("overrides", func(t *testing.T) {
		got, err := svc.CreateInstance(ctx, CreateInstanceRequest{
			SchemaID: id,
			Values: map[string]json.RawMessage{
				"name":  json.RawMessage(`"Ada"`),
				"extra": json.RawMessage(`true`),
			},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ada","age":0,"tags":[]}`, got)
	})

	t.Run("not found", func(t *testing.T) {
		got, err := svc.CreateInstance(ctx, CreateInstanceRequest{SchemaID: "nope"})
		require.NoError(t, err)
		assert.Equal(t, "Schema with ID 'nope' not found", got)
	})

	assert.Equal(t, 2, rec.instances)
}

func TestSchemaService_CreateInstanceNonObject(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.CreateSchema(ctx, CreateSchemaRequest{
		Title:      "Tags",
		Type:       "array",
		Properties: properties(t, `{"x":{"type":"string"}}`),
	})
	require.NoError(t, err)

	got, err := svc.CreateInstance(ctx, CreateInstanceRequest{SchemaID: createdID(t, msg)})
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestSchemaService_CreateInstanceMalformed(t *testing.T) {
	svc, dir, _ := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	_, err := svc.CreateInstance(context.Background(), CreateInstanceRequest{SchemaID: "broken"})
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrMalformedSchema)
}

func TestCreateSchemaRequest_UnmarshalKeepsOrder(t *testing.T) {
	var req CreateSchemaRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"T","properties":{"z":{},"a":{},"m":{}}}`), &req))

	var keys []string
	for pair := req.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
	assert.Empty(t, req.Type)
	assert.False(t, req.HasType)
}

func TestSchemaService_CreateKeepsExplicitEmptyType(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var req CreateSchemaRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Untyped","type":""}`), &req))
	assert.True(t, req.HasType)

	msg, err := svc.CreateSchema(ctx, req)
	require.NoError(t, err)
	id := createdID(t, msg)

	got, err := svc.GetSchema(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Untyped","type":"","$id":"`+id+`"}`, got)
}
