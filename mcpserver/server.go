// Package mcpserver exposes the schema registry over the Model Context Protocol.
//
// Resources:
//
//	schema://{schema_id}   raw schema text, or a not-found message
//	schemas://list         JSON array of {id, name}
//
// Tools:
//
//	create_schema    title, type, properties?, required?
//	create_instance  schema_id, values?
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	schemareg "github.com/reglet-dev/reglet-schema-registry"
	"github.com/reglet-dev/reglet-schema-registry/registry"
)

// ServerName is the implementation name advertised to clients.
const ServerName = "JSON Schema Server"

// Resource URIs.
const (
	SchemaURIPrefix   = "schema://"
	SchemaURITemplate = SchemaURIPrefix + "{schema_id}"
	SchemaListURI     = "schemas://list"
)

const (
	mimeJSON               = "application/json"
	methodResourcesChanged = "notifications/resources/list_changed"
)

// Server adapts a HandlerRegistry to an MCP server.
type Server struct {
	mcp      *server.MCPServer
	handlers *schemareg.HandlerRegistry
	schemas  registry.SchemaRegistry
	logger   zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates an MCP server dispatching into handlers. Tool input schemas are
// taken from schemas.
func New(handlers *schemareg.HandlerRegistry, schemas registry.SchemaRegistry, version string, opts ...Option) (*Server, error) {
	s := &Server{
		handlers: handlers,
		schemas:  schemas,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(ServerName, version,
		server.WithResourceCapabilities(false, true),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	if err := s.registerResources(); err != nil {
		return nil, err
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) registerResources() error {
	for _, op := range []string{schemareg.OpGetSchema, schemareg.OpListSchemas} {
		if !s.handlers.Has(op) {
			return fmt.Errorf("handler registry is missing operation %s", op)
		}
	}

	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(SchemaURITemplate, "Schema",
			mcp.WithTemplateDescription("Get a JSON schema by ID"),
			mcp.WithTemplateMIMEType(mimeJSON),
		),
		s.readSchema,
	)

	s.mcp.AddResource(
		mcp.NewResource(SchemaListURI, "Schema list",
			mcp.WithResourceDescription("List all available JSON schemas"),
			mcp.WithMIMEType(mimeJSON),
		),
		s.readSchemaList,
	)
	return nil
}

func (s *Server) registerTools() error {
	tools := []struct {
		op          string
		description string
	}{
		{schemareg.OpCreateSchema, "Create a new JSON schema"},
		{schemareg.OpCreateInstance, "Create a JSON instance based on a schema"},
	}

	for _, t := range tools {
		if !s.handlers.Has(t.op) {
			return fmt.Errorf("handler registry is missing operation %s", t.op)
		}
		inputSchema, ok := s.schemas.GetSchema(t.op)
		if !ok {
			return fmt.Errorf("no input schema registered for %s", t.op)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(t.op, t.description, []byte(inputSchema)), s.callTool)
	}
	return nil
}

func (s *Server) readSchema(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, SchemaURIPrefix)
	payload, err := json.Marshal(map[string]string{"schema_id": id})
	if err != nil {
		return nil, err
	}

	out, err := s.handlers.Invoke(ctx, schemareg.OpGetSchema, payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: mimeJSON, Text: string(out)},
	}, nil
}

func (s *Server) readSchemaList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := s.handlers.Invoke(ctx, schemareg.OpListSchemas, nil)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: mimeJSON, Text: string(out)},
	}, nil
}

// callTool dispatches a tool call. Operation failures are reported to the
// client as tool errors rather than protocol errors.
func (s *Server) callTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := toolPayload(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	out, err := s.handlers.Invoke(ctx, req.Params.Name, payload)
	if err != nil {
		resp := schemareg.AsErrorResponse(err)
		s.logger.Warn().Str("tool", req.Params.Name).Str("code", resp.Code).Msg("Tool call failed")
		return mcp.NewToolResultError(string(resp.ToJSON())), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolPayload prefers the arguments as received on the wire. Decoded
// arguments lose key order, so re-encoding them is the fallback.
func toolPayload(ctx context.Context, req mcp.CallToolRequest) ([]byte, error) {
	if raw, ok := rawArguments(ctx); ok {
		return raw, nil
	}
	if req.Params.Arguments == nil {
		return []byte("{}"), nil
	}

	b, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("{}"), nil
	}
	return b, nil
}

// NotifyListChanged tells connected clients that the schema list changed.
func (s *Server) NotifyListChanged() {
	s.mcp.SendNotificationToAllClients(methodResourcesChanged, nil)
}
