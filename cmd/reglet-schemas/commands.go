package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	schemareg "github.com/reglet-dev/reglet-schema-registry"
	"github.com/reglet-dev/reglet-schema-registry/prompt"
	"github.com/reglet-dev/reglet-schema-registry/render"
	"github.com/reglet-dev/reglet-schema-registry/schema"
	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
	"github.com/reglet-dev/reglet-schema-registry/version"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return invoke(cmd, opts, schemareg.OpListSchemas, nil, "")
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd, opts, schemareg.OpGetSchema, schema.GetSchemaRequest{SchemaID: args[0]}, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", render.FormatJSON, "output format: json or yaml")
	return cmd
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		title       string
		typ         string
		properties  []string
		required    []string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := schema.CreateSchemaRequest{Title: title, Type: typ, Required: required}
			if len(properties) > 0 {
				props, err := parseProperties(properties)
				if err != nil {
					return err
				}
				req.Properties = props
			}

			if interactive {
				var err error
				req, err = prompt.NewTerminalPrompter().PromptForSchema(req)
				if err != nil {
					return err
				}
			}
			return invoke(cmd, opts, schemareg.OpCreateSchema, req, "")
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "schema title")
	cmd.Flags().StringVar(&typ, "type", schema.DefaultSchemaType, "schema type")
	cmd.Flags().StringArrayVar(&properties, "property", nil, "property as name=type or name=<json definition> (repeatable)")
	cmd.Flags().StringSliceVar(&required, "required", nil, "required property names")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for the schema fields")
	return cmd
}

func newInstantiateCmd(opts *rootOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "instantiate <id>",
		Short: "Print an instance of a schema filled with defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(sets)
			if err != nil {
				return err
			}
			req := schema.CreateInstanceRequest{SchemaID: args[0], Values: values}
			return invoke(cmd, opts, schemareg.OpCreateInstance, req, "")
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override as name=<json>; non-JSON values are taken as strings (repeatable)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

// invoke dispatches one operation through the handler registry and prints the result.
func invoke(cmd *cobra.Command, opts *rootOptions, op string, req interface{}, format string) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}

	var payload []byte
	if req != nil {
		payload, err = json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	out, err := a.handlers.Invoke(cmd.Context(), op, payload)
	if err != nil {
		return err
	}

	text, err := render.Render(string(out), format)
	if err != nil {
		return err
	}
	return writeLine(cmd.OutOrStdout(), text)
}

func writeLine(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

func splitAssignment(flag, s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid --%s %q: want name=value", flag, s)
	}
	return name, value, nil
}

// parseProperties reads name=type or name=<json object> flags in order.
func parseProperties(specs []string) (*entities.Properties, error) {
	props := entities.NewProperties()
	for _, s := range specs {
		name, value, err := splitAssignment("property", s)
		if err != nil {
			return nil, err
		}
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "{") {
			if !json.Valid([]byte(value)) {
				return nil, fmt.Errorf("invalid --property %q: definition is not valid JSON", s)
			}
			props.Set(name, json.RawMessage(value))
			continue
		}
		if value == "" {
			value = "string"
		}
		props.Set(name, entities.TypedDefinition(value))
	}
	return props, nil
}

// parseValues reads name=<json> flags. A value that is not JSON is taken as a string.
func parseValues(sets []string) (map[string]json.RawMessage, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	values := make(map[string]json.RawMessage, len(sets))
	for _, s := range sets {
		name, value, err := splitAssignment("set", s)
		if err != nil {
			return nil, err
		}
		if json.Valid([]byte(value)) {
			values[name] = json.RawMessage(value)
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		values[name] = b
	}
	return values, nil
}
