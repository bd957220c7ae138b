// Package prompt collects create_schema input interactively.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/reglet-dev/reglet-schema-registry/schema"
	"github.com/reglet-dev/reglet-schema-registry/schema/entities"
	"github.com/reglet-dev/reglet-schema-registry/schema/values"
)

// ErrNotInteractive is returned when stdin is not a terminal.
var ErrNotInteractive = errors.New("interactive mode requires a terminal")

// PropertyTypes are the JSON Schema types offered for schemas and properties.
var PropertyTypes = []string{"object", "string", "number", "integer", "boolean", "array"}

// TerminalPrompter asks the operator for a new schema's fields.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptForSchema runs the create form, starting from seed.
func (p *TerminalPrompter) PromptForSchema(seed schema.CreateSchemaRequest) (schema.CreateSchemaRequest, error) {
	if !p.IsInteractive() {
		return seed, ErrNotInteractive
	}

	req := seed
	if req.Type == "" {
		req.Type = schema.DefaultSchemaType
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&req.Title),
			huh.NewSelect[string]().
				Title("Type").
				Options(huh.NewOptions(PropertyTypes...)...).
				Value(&req.Type),
		),
	).Run()
	if err != nil {
		return seed, err
	}

	if req.Type != entities.TypeObject {
		return req, nil
	}

	if req.Properties == nil {
		req.Properties = entities.NewProperties()
	}
	for {
		name, typ, required, err := p.promptForProperty()
		if err != nil {
			return seed, err
		}
		if name == "" {
			break
		}
		req.Properties.Set(name, entities.TypedDefinition(typ))
		if required {
			req.Required = append(req.Required, name)
		}
	}
	return req, nil
}

// promptForProperty asks for one property. An empty name ends the loop.
func (p *TerminalPrompter) promptForProperty() (name, typ string, required bool, err error) {
	typ = "string"
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Property name").
				Description("Leave empty to finish.").
				Value(&name).
				Validate(validatePropertyName),
		),
	).Run()
	if err != nil || strings.TrimSpace(name) == "" {
		return "", "", false, err
	}
	name = strings.TrimSpace(name)

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Type of %q", name)).
				Options(huh.NewOptions(PropertyTypes[1:]...)...).
				Value(&typ),
			huh.NewConfirm().
				Title("Required?").
				Value(&required),
		),
	).Run()
	return name, typ, required, err
}

func validatePropertyName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Same character set as schema IDs.
	if _, err := values.NewSchemaID(s); err != nil {
		return fmt.Errorf("invalid property name %q", s)
	}
	return nil
}
