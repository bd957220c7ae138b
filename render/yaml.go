// Package render converts stored schema text into operator-facing formats.
package render

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render returns text in the requested format. Text that is not JSON (such as
// a not-found message) is returned unchanged.
func Render(text, format string) (string, error) {
	switch format {
	case "", FormatJSON:
		return text, nil
	case FormatYAML:
		return JSONToYAML([]byte(text))
	default:
		return "", fmt.Errorf("unknown output format %q (want %q or %q)", format, FormatJSON, FormatYAML)
	}
}

// JSONToYAML re-encodes a JSON document as block-style YAML, keeping key order.
func JSONToYAML(data []byte) (string, error) {
	if !json.Valid(data) {
		return string(data), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", fmt.Errorf("decode json: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}

// blockStyle clears the flow and quoting styles yaml.v3 records for JSON
// input. The encoder still quotes strings that would otherwise read back as
// another type.
func blockStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style &^= yaml.FlowStyle
	case yaml.ScalarNode:
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
