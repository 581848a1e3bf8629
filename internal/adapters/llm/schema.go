package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schema pairs a JSON Schema definition with its compiled validator.
type schema struct {
	name       string
	definition map[string]any
	compiled   *jsonschema.Schema
}

// mustSchema compiles definition; the definitions are package constants so
// a failure is a programming error.
func mustSchema(name string, definition map[string]any) *schema {
	s, err := compileSchema(name, definition)
	if err != nil {
		panic(err)
	}
	return s
}

func compileSchema(name string, definition map[string]any) (*schema, error) {
	// The compiler expects a decoded JSON value, so round-trip the map.
	b, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &schema{name: name, definition: definition, compiled: compiled}, nil
}

// validate checks raw against the schema.
func (s *schema) validate(raw json.RawMessage) error {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

var (
	detectSchema = mustSchema("language-detection", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"language": map[string]any{
				"type":        "string",
				"description": "ISO 639-1 code of the text language",
				"minLength":   2,
			},
		},
		"required":             []string{"language"},
		"additionalProperties": false,
	})

	translateSchema = mustSchema("translation", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"translation": map[string]any{"type": "string"},
		},
		"required":             []string{"translation"},
		"additionalProperties": false,
	})

	polaritySchema = mustSchema("sentiment-polarity", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"polarity": map[string]any{
				"type":    "number",
				"minimum": -1,
				"maximum": 1,
			},
		},
		"required":             []string{"polarity"},
		"additionalProperties": false,
	})
)
