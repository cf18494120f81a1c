package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildDocumentJSONSchema returns the JSON-Schema an incoming OCR document
// must satisfy. Lines may be objects or the legacy array form.
func BuildDocumentJSONSchema() map[string]any {
	numArray := map[string]any{"type": "array", "items": map[string]any{"type": "number"}}
	tokenObject := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":             map[string]any{"type": "string"},
			"confidence":       map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"char_confidences": numArray,
			"x":                map[string]any{"type": "number"},
			"y":                map[string]any{"type": "number"},
			"char_x":           numArray,
		},
		"required": []string{"text"},
	}
	tokenArray := map[string]any{
		"type":     "array",
		"minItems": 1,
		"prefixItems": []any{
			map[string]any{"type": "string"},
			map[string]any{"anyOf": []any{map[string]any{"type": "number"}, numArray}},
			numArray,
			numArray,
		},
	}
	lineObject := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":   map[string]any{"type": "string"},
			"tokens": map[string]any{"type": "array", "items": map[string]any{"anyOf": []any{tokenObject, tokenArray}}},
		},
		"anyOf": []any{
			map[string]any{"required": []string{"text"}},
			map[string]any{"required": []string{"tokens"}},
		},
	}
	lineArray := map[string]any{
		"type":     "array",
		"minItems": 1,
	}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"kind":  map[string]any{"type": "string", "minLength": 1},
			"lines": map[string]any{"type": "array", "items": map[string]any{"anyOf": []any{lineObject, lineArray}}},
		},
		"required": []string{"lines"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
