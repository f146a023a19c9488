package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildTableResponseSchema returns a JSON-Schema (draft 2020-12 subset) for
// the extraction envelope as a generic map. It is deliberately loose on the
// row level: every field is optional and loosely typed there, because the
// reconciler owns defaulting and coercion. The envelope shape itself — one
// object with a table_data array of objects — is the hard contract.
func BuildTableResponseSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{TableDataKey},
		"properties": map[string]any{
			TableDataKey: map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
				},
			},
		},
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
