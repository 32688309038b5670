package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schemas for the three model interactions. Responses are validated before
// decoding so a malformed reply fails with a schema error instead of a
// half-populated struct.

var pageExtractionSchema = mustCompile(map[string]any{
	"type":     "object",
	"required": []any{"items"},
	"properties": map[string]any{
		"invoice_number": map[string]any{"type": "string"},
		"country":        map[string]any{"type": "string"},
		"currency":       map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"description"},
				"properties": map[string]any{
					"code":        map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"quantity":    map[string]any{"type": "string"},
					"unit_price":  map[string]any{"type": "string"},
					"total_price": map[string]any{"type": "string"},
				},
			},
		},
	},
})

// The proposer must answer with a list of per-item weight objects. A non-list
// reply is the classic failure mode and gets its own sentinel in the engine.
var weightProposalSchema = mustCompile(map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []any{"code", "net_kg", "gross_kg"},
		"properties": map[string]any{
			"code":     map[string]any{"type": "string"},
			"net_kg":   map[string]any{"type": "number"},
			"gross_kg": map[string]any{"type": "number"},
		},
	},
})

// ValidatePageExtraction checks a sanitized extraction response.
func ValidatePageExtraction(data []byte) error {
	return validate(pageExtractionSchema, data)
}

// ValidateWeightProposal checks a sanitized weight proposal response.
func ValidateWeightProposal(data []byte) error {
	return validate(weightProposalSchema, data)
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}
