package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reisekosten/reisekosten/constants"
)

// BuildParsedReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// for the serialized ParsedReceipt artifact as a generic map. The pipeline
// validates every result against it before the fields reach storage.
func BuildParsedReceiptJSONSchema() map[string]any {
	props := map[string]any{
		"amount":           decimalProp(),
		"currency":         map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"vat":              decimalProp(),
		"vat_rate":         decimalProp(),
		"date":             map[string]any{"type": "string", "format": "date-time"},
		"merchant":         map[string]any{"type": "string", "minLength": 1, "maxLength": 255},
		"merchant_address": map[string]any{"type": "string"},
		"merchant_tax_id":  map[string]any{"type": "string"},
		"category": map[string]any{
			"type": "string",
			"enum": constants.Categories(),
		},
		"invoice_number":     map[string]any{"type": "string", "minLength": 1},
		"payment_method":     map[string]any{"type": "string", "minLength": 1},
		"parsing_confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0},
		"raw_text":           map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"parsing_confidence", "raw_text"},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^-?\d+(\.\d+)?$`,
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
