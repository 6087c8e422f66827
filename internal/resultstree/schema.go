// internal/resultstree/schema.go
package resultstree

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// schemaDefinition is deliberately loose: the results document has no fixed
// shape, so only the invariants the extractor and coverage tables rely on are
// checked.
func schemaDefinition() map[string]any {
	coordinate := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latitude":                    map[string]any{"type": []string{"string", "number"}},
			"longitude":                   map[string]any{"type": []string{"string", "number"}},
			"distance_to_base_station_km": map[string]any{"type": []string{"number", "null"}},
		},
	}
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"Coverage Performance": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"additionalProperties": map[string]any{
						"type":                 "object",
						"additionalProperties": coordinate,
					},
				},
			},
		},
	}
}

// Validate checks raw JSON against the results document schema. It returns
// nil for a valid document and an error listing every violation otherwise.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(schemaDefinition())
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("results document failed validation: %s", strings.Join(errs, "; "))
}
