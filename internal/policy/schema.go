package policy

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://grading-policy.json"

// Schema is the JSON Schema every policy file must satisfy.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"weights": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"discussion": weightSchema,
				"checkpoint": weightSchema,
				"project":    weightSchema,
				"lab":        weightSchema,
				"midterm":    weightSchema,
				"final":      weightSchema,
			},
			"required":             []any{"discussion", "checkpoint", "project", "lab", "midterm", "final"},
			"additionalProperties": false,
		},
		"lateness": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tiers": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"within":     map[string]any{"type": "string", "pattern": durationPattern},
							"multiplier": multiplierSchema,
						},
						"required":             []any{"within", "multiplier"},
						"additionalProperties": false,
					},
				},
				"otherwise": multiplierSchema,
			},
			"required":             []any{"tiers", "otherwise"},
			"additionalProperties": false,
		},
		"letters": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"thresholds": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"min":   map[string]any{"type": "number", "exclusiveMinimum": 0, "maximum": 1},
							"grade": map[string]any{"type": "string", "minLength": 1},
						},
						"required":             []any{"min", "grade"},
						"additionalProperties": false,
					},
				},
				"floor": map[string]any{"type": "string", "minLength": 1},
			},
			"required":             []any{"thresholds", "floor"},
			"additionalProperties": false,
		},
	},
	"additionalProperties": false,
}

// durationPattern matches time.Duration.String output, including
// sub-second units.
const durationPattern = `^[0-9]+(\.[0-9]+)?(h|m|s|ms|us|µs|ns)([0-9]+(\.[0-9]+)?(h|m|s|ms|us|µs|ns))*$`

var (
	weightSchema     = map[string]any{"type": "number", "minimum": 0, "maximum": 1}
	multiplierSchema = map[string]any{"type": "number", "minimum": 0, "maximum": 1}
)

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a generic JSON value, so round-trip the Go map.
		defBytes, err := json.Marshal(Schema)
		if err != nil {
			compileErr = fmt.Errorf("marshal policy schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse policy schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks raw JSON against Schema.
func validateDocument(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid policy JSON: %w", err)
	}
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile policy schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("policy schema validation failed: %w", err)
	}
	return nil
}
