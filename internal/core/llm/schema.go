package llm

import (
	"github.com/joseph-ayodele/cards-extractor/constants"
)

// BuildCardJSONSchema describes a finished card record: exactly the fixed fields, all strings.
// Value shapes are the normalizer's concern.
func BuildCardJSONSchema() map[string]any {
	props := make(map[string]any, constants.FieldCount())
	required := make([]string, 0, constants.FieldCount())
	for _, f := range constants.Fields() {
		props[string(f)] = map[string]any{"type": "string"}
		required = append(required, string(f))
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
		"minProperties":        constants.FieldCount(),
		"maxProperties":        constants.FieldCount(),
	}
}
