package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DatasetSchema defines the JSON schema for the raw movie dataset. Every
// field is optional (the loader filters incomplete entries itself), but a
// present field must have the right type; a type mismatch means the dataset
// is malformed and the whole load fails.
var DatasetSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"year": {"type": "integer"},
			"extract": {"type": "string"},
			"thumbnail": {"type": "string"},
			"genres": {
				"type": "array",
				"items": {"type": "string"}
			},
			"cast": {
				"type": "array",
				"items": {"type": "string"}
			}
		}
	}
}`

// validateDataset validates the raw dataset bytes against DatasetSchema.
func validateDataset(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(DatasetSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate dataset schema: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("dataset validation failed: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}
