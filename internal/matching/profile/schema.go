// internal/matching/profile/schema.go
package profile

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"talent-matching/internal/common/errors"
	"talent-matching/internal/models"
)

// JSON schemas for untyped entity documents. Only identity fields are
// required; everything else is optional per the normalizer contract.
var candidateSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id"},
	"properties": map[string]interface{}{
		"id":                map[string]interface{}{"type": "string", "minLength": 1},
		"fullName":          map[string]interface{}{"type": "string"},
		"skills":            map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"experienceLevel":   map[string]interface{}{"type": "string"},
		"expectedSalaryMin": map[string]interface{}{"type": "integer"},
		"expectedSalaryMax": map[string]interface{}{"type": "integer"},
		"salaryCurrency":    map[string]interface{}{"type": "string"},
		"location":          map[string]interface{}{"type": "string"},
		"remoteOk":          map[string]interface{}{"type": "boolean"},
		"updatedAt":         map[string]interface{}{"type": "string"},
	},
}

var jobSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id"},
	"properties": map[string]interface{}{
		"id":              map[string]interface{}{"type": "string", "minLength": 1},
		"title":           map[string]interface{}{"type": "string"},
		"companyId":       map[string]interface{}{"type": "string"},
		"requiredSkills":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"experienceLevel": map[string]interface{}{"type": "string"},
		"salaryMin":       map[string]interface{}{"type": "integer"},
		"salaryMax":       map[string]interface{}{"type": "integer"},
		"salaryCurrency":  map[string]interface{}{"type": "string"},
		"location":        map[string]interface{}{"type": "string"},
		"remoteOk":        map[string]interface{}{"type": "boolean"},
		"updatedAt":       map[string]interface{}{"type": "string"},
	},
}

// ValidateRaw checks an untyped entity document against the kind's schema.
// Store implementations use it to reject malformed documents before decode.
func ValidateRaw(kind models.EntityKind, raw map[string]interface{}) error {
	schema := candidateSchema
	if kind == models.KindJob {
		schema = jobSchema
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewInvalidProfileError("", fmt.Sprintf("schema validation: %v", err))
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		id, _ := raw["id"].(string)
		return errors.NewInvalidProfileError(id, strings.Join(details, "; "))
	}

	return nil
}
