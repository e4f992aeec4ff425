// Package analyzer - schema.go validates model extraction output against a
// JSON Schema before trusting it.
package analyzer

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/cv-tailor/internal/types"
)

// signalSchema is the contract the extraction model must satisfy. Output
// that fails validation triggers the strict retry, then the heuristic.
const signalSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["role_title", "technologies"],
  "properties": {
    "role_title": {"type": "string"},
    "seniority_hint": {"type": "string"},
    "technologies": {"type": "array", "items": {"type": "string"}},
    "company": {"type": "string"},
    "min_years": {"type": "integer", "minimum": 0},
    "industry_tags": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": true
}`

// extractedSignal mirrors the extraction prompt's output structure.
type extractedSignal struct {
	RoleTitle     string   `json:"role_title"`
	SeniorityHint string   `json:"seniority_hint"`
	Technologies  []string `json:"technologies"`
	Company       string   `json:"company"`
	MinYears      int      `json:"min_years"`
	IndustryTags  []string `json:"industry_tags"`
}

// parseSignalJSON validates and decodes raw model output into a JobSignal.
func parseSignalJSON(raw string) (*types.JobSignal, error) {
	schemaLoader := gojsonschema.NewStringLoader(signalSchema)
	documentLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("extraction output does not match schema: %v", result.Errors())
	}

	var extracted extractedSignal
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return nil, fmt.Errorf("failed to decode extraction output: %w", err)
	}
	if extracted.RoleTitle == "" && len(extracted.Technologies) == 0 {
		return nil, fmt.Errorf("extraction output carries no usable signal")
	}

	return &types.JobSignal{
		RoleTitle:     extracted.RoleTitle,
		SeniorityHint: extracted.SeniorityHint,
		Technologies:  dedupe(extracted.Technologies),
		Company:       extracted.Company,
		MinYears:      extracted.MinYears,
		IndustryTags:  dedupe(extracted.IndustryTags),
	}, nil
}
