package providers

import (
	"encoding/json"
	"strings"
)

type SchemaType string

const (
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
	TypeString SchemaType = "string"
	TypeNumber SchemaType = "number"
)

// Schema is a provider-neutral subset of JSON schema used for structured
// output requests.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

func StringArray(desc string) *Schema {
	return &Schema{Type: TypeArray, Description: desc, Items: &Schema{Type: TypeString}}
}

// schemaInstruction renders the schema as an instruction for providers without
// native response schemas.
func schemaInstruction(s *Schema) string {
	if s == nil {
		return ""
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "Respond with a single JSON object."
	}
	return "Respond with a single JSON object (no markdown fences) that matches this JSON schema:\n" + string(b)
}

func composePrompt(req GenerateRequest) string {
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nContext:\n" + strings.Join(req.Context, "\n\n")
	}
	if req.Schema != nil {
		prompt += "\n\n" + schemaInstruction(req.Schema)
	}
	return prompt
}

func systemOr(req GenerateRequest, fallback string) string {
	if s := strings.TrimSpace(req.System); s != "" {
		return s
	}
	return fallback
}
