package providers

import "context"

const (
	OpExtractMetadata = "extract_metadata"
	OpSummarize       = "summarize"
	OpFindRelated     = "find_related"
	OpEvaluate        = "evaluate_summary"
)

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// GenerateRequest asks for a completion. A non-nil Schema requests a JSON
// document shaped by it.
type GenerateRequest struct {
	Operation string   `json:"operation"`
	System    string   `json:"system,omitempty"`
	Prompt    string   `json:"prompt"`
	Context   []string `json:"context,omitempty"`
	Schema    *Schema  `json:"schema,omitempty"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type GroundedResponse struct {
	Text    string            `json:"text"`
	Sources []GroundingSource `json:"sources"`
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

// GroundedProvider answers with web search grounding and reports the pages
// it grounded on.
type GroundedProvider interface {
	GenerateGrounded(ctx context.Context, req GenerateRequest) (GroundedResponse, ProviderInfo, error)
}
