package providers

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	searchgenai "google.golang.org/genai"
)

// GeminiProvider talks to Gemini on Vertex AI. Structured generation uses the
// Vertex AI SDK's native response schemas. Google Search grounding goes
// through the Gen AI SDK, the only one exposing the search tool and the
// grounding chunks of a candidate.
type GeminiProvider struct {
	client *genai.Client
	search *searchgenai.Client
	model  string
	key    string
}

func NewGeminiProvider(ctx context.Context, projectID, region, model, key string) (*GeminiProvider, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("gemini: project and region are required: %w", ErrUnavailable)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	search, err := searchgenai.NewClient(ctx, &searchgenai.ClientConfig{
		Backend:  searchgenai.BackendVertexAI,
		Project:  projectID,
		Location: region,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gen ai client: %w", err)
	}
	return &GeminiProvider{client: client, search: search, model: model, key: key}, nil
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) info() ProviderInfo {
	return ProviderInfo{Name: "gemini", Model: g.model, Key: g.key}
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	m := g.newModel(req)
	if req.Schema != nil {
		m.GenerationConfig.ResponseMIMEType = "application/json"
		m.GenerationConfig.ResponseSchema = toGenaiSchema(req.Schema)
		m.GenerationConfig.Temperature = genai.Ptr[float32](0.0)
	}
	resp, err := m.GenerateContent(ctx, genai.Text(geminiPrompt(req)))
	if err != nil {
		return GenerateResponse{}, g.info(), fmt.Errorf("gemini generate: %w", err)
	}
	return GenerateResponse{Text: responseText(resp)}, g.info(), nil
}

func (g *GeminiProvider) GenerateGrounded(ctx context.Context, req GenerateRequest) (GroundedResponse, ProviderInfo, error) {
	cfg := &searchgenai.GenerateContentConfig{
		Tools: []*searchgenai.Tool{{GoogleSearch: &searchgenai.GoogleSearch{}}},
	}
	if sys := strings.TrimSpace(req.System); sys != "" {
		cfg.SystemInstruction = &searchgenai.Content{Parts: []*searchgenai.Part{{Text: sys}}}
	}
	resp, err := g.search.Models.GenerateContent(ctx, g.model, searchgenai.Text(geminiPrompt(req)), cfg)
	if err != nil {
		return GroundedResponse{}, g.info(), fmt.Errorf("gemini grounded generate: %w", err)
	}
	return GroundedResponse{Text: groundedText(resp), Sources: groundingSources(resp)}, g.info(), nil
}

func (g *GeminiProvider) newModel(req GenerateRequest) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.model)
	if sys := strings.TrimSpace(req.System); sys != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys)}}
	}
	return m
}

// geminiPrompt omits the schema instruction; Gemini enforces the schema natively.
func geminiPrompt(req GenerateRequest) string {
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\n" + strings.Join(req.Context, "\n\n")
	}
	return prompt
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

func groundedText(resp *searchgenai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func groundingSources(resp *searchgenai.GenerateContentResponse) []GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	chunks := resp.Candidates[0].GroundingMetadata.GroundingChunks
	out := make([]GroundingSource, 0, len(chunks))
	for _, c := range chunks {
		if c == nil || c.Web == nil {
			continue
		}
		out = append(out, GroundingSource{Title: c.Web.Title, URI: c.Web.URI})
	}
	return out
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGenaiSchema(v)
		}
	}
	return out
}

func toGenaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeNumber:
		return genai.TypeNumber
	case TypeString:
		return genai.TypeString
	default:
		return genai.TypeUnspecified
	}
}
