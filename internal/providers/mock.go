package providers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"scholarsync/internal/util"
)

// MockProvider returns deterministic structured output so the whole pipeline
// runs offline.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	if err := ctx.Err(); err != nil {
		return GenerateResponse{}, mockInfo(), err
	}
	source := strings.Join(req.Context, "\n\n")
	var payload any
	switch req.Operation {
	case OpExtractMetadata:
		title, abstract := heuristicTitleAndAbstract(source)
		payload = map[string]string{"title": title, "abstract": abstract}
	case OpSummarize:
		payload = map[string]any{
			"mainSummary":   util.Snippet(source, 600),
			"contributions": []string{"Deterministic mock contribution derived from the paper text."},
			"method":        []string{"Mock method description."},
			"results":       []string{"Mock result description."},
			"limitations":   []string{"Mock output; configure a real provider for semantic quality."},
		}
	case OpEvaluate:
		payload = map[string]any{
			"score":                   80,
			"semanticSimilarityScore": 82,
			"keypointCoverageScore":   78,
			"reasoning":               "Deterministic mock evaluation.",
			"missingKeypoints":        []string{},
		}
	default:
		return GenerateResponse{Text: "Mock response."}, mockInfo(), nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return GenerateResponse{}, mockInfo(), fmt.Errorf("mock encode: %w", err)
	}
	return GenerateResponse{Text: string(b)}, mockInfo(), nil
}

func (m *MockProvider) GenerateGrounded(ctx context.Context, req GenerateRequest) (GroundedResponse, ProviderInfo, error) {
	if err := ctx.Err(); err != nil {
		return GroundedResponse{}, mockInfo(), err
	}
	sum := sha256.Sum256([]byte(req.Prompt))
	id := hex.EncodeToString(sum[:4])
	sources := make([]GroundingSource, 0, 3)
	for i := 1; i <= 3; i++ {
		sources = append(sources, GroundingSource{
			Title: fmt.Sprintf("Mock related work %d", i),
			URI:   fmt.Sprintf("https://example.org/papers/%s-%d", id, i),
		})
	}
	return GroundedResponse{Text: "Mock grounded answer.", Sources: sources}, mockInfo(), nil
}

func mockInfo() ProviderInfo {
	return ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
}

// heuristicTitleAndAbstract takes the first non-empty line as the title and the
// text following an "Abstract" marker as the abstract.
func heuristicTitleAndAbstract(text string) (string, string) {
	title := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			title = util.Snippet(line, 200)
			break
		}
	}
	abstract := ""
	low := strings.ToLower(text)
	if i := strings.Index(low, "abstract"); i >= 0 {
		rest := strings.TrimLeft(text[i+len("abstract"):], " :.-\n\t")
		abstract = util.Snippet(rest, 800)
	}
	return title, abstract
}
