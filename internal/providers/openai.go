package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var openAIBaseURL = "https://api.openai.com/v1"

const defaultSystemPrompt = "You are an expert academic research assistant. Be precise and faithful to the provided paper text."

// OpenAIProvider uses standard OpenAI REST APIs when keys are configured.
type OpenAIProvider struct {
	keyName string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	model := strings.TrimSpace(os.Getenv("SCHOLARSYNC_OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		keyName: keyName,
		apiKey:  resolveOpenAIKey(keyName),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.model, Key: o.keyName}
	if o.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("openai key missing for alias %q: %w", o.keyName, ErrUnavailable)
	}
	text, err := chatCompletion(ctx, o.client, openAIBaseURL+"/chat/completions", o.apiKey, o.model, req)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("openai %w", err)
	}
	return GenerateResponse{Text: text}, info, nil
}

// chatCompletion calls an OpenAI-compatible chat completions endpoint. Schema
// requests switch on JSON mode and carry the schema as an instruction.
func chatCompletion(ctx context.Context, client *http.Client, endpoint, apiKey, model string, req GenerateRequest) (string, error) {
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemOr(req, defaultSystemPrompt)},
			{"role": "user", "content": composePrompt(req)},
		},
	}
	if req.Schema != nil {
		body["response_format"] = map[string]string{"type": "json_object"}
		body["temperature"] = 0
	}
	payload, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("generate error %d: %s", resp.StatusCode, string(raw))
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("returned empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		k := os.Getenv("SCHOLARSYNC_OPENAI_KEY_" + strings.ToUpper(alias))
		if k != "" {
			return k
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
