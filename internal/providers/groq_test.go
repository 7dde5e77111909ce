package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqMissingKeyIsUnavailable(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	p := NewGroqProvider("alias1")
	_, _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestGroqJSONModeRequest(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"score\":90}"}}]}`))
	}))
	defer ts.Close()
	old := groqBaseURL
	groqBaseURL = ts.URL
	defer func() { groqBaseURL = old }()
	t.Setenv("GROQ_API_KEY", "k")

	p := NewGroqProvider("")
	resp, _, err := p.Generate(context.Background(), GenerateRequest{
		Prompt: "judge",
		Schema: &Schema{Type: TypeObject, Properties: map[string]*Schema{"score": {Type: TypeNumber}}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score":90}`, resp.Text)
	format, ok := body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	msgs := body["messages"].([]any)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.True(t, strings.Contains(user, "JSON schema"))
}

func TestOpenAIErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit"}`))
	}))
	defer ts.Close()
	old := openAIBaseURL
	openAIBaseURL = ts.URL
	defer func() { openAIBaseURL = old }()
	t.Setenv("OPENAI_API_KEY", "k")

	_, info, err := NewOpenAIProvider("").Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, "openai", info.Name)
	assert.Equal(t, ErrorRate, ClassifyError(err))
}
