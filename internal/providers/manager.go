package providers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"scholarsync/internal/config"
)

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

type Manager struct {
	llmProviders []NamedLLMProvider
}

// NewManager builds the providers named in cfg.LLMProviders, e.g.
// "gemini|openai:key1|mock". The first entry serves the analysis stages.
func NewManager(ctx context.Context, cfg config.Config) (*Manager, error) {
	m := &Manager{}
	for _, ref := range ParseProviderList(cfg.LLMProviders) {
		p, err := buildProvider(ctx, ref, cfg)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.llmProviders = append(m.llmProviders, NamedLLMProvider{Ref: ref, Provider: p})
	}
	if len(m.llmProviders) == 0 {
		m.llmProviders = []NamedLLMProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m, nil
}

// NewManagerWith wraps already constructed providers.
func NewManagerWith(providers ...NamedLLMProvider) *Manager {
	return &Manager{llmProviders: providers}
}

func (m *Manager) FirstLLMProvider() LLMProvider {
	if len(m.llmProviders) == 0 {
		return NewMockProvider()
	}
	return m.llmProviders[0].Provider
}

// FirstGroundedProvider returns the first configured provider that can
// ground answers in web search, preferring real providers over mock.
func (m *Manager) FirstGroundedProvider() (GroundedProvider, ProviderRef, bool) {
	var fallback *NamedLLMProvider
	for i := range m.llmProviders {
		g, ok := m.llmProviders[i].Provider.(GroundedProvider)
		if !ok {
			continue
		}
		if strings.EqualFold(m.llmProviders[i].Ref.Name, "mock") {
			if fallback == nil {
				fallback = &m.llmProviders[i]
			}
			continue
		}
		return g, m.llmProviders[i].Ref, true
	}
	if fallback != nil {
		return fallback.Provider.(GroundedProvider), fallback.Ref, true
	}
	return nil, ProviderRef{}, false
}

func (m *Manager) Close() {
	for _, p := range m.llmProviders {
		if c, ok := p.Provider.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func buildProvider(ctx context.Context, ref ProviderRef, cfg config.Config) (LLMProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "gemini":
		model := cfg.GeminiModel
		if strings.HasPrefix(ref.KeyAlias, "gemini-") {
			model = ref.KeyAlias
		}
		return NewGeminiProvider(ctx, cfg.GCPProject, cfg.GCPRegion, model, ref.KeyAlias)
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
