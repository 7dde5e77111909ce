// Package retrieval finds candidate related papers from search backends.
package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scholarsync/internal/providers"
)

// Query describes the paper whose related work is wanted.
type Query struct {
	Title    string
	Abstract string
	Limit    int
}

// Candidate is a raw backend hit before normalisation.
type Candidate struct {
	Title   string
	URL     string
	Snippet string
	Backend string
}

type Backend interface {
	Name() string
	Find(ctx context.Context, q Query) ([]Candidate, error)
}

const (
	BackendGrounding       = "grounding"
	BackendSemanticScholar = "semantic_scholar"
	BackendArxiv           = "arxiv"
)

// Options carries what the backends need from the process configuration.
type Options struct {
	HTTPTimeout           time.Duration
	SemanticScholarAPIKey string
	Grounded              providers.GroundedProvider
}

// BuildBackends resolves a "grounding|semantic_scholar|arxiv" list in order.
func BuildBackends(list string, opts Options) ([]Backend, error) {
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var out []Backend
	seen := map[string]bool{}
	for _, name := range strings.Split(list, "|") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case BackendGrounding:
			if opts.Grounded == nil {
				return nil, fmt.Errorf("retrieval backend %q needs a provider with search grounding", name)
			}
			out = append(out, &GroundingBackend{Provider: opts.Grounded})
		case BackendSemanticScholar:
			out = append(out, &SemanticScholarBackend{Client: client, APIKey: opts.SemanticScholarAPIKey})
		case BackendArxiv:
			out = append(out, &ArxivBackend{Client: client})
		default:
			return nil, fmt.Errorf("unsupported retrieval backend: %s", name)
		}
	}
	return out, nil
}

func limitOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
