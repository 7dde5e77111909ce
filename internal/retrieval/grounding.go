package retrieval

import (
	"context"
	"fmt"
	"strings"

	"scholarsync/internal/providers"
)

// GroundingBackend asks a search-grounded model for similar papers and
// returns the web pages it grounded its answer on.
type GroundingBackend struct {
	Provider providers.GroundedProvider
}

func (b *GroundingBackend) Name() string { return BackendGrounding }

func (b *GroundingBackend) Find(ctx context.Context, q Query) ([]Candidate, error) {
	resp, info, err := b.Provider.GenerateGrounded(ctx, providers.GenerateRequest{
		Operation: providers.OpFindRelated,
		Prompt:    groundingPrompt(q),
	})
	if err != nil {
		return nil, fmt.Errorf("grounded search via %s: %w", info.Name, err)
	}
	out := make([]Candidate, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		if strings.TrimSpace(s.URI) == "" || strings.TrimSpace(s.Title) == "" {
			continue
		}
		out = append(out, Candidate{Title: s.Title, URL: s.URI, Backend: BackendGrounding})
	}
	return out, nil
}

func groundingPrompt(q Query) string {
	return fmt.Sprintf(`Find %d distinct, real academic research papers that are semantically similar to the paper titled %q with this abstract: %q.

For each paper give its title and one sentence on why it is similar.
Prefer reputable sources such as Semantic Scholar, arXiv, IEEE, ACM or Nature.`, limitOr(q.Limit, 5), q.Title, q.Abstract)
}
