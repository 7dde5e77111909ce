package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scholarsync/internal/httputil"
	"scholarsync/internal/util"
)

// semanticAPIBase is a var so tests can point it at an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,url,year"

// SemanticScholarBackend searches the Semantic Scholar Graph API by title.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
}

func (b *SemanticScholarBackend) Name() string { return BackendSemanticScholar }

func (b *SemanticScholarBackend) Find(ctx context.Context, q Query) ([]Candidate, error) {
	query := strings.TrimSpace(q.Title)
	if query == "" {
		query = util.Snippet(q.Abstract, 200)
	}
	if query == "" {
		return nil, nil
	}
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limitOr(q.Limit, 5) * 2)},
		"fields": {semanticFields},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("semantic scholar request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar returned HTTP %d", resp.StatusCode)
	}

	var sr struct {
		Data []struct {
			PaperID  string `json:"paperId"`
			Title    string `json:"title"`
			Abstract string `json:"abstract"`
			URL      string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing semantic scholar response: %w", err)
	}

	out := make([]Candidate, 0, len(sr.Data))
	for _, p := range sr.Data {
		link := p.URL
		if link == "" && p.PaperID != "" {
			link = "https://www.semanticscholar.org/paper/" + p.PaperID
		}
		out = append(out, Candidate{
			Title:   p.Title,
			URL:     link,
			Snippet: util.RelevantSnippet(p.Abstract, q.Title, 280),
			Backend: BackendSemanticScholar,
		})
	}
	return out, nil
}
