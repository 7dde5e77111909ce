package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"scholarsync/internal/httputil"
	"scholarsync/internal/util"
)

// arxivAPIBase is a var so tests can point it at an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const maxArxivTerms = 8

// ArxivBackend queries the arXiv export API and parses its Atom feed.
type ArxivBackend struct {
	Client *http.Client
}

func (b *ArxivBackend) Name() string { return BackendArxiv }

func (b *ArxivBackend) Find(ctx context.Context, q Query) ([]Candidate, error) {
	search := arxivSearchQuery(q.Title)
	if search == "" {
		return nil, nil
	}
	params := url.Values{
		"search_query": {search},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limitOr(q.Limit, 5) * 2)},
		"sortBy":       {"relevance"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arxiv request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned HTTP %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arxiv feed: %w", err)
	}
	out := make([]Candidate, 0, len(feed.Items))
	for _, it := range feed.Items {
		out = append(out, Candidate{
			Title:   strings.Join(strings.Fields(it.Title), " "),
			URL:     strings.TrimSpace(it.Link),
			Snippet: util.RelevantSnippet(it.Description, q.Title, 280),
			Backend: BackendArxiv,
		})
	}
	return out, nil
}

// arxivSearchQuery ANDs the title's key terms across all arXiv fields.
func arxivSearchQuery(title string) string {
	terms := util.TitleTerms(title)
	if len(terms) > maxArxivTerms {
		terms = terms[:maxArxivTerms]
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.Trim(t, "-:")
		if t == "" {
			continue
		}
		parts = append(parts, "all:"+t)
	}
	return strings.Join(parts, " AND ")
}
