package analysis

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"scholarsync/internal/retrieval"
	"scholarsync/internal/util"
)

const snippetMaxRunes = 280

// RelatedFinder queries every retrieval backend concurrently and merges their
// hits in backend order. A failing backend counts as zero hits.
type RelatedFinder struct {
	backends []retrieval.Backend
	limit    int
	logger   *slog.Logger
}

func NewRelatedFinder(backends []retrieval.Backend, limit int, logger *slog.Logger) *RelatedFinder {
	if limit <= 0 {
		limit = DefaultLimits().RelatedResults
	}
	return &RelatedFinder{backends: backends, limit: limit, logger: loggerOr(logger)}
}

func (f *RelatedFinder) FindRelated(ctx context.Context, title, abstract string) ([]RelatedPaper, error) {
	q := retrieval.Query{Title: title, Abstract: abstract, Limit: f.limit}
	hits := make([][]retrieval.Candidate, len(f.backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range f.backends {
		g.Go(func() error {
			cands, err := b.Find(gctx, q)
			if err != nil {
				f.logger.Warn("related work backend failed", "backend", b.Name(), "error", err)
				return nil
			}
			hits[i] = cands
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		msg := "Related work search was cancelled"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "Related work search timed out"
		}
		return nil, NewStageError(KindCancelled, StageRelatedWork, msg, err)
	}

	var merged []retrieval.Candidate
	for _, h := range hits {
		merged = append(merged, h...)
	}
	out := NormalizeRelated(merged, title, f.limit, f.logger)
	f.logger.Debug("related work merged", "candidates", len(merged), "kept", len(out))
	return out, nil
}

// NormalizeRelated drops unusable and search-index hits, deduplicates by URL
// keeping the first occurrence and caps the result at limit. Hits titled
// like the paper itself are dropped and logged at debug level.
func NormalizeRelated(cands []retrieval.Candidate, paperTitle string, limit int, logger *slog.Logger) []RelatedPaper {
	logger = loggerOr(logger)
	out := make([]RelatedPaper, 0, limit)
	seen := map[string]bool{}
	own := normalizeTitle(paperTitle)
	for _, c := range cands {
		if len(out) >= limit {
			break
		}
		t := strings.Join(strings.Fields(c.Title), " ")
		if t == "" {
			continue
		}
		u, ok := documentURL(c.URL)
		if !ok {
			continue
		}
		key := u.String()
		if seen[key] {
			continue
		}
		if own != "" && normalizeTitle(t) == own {
			logger.Debug("related work hit matches paper title, dropped", "title", t, "url", key, "backend", c.Backend)
			continue
		}
		seen[key] = true
		out = append(out, RelatedPaper{
			Title:   t,
			URL:     key,
			Source:  SourceLabel(u),
			Snippet: util.TruncateRunes(strings.Join(strings.Fields(c.Snippet), " "), snippetMaxRunes),
		})
	}
	return out
}

// SourceLabel is the URL host without a leading "www.".
func SourceLabel(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func documentURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if isSearchPage(u) {
		return nil, false
	}
	return u, true
}

func isSearchPage(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.ToLower(u.Path)
	switch {
	case strings.HasPrefix(host, "scholar.google."):
		return path == "" || path == "/" || strings.HasPrefix(path, "/scholar")
	case strings.HasPrefix(host, "google."):
		return strings.HasPrefix(path, "/search")
	case host == "bing.com":
		return strings.HasPrefix(path, "/search")
	case host == "duckduckgo.com", strings.HasSuffix(host, ".duckduckgo.com"):
		return true
	}
	return false
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
