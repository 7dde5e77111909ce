package analysis

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsync/internal/logging"
	"scholarsync/internal/retrieval"
)

func TestNormalizeRelatedFiltersAndDedups(t *testing.T) {
	cands := []retrieval.Candidate{
		{Title: "A", URL: "https://www.arxiv.org/abs/1", Snippet: "first"},
		{Title: "A again", URL: "https://www.arxiv.org/abs/1"},
		{Title: "Search", URL: "https://www.google.com/search?q=x"},
		{Title: "Scholar", URL: "https://scholar.google.com/scholar?q=x"},
		{Title: "Bing", URL: "https://www.bing.com/search?q=x"},
		{Title: "DDG", URL: "https://duckduckgo.com/?q=x"},
		{Title: "", URL: "https://example.com/notitle"},
		{Title: "FTP", URL: "ftp://example.com/x"},
		{Title: "My Paper", URL: "https://example.com/self"},
		{Title: "B", URL: "https://openreview.net/forum?id=2"},
	}
	var logs bytes.Buffer
	out := NormalizeRelated(cands, "my  paper", 5, logging.New(&logs, "debug", "text"))
	require.Len(t, out, 2)
	assert.Equal(t, RelatedPaper{Title: "A", URL: "https://www.arxiv.org/abs/1", Source: "arxiv.org", Snippet: "first"}, out[0])
	assert.Equal(t, "openreview.net", out[1].Source)
	assert.Contains(t, logs.String(), "matches paper title")
	assert.Contains(t, logs.String(), "https://example.com/self")
}

func TestNormalizeRelatedCapsAndTrimsSnippet(t *testing.T) {
	var cands []retrieval.Candidate
	for i := 0; i < 9; i++ {
		cands = append(cands, retrieval.Candidate{Title: fmt.Sprintf("P%d", i), URL: fmt.Sprintf("https://e.org/%d", i), Snippet: strings.Repeat("s", 400)})
	}
	out := NormalizeRelated(cands, "", 5, nil)
	require.Len(t, out, 5)
	assert.Equal(t, "P0", out[0].Title)
	assert.Equal(t, "P4", out[4].Title)
	assert.Len(t, []rune(out[0].Snippet), snippetMaxRunes)
}

func TestFindRelatedMergesInBackendOrderAndIgnoresFailures(t *testing.T) {
	f := NewRelatedFinder([]retrieval.Backend{
		stubBackend{name: "one", cands: []retrieval.Candidate{{Title: "X", URL: "https://a.org/x"}}},
		stubBackend{name: "broken", err: errBoom},
		stubBackend{name: "two", cands: []retrieval.Candidate{{Title: "X dup", URL: "https://a.org/x"}, {Title: "Y", URL: "https://b.org/y"}}},
	}, 5, logging.Discard())

	out, err := f.FindRelated(context.Background(), "T", "A")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "X", out[0].Title)
	assert.Equal(t, "Y", out[1].Title)
}

func TestFindRelatedNoHitsIsEmptyNotError(t *testing.T) {
	out, err := NewRelatedFinder(nil, 0, logging.Discard()).FindRelated(context.Background(), "X", "Y")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestFindRelatedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRelatedFinder([]retrieval.Backend{stubBackend{name: "one"}}, 5, logging.Discard()).FindRelated(ctx, "X", "Y")
	require.Error(t, err)
	assert.Equal(t, KindCancelled, KindOf(err))
}
