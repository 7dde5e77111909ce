package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsync/internal/logging"
)

func TestSummarizeDecodesAllFields(t *testing.T) {
	p := &stubProvider{text: `{"mainSummary":" Overview ","contributions":["a"," ","b"],"method":["m"],"results":["r"]}`}
	s, err := NewSummarizer(p, Limits{}, logging.Discard()).Summarize(context.Background(), "paper")
	require.NoError(t, err)
	assert.Equal(t, "Overview", s.MainSummary)
	assert.Equal(t, []string{"a", "b"}, s.Contributions)
	assert.Equal(t, []string{"m"}, s.Method)
	assert.Equal(t, []string{"r"}, s.Results)
	assert.NotNil(t, s.Limitations)
	assert.Empty(t, s.Limitations)
}

func TestSummarizeEmptyResponseYieldsEmptySummary(t *testing.T) {
	s, err := NewSummarizer(&stubProvider{text: "  "}, Limits{}, logging.Discard()).Summarize(context.Background(), "paper")
	require.NoError(t, err)
	assert.Equal(t, "", s.MainSummary)
	assert.NotNil(t, s.Contributions)
	assert.NotNil(t, s.Method)
	assert.NotNil(t, s.Results)
}

func TestSummarizeMalformedFails(t *testing.T) {
	_, err := NewSummarizer(&stubProvider{text: "{oops"}, Limits{}, logging.Discard()).Summarize(context.Background(), "paper")
	require.Error(t, err)
	assert.Equal(t, KindSummarization, KindOf(err))
}

func TestSummarizeProviderError(t *testing.T) {
	_, err := NewSummarizer(&stubProvider{err: errBoom}, Limits{}, logging.Discard()).Summarize(context.Background(), "paper")
	require.Error(t, err)
	assert.Equal(t, KindSummarization, KindOf(err))
	assert.Equal(t, "Summary generation failed: boom", err.Error())
	assert.ErrorIs(t, err, errBoom)
}

func TestSummarizeUsesBoundedWindow(t *testing.T) {
	p := &stubProvider{text: `{}`}
	_, err := NewSummarizer(p, Limits{SummaryWindow: 5}, logging.Discard()).Summarize(context.Background(), strings.Repeat("x", 20))
	require.NoError(t, err)
	assert.Equal(t, "xxxxx", p.last.Context[0])
}

func TestSummarizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSummarizer(&stubProvider{err: context.Canceled}, Limits{}, logging.Discard()).Summarize(ctx, "paper")
	assert.Equal(t, KindCancelled, KindOf(err))
}
