package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsync/internal/logging"
	"scholarsync/internal/providers"
)

func TestSerializeSummary(t *testing.T) {
	got := SerializeSummary(Summary{MainSummary: "Main", Contributions: []string{"a", "b"}})
	assert.Equal(t, "Main\n\nContributions: a, b", got)
}

func TestEvaluateInRangeScoresPassThrough(t *testing.T) {
	p := &stubProvider{text: `{"score":91.5,"semanticSimilarityScore":"88","keypointCoverageScore":"70%","reasoning":"ok","missingKeypoints":["k"]}`}
	ev, err := NewEvaluator(p, Limits{}, logging.Discard()).Evaluate(context.Background(), "source", Summary{MainSummary: "S"})
	require.NoError(t, err)
	assert.Equal(t, 91.5, ev.Score)
	assert.Equal(t, 88.0, ev.SemanticSimilarityScore)
	assert.Equal(t, 70.0, ev.KeypointCoverageScore)
	assert.Equal(t, []string{"k"}, ev.MissingKeypoints)
	assert.False(t, ev.Flagged())
	assert.Equal(t, providers.OpEvaluate, p.last.Operation)
	assert.Contains(t, p.last.Context[1], "S\n\nContributions: ")
}

func TestEvaluateClampsAndFlags(t *testing.T) {
	p := &stubProvider{text: `{"score":150,"semanticSimilarityScore":-3,"keypointCoverageScore":null,"reasoning":"r"}`}
	ev, err := NewEvaluator(p, Limits{}, logging.Discard()).Evaluate(context.Background(), "source", Summary{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, ev.Score)
	assert.Equal(t, 0.0, ev.SemanticSimilarityScore)
	assert.Equal(t, 0.0, ev.KeypointCoverageScore)
	require.True(t, ev.Flagged())
	require.Len(t, ev.Adjustments, 3)
	assert.Equal(t, "score", ev.Adjustments[0].Field)
	require.NotNil(t, ev.Adjustments[0].Reported)
	assert.Equal(t, 150.0, *ev.Adjustments[0].Reported)
	assert.Nil(t, ev.Adjustments[2].Reported)
	assert.NotNil(t, ev.MissingKeypoints)
}

func TestEvaluateHugeScoreStillEncodes(t *testing.T) {
	p := &stubProvider{text: `{"score":1e999,"semanticSimilarityScore":50,"keypointCoverageScore":50,"reasoning":"r"}`}
	ev, err := NewEvaluator(p, Limits{}, logging.Discard()).Evaluate(context.Background(), "source", Summary{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, ev.Score)
	_, err = json.Marshal(ev)
	require.NoError(t, err)
}

func TestEvaluateBoundsSourceWindow(t *testing.T) {
	p := &stubProvider{text: `{"score":1,"semanticSimilarityScore":1,"keypointCoverageScore":1,"reasoning":"r"}`}
	_, err := NewEvaluator(p, Limits{EvaluationWindow: 4}, logging.Discard()).Evaluate(context.Background(), strings.Repeat("z", 100), Summary{})
	require.NoError(t, err)
	assert.Equal(t, "Original text:\nzzzz", p.last.Context[0])
}

func TestEvaluateFailures(t *testing.T) {
	_, err := NewEvaluator(&stubProvider{text: "nope"}, Limits{}, logging.Discard()).Evaluate(context.Background(), "s", Summary{})
	assert.Equal(t, KindEvaluation, KindOf(err))

	_, err = NewEvaluator(&stubProvider{err: errBoom}, Limits{}, logging.Discard()).Evaluate(context.Background(), "s", Summary{})
	assert.Equal(t, KindEvaluation, KindOf(err))
	assert.Equal(t, "Evaluation failed: boom", err.Error())
}
