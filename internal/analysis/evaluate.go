package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"scholarsync/internal/providers"
)

// Evaluator judges how faithful a summary is to a bounded window of the
// source text. Out-of-range scores are clamped and recorded as adjustments.
type Evaluator struct {
	provider providers.LLMProvider
	limits   Limits
	logger   *slog.Logger
}

func NewEvaluator(p providers.LLMProvider, limits Limits, logger *slog.Logger) *Evaluator {
	return &Evaluator{provider: p, limits: limits.orDefaults(), logger: loggerOr(logger)}
}

// SerializeSummary renders the parts of a summary the evaluator compares.
func SerializeSummary(s Summary) string {
	return s.MainSummary + "\n\nContributions: " + strings.Join(s.Contributions, ", ")
}

func (e *Evaluator) Evaluate(ctx context.Context, text string, summary Summary) (Evaluation, error) {
	src := NewSourceText(text, e.limits)
	resp, info, err := e.provider.Generate(ctx, providers.GenerateRequest{
		Operation: providers.OpEvaluate,
		System:    evaluationSystem,
		Prompt:    evaluationPrompt,
		Context: []string{
			"Original text:\n" + src.EvaluationWindow(),
			"Generated summary:\n" + SerializeSummary(summary),
		},
		Schema: evaluationSchema,
	})
	if err != nil {
		return Evaluation{}, providerFailure(KindEvaluation, StageEvaluation, "Evaluation failed", err)
	}

	var wire struct {
		Score                   flexNumber `json:"score"`
		SemanticSimilarityScore flexNumber `json:"semanticSimilarityScore"`
		KeypointCoverageScore   flexNumber `json:"keypointCoverageScore"`
		Reasoning               string     `json:"reasoning"`
		MissingKeypoints        []string   `json:"missingKeypoints"`
	}
	if err := decodeObject(resp.Text, &wire); err != nil {
		return Evaluation{}, NewStageError(KindEvaluation, StageEvaluation, "Evaluation failed: provider returned malformed JSON", err)
	}

	ev := Evaluation{
		Reasoning:        strings.TrimSpace(wire.Reasoning),
		MissingKeypoints: cleanList(wire.MissingKeypoints),
	}
	var adj []ScoreAdjustment
	ev.Score, adj = clampScore("score", wire.Score, adj)
	ev.SemanticSimilarityScore, adj = clampScore("semantic_similarity_score", wire.SemanticSimilarityScore, adj)
	ev.KeypointCoverageScore, adj = clampScore("keypoint_coverage_score", wire.KeypointCoverageScore, adj)
	ev.Adjustments = adj
	if ev.Flagged() {
		e.logger.Warn("evaluation scores adjusted", "provider", info.Name, "model", info.Model, "adjustments", len(adj))
	}
	e.logger.Debug("summary evaluated", "provider", info.Name, "model", info.Model, "score", ev.Score)
	return ev, nil
}

func clampScore(field string, n flexNumber, adj []ScoreAdjustment) (float64, []ScoreAdjustment) {
	if !n.set || math.IsNaN(n.value) {
		return ScoreMin, append(adj, ScoreAdjustment{Field: field, Applied: ScoreMin, Reason: "missing or not a number"})
	}
	v := n.value
	reported := &v
	if math.IsInf(v, 0) {
		reported = nil
	}
	switch {
	case v < ScoreMin:
		return ScoreMin, append(adj, ScoreAdjustment{Field: field, Reported: reported, Applied: ScoreMin, Reason: fmt.Sprintf("below %g", ScoreMin)})
	case v > ScoreMax:
		return ScoreMax, append(adj, ScoreAdjustment{Field: field, Reported: reported, Applied: ScoreMax, Reason: fmt.Sprintf("above %g", ScoreMax)})
	}
	return v, adj
}
