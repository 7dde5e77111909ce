package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"scholarsync/internal/providers"
)

// Summarizer produces the structured summary from a bounded window of the
// paper. It either returns every required field or fails.
type Summarizer struct {
	provider providers.LLMProvider
	limits   Limits
	logger   *slog.Logger
}

func NewSummarizer(p providers.LLMProvider, limits Limits, logger *slog.Logger) *Summarizer {
	return &Summarizer{provider: p, limits: limits.orDefaults(), logger: loggerOr(logger)}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (Summary, error) {
	src := NewSourceText(text, s.limits)
	resp, info, err := s.provider.Generate(ctx, providers.GenerateRequest{
		Operation: providers.OpSummarize,
		System:    summarySystem,
		Prompt:    summaryPrompt,
		Context:   []string{src.SummaryWindow()},
		Schema:    summarySchema,
	})
	if err != nil {
		return Summary{}, providerFailure(KindSummarization, StageSummarization, "Summary generation failed", err)
	}

	var wire struct {
		MainSummary   string   `json:"mainSummary"`
		Contributions []string `json:"contributions"`
		Method        []string `json:"method"`
		Results       []string `json:"results"`
		Limitations   []string `json:"limitations"`
	}
	if err := decodeObject(resp.Text, &wire); err != nil {
		if !errors.Is(err, errEmptyResponse) {
			return Summary{}, NewStageError(KindSummarization, StageSummarization, "Summary generation failed: provider returned malformed JSON", err)
		}
		s.logger.Warn("empty summary response, using empty summary", "provider", info.Name, "model", info.Model)
	}
	s.logger.Debug("summary generated", "provider", info.Name, "model", info.Model, "contributions", len(wire.Contributions))
	return Summary{
		MainSummary:   strings.TrimSpace(wire.MainSummary),
		Contributions: cleanList(wire.Contributions),
		Method:        cleanList(wire.Method),
		Results:       cleanList(wire.Results),
		Limitations:   cleanList(wire.Limitations),
	}, nil
}
