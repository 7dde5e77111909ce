// Package app assembles the analysis stages and sinks from configuration.
// The API server, the worker and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"scholarsync/internal/analysis"
	"scholarsync/internal/config"
	"scholarsync/internal/extract"
	"scholarsync/internal/pipeline"
	"scholarsync/internal/providers"
	"scholarsync/internal/retrieval"
	"scholarsync/internal/storage"
)

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Providers   *providers.Manager
	Stages      pipeline.Stages
	ActivityLog pipeline.ActivityLog
	Artifacts   pipeline.ArtifactStore

	closers []io.Closer
}

func Limits(cfg config.Config) analysis.Limits {
	return analysis.Limits{
		MetadataPrefix:   cfg.MetadataPrefixChars,
		SummaryWindow:    cfg.SummaryWindowChars,
		EvaluationWindow: cfg.EvaluationWindowChars,
		RelatedResults:   cfg.RelatedLimit,
	}
}

// New builds providers, retrieval backends, stages and sinks. Close releases
// whatever was opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	pm, err := providers.NewManager(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}
	a.Providers = pm
	a.closers = append(a.closers, closerFunc(func() error { pm.Close(); return nil }))

	grounded, ref, _ := pm.FirstGroundedProvider()
	backends, err := retrieval.BuildBackends(cfg.RelatedBackends, retrieval.Options{
		HTTPTimeout:           time.Duration(cfg.HTTPTimeoutSecs) * time.Second,
		SemanticScholarAPIKey: cfg.SemanticScholarAPIKey,
		Grounded:              grounded,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	llm := pm.FirstLLMProvider()
	limits := Limits(cfg)
	a.Stages = pipeline.Stages{
		Extractor:  extract.NewPDFExtractor(logger.With("stage", analysis.StageTextExtraction)),
		Metadata:   analysis.NewMetadataExtractor(llm, limits, logger.With("stage", analysis.StageMetadataExtraction)),
		Summarizer: analysis.NewSummarizer(llm, limits, logger.With("stage", analysis.StageSummarization)),
		Related:    analysis.NewRelatedFinder(backends, limits.RelatedResults, logger.With("stage", analysis.StageRelatedWork)),
		Evaluator:  analysis.NewEvaluator(llm, limits, logger.With("stage", analysis.StageEvaluation)),
	}

	log, c, err := storage.OpenActivityLog(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("activity log: %w", err)
	}
	a.ActivityLog = log
	a.closers = append(a.closers, c)

	store, c, err := storage.OpenArtifactStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	a.Artifacts = store
	a.closers = append(a.closers, c)

	logger.Info("app ready",
		"llm_providers", cfg.LLMProviders,
		"grounding_provider", ref.Name,
		"related_backends", cfg.RelatedBackends,
		"activity_log", cfg.ActivityLog,
		"artifact_store", cfg.ArtifactStore,
	)
	return a, nil
}

// Observers returns the completion observers for an in-process orchestrator.
func (a *App) Observers() []pipeline.Observer {
	obs := []pipeline.Observer{pipeline.ActivityRecorder{Log: a.ActivityLog}}
	if a.Artifacts != nil {
		obs = append(obs, pipeline.ArtifactRecorder{Store: a.Artifacts})
	}
	return obs
}

func (a *App) Orchestrator() *pipeline.Orchestrator {
	return pipeline.New(a.Stages, pipeline.WithObserver(a.Observers()...), pipeline.WithLogger(a.Logger))
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
