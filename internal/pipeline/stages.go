package pipeline

import (
	"context"

	"scholarsync/internal/analysis"
)

type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
	ExtractFile(ctx context.Context, path string) (string, error)
}

type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, text string) (analysis.Metadata, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (analysis.Summary, error)
}

type RelatedFinder interface {
	FindRelated(ctx context.Context, title, abstract string) ([]analysis.RelatedPaper, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, text string, summary analysis.Summary) (analysis.Evaluation, error)
}

// Stages binds the in-process collaborators to Drive.
type Stages struct {
	Extractor  TextExtractor
	Metadata   MetadataExtractor
	Summarizer Summarizer
	Related    RelatedFinder
	Evaluator  Evaluator
}

var _ Steps[context.Context] = Stages{}

func (s Stages) ExtractText(ctx context.Context, doc Document) (string, error) {
	if doc.Data == nil && doc.Path != "" {
		return s.Extractor.ExtractFile(ctx, doc.Path)
	}
	return s.Extractor.Extract(ctx, doc.Data)
}

func (s Stages) ExtractMetadata(ctx context.Context, text string) (analysis.Metadata, error) {
	return s.Metadata.ExtractMetadata(ctx, text)
}

func (s Stages) Summarize(ctx context.Context, text string) (analysis.Summary, error) {
	return s.Summarizer.Summarize(ctx, text)
}

func (s Stages) FindRelated(ctx context.Context, title, abstract string) ([]analysis.RelatedPaper, error) {
	return s.Related.FindRelated(ctx, title, abstract)
}

func (s Stages) Evaluate(ctx context.Context, text string, summary analysis.Summary) (analysis.Evaluation, error) {
	return s.Evaluator.Evaluate(ctx, text, summary)
}
