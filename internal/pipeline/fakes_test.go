package pipeline

import (
	"context"
	"sync"

	"scholarsync/internal/analysis"
)

// fakeStages records calls and lets a test block or fail any stage.
type fakeStages struct {
	mu    sync.Mutex
	calls map[string]int
	seen  []string

	text       string
	extractErr error
	metaErr    error
	sumErr     error
	relErr     error
	evalErr    error
	meta       analysis.Metadata
	related    []analysis.RelatedPaper
	block      chan struct{}
	blockStage string
}

func newFakeStages() *fakeStages {
	return &fakeStages{
		calls: map[string]int{},
		text:  "Title: X\nAbstract: Y\n...body...",
		meta:  analysis.Metadata{Title: "X", Abstract: "Y"},
	}
}

func (f *fakeStages) record(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls[name]++
	f.seen = append(f.seen, args...)
	f.mu.Unlock()
	if f.block != nil && f.blockStage == name {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeStages) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStages) ExtractText(ctx context.Context, _ Document) (string, error) {
	if err := f.record(ctx, "extract"); err != nil {
		return "", err
	}
	return f.text, f.extractErr
}

func (f *fakeStages) ExtractMetadata(ctx context.Context, _ string) (analysis.Metadata, error) {
	if err := f.record(ctx, "metadata"); err != nil {
		return analysis.Metadata{}, err
	}
	return f.meta, f.metaErr
}

func (f *fakeStages) Summarize(ctx context.Context, _ string) (analysis.Summary, error) {
	if err := f.record(ctx, "summarize"); err != nil {
		return analysis.Summary{}, err
	}
	if f.sumErr != nil {
		return analysis.Summary{}, f.sumErr
	}
	return analysis.Summary{MainSummary: "S", Contributions: []string{"c"}, Method: []string{}, Results: []string{}, Limitations: []string{}}, nil
}

func (f *fakeStages) FindRelated(ctx context.Context, title, abstract string) ([]analysis.RelatedPaper, error) {
	if err := f.record(ctx, "related", title, abstract); err != nil {
		return nil, err
	}
	return f.related, f.relErr
}

func (f *fakeStages) Evaluate(ctx context.Context, _ string, _ analysis.Summary) (analysis.Evaluation, error) {
	if err := f.record(ctx, "evaluate"); err != nil {
		return analysis.Evaluation{}, err
	}
	return analysis.Evaluation{Score: 90, SemanticSimilarityScore: 90, KeypointCoverageScore: 90, MissingKeypoints: []string{}}, f.evalErr
}
