package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"scholarsync/internal/analysis"
	"scholarsync/internal/report"
	"scholarsync/internal/util"
)

// FileArtifactStore writes <root>/<run id>/analysis.json, summary.txt and
// report.docx. summary.txt is the text the evaluator scored.
type FileArtifactStore struct {
	Root string
}

func NewFileArtifactStore(root string) *FileArtifactStore {
	return &FileArtifactStore{Root: root}
}

func (s *FileArtifactStore) Save(ctx context.Context, runID string, result analysis.AggregateResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := util.SafeJoin(s.Root, runID)
	if err := util.WriteJSONAtomic(filepath.Join(dir, "analysis.json"), result); err != nil {
		return "", fmt.Errorf("write analysis json: %w", err)
	}
	if err := util.WriteTextAtomic(filepath.Join(dir, "summary.txt"), analysis.SerializeSummary(result.Summary)+"\n"); err != nil {
		return "", fmt.Errorf("write summary text: %w", err)
	}
	if err := report.SaveDOCX(filepath.Join(dir, "report.docx"), result); err != nil {
		return "", err
	}
	return dir, nil
}
