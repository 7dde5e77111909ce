package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsync/internal/analysis"
	"scholarsync/internal/config"
	"scholarsync/internal/models"
	"scholarsync/internal/pipeline"
)

func TestSQLiteActivityLog(t *testing.T) {
	ctx := context.Background()
	l, err := NewSQLiteActivityLog(filepath.Join(t.TempDir(), "nested", "log.db"))
	require.NoError(t, err)
	defer l.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := models.User{ID: "u1", Username: "ada"}
	first := pipeline.NewActivityEntry(u, "First", base)
	require.NoError(t, l.Append(ctx, first))
	require.NoError(t, l.Append(ctx, pipeline.NewActivityEntry(u, "Second", base.Add(time.Second))))
	require.NoError(t, l.Append(ctx, first))

	all, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Second", all[0].PaperTitle)
	assert.Equal(t, first, all[1])

	one, err := l.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	require.NoError(t, l.Clear(ctx))
	all, err = l.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileArtifactStore(t *testing.T) {
	root := t.TempDir()
	res := analysis.NewAggregateResult("text", analysis.Metadata{Title: "T", Abstract: "A"}, analysis.Summary{}, nil, analysis.Evaluation{})
	dir, err := NewFileArtifactStore(root).Save(context.Background(), "run-1", res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "run-1"), dir)

	b, err := os.ReadFile(filepath.Join(dir, "analysis.json"))
	require.NoError(t, err)
	var got analysis.AggregateResult
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "T", got.Metadata.Title)
	assert.FileExists(t, filepath.Join(dir, "report.docx"))
	assert.FileExists(t, filepath.Join(dir, "summary.txt"))
}

func TestOpenActivityLogSelectsSink(t *testing.T) {
	l, c, err := OpenActivityLog(context.Background(), config.Config{ActivityLog: "memory"})
	require.NoError(t, err)
	defer c.Close()
	_, ok := l.(*pipeline.MemoryLog)
	assert.True(t, ok)

	l, c, err = OpenActivityLog(context.Background(), config.Config{ActivityLog: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "a.db")})
	require.NoError(t, err)
	defer c.Close()
	_, ok = l.(*SQLiteActivityLog)
	assert.True(t, ok)

	_, _, err = OpenActivityLog(context.Background(), config.Config{ActivityLog: "redis"})
	assert.Error(t, err)
}

func TestOpenArtifactStoreSelectsStore(t *testing.T) {
	s, _, err := OpenArtifactStore(context.Background(), config.Config{ArtifactStore: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, _, err = OpenArtifactStore(context.Background(), config.Config{ArtifactStore: "file", DataOutRoot: t.TempDir()}, nil)
	require.NoError(t, err)
	_, ok := s.(*FileArtifactStore)
	assert.True(t, ok)

	_, _, err = OpenArtifactStore(context.Background(), config.Config{ArtifactStore: "gcs"}, nil)
	assert.Error(t, err)
}
