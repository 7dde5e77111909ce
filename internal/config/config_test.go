package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, "mock", cfg.LLMProviders)
	assert.Equal(t, 15000, cfg.MetadataPrefixChars)
	assert.Equal(t, 100000, cfg.SummaryWindowChars)
	assert.Equal(t, 30000, cfg.EvaluationWindowChars)
	assert.Equal(t, 5, cfg.RelatedLimit)
	assert.Equal(t, "memory", cfg.ActivityLog)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCHOLARSYNC_API_ADDR", ":9999")
	t.Setenv("SCHOLARSYNC_RELATED_LIMIT", "3")
	t.Setenv("SCHOLARSYNC_ACTIVITY_LOG", "SQLite")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.APIAddr)
	assert.Equal(t, 3, cfg.RelatedLimit)
	assert.Equal(t, "sqlite", cfg.ActivityLog)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scholarsync.yaml")
	body := "llm_providers: gemini|openai:key1\nsummary_window_chars: 500\nrelated_backends: arxiv\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("SCHOLARSYNC_RELATED_BACKENDS", "semantic_scholar")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini|openai:key1", cfg.LLMProviders)
	assert.Equal(t, 500, cfg.SummaryWindowChars)
	assert.Equal(t, "semantic_scholar", cfg.RelatedBackends)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFileWithDefaultsYieldsToEnv(t *testing.T) {
	cfg, err := LoadFileWithDefaults("", map[string]any{"activity_log": "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.ActivityLog)

	t.Setenv("SCHOLARSYNC_ACTIVITY_LOG", "memory")
	cfg, err = LoadFileWithDefaults("", map[string]any{"activity_log": "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.ActivityLog)
}

func TestNonPositiveLimitsFallBack(t *testing.T) {
	t.Setenv("SCHOLARSYNC_METADATA_PREFIX_CHARS", "0")
	cfg := Load()
	assert.Equal(t, 15000, cfg.MetadataPrefixChars)
}
