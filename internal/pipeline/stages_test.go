package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExtractor struct {
	data []byte
	path string
}

func (r *recordingExtractor) Extract(_ context.Context, data []byte) (string, error) {
	r.data = data
	return "from bytes", nil
}

func (r *recordingExtractor) ExtractFile(_ context.Context, path string) (string, error) {
	r.path = path
	return "from file", nil
}

func TestStagesExtractTextPrefersData(t *testing.T) {
	ex := &recordingExtractor{}
	s := Stages{Extractor: ex}

	text, err := s.ExtractText(context.Background(), Document{Data: []byte("%PDF-"), Path: "/ignored.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "from bytes", text)
	assert.Empty(t, ex.path)

	text, err = s.ExtractText(context.Background(), Document{Path: "/data/in/run/paper.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "from file", text)
	assert.Equal(t, "/data/in/run/paper.pdf", ex.path)
}
