package analysis

import (
	"context"
	"errors"

	"scholarsync/internal/providers"
	"scholarsync/internal/retrieval"
)

type stubProvider struct {
	text  string
	err   error
	calls int
	last  providers.GenerateRequest
}

func (s *stubProvider) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	s.calls++
	s.last = req
	info := providers.ProviderInfo{Name: "stub", Model: "stub-1"}
	if s.err != nil {
		return providers.GenerateResponse{}, info, s.err
	}
	return providers.GenerateResponse{Text: s.text}, info, nil
}

type stubBackend struct {
	name  string
	cands []retrieval.Candidate
	err   error
}

func (s stubBackend) Name() string { return s.name }

func (s stubBackend) Find(ctx context.Context, _ retrieval.Query) ([]retrieval.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.cands, s.err
}

var errBoom = errors.New("boom")
