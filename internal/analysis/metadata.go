package analysis

import (
	"context"
	"log/slog"
	"strings"

	"scholarsync/internal/providers"
)

// MetadataExtractor infers title and abstract from the start of the paper.
// Unusable provider output degrades to sentinels instead of failing.
type MetadataExtractor struct {
	provider providers.LLMProvider
	limits   Limits
	logger   *slog.Logger
}

func NewMetadataExtractor(p providers.LLMProvider, limits Limits, logger *slog.Logger) *MetadataExtractor {
	return &MetadataExtractor{provider: p, limits: limits.orDefaults(), logger: loggerOr(logger)}
}

func (m *MetadataExtractor) ExtractMetadata(ctx context.Context, text string) (Metadata, error) {
	src := NewSourceText(text, m.limits)
	resp, info, err := m.provider.Generate(ctx, providers.GenerateRequest{
		Operation: providers.OpExtractMetadata,
		System:    metadataSystem,
		Prompt:    metadataPrompt,
		Context:   []string{src.MetadataPrefix()},
		Schema:    metadataSchema,
	})
	if err != nil {
		return Metadata{}, providerFailure(KindMetadata, StageMetadataExtraction, "Metadata extraction failed", err)
	}

	var wire struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
	}
	if err := decodeObject(resp.Text, &wire); err != nil {
		m.logger.Warn("metadata response unusable, using sentinels", "provider", info.Name, "model", info.Model, "error", err)
	}
	md := normalizeMetadata(wire.Title, wire.Abstract)
	m.logger.Debug("metadata extracted", "provider", info.Name, "model", info.Model, "title", md.Title)
	return md, nil
}

func normalizeMetadata(title, abstract string) Metadata {
	md := Metadata{
		Title:    strings.Join(strings.Fields(title), " "),
		Abstract: strings.TrimSpace(abstract),
	}
	if md.Title == "" {
		md.Title = UnknownTitle
	}
	if md.Abstract == "" {
		md.Abstract = NoAbstractFound
	}
	return md
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
