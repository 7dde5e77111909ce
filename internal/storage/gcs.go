package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"scholarsync/internal/analysis"
	"scholarsync/internal/report"
)

// GCSArtifactStore uploads each result once; re-saving a run is a no-op.
type GCSArtifactStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
	logger *slog.Logger
}

func NewGCSArtifactStore(ctx context.Context, bucket, prefix string, logger *slog.Logger) (*GCSArtifactStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket must be provided")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GCSArtifactStore{client: client, bucket: client.Bucket(bucket), name: bucket, prefix: prefix, logger: logger}, nil
}

func (s *GCSArtifactStore) Close() error {
	return s.client.Close()
}

func (s *GCSArtifactStore) Save(ctx context.Context, runID string, result analysis.AggregateResult) (string, error) {
	dir := path.Join(s.prefix, runID)
	for _, f := range []report.Format{report.FormatJSON, report.FormatDOCX} {
		var buf bytes.Buffer
		if err := report.Encode(&buf, f, result); err != nil {
			return "", err
		}
		name := path.Join(dir, "analysis"+f.Extension())
		if err := s.saveAtomically(ctx, name, f.ContentType(), &buf); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("gs://%s/%s", s.name, dir), nil
}

// saveAtomically writes the object only if it does not exist yet.
func (s *GCSArtifactStore) saveAtomically(ctx context.Context, objectName, contentType string, content io.Reader) error {
	w := s.bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			s.logger.Info("gcs object already exists, skipping", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}
