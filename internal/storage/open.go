package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"scholarsync/internal/config"
	"scholarsync/internal/pipeline"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// OpenActivityLog builds the activity log selected by cfg.ActivityLog.
func OpenActivityLog(ctx context.Context, cfg config.Config) (pipeline.ActivityLog, io.Closer, error) {
	switch cfg.ActivityLog {
	case "", "memory":
		return pipeline.NewMemoryLog(), nopCloser, nil
	case "sqlite":
		l, err := NewSQLiteActivityLog(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	case "postgres":
		db, err := openPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return NewActivityRepo(db), closerFunc(func() error { db.Close(); return nil }), nil
	case "firestore":
		l, err := NewFirestoreActivityLog(ctx, cfg.GCPProject, cfg.FirestoreCollection)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	default:
		return nil, nil, fmt.Errorf("unsupported activity log: %s", cfg.ActivityLog)
	}
}

// OpenArtifactStore builds the store selected by cfg.ArtifactStore. It
// returns a nil store for "none".
func OpenArtifactStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (pipeline.ArtifactStore, io.Closer, error) {
	switch cfg.ArtifactStore {
	case "none":
		return nil, nopCloser, nil
	case "", "file":
		return NewFileArtifactStore(cfg.DataOutRoot), nopCloser, nil
	case "gcs":
		s, err := NewGCSArtifactStore(ctx, cfg.GCSBucket, "analyses", logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "postgres":
		db, err := openPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return NewAnalysisRepo(db), closerFunc(func() error { db.Close(); return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unsupported artifact store: %s", cfg.ArtifactStore)
	}
}

func openPostgres(ctx context.Context, dsn string) (*DB, error) {
	db, err := NewDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
