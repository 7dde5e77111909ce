package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scholarsync/internal/analysis"
	"scholarsync/internal/models"
)

// Completion describes a run that reached completed and is still current.
type Completion struct {
	RunID        string
	DocumentName string
	Submitter    models.User
	Result       analysis.AggregateResult
	CompletedAt  time.Time
}

type Observer interface {
	RunCompleted(ctx context.Context, c Completion) error
}

type ObserverFunc func(ctx context.Context, c Completion) error

func (f ObserverFunc) RunCompleted(ctx context.Context, c Completion) error { return f(ctx, c) }

type ActivityLog interface {
	Append(ctx context.Context, e models.ActivityLogEntry) error
	// List returns up to limit entries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
	Clear(ctx context.Context) error
}

type ArtifactStore interface {
	// Save persists result and returns where it was stored.
	Save(ctx context.Context, runID string, result analysis.AggregateResult) (string, error)
}

// NewActivityEntry builds the log entry for a completed analysis.
func NewActivityEntry(user models.User, title string, at time.Time) models.ActivityLogEntry {
	if user.ID == "" {
		user = models.Anonymous
	}
	return models.ActivityLogEntry{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Username:   user.Username,
		Timestamp:  at.UnixMilli(),
		PaperTitle: title,
		ActionType: models.ActionAnalysisCompleted,
	}
}

// ActivityRecorder appends one entry per completed run, keyed by the
// resolved paper title.
type ActivityRecorder struct {
	Log ActivityLog
}

func (a ActivityRecorder) RunCompleted(ctx context.Context, c Completion) error {
	e := NewActivityEntry(c.Submitter, c.Result.Metadata.Title, c.CompletedAt)
	if err := a.Log.Append(ctx, e); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

type ArtifactRecorder struct {
	Store ArtifactStore
}

func (a ArtifactRecorder) RunCompleted(ctx context.Context, c Completion) error {
	if _, err := a.Store.Save(ctx, c.RunID, c.Result); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	return nil
}

func observerName(o Observer) string {
	switch o.(type) {
	case ActivityRecorder, *ActivityRecorder:
		return "activity"
	case ArtifactRecorder, *ArtifactRecorder:
		return "artifacts"
	default:
		return fmt.Sprintf("%T", o)
	}
}
