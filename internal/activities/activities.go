package activities

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"scholarsync/internal/analysis"
	"scholarsync/internal/models"
	"scholarsync/internal/pipeline"
)

// Activities exposes each analysis stage and sink as a Temporal activity.
type Activities struct {
	stages      pipeline.Stages
	activityLog pipeline.ActivityLog
	artifacts   pipeline.ArtifactStore
}

func New(stages pipeline.Stages, log pipeline.ActivityLog, artifacts pipeline.ArtifactStore) *Activities {
	return &Activities{stages: stages, activityLog: log, artifacts: artifacts}
}

func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	activity.GetLogger(ctx).Info("extracting text", "run_id", in.RunID, "path", in.DocumentPath)
	text, err := a.stages.ExtractText(ctx, pipeline.Document{Path: in.DocumentPath})
	if err != nil {
		return ExtractTextOutput{}, toApplicationError(err)
	}
	return ExtractTextOutput{Text: text}, nil
}

func (a *Activities) ExtractMetadataActivity(ctx context.Context, in ExtractMetadataInput) (ExtractMetadataOutput, error) {
	md, err := a.stages.ExtractMetadata(ctx, in.Text)
	if err != nil {
		return ExtractMetadataOutput{}, toApplicationError(err)
	}
	return ExtractMetadataOutput{Metadata: md}, nil
}

func (a *Activities) SummarizeActivity(ctx context.Context, in SummarizeInput) (SummarizeOutput, error) {
	s, err := a.stages.Summarize(ctx, in.Text)
	if err != nil {
		return SummarizeOutput{}, toApplicationError(err)
	}
	return SummarizeOutput{Summary: s}, nil
}

func (a *Activities) FindRelatedActivity(ctx context.Context, in FindRelatedInput) (FindRelatedOutput, error) {
	papers, err := a.stages.FindRelated(ctx, in.Title, in.Abstract)
	if err != nil {
		return FindRelatedOutput{}, toApplicationError(err)
	}
	return FindRelatedOutput{Papers: papers}, nil
}

func (a *Activities) EvaluateActivity(ctx context.Context, in EvaluateInput) (EvaluateOutput, error) {
	ev, err := a.stages.Evaluate(ctx, in.Text, in.Summary)
	if err != nil {
		return EvaluateOutput{}, toApplicationError(err)
	}
	return EvaluateOutput{Evaluation: ev}, nil
}

func (a *Activities) RecordActivityActivity(ctx context.Context, in RecordActivityInput) error {
	user := in.User
	if user.ID == "" {
		user = models.Anonymous
	}
	e := pipeline.NewActivityEntry(user, in.PaperTitle, time.UnixMilli(in.CompletedAt))
	// Retried attempts must not duplicate the entry.
	if in.RunID != "" {
		e.ID = in.RunID
	}
	return a.activityLog.Append(ctx, e)
}

func (a *Activities) SaveArtifactsActivity(ctx context.Context, in SaveArtifactsInput) (SaveArtifactsOutput, error) {
	if a.artifacts == nil {
		return SaveArtifactsOutput{}, nil
	}
	loc, err := a.artifacts.Save(ctx, in.RunID, in.Result)
	if err != nil {
		return SaveArtifactsOutput{}, err
	}
	activity.GetLogger(ctx).Info("artifacts saved", "run_id", in.RunID, "location", loc)
	return SaveArtifactsOutput{Location: loc}, nil
}

// toApplicationError carries a stage error across the activity boundary.
// Stage failures are never retried.
func toApplicationError(err error) error {
	var se *analysis.StageError
	if errors.As(err, &se) {
		return temporal.NewNonRetryableApplicationError(se.Message, string(se.Kind), se.Err, *se)
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), string(analysis.KindUnknown), err)
}
