package workflows

import (
	"errors"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"scholarsync/internal/activities"
	"scholarsync/internal/analysis"
	"scholarsync/internal/pipeline"
)

const QueryGetRunState = "GetRunState"

const workflowIDPrefix = "analysis-"

// WorkflowID is the Temporal workflow id used for a run.
func WorkflowID(runID string) string {
	return workflowIDPrefix + sanitizeID(runID)
}

// AnalyzePaperWorkflow runs the analysis stages as activities. A failed run
// completes the workflow normally with an error state.
func AnalyzePaperWorkflow(ctx workflow.Context, input AnalyzePaperInput) (AnalyzePaperOutput, error) {
	runID := input.RunID
	if runID == "" {
		runID = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	st := pipeline.State{RunID: runID}
	if err := workflow.SetQueryHandler(ctx, QueryGetRunState, func() (pipeline.State, error) {
		return st.Clone(), nil
	}); err != nil {
		return AnalyzePaperOutput{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	doc := pipeline.Document{Name: input.Filename, Path: input.DocumentPath, Submitter: input.User}
	if err := pipeline.Drive[workflow.Context](ctx, &st, doc, activitySteps{runID: runID}, nil); err != nil {
		logger.Warn("analysis failed", "run_id", runID, "error_kind", st.ErrorKind, "error", st.Error)
		return AnalyzePaperOutput{State: st}, nil
	}

	// Sinks run after completed only; their failures never fail the run.
	sinkCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	})
	if err := workflow.ExecuteActivity(sinkCtx, "RecordActivityActivity", activities.RecordActivityInput{
		RunID:       runID,
		User:        input.User,
		PaperTitle:  st.Result.Metadata.Title,
		CompletedAt: workflow.Now(ctx).UnixMilli(),
	}).Get(sinkCtx, nil); err != nil {
		logger.Error("record activity failed", "run_id", runID, "error", err)
	}
	var saved activities.SaveArtifactsOutput
	if err := workflow.ExecuteActivity(sinkCtx, "SaveArtifactsActivity", activities.SaveArtifactsInput{
		RunID:  runID,
		Result: *st.Result,
	}).Get(sinkCtx, &saved); err != nil {
		logger.Error("save artifacts failed", "run_id", runID, "error", err)
	}
	return AnalyzePaperOutput{State: st, ArtifactLocation: saved.Location}, nil
}

type activitySteps struct {
	runID string
}

var _ pipeline.Steps[workflow.Context] = activitySteps{}

func (s activitySteps) ExtractText(ctx workflow.Context, doc pipeline.Document) (string, error) {
	var out activities.ExtractTextOutput
	err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{RunID: s.runID, DocumentPath: doc.Path}).Get(ctx, &out)
	return out.Text, stageError(err)
}

func (s activitySteps) ExtractMetadata(ctx workflow.Context, text string) (analysis.Metadata, error) {
	var out activities.ExtractMetadataOutput
	err := workflow.ExecuteActivity(ctx, "ExtractMetadataActivity", activities.ExtractMetadataInput{Text: text}).Get(ctx, &out)
	return out.Metadata, stageError(err)
}

func (s activitySteps) Summarize(ctx workflow.Context, text string) (analysis.Summary, error) {
	var out activities.SummarizeOutput
	err := workflow.ExecuteActivity(ctx, "SummarizeActivity", activities.SummarizeInput{Text: text}).Get(ctx, &out)
	return out.Summary, stageError(err)
}

func (s activitySteps) FindRelated(ctx workflow.Context, title, abstract string) ([]analysis.RelatedPaper, error) {
	var out activities.FindRelatedOutput
	err := workflow.ExecuteActivity(ctx, "FindRelatedActivity", activities.FindRelatedInput{Title: title, Abstract: abstract}).Get(ctx, &out)
	return out.Papers, stageError(err)
}

func (s activitySteps) Evaluate(ctx workflow.Context, text string, summary analysis.Summary) (analysis.Evaluation, error) {
	var out activities.EvaluateOutput
	err := workflow.ExecuteActivity(ctx, "EvaluateActivity", activities.EvaluateInput{Text: text, Summary: summary}).Get(ctx, &out)
	return out.Evaluation, stageError(err)
}

// stageError restores the *analysis.StageError an activity failed with.
func stageError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		var se analysis.StageError
		if appErr.HasDetails() && appErr.Details(&se) == nil && se.Kind != "" {
			se.Err = err
			return &se
		}
		return analysis.NewStageError(knownKind(appErr.Type()), "", appErr.Message(), err)
	}
	var canceled *temporal.CanceledError
	if errors.As(err, &canceled) {
		return analysis.NewStageError(analysis.KindCancelled, "", "Analysis was cancelled", err)
	}
	var timeout *temporal.TimeoutError
	if errors.As(err, &timeout) {
		return analysis.NewStageError(analysis.KindProviderUnavailable, "", "Analysis step timed out", err)
	}
	return err
}

func knownKind(t string) analysis.ErrorKind {
	switch k := analysis.ErrorKind(t); k {
	case analysis.KindExtraction, analysis.KindMetadata, analysis.KindSummarization, analysis.KindRetrieval,
		analysis.KindEvaluation, analysis.KindProviderUnavailable, analysis.KindCancelled:
		return k
	}
	return analysis.KindUnknown
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
