package pipeline

import (
	"strings"

	"scholarsync/internal/analysis"
	"scholarsync/internal/models"
	"scholarsync/internal/util"
)

// Document is one submitted paper. Data takes precedence over Path.
type Document struct {
	Name      string
	Data      []byte
	Path      string
	Submitter models.User
}

// Steps performs the stage calls of a run. C is the call context: a
// context.Context in process, a workflow.Context under Temporal.
type Steps[C any] interface {
	ExtractText(c C, doc Document) (string, error)
	ExtractMetadata(c C, text string) (analysis.Metadata, error)
	Summarize(c C, text string) (analysis.Summary, error)
	FindRelated(c C, title, abstract string) ([]analysis.RelatedPaper, error)
	Evaluate(c C, text string, summary analysis.Summary) (analysis.Evaluation, error)
}

// Drive runs the stages once against st, which must already be started.
// emit receives a snapshot after every change, before the matching stage
// call begins. The returned error is the run's failure, if any.
func Drive[C any](c C, st *State, doc Document, steps Steps[C], emit func(State)) error {
	publish := func() {
		if emit != nil {
			emit(st.Clone())
		}
	}
	fail := func(err error) error {
		if ferr := st.Fail(err); ferr != nil {
			return ferr
		}
		publish()
		return err
	}

	if st.stage() == StageIdle {
		if err := st.Start(st.RunID); err != nil {
			return err
		}
	}
	publish()

	text, err := steps.ExtractText(c, doc)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(text) == "" {
		return fail(analysis.NewStageError(analysis.KindExtraction, analysis.StageTextExtraction, EmptyTextMessage, util.ErrNoExtractableText))
	}

	if err := st.BeginAnalysis(); err != nil {
		return err
	}
	publish()
	md, err := steps.ExtractMetadata(c, text)
	if err != nil {
		return fail(err)
	}

	if err := st.Step(LabelSummary); err != nil {
		return err
	}
	publish()
	summary, err := steps.Summarize(c, text)
	if err != nil {
		return fail(err)
	}

	if err := st.Step(LabelRelated); err != nil {
		return err
	}
	publish()
	related, err := steps.FindRelated(c, md.Title, md.Abstract)
	if err != nil {
		return fail(err)
	}

	if err := st.Step(LabelEvaluation); err != nil {
		return err
	}
	publish()
	eval, err := steps.Evaluate(c, text, summary)
	if err != nil {
		return fail(err)
	}

	if err := st.Complete(analysis.NewAggregateResult(text, md, summary, related, eval)); err != nil {
		return err
	}
	publish()
	return nil
}
