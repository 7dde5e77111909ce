// Package pipeline sequences the analysis stages of one paper and tracks the
// observable state of each run.
package pipeline

import (
	"errors"
	"fmt"

	"scholarsync/internal/analysis"
)

type Stage string

const (
	StageIdle           Stage = "idle"
	StageExtractingText Stage = "extracting_text"
	StageAnalyzing      Stage = "analyzing"
	StageCompleted      Stage = "completed"
	StageError          Stage = "error"
)

func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

const (
	LabelExtractingText = "Extracting text from PDF..."
	LabelMetadata       = "Analyzing structure and metadata..."
	LabelSummary        = "Generating comprehensive summary..."
	LabelRelated        = "Searching for related literature..."
	LabelEvaluation     = "Evaluating summary accuracy against source..."
)

const (
	EmptyTextMessage    = "Extracted text is empty. The PDF might be an image scan."
	GenericErrorMessage = "An unexpected error occurred during analysis."
)

var ErrInvalidTransition = errors.New("invalid run state transition")

// State is a snapshot of one run. The zero value is idle.
type State struct {
	RunID     string                    `json:"run_id,omitempty"`
	Stage     Stage                     `json:"stage"`
	Progress  string                    `json:"progress,omitempty"`
	Error     string                    `json:"error,omitempty"`
	ErrorKind analysis.ErrorKind        `json:"error_kind,omitempty"`
	Result    *analysis.AggregateResult `json:"result,omitempty"`
	History   []Stage                   `json:"history,omitempty"`
}

func IdleState() State {
	return State{Stage: StageIdle}
}

func (s State) stage() Stage {
	if s.Stage == "" {
		return StageIdle
	}
	return s.Stage
}

// Clone copies the history so snapshots never alias a live state.
func (s State) Clone() State {
	s.History = append([]Stage(nil), s.History...)
	return s
}

func (s *State) Start(runID string) error {
	if s.stage() != StageIdle {
		return s.invalid(StageExtractingText)
	}
	s.RunID = runID
	s.History = []Stage{StageIdle}
	s.moveTo(StageExtractingText, LabelExtractingText)
	return nil
}

func (s *State) BeginAnalysis() error {
	if s.stage() != StageExtractingText {
		return s.invalid(StageAnalyzing)
	}
	s.moveTo(StageAnalyzing, LabelMetadata)
	return nil
}

// Step updates the progress label within the analyzing stage.
func (s *State) Step(label string) error {
	if s.stage() != StageAnalyzing {
		return fmt.Errorf("%w: progress %q while %s", ErrInvalidTransition, label, s.stage())
	}
	s.Progress = label
	return nil
}

func (s *State) Complete(result analysis.AggregateResult) error {
	if s.stage() != StageAnalyzing {
		return s.invalid(StageCompleted)
	}
	s.Result = &result
	s.moveTo(StageCompleted, "")
	return nil
}

// Fail records err as the run's terminal error. Results are never kept.
func (s *State) Fail(err error) error {
	st := s.stage()
	if st != StageExtractingText && st != StageAnalyzing {
		return s.invalid(StageError)
	}
	s.Error = ErrorMessage(err)
	s.ErrorKind = analysis.KindOf(err)
	s.Result = nil
	s.moveTo(StageError, "")
	return nil
}

func (s *State) moveTo(next Stage, progress string) {
	s.Stage = next
	s.Progress = progress
	s.History = append(s.History, next)
}

func (s State) invalid(next Stage) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.stage(), next)
}

// ErrorMessage is the user-facing message for a failed run.
func ErrorMessage(err error) string {
	if err == nil {
		return GenericErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
