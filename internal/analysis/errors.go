package analysis

import (
	"context"
	"errors"
	"fmt"

	"scholarsync/internal/providers"
)

type ErrorKind string

const (
	KindExtraction          ErrorKind = "extraction"
	KindMetadata            ErrorKind = "metadata"
	KindSummarization       ErrorKind = "summarization"
	KindRetrieval           ErrorKind = "retrieval"
	KindEvaluation          ErrorKind = "evaluation"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindCancelled           ErrorKind = "cancelled"
	KindUnknown             ErrorKind = "unknown"
)

const (
	StageTextExtraction     = "text_extraction"
	StageMetadataExtraction = "metadata_extraction"
	StageSummarization      = "summarization"
	StageRelatedWork        = "related_work"
	StageEvaluation         = "evaluation"
)

// StageError is the failure half of every stage result. Message is shown to
// users verbatim.
type StageError struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(kind ErrorKind, stage, message string, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Message: message, Err: err}
}

// KindOf extracts the error kind, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var se *StageError
	if errors.As(err, &se) && se.Kind != "" {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindUnknown
}

// providerFailure wraps a provider call error, upgrading the kind when the
// provider itself was unreachable or throttled.
func providerFailure(kind ErrorKind, stage, label string, err error) *StageError {
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCancelled
	case providers.IsUnavailable(err):
		kind = KindProviderUnavailable
	}
	return NewStageError(kind, stage, fmt.Sprintf("%s: %v", label, err), err)
}
