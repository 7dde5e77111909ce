package activities

import (
	"scholarsync/internal/analysis"
	"scholarsync/internal/models"
)

type ExtractTextInput struct {
	RunID        string `json:"run_id"`
	DocumentPath string `json:"document_path"`
}

type ExtractTextOutput struct {
	Text string `json:"text"`
}

type ExtractMetadataInput struct {
	Text string `json:"text"`
}

type ExtractMetadataOutput struct {
	Metadata analysis.Metadata `json:"metadata"`
}

type SummarizeInput struct {
	Text string `json:"text"`
}

type SummarizeOutput struct {
	Summary analysis.Summary `json:"summary"`
}

type FindRelatedInput struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

type FindRelatedOutput struct {
	Papers []analysis.RelatedPaper `json:"papers"`
}

type EvaluateInput struct {
	Text    string           `json:"text"`
	Summary analysis.Summary `json:"summary"`
}

type EvaluateOutput struct {
	Evaluation analysis.Evaluation `json:"evaluation"`
}

type RecordActivityInput struct {
	RunID       string      `json:"run_id"`
	User        models.User `json:"user"`
	PaperTitle  string      `json:"paper_title"`
	CompletedAt int64       `json:"completed_at"`
}

type SaveArtifactsInput struct {
	RunID  string                   `json:"run_id"`
	Result analysis.AggregateResult `json:"result"`
}

type SaveArtifactsOutput struct {
	Location string `json:"location,omitempty"`
}
