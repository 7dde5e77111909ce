package workflows

import (
	"scholarsync/internal/models"
	"scholarsync/internal/pipeline"
)

type AnalyzePaperInput struct {
	RunID        string      `json:"run_id"`
	DocumentPath string      `json:"document_path"`
	Filename     string      `json:"filename"`
	User         models.User `json:"user"`
}

type AnalyzePaperOutput struct {
	State            pipeline.State `json:"state"`
	ArtifactLocation string         `json:"artifact_location,omitempty"`
}
