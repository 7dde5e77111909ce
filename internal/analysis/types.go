// Package analysis holds the paper analysis stages and the data they exchange.
package analysis

const (
	UnknownTitle    = "Unknown Title"
	NoAbstractFound = "No abstract found."
)

const (
	ScoreMin = 0.0
	ScoreMax = 100.0
)

type Metadata struct {
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
}

// PaperMetadata is Metadata plus the full extracted text.
type PaperMetadata struct {
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
	Text     string `json:"text" yaml:"text"`
}

type Summary struct {
	MainSummary   string   `json:"main_summary" yaml:"main_summary"`
	Contributions []string `json:"contributions" yaml:"contributions"`
	Method        []string `json:"method" yaml:"method"`
	Results       []string `json:"results" yaml:"results"`
	Limitations   []string `json:"limitations" yaml:"limitations"`
}

type RelatedPaper struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// ScoreAdjustment records a provider score that was out of range and the
// value actually kept.
type ScoreAdjustment struct {
	Field    string   `json:"field" yaml:"field"`
	Reported *float64 `json:"reported,omitempty" yaml:"reported,omitempty"`
	Applied  float64  `json:"applied" yaml:"applied"`
	Reason   string   `json:"reason" yaml:"reason"`
}

type Evaluation struct {
	Score                   float64           `json:"score" yaml:"score"`
	SemanticSimilarityScore float64           `json:"semantic_similarity_score" yaml:"semantic_similarity_score"`
	KeypointCoverageScore   float64           `json:"keypoint_coverage_score" yaml:"keypoint_coverage_score"`
	Reasoning               string            `json:"reasoning" yaml:"reasoning"`
	MissingKeypoints        []string          `json:"missing_keypoints" yaml:"missing_keypoints"`
	Adjustments             []ScoreAdjustment `json:"adjustments,omitempty" yaml:"adjustments,omitempty"`
}

// Flagged reports whether any score had to be clamped.
func (e Evaluation) Flagged() bool {
	return len(e.Adjustments) > 0
}

type AggregateResult struct {
	Metadata      PaperMetadata  `json:"metadata" yaml:"metadata"`
	Summary       Summary        `json:"summary" yaml:"summary"`
	SimilarPapers []RelatedPaper `json:"similar_papers" yaml:"similar_papers"`
	Evaluation    Evaluation     `json:"evaluation" yaml:"evaluation"`
}

func NewAggregateResult(text string, meta Metadata, summary Summary, related []RelatedPaper, eval Evaluation) AggregateResult {
	if related == nil {
		related = []RelatedPaper{}
	}
	return AggregateResult{
		Metadata:      PaperMetadata{Title: meta.Title, Abstract: meta.Abstract, Text: text},
		Summary:       summary,
		SimilarPapers: related,
		Evaluation:    eval,
	}
}
