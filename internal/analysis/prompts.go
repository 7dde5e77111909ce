package analysis

import "scholarsync/internal/providers"

const (
	metadataSystem = "You extract bibliographic metadata from academic papers."
	metadataPrompt = "Extract the title and the abstract of the academic paper below. Copy them as written in the paper."

	summarySystem = "You are an expert academic researcher."
	summaryPrompt = `Analyze the research paper text below and provide a structured summary:
- mainSummary: a concise 150-200 word overview
- contributions: the key contributions
- method: the methodology, one point per item
- results: the main results, one point per item
- limitations: stated or evident limitations`

	evaluationSystem = "You are an impartial judge evaluating the quality of an AI-generated summary of a research paper."
	evaluationPrompt = `Compare the generated summary with the original paper text (which may be truncated).
1. Identify the key contributions in the original text.
2. Check whether the generated summary covers them.
3. Check that the semantic meaning is preserved without hallucinations.
4. Give every score on a 0-100 scale.`
)

var metadataSchema = &providers.Schema{
	Type: providers.TypeObject,
	Properties: map[string]*providers.Schema{
		"title":    {Type: providers.TypeString},
		"abstract": {Type: providers.TypeString},
	},
	Required: []string{"title", "abstract"},
}

var summarySchema = &providers.Schema{
	Type: providers.TypeObject,
	Properties: map[string]*providers.Schema{
		"mainSummary":   {Type: providers.TypeString, Description: "A 150-200 word concise overview."},
		"contributions": providers.StringArray(""),
		"method":        providers.StringArray(""),
		"results":       providers.StringArray(""),
		"limitations":   providers.StringArray(""),
	},
	Required: []string{"mainSummary", "contributions", "method", "results"},
}

var evaluationSchema = &providers.Schema{
	Type: providers.TypeObject,
	Properties: map[string]*providers.Schema{
		"score":                   {Type: providers.TypeNumber, Description: "Overall faithfulness score 0-100"},
		"semanticSimilarityScore": {Type: providers.TypeNumber, Description: "0-100 score for preservation of semantic meaning"},
		"keypointCoverageScore":   {Type: providers.TypeNumber, Description: "0-100 score for coverage of key contributions"},
		"reasoning":               {Type: providers.TypeString, Description: "Explanation of the scores"},
		"missingKeypoints":        providers.StringArray("Key points of the original text missing from the summary"),
	},
	Required: []string{"score", "semanticSimilarityScore", "keypointCoverageScore", "reasoning", "missingKeypoints"},
}
