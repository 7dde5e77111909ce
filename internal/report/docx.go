package report

import (
	"fmt"
	"strings"

	"github.com/gingfrederik/docx"

	"scholarsync/internal/analysis"
)

const rule = "--------------------------------------------------"

// SaveDOCX writes a Word document with the summary, related work and
// evaluation of r to path.
func SaveDOCX(path string, r analysis.AggregateResult) error {
	f := docx.NewFile()

	styled(f, r.Metadata.Title, 20, "")
	f.AddParagraph()
	heading(f, "Abstract")
	f.AddParagraph().AddText(r.Metadata.Abstract)

	heading(f, "Summary")
	f.AddParagraph().AddText(r.Summary.MainSummary)
	bullets(f, "Contributions", r.Summary.Contributions)
	bullets(f, "Method", r.Summary.Method)
	bullets(f, "Results", r.Summary.Results)
	bullets(f, "Limitations", r.Summary.Limitations)

	f.AddParagraph().AddText(rule)
	heading(f, "Related Work")
	if len(r.SimilarPapers) == 0 {
		styled(f, "No related papers found.", 0, "808080")
	}
	for _, p := range r.SimilarPapers {
		styled(f, p.Title, 12, "")
		if p.Source != "" {
			styled(f, "Source: "+p.Source, 10, "808080")
		}
		styled(f, p.URL, 10, "0000FF")
		if p.Snippet != "" {
			styled(f, p.Snippet, 10, "")
		}
	}

	f.AddParagraph().AddText(rule)
	heading(f, "Faithfulness Evaluation")
	ev := r.Evaluation
	f.AddParagraph().AddText(fmt.Sprintf("Overall score: %s", formatScore(ev.Score)))
	f.AddParagraph().AddText(fmt.Sprintf("Semantic similarity: %s", formatScore(ev.SemanticSimilarityScore)))
	f.AddParagraph().AddText(fmt.Sprintf("Key point coverage: %s", formatScore(ev.KeypointCoverageScore)))
	if ev.Reasoning != "" {
		f.AddParagraph().AddText(ev.Reasoning)
	}
	bullets(f, "Missing key points", ev.MissingKeypoints)
	if ev.Flagged() {
		notes := make([]string, 0, len(ev.Adjustments))
		for _, a := range ev.Adjustments {
			notes = append(notes, fmt.Sprintf("%s set to %s (%s)", a.Field, formatScore(a.Applied), a.Reason))
		}
		styled(f, "Adjusted scores: "+strings.Join(notes, "; "), 10, "C00000")
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save docx %s: %w", path, err)
	}
	return nil
}

func heading(f *docx.File, text string) {
	styled(f, text, 16, "")
}

func styled(f *docx.File, text string, size int, color string) {
	run := f.AddParagraph().AddText(text)
	if size > 0 {
		run.Size(size)
	}
	if color != "" {
		run.Color(color)
	}
}

func bullets(f *docx.File, title string, items []string) {
	if len(items) == 0 {
		return
	}
	styled(f, title, 13, "")
	for _, it := range items {
		f.AddParagraph().AddText("- " + it)
	}
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d/100", int64(v))
	}
	return fmt.Sprintf("%.1f/100", v)
}
