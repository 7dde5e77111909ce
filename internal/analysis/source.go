package analysis

import "scholarsync/internal/util"

// Limits bounds how much source text each stage sends to a provider.
type Limits struct {
	MetadataPrefix   int
	SummaryWindow    int
	EvaluationWindow int
	RelatedResults   int
}

func DefaultLimits() Limits {
	return Limits{MetadataPrefix: 15000, SummaryWindow: 100000, EvaluationWindow: 30000, RelatedResults: 5}
}

func (l Limits) orDefaults() Limits {
	d := DefaultLimits()
	if l.MetadataPrefix <= 0 {
		l.MetadataPrefix = d.MetadataPrefix
	}
	if l.SummaryWindow <= 0 {
		l.SummaryWindow = d.SummaryWindow
	}
	if l.EvaluationWindow <= 0 {
		l.EvaluationWindow = d.EvaluationWindow
	}
	if l.RelatedResults <= 0 {
		l.RelatedResults = d.RelatedResults
	}
	return l
}

// SourceText is the extracted paper text with its bounded views. Bounds
// count runes.
type SourceText struct {
	text   string
	limits Limits
}

func NewSourceText(text string, limits Limits) SourceText {
	return SourceText{text: text, limits: limits.orDefaults()}
}

func (s SourceText) Text() string { return s.text }

func (s SourceText) MetadataPrefix() string {
	return util.TruncateRunes(s.text, s.limits.MetadataPrefix)
}

func (s SourceText) SummaryWindow() string {
	return util.TruncateRunes(s.text, s.limits.SummaryWindow)
}

func (s SourceText) EvaluationWindow() string {
	return util.TruncateRunes(s.text, s.limits.EvaluationWindow)
}
