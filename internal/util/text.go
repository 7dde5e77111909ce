package util

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultSnippetRunes = 420

// SanitizeText drops NUL bytes and control characters other than newline,
// carriage return and tab. PDF text layers carry plenty of both.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch == '\n', ch == '\r', ch == '\t':
			b.WriteRune(ch)
		case ch < 0x20, ch == 0x7f, ch == utf8.RuneError:
		default:
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}

// TruncateRunes returns the first n runes of s without splitting a UTF-8
// sequence.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Snippet flattens s to one printable line of at most maxRunes runes,
// adding "..." when it cuts.
func Snippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = defaultSnippetRunes
	}
	s = strings.Join(strings.Fields(splitGluedWords(SanitizeText(s))), " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxRunes {
		return strings.TrimSpace(TruncateRunes(s, maxRunes)) + "..."
	}
	return s
}

// RelevantSnippet picks the one or two sentences of text that share the most
// terms with title. It falls back to the head of text.
func RelevantSnippet(text, title string, maxRunes int) string {
	text = Snippet(text, 4000)
	if text == "" {
		return ""
	}
	terms := TitleTerms(title)
	sentences := splitSentences(text)
	if len(terms) == 0 || len(sentences) < 2 {
		return Snippet(text, maxRunes)
	}

	type scored struct {
		sentence string
		hits     int
	}
	list := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		low := strings.ToLower(s)
		hits := 0
		for _, t := range terms {
			if strings.Contains(low, t) {
				hits++
			}
		}
		list = append(list, scored{s, hits})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].hits > list[j].hits })

	if list[0].hits == 0 {
		return Snippet(text, maxRunes)
	}
	best := list[0].sentence
	if list[1].hits > 0 {
		best += " " + list[1].sentence
	}
	return Snippet(best, maxRunes)
}

var titleStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "via": {}, "into": {},
	"are": {}, "was": {}, "were": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"towards": {}, "using": {}, "based": {}, "approach": {}, "paper": {}, "study": {},
}

// TitleTerms returns the lowercased distinct words of title worth searching
// for: three or more letters and not a stopword.
func TitleTerms(title string) []string {
	seen := map[string]struct{}{}
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(Snippet(title, 2000))) {
		f = strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if utf8.RuneCountInString(f) < 3 {
			continue
		}
		if _, stop := titleStopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

func splitSentences(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' {
			if x := strings.TrimSpace(s[start : i+1]); x != "" {
				out = append(out, x)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// splitGluedWords inserts the spaces PDF text layers often lose between a
// lowercase letter and a capital, or between letters and digits.
func splitGluedWords(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	var prev rune
	for i, r := range s {
		if i > 0 && glued(prev, r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func glued(a, b rune) bool {
	switch {
	case unicode.IsLower(a) && unicode.IsUpper(b):
		return true
	case unicode.IsLetter(a) && unicode.IsDigit(b):
		return true
	case unicode.IsDigit(a) && unicode.IsLetter(b):
		return true
	}
	return false
}
