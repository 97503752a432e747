package heuristics

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// normalise lowercases s and replaces every run of non-alphanumerics with a
// single space, padding the result so keywords can be matched as " kw ".
func normalise(s string) string {
	var b strings.Builder
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// hasWord reports whether the normalised keyword occurs as whole words in
// padded, which must come from normalise.
func hasWord(padded, keyword string) bool {
	return strings.Contains(padded, normalise(keyword))
}

type span struct {
	start, end int
}

// findAll returns non-overlapping matches of all patterns in text order.
// Earlier spans win over later overlapping ones. Duplicates are dropped
// case-insensitively and at most limit values are returned.
func findAll(text string, patterns []*regexp.Regexp, limit int) []string {
	var spans []span
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	seen := make(map[string]bool)
	out := []string{}
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		lastEnd = s.end
		value := strings.Join(strings.Fields(text[s.start:s.end]), " ")
		key := strings.ToLower(value)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, value)
		if len(out) == limit {
			break
		}
	}
	return out
}

var sentenceEnd = regexp.MustCompile(`[.!?](\s|$)`)

// sentences splits text into trimmed sentences.
func sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.Join(strings.Fields(text[start:loc[0]+1]), " "); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.Join(strings.Fields(text[start:]), " "); s != "" {
		out = append(out, s)
	}
	return out
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}
