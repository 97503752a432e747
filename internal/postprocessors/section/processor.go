// Package section tags chunks with the clause headings they fall under.
package section

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// maxHeadingLen bounds how long a line may be and still count as a heading.
const maxHeadingLen = 80

// numbered matches "5. TERMINATION", "Section 5.2 Notice", "ARTICLE IV - TERM".
var numbered = regexp.MustCompile(`^(?i:article|section|clause|schedule)?\s*([0-9]+(\.[0-9]+)*|[IVXLC]+)[.)]?\s+[A-Z]`)

type heading struct {
	offset int
	title  string
}

// Processor sets Chunk.Section from the document's clause headings.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a section tagging processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "section"
}

// Process annotates each chunk with the heading in effect at its start plus
// any headings that begin inside it, joined with "; ".
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	headings := findHeadings(doc.Text)
	if len(headings) == 0 {
		return chunks, nil
	}

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		var titles []string
		for j, h := range headings {
			inEffect := h.offset <= c.Start && (j+1 == len(headings) || headings[j+1].offset > c.Start)
			inside := h.offset > c.Start && h.offset < c.End
			if inEffect || inside {
				titles = append(titles, h.title)
			}
		}
		c.Section = strings.Join(titles, "; ")
		out[i] = c
	}
	return out, nil
}

// findHeadings returns heading lines with their rune offsets, in order.
func findHeadings(text string) []heading {
	var headings []heading
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isHeading(trimmed) {
			headings = append(headings, heading{offset: offset, title: strings.TrimRight(trimmed, ".:")})
		}
		offset += utf8.RuneCountInString(line) + 1
	}
	return headings
}

// isHeading accepts short numbered lines and short all-caps lines.
func isHeading(line string) bool {
	if line == "" || utf8.RuneCountInString(line) > maxHeadingLen {
		return false
	}
	if numbered.MatchString(line) && !endsLikeSentence(line) {
		return true
	}
	return isUpperTitle(line)
}

// endsLikeSentence rejects numbered list items that are full sentences.
func endsLikeSentence(line string) bool {
	return strings.HasSuffix(line, ".") && strings.Count(line, " ") > 6
}

func isUpperTitle(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 4
}
