// Package normaliser cleans extracted document text before chunking.
package normaliser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextNormaliser = (*Normaliser)(nil)

// DefaultMinChars is the minimum count of letters and digits a document needs.
const DefaultMinChars = 50

// Normaliser collapses whitespace, removes control bytes and keeps paragraph
// boundaries as blank lines. Markup belongs to the extractors; characters
// such as "*" are document content here.
type Normaliser struct {
	minChars int
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithMinChars sets the meaningful-character threshold.
func WithMinChars(n int) Option {
	return func(nm *Normaliser) {
		if n >= 0 {
			nm.minChars = n
		}
	}
}

// New creates a normaliser with the given options.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{minChars: DefaultMinChars}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise returns cleaned text. Paragraphs are separated by "\n\n" and
// hard-wrapped lines within a paragraph are rejoined.
func (n *Normaliser) Normalise(raw string) (string, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripControl(text)

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, joinWrapped(current))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	out := strings.Join(paragraphs, "\n\n")
	if count := meaningfulChars(out); count < n.minChars {
		return "", fmt.Errorf("%w: %d meaningful characters, need %d", domain.ErrEmptyDocument, count, n.minChars)
	}
	return out, nil
}

// stripControl drops control and format runes, keeping newlines, and turns
// every other kind of whitespace into a plain space.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t' || unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), r == unicode.ReplacementChar:
			return -1
		default:
			return r
		}
	}, s)
}

// joinWrapped rejoins lines that were hard-wrapped mid-sentence. A line break
// survives when the line ends a sentence or the next line starts like a new
// item (capital letter, digit, bullet).
func joinWrapped(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			if endsSentence(lines[i-1]) || !startsLower(line) {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(line)
	}
	return b.String()
}

func endsSentence(line string) bool {
	last := line[len(line)-1]
	return strings.IndexByte(".!?:;", last) >= 0
}

func startsLower(line string) bool {
	for _, r := range line {
		return unicode.IsLower(r)
	}
	return false
}

func meaningfulChars(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
