// Package chunker provides a sentence-aligned, overlapping text chunking processor.
package chunker

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes (18%).
const DefaultChunkOverlap = 180

// boundary strength, strongest first.
const (
	boundaryNone = iota
	boundaryWord
	boundarySentence
	boundaryParagraph
)

// Processor splits document text into overlapping chunks whose edges fall
// on paragraph breaks, sentence ends or, failing both, word breaks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 5
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from document text.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	runes := []rune(doc.Text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	step := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, n/step+1)

	start := 0
	for {
		end := n
		if n-start > p.chunkSize {
			end = p.findEnd(runes, start)
		}

		seq := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(doc.ID, seq),
			DocumentID: doc.ID,
			Seq:        seq,
			Start:      start,
			End:        end,
			Content:    string(runes[start:end]),
		})

		if end >= n {
			break
		}
		start = p.nextStart(runes, start, end)
	}

	return chunks, nil
}

// findEnd picks the strongest boundary in [start+size/2, start+size],
// preferring the latest position within the same strength. When the window
// holds no word break, the chunk runs to the end of the current word.
func (p *Processor) findEnd(runes []rune, start int) int {
	limit := start + p.chunkSize
	lo := start + p.chunkSize/2
	if lo <= start {
		lo = start + 1
	}

	best, bestKind := 0, boundaryNone
	for e := limit; e >= lo && bestKind < boundaryParagraph; e-- {
		kind := boundaryKind(runes, e)
		if kind > bestKind {
			best, bestKind = e, kind
		}
	}
	if bestKind != boundaryNone {
		return best
	}

	for e := limit + 1; e < len(runes); e++ {
		if isWordStart(runes, e) {
			return e
		}
	}
	return len(runes)
}

// nextStart steps back by the overlap and moves forward to the next word
// start, never past end and always past start.
func (p *Processor) nextStart(runes []rune, start, end int) int {
	next := end - p.overlap
	if next <= start {
		return end
	}
	for next < end && !isWordStart(runes, next) {
		next++
	}
	return next
}

// boundaryKind classifies position e as a chunk end. Valid ends sit at the
// start of a word, so trailing whitespace stays with the preceding chunk.
func boundaryKind(runes []rune, e int) int {
	if !isWordStart(runes, e) {
		return boundaryNone
	}

	i := e - 1
	newlines := 0
	for i >= 0 && unicode.IsSpace(runes[i]) {
		if runes[i] == '\n' {
			newlines++
		}
		i--
	}

	switch {
	case newlines >= 2:
		return boundaryParagraph
	case i >= 0 && strings.ContainsRune(".!?;:", runes[i]):
		return boundarySentence
	default:
		return boundaryWord
	}
}

func isWordStart(runes []rune, i int) bool {
	if i <= 0 || i >= len(runes) {
		return false
	}
	return unicode.IsSpace(runes[i-1]) && !unicode.IsSpace(runes[i])
}

// ChunkID derives a stable chunk ID from the document ID and sequence index,
// so rebuilding a document's index reuses the same IDs.
func ChunkID(documentID string, seq int) string {
	name := "lexis://documents/" + documentID + "/chunks/" + strconv.Itoa(seq)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
