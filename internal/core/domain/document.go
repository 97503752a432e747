package domain

import (
	"fmt"
	"time"
)

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

// Document lifecycle states, in pipeline order.
const (
	// StatusIngested means text was extracted and normalised.
	StatusIngested DocumentStatus = "ingested"

	// StatusIndexed means every chunk has an embedding in the vector index.
	StatusIndexed DocumentStatus = "indexed"

	// StatusAnalyzed means an AnalysisResult exists and questions may be asked.
	StatusAnalyzed DocumentStatus = "analyzed"

	// StatusFailed means the last pipeline stage failed; see Document.Error.
	StatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusIngested, StatusIndexed, StatusAnalyzed, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// rank orders the non-failed states. Failed ranks below everything.
func (s DocumentStatus) rank() int {
	switch s {
	case StatusIngested:
		return 1
	case StatusIndexed:
		return 2
	case StatusAnalyzed:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s has progressed at least as far as other.
func (s DocumentStatus) AtLeast(other DocumentStatus) bool {
	return s.rank() >= other.rank() && s.rank() > 0
}

// CanTransition reports whether the status machine allows moving to next.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	if next == StatusFailed {
		return true
	}
	switch s {
	case StatusIngested:
		return next == StatusIndexed
	case StatusIndexed:
		// Re-indexing an indexed document is a no-op transition.
		return next == StatusIndexed || next == StatusAnalyzed
	case StatusAnalyzed:
		return next == StatusAnalyzed
	case StatusFailed:
		return next == StatusIndexed
	default:
		return false
	}
}

// Document is an uploaded legal document. It owns its chunks, analyses
// and conversation, all of which are scoped by ID.
type Document struct {
	// ID is the opaque identifier generated on upload.
	ID string

	// Filename is the name the document was uploaded under.
	Filename string

	// MIMEType is the detected or declared content type.
	MIMEType string

	// RawText is the text returned by the extractor.
	RawText string

	// Text is the normalised text. Chunk spans index into it.
	Text string

	// Fingerprint is the hex SHA-256 of Text.
	Fingerprint string

	// Status is the lifecycle state.
	Status DocumentStatus

	// Error holds the last failure message when Status is failed.
	Error string

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the status last changed.
	UpdatedAt time.Time
}

// Transition moves the document to next, enforcing the status machine.
func (d *Document) Transition(next DocumentStatus, now time.Time) error {
	if !d.Status.CanTransition(next) {
		return fmt.Errorf("%w: cannot move document %s from %s to %s", ErrInvalidState, d.ID, d.Status, next)
	}
	d.Status = next
	d.UpdatedAt = now
	if next != StatusFailed {
		d.Error = ""
	}
	return nil
}

// Fail marks the document as failed with the given cause.
func (d *Document) Fail(cause error, now time.Time) {
	d.Status = StatusFailed
	d.UpdatedAt = now
	if cause != nil {
		d.Error = cause.Error()
	}
}

// Chunk is an immutable passage of a document's normalised text.
type Chunk struct {
	// ID is derived from the document ID and Seq, so rebuilds reuse IDs.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Seq is the reading-order index, contiguous from 0.
	Seq int

	// Start is the first rune offset into Document.Text.
	Start int

	// End is one past the last rune offset into Document.Text.
	End int

	// Content is the passage text.
	Content string

	// Section is the nearest preceding clause heading, if one was found.
	Section string

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// Len returns the span length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}
