package driven

import "context"

// TextExtractor turns file bytes into plain text.
// Each extractor handles specific MIME types (e.g., PDF, DOCX).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	// A "*/*" entry marks a catch-all extractor.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Catch-all extractors should return 1-9.
	Priority() int

	// Extract returns the document text.
	// Errors wrap domain.ErrExtractionFailed or domain.ErrUnsupportedFormat.
	Extract(ctx context.Context, content []byte, mimeType string) (string, error)
}

// ExtractorRegistry selects the appropriate extractor for a MIME type.
type ExtractorRegistry interface {
	// Extract dispatches to the highest-priority matching extractor.
	// Returns domain.ErrUnsupportedFormat when none matches.
	Extract(ctx context.Context, content []byte, mimeType string) (string, error)

	// Register adds an extractor to the registry.
	Register(extractor TextExtractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string

	// DetectMIMEType infers a MIME type from the file extension, falling
	// back to content sniffing.
	DetectMIMEType(filename string, content []byte) string
}

// TextNormaliser cleans extracted text into sentence-bounded paragraphs.
type TextNormaliser interface {
	// Normalise returns cleaned text, or domain.ErrEmptyDocument when too
	// little meaningful text remains.
	Normalise(raw string) (string, error)
}
