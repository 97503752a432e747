package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfigNotFound indicates a required provider is not configured.
	ErrConfigNotFound = errors.New("configuration not found")

	// Ingestion Errors.

	// ErrEmptyDocument indicates the extracted text has too few meaningful characters,
	// typically a scanned PDF without a text layer.
	ErrEmptyDocument = errors.New("document has no usable text")

	// ErrUnsupportedFormat indicates no extractor handles the file's MIME type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtractionFailed indicates an extractor accepted the format but could not read it.
	ErrExtractionFailed = errors.New("text extraction failed")

	// Pipeline Errors.

	// ErrInvalidState indicates the document status does not allow the operation.
	ErrInvalidState = errors.New("invalid document state")

	// ErrEmbeddingUnavailable indicates the embedding service errored, timed out
	// or is not configured. Callers may retry.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCompletionUnavailable indicates the completion service errored, timed out
	// or is not configured.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrRateLimited indicates the completion provider rejected the call for rate reasons.
	ErrRateLimited = errors.New("rate limited")

	// ErrAnalysisFailed indicates every extraction fragment failed to reach the
	// completion service. Partial failures never produce this error.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrAnswerUnavailable indicates a question could not be answered after the
	// bounded retry.
	ErrAnswerUnavailable = errors.New("answer unavailable")
)
