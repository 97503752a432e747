package cli

import (
	"errors"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// errorMessages maps each domain error to one short user-facing message.
// Order matters: the first match wins, so more specific errors come first.
var errorMessages = []struct {
	err error
	msg string
}{
	{domain.ErrEmptyDocument, "The document has no readable text. Scanned PDFs need OCR before upload."},
	{domain.ErrUnsupportedFormat, "Unsupported file format. Use pdf, docx, txt, md or html (doc needs extraction.tika_url)."},
	{domain.ErrExtractionFailed, "The file could not be read. It may be corrupt or password protected."},
	{domain.ErrNotFound, "Document not found. Run 'lexis document list' to see document IDs."},
	{domain.ErrInvalidState, "The document is not ready. Run 'lexis analyze <doc-id>' first."},
	{domain.ErrRateLimited, "The AI provider is rate limiting requests. Wait a moment and try again."},
	{domain.ErrAnalysisFailed, "Analysis failed: the completion service could not be reached for any part of the document."},
	{domain.ErrAnswerUnavailable, "No answer could be produced right now. Try again shortly."},
	{domain.ErrEmbeddingUnavailable, "The embedding service is unavailable. Check 'lexis health' and 'lexis settings embedding'."},
	{domain.ErrCompletionUnavailable, "The completion service is unavailable. Check 'lexis health' and 'lexis settings llm'."},
	{domain.ErrConfigNotFound, "AI providers are not configured. Run 'lexis settings embedding' and 'lexis settings llm'."},
	{errUploadTooLarge, "The file is larger than the upload limit (documents.max_upload_bytes)."},
}

// describeError returns a short human message for err. Errors that carry
// no domain meaning are shown as-is.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}
