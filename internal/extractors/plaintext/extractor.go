package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const byteOrderMark = "\ufeff"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/csv"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract returns the content as text. Invalid UTF-8 sequences are dropped.
func (e *Extractor) Extract(_ context.Context, content []byte, _ string) (string, error) {
	text := strings.ToValidUTF8(string(content), "")
	return strings.TrimPrefix(text, byteOrderMark), nil
}
