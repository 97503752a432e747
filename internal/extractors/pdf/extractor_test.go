package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func TestExtractor_SupportedMIMETypes(t *testing.T) {
	types := New().SupportedMIMETypes()
	if len(types) != 1 || types[0] != "application/pdf" {
		t.Errorf("expected [application/pdf], got %v", types)
	}
}

func TestExtractor_Extract_NotPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("This is not a PDF file at all."), "application/pdf")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractor_Extract_Truncated(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("%PDF-1.4\n1 0 obj\n<<"), "application/pdf")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractor_Extract_Empty(t *testing.T) {
	_, err := New().Extract(context.Background(), nil, "application/pdf")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}
