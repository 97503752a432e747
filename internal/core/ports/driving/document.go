package driving

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// DocumentService ingests and manages documents.
type DocumentService interface {
	// Upload extracts and normalises the file and stores it as Ingested.
	// Size limits are the caller's responsibility.
	Upload(ctx context.Context, upload domain.Upload) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Chunks returns a document's chunks in reading order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Delete removes a document with its chunks, index, analyses and conversation.
	Delete(ctx context.Context, documentID string) error
}
