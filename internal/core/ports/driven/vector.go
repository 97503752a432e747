package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// VectorIndex stores chunk embeddings in per-document namespaces and answers
// nearest-neighbour queries within one namespace.
type VectorIndex interface {
	// Replace atomically swaps the document's namespace for the given chunks.
	// Every chunk must carry an embedding.
	Replace(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// Search returns up to k hits from the document's namespace ordered by
	// ascending distance, ties broken by ascending Seq.
	Search(ctx context.Context, documentID string, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of vectors in the document's namespace.
	Count(ctx context.Context, documentID string) (int, error)

	// DeleteDocument drops the document's namespace.
	DeleteDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Seq is the matched chunk's reading-order index.
	Seq int

	// Distance is 1 - cosine similarity; smaller is closer.
	Distance float64
}
