package driven

import "context"

// EmbeddingService turns chunk text and questions into vectors. The
// VectorIndex stores what it produces.
//
// Embedding the same text twice with a fixed model must yield the same
// vector, which keeps index rebuilds idempotent.
type EmbeddingService interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size the model produces.
	Dimensions() int

	// ModelName identifies the model.
	ModelName() string

	// Ping reports whether the provider can serve requests.
	Ping(ctx context.Context) error

	Close() error
}
