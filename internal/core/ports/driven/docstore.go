package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ReplaceChunks swaps all chunks of a document for the given set.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document ordered by Seq.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// AnalysisStore persists analysis results. Results are append-only.
type AnalysisStore interface {
	// SaveAnalysis stores a new result.
	SaveAnalysis(ctx context.Context, result *domain.AnalysisResult) error

	// LatestAnalysis returns the most recent result for a document.
	// Returns domain.ErrNotFound if none exists.
	LatestAnalysis(ctx context.Context, documentID string) (*domain.AnalysisResult, error)

	// DeleteAnalyses removes every result for a document.
	DeleteAnalyses(ctx context.Context, documentID string) error
}

// ConversationStore persists question/answer turns.
type ConversationStore interface {
	// AppendTurn adds a turn. The turn's Seq must be the next in order.
	AppendTurn(ctx context.Context, documentID string, turn domain.Turn) error

	// GetConversation returns the turns for a document. A document without
	// turns yields an empty conversation, not an error.
	GetConversation(ctx context.Context, documentID string) (*domain.Conversation, error)

	// DeleteConversation removes every turn for a document.
	DeleteConversation(ctx context.Context, documentID string) error
}
