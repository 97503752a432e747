package driving

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// IndexService builds and queries the per-document vector index.
type IndexService interface {
	// Build chunks and embeds the document and moves it to Indexed.
	// Concurrent builds of the same document are deduplicated.
	Build(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Query returns the k chunks nearest to text, ordered by distance then Seq.
	Query(ctx context.Context, documentID, text string, k int) ([]domain.Chunk, error)
}

// AnalysisService runs structured extraction.
type AnalysisService interface {
	// Analyze indexes the document if needed, extracts every fragment and
	// moves the document to Analyzed.
	Analyze(ctx context.Context, documentID string) (*domain.AnalysisResult, error)

	// Latest returns the most recent analysis for a document.
	Latest(ctx context.Context, documentID string) (*domain.AnalysisResult, error)
}

// QAService answers questions grounded in a document.
type QAService interface {
	// Ask answers a question. Questions for one document are answered one at
	// a time in submission order.
	Ask(ctx context.Context, documentID, question string) (*domain.Answer, error)

	// Conversation returns the ordered turns for a document.
	Conversation(ctx context.Context, documentID string) (*domain.Conversation, error)
}

// SuggestionService proposes follow-up questions.
type SuggestionService interface {
	// Suggest returns between 1 and 6 questions. When analysis is nil the
	// latest stored analysis is used.
	Suggest(ctx context.Context, documentID string, analysis *domain.AnalysisResult) ([]string, error)
}

// HealthService reports collaborator liveness.
type HealthService interface {
	// Check pings every collaborator.
	Check(ctx context.Context) domain.HealthReport
}
