package mcp

import (
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document ingests and manages documents.
	Document driving.DocumentService

	// Analysis runs structured extraction.
	Analysis driving.AnalysisService

	// QA answers questions grounded in a document.
	QA driving.QAService

	// Suggestion proposes follow-up questions.
	Suggestion driving.SuggestionService

	// Health reports collaborator liveness.
	Health driving.HealthService

	// MaxUploadBytes bounds the decoded size of uploaded content.
	// Zero means no limit.
	MaxUploadBytes int64
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	// QA, Suggestion and Health are optional; their tools report unavailability.
	return nil
}
