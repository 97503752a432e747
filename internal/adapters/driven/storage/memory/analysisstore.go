package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure AnalysisStore implements the interface.
var _ driven.AnalysisStore = (*AnalysisStore)(nil)

// AnalysisStore is an in-memory implementation of driven.AnalysisStore.
// Results are kept per document in insertion order.
type AnalysisStore struct {
	mu      sync.RWMutex
	results map[string][]domain.AnalysisResult
}

// NewAnalysisStore creates a new in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		results: make(map[string][]domain.AnalysisResult),
	}
}

// SaveAnalysis stores a new result.
func (s *AnalysisStore) SaveAnalysis(_ context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.DocumentID == "" {
		return fmt.Errorf("%w: analysis document ID is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.DocumentID] = append(s.results[result.DocumentID], copyAnalysis(*result))
	return nil
}

// LatestAnalysis returns the most recently saved result for a document.
func (s *AnalysisStore) LatestAnalysis(_ context.Context, documentID string) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.results[documentID]
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no analysis for document %s", domain.ErrNotFound, documentID)
	}
	latest := copyAnalysis(results[len(results)-1])
	return &latest, nil
}

// DeleteAnalyses removes every result for a document.
func (s *AnalysisStore) DeleteAnalyses(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, documentID)
	return nil
}

func copyAnalysis(a domain.AnalysisResult) domain.AnalysisResult {
	a.Parties = append([]string{}, a.Parties...)
	a.KeyTerms = append([]domain.KeyTerm{}, a.KeyTerms...)
	a.FinancialTerms = append([]string{}, a.FinancialTerms...)
	a.Dates = append([]string{}, a.Dates...)
	a.Risks = append([]domain.Risk{}, a.Risks...)
	fragments := make(map[domain.Fragment]domain.FragmentState, len(a.Fragments))
	for k, v := range a.Fragments {
		fragments[k] = v
	}
	a.Fragments = fragments
	return a
}
