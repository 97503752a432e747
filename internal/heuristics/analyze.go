package heuristics

import (
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Analyze builds a complete analysis from text alone. Every fragment is
// marked FragmentHeuristic.
func Analyze(id, documentID, text string, now time.Time) *domain.AnalysisResult {
	result := domain.NewAnalysisResult(id, documentID, now)
	result.DocumentType = DetectDocumentType(text)
	result.Summary = Summary(text)
	result.Parties = Parties(text)
	result.KeyTerms = KeyTerms(text)
	result.FinancialTerms = Amounts(text)
	result.Dates = Dates(text)
	result.Risks = Risks(text)

	for _, f := range domain.AllFragments() {
		result.Fragments[f] = domain.FragmentHeuristic
	}
	return result
}
