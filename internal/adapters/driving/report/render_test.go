package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func sampleAnalysis() *domain.AnalysisResult {
	a := domain.NewAnalysisResult("an-1", "doc-1", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	a.DocumentType = domain.DocumentTypeLease
	a.Summary = "A twelve month residential lease."
	a.Parties = []string{"Jane Landlord", "Tom Tenant"}
	a.KeyTerms = []domain.KeyTerm{{Term: "Rent", Definition: "USD 1,500 per month"}, {Term: "Deposit"}}
	a.Risks = []domain.Risk{
		{Title: "Uncapped repair costs", Level: domain.RiskHigh, Description: "Tenant pays all repairs."},
		{Title: "Automatic renewal", Level: domain.RiskLow},
	}
	a.Fragments[domain.FragmentType] = domain.FragmentOK
	a.Fragments[domain.FragmentDates] = domain.FragmentFailed
	a.Fragments[domain.FragmentFinancialTerms] = domain.FragmentMalformed
	return a
}

func TestRenderer_Analysis(t *testing.T) {
	r := New(PlainStyles())
	doc := &domain.Document{ID: "doc-1", Filename: "lease.pdf"}

	out := r.Analysis(doc, sampleAnalysis())

	assert.Contains(t, out, "Analysis: lease.pdf")
	assert.Contains(t, out, "document doc-1, 2024-03-01 09:00:00")
	assert.Contains(t, out, "Lease Agreement")
	assert.Contains(t, out, "A twelve month residential lease.")
	assert.Contains(t, out, "  - Jane Landlord\n")
	assert.Contains(t, out, "  Rent: USD 1,500 per month\n")
	assert.Contains(t, out, "  Deposit\n")
	assert.Contains(t, out, "Risks (1 high, 0 medium, 1 low)")
	assert.Contains(t, out, "[High] Uncapped repair costs")
	assert.Contains(t, out, "Tenant pays all repairs.")
	assert.Contains(t, out, "Financial Terms\n  (none found)")
	assert.Contains(t, out, "Note: financial_terms: unreadable model response; dates: completion service unavailable")
}

func TestRenderer_Analysis_NoDocument(t *testing.T) {
	r := New(PlainStyles())
	a := domain.NewAnalysisResult("an-1", "doc-1", time.Now())
	a.Fragments[domain.FragmentSummary] = domain.FragmentHeuristic

	out := r.Analysis(nil, a)

	assert.Contains(t, out, "Analysis\n")
	assert.Contains(t, out, "Other")
	assert.Contains(t, out, "Risks (0 high, 0 medium, 0 low)")
	assert.Contains(t, out, "summary: offline heuristics")
}

func TestRenderer_Answer(t *testing.T) {
	r := New(PlainStyles())
	answer := &domain.Answer{Text: "Either party may give three months notice."}
	sources := []domain.Chunk{{Seq: 2, Section: "3. Termination"}, {Seq: 4}}

	out := r.Answer(answer, sources)

	assert.Contains(t, out, "Either party may give three months notice.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "passage 3, 3. Termination")
	assert.Contains(t, out, "passage 5\n")
}

func TestRenderer_Questions(t *testing.T) {
	r := New(PlainStyles())

	out := r.Questions("Suggested questions", []string{"Who pays repairs?", "Can I sublet?"})

	assert.Equal(t, "Suggested questions\n  1. Who pays repairs?\n  2. Can I sublet?\n", out)
}
