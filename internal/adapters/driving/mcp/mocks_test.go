package mcp

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	uploaded  *domain.Upload
	err       error
}

func (m *mockDocumentService) Upload(_ context.Context, upload domain.Upload) (*domain.Document, error) {
	m.uploaded = &upload
	if m.err != nil {
		return nil, m.err
	}
	if m.document != nil {
		return m.document, nil
	}
	return &domain.Document{
		ID:       "doc-1",
		Filename: upload.Filename,
		MIMEType: "text/plain",
		Text:     string(upload.Content),
		Status:   domain.StatusIngested,
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result *domain.AnalysisResult
	err    error
}

func (m *mockAnalysisService) Analyze(_ context.Context, _ string) (*domain.AnalysisResult, error) {
	return m.result, m.err
}

func (m *mockAnalysisService) Latest(_ context.Context, _ string) (*domain.AnalysisResult, error) {
	return m.result, m.err
}

// mockQAService is a mock implementation of driving.QAService.
type mockQAService struct {
	answer   *domain.Answer
	conv     *domain.Conversation
	question string
	err      error
}

func (m *mockQAService) Ask(_ context.Context, _, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockQAService) Conversation(_ context.Context, _ string) (*domain.Conversation, error) {
	return m.conv, m.err
}

// mockSuggestionService is a mock implementation of driving.SuggestionService.
type mockSuggestionService struct {
	questions []string
	err       error
}

func (m *mockSuggestionService) Suggest(
	_ context.Context,
	_ string,
	_ *domain.AnalysisResult,
) ([]string, error) {
	return m.questions, m.err
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	report domain.HealthReport
}

func (m *mockHealthService) Check(_ context.Context) domain.HealthReport {
	return m.report
}

// requiredPorts returns the minimal valid port set.
func requiredPorts() *Ports {
	return &Ports{
		Document: &mockDocumentService{},
		Analysis: &mockAnalysisService{},
	}
}

// sampleAnalysis returns a populated analysis result.
func sampleAnalysis() *domain.AnalysisResult {
	r := domain.NewAnalysisResult("an-1", "doc-1", fixedTime)
	r.DocumentType = domain.DocumentTypeNDA
	r.Summary = "Mutual confidentiality undertaking."
	r.Parties = []string{"Acme Ltd", "Beta LLC"}
	r.KeyTerms = []domain.KeyTerm{{Term: "Confidential Information", Definition: "Non-public data"}}
	r.Risks = []domain.Risk{{Title: "Perpetual term", Level: domain.RiskHigh, Description: "No end date."}}
	for _, f := range domain.AllFragments() {
		r.Fragments[f] = domain.FragmentOK
	}
	return r
}
