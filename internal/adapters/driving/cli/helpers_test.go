package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const ndaText = "This Mutual Non-Disclosure Agreement is made on 1 March 2026 between " +
	"Acme Ltd and Beta LLC. The receiving party shall pay $5,000 for any breach of " +
	"confidentiality. Either party may terminate on thirty days written notice."

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs     []domain.Document
	chunks   []domain.Chunk
	err      error
	uploaded *domain.Upload
	deleted  string
}

var _ driving.DocumentService = (*mockDocumentService)(nil)

func (m *mockDocumentService) Upload(_ context.Context, upload domain.Upload) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.uploaded = &upload
	mimeType := upload.MIMEType
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return &domain.Document{
		ID:        "doc-new",
		Filename:  upload.Filename,
		MIMEType:  mimeType,
		Text:      string(upload.Content),
		Status:    domain.StatusIngested,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			doc := m.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = id
	return nil
}

// mockAnalysisService implements driving.AnalysisService for testing.
type mockAnalysisService struct {
	result   *domain.AnalysisResult
	err      error
	analyzed []string
}

var _ driving.AnalysisService = (*mockAnalysisService)(nil)

func (m *mockAnalysisService) Analyze(_ context.Context, id string) (*domain.AnalysisResult, error) {
	m.analyzed = append(m.analyzed, id)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAnalysisService) Latest(_ context.Context, _ string) (*domain.AnalysisResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockQAService implements driving.QAService for testing.
type mockQAService struct {
	answer    *domain.Answer
	err       error
	conv      *domain.Conversation
	questions []string
}

var _ driving.QAService = (*mockQAService)(nil)

func (m *mockQAService) Ask(_ context.Context, _, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockQAService) Conversation(_ context.Context, id string) (*domain.Conversation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.conv == nil {
		return &domain.Conversation{DocumentID: id}, nil
	}
	return m.conv, nil
}

// mockSuggestionService implements driving.SuggestionService for testing.
type mockSuggestionService struct {
	questions []string
	err       error
}

var _ driving.SuggestionService = (*mockSuggestionService)(nil)

func (m *mockSuggestionService) Suggest(_ context.Context, _ string, _ *domain.AnalysisResult) ([]string, error) {
	return m.questions, m.err
}

// mockHealthService implements driving.HealthService for testing.
type mockHealthService struct {
	report domain.HealthReport
}

var _ driving.HealthService = (*mockHealthService)(nil)

func (m *mockHealthService) Check(_ context.Context) domain.HealthReport {
	return m.report
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	saved       *domain.AppSettings
	validateErr error
}

var _ driving.SettingsService = (*mockSettingsService)(nil)

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	docs        *mockDocumentService
	analysis    *mockAnalysisService
	qa          *mockQAService
	suggestions *mockSuggestionService
	health      *mockHealthService
	settings    *mockSettingsService
}

func sampleDocument() domain.Document {
	return domain.Document{
		ID:          "doc-1",
		Filename:    "nda.txt",
		MIMEType:    "text/plain",
		Text:        ndaText,
		Fingerprint: "ab12cd34",
		Status:      domain.StatusAnalyzed,
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	}
}

func sampleAnalysis() *domain.AnalysisResult {
	r := domain.NewAnalysisResult("an-1", "doc-1", fixedTime)
	r.DocumentType = domain.DocumentTypeNDA
	r.Summary = "Mutual confidentiality undertaking between Acme and Beta."
	r.Parties = []string{"Acme Ltd", "Beta LLC"}
	r.KeyTerms = []domain.KeyTerm{{Term: "Confidential Information", Definition: "Non-public data"}}
	r.FinancialTerms = []string{"$5,000"}
	r.Risks = []domain.Risk{
		{Title: "Uncapped penalty", Level: domain.RiskHigh, Description: "Breach triggers a fixed payment."},
		{Title: "Short notice", Level: domain.RiskLow, Description: "Thirty days."},
	}
	for _, f := range domain.AllFragments() {
		r.Fragments[f] = domain.FragmentOK
	}
	return r
}

// setupTestServices installs mock services and resets command flags. The
// returned function restores the previous state.
func setupTestServices() (*testServices, func()) {
	svc := &testServices{
		docs: &mockDocumentService{
			docs: []domain.Document{sampleDocument()},
			chunks: []domain.Chunk{
				{ID: "doc-1-0000", DocumentID: "doc-1", Seq: 0, Start: 0, End: 120, Content: "This Mutual Non-Disclosure Agreement", Section: "Preamble"},
				{ID: "doc-1-0001", DocumentID: "doc-1", Seq: 1, Start: 100, End: 230, Content: "Either party may terminate on thirty days written notice."},
			},
		},
		analysis:    &mockAnalysisService{result: sampleAnalysis()},
		qa:          &mockQAService{answer: &domain.Answer{Text: "Thirty days written notice.", ChunkIDs: []string{"doc-1-0001"}}},
		suggestions: &mockSuggestionService{questions: []string{"Who are the parties?", "How can it be terminated?"}},
		health: &mockHealthService{report: domain.HealthReport{
			Status:     "healthy",
			Components: map[string]bool{domain.ComponentEmbedding: true, domain.ComponentCompletion: true},
		}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	old := Services{
		Document:       documentService,
		Analysis:       analysisService,
		QA:             qaService,
		Suggestion:     suggestionService,
		Health:         healthService,
		Settings:       settingsService,
		MaxUploadBytes: maxUploadBytes,
	}
	oldBootstrap := bootstrap

	bootstrap = nil
	SetServices(&Services{
		Document:   svc.docs,
		Analysis:   svc.analysis,
		QA:         svc.qa,
		Suggestion: svc.suggestions,
		Health:     svc.health,
		Settings:   svc.settings,
	})
	resetFlags()

	return svc, func() {
		SetServices(&old)
		bootstrap = oldBootstrap
		resetFlags()
	}
}

// resetFlags clears flag variables left set by a previous Execute.
func resetFlags() {
	uploadAnalyze = false
	uploadMIMEType = ""
	analyzeJSON = false
	analyzeLatest = false
	askJSON = false
	promptsJSON = false
	healthJSON = false
	historyJSON = false
	watchNoAnalyze = false
	versionShort = false
	mcpPort = 0
	mcpHost = "127.0.0.1"
	verbose = false
	ephemeral = false
	envFile = ".env"
}
